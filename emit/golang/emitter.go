// Package golang emits a standalone Go HTTP server for a compiled Program.
//
// The generated file depends only on the standard library. Routes are
// registered on an http.ServeMux using method-qualified patterns; CORS and
// JSON body parsing wrap the whole mux.
package golang

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/tools/imports"

	"github.com/broady/routegen/compiler"
	"github.com/broady/routegen/emit"
	"github.com/broady/routegen/ir"
)

// MaxBodyBytes is the request body limit of the generated JSON parser.
const MaxBodyBytes = 100 << 10

// Emitter generates Go source.
type Emitter struct {
	// SkipFormat returns the raw buffer without running it through the
	// formatter. Useful when debugging the emitter itself.
	SkipFormat bool
}

// Name returns "go".
func (e *Emitter) Name() string { return "go" }

// Filename returns "server.go".
func (e *Emitter) Filename() string { return "server.go" }

// Emit generates the server program.
func (e *Emitter) Emit(prog *ir.Program) ([]byte, error) {
	if err := emit.Check(prog); err != nil {
		return nil, err
	}

	pkg := prog.PackageName
	if pkg == "" {
		pkg = "main"
	}

	var buf bytes.Buffer
	buf.WriteString("// " + emit.Header + "\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", pkg)
	buf.WriteString(importBlock)

	fmt.Fprintf(&buf, "const (\n\tport = %d\n\taddr = \":%d\"\n", prog.Port, prog.Port)
	if prog.HasMiddleware(ir.GuardAdmin) {
		fmt.Fprintf(&buf, "\tadminToken = %s\n", strconv.Quote(prog.AdminToken))
	}
	fmt.Fprintf(&buf, "\tmaxBodyBytes = %d\n)\n\n", MaxBodyBytes)

	buf.WriteString(setupFuncs)

	for _, decl := range prog.Middleware {
		if err := e.emitMiddleware(&buf, decl); err != nil {
			return nil, err
		}
	}

	e.emitHandler(&buf, prog.Routes)

	if pkg == "main" {
		buf.WriteString(mainFunc)
	} else {
		buf.WriteString(listenFunc)
	}

	if e.SkipFormat {
		return buf.Bytes(), nil
	}
	out, err := imports.Process(e.Filename(), buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("format generated Go: %w", err)
	}
	return out, nil
}

func (e *Emitter) emitMiddleware(buf *bytes.Buffer, decl ir.MiddlewareDecl) error {
	switch decl.Guard {
	case ir.GuardAuth:
		buf.WriteString(authFunc)
	case ir.GuardAdmin:
		buf.WriteString(adminFunc)
	default:
		return fmt.Errorf("unsupported guard %v declared by node %q", decl.Guard, decl.NodeID)
	}
	return nil
}

// emitHandler writes Handler(), which registers every route in order.
func (e *Emitter) emitHandler(buf *bytes.Buffer, routes []ir.RouteDecl) {
	buf.WriteString("// Handler returns the server's routes wrapped in CORS and JSON body parsing.\n")
	buf.WriteString("func Handler() http.Handler {\n")
	buf.WriteString("\tmux := http.NewServeMux()\n")
	for _, r := range routes {
		buf.WriteString("\tmux.HandleFunc(")
		buf.WriteString(strconv.Quote(Pattern(r.Method, r.Path)))
		buf.WriteString(", ")
		for _, g := range r.Guards {
			buf.WriteString(g.Symbol())
			buf.WriteString("(")
		}
		buf.WriteString("respond(")
		buf.WriteString(strconv.Quote(r.Message))
		buf.WriteString(")")
		buf.WriteString(strings.Repeat(")", len(r.Guards)))
		buf.WriteString(")\n")
	}
	buf.WriteString("\treturn cors(parseJSON(mux))\n}\n\n")
}

// Pattern converts a route method and path into a ServeMux pattern.
//
// ":name" segments become "{name}", a trailing "*" segment becomes a
// "{name...}" wildcard, and a path ending in "/" is anchored with "{$}" so
// it does not match a whole subtree. The "all" method registers the path
// without a method.
func Pattern(method, path string) string {
	segs := strings.Split(path, "/")

	used := make(map[string]bool)
	for _, seg := range segs {
		if name, ok := compiler.ParamName(seg); ok {
			used[name] = true
		}
	}
	wildcard := func(base string) string {
		name := base
		for i := 2; used[name]; i++ {
			name = base + strconv.Itoa(i)
		}
		used[name] = true
		return name
	}

	for i, seg := range segs {
		last := i == len(segs)-1
		switch {
		case seg == "*" && last:
			segs[i] = "{" + wildcard("rest") + "...}"
		case seg == "*":
			segs[i] = "{" + wildcard("wild") + "}"
		default:
			if name, ok := compiler.ParamName(seg); ok {
				segs[i] = "{" + name + "}"
			}
		}
	}
	p := strings.Join(segs, "/")
	if strings.HasSuffix(p, "/") {
		p += "{$}"
	}

	if method == "all" {
		return p
	}
	return strings.ToUpper(method) + " " + p
}

const importBlock = `import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
)

`

const setupFuncs = `type bodyKey struct{}

// Body returns the decoded JSON request body, or nil when the request had none.
func Body(r *http.Request) any {
	return r.Context().Value(bodyKey{})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"message": message}); err != nil {
		log.Printf("write response: %v", err)
	}
}

func respond(message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusOK, message)
	}
}

// cors allows every origin and answers preflight requests.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.Header().Set("Access-Control-Allow-Methods", "GET,HEAD,PUT,PATCH,POST,DELETE")
			if h := r.Header.Get("Access-Control-Request-Headers"); h != "" {
				w.Header().Set("Access-Control-Allow-Headers", h)
				w.Header().Add("Vary", "Access-Control-Request-Headers")
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// parseJSON decodes JSON request bodies into the request context.
func parseJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body == nil || !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			next.ServeHTTP(w, r)
			return
		}
		var body any
		err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body)
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeMessage(w, http.StatusRequestEntityTooLarge, "Payload Too Large")
			return
		case err != nil && !errors.Is(err, io.EOF):
			writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), bodyKey{}, body)))
	})
}

`

const authFunc = `func authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r)
	}
}

`

const adminFunc = `func adminMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != adminToken {
			writeMessage(w, http.StatusForbidden, "Forbidden")
			return
		}
		next(w, r)
	}
}

`

const mainFunc = `func main() {
	log.Printf("Server running on port %d", port)
	log.Fatal(http.ListenAndServe(addr, Handler()))
}
`

const listenFunc = `// ListenAndServe serves Handler on the configured port.
func ListenAndServe() error {
	log.Printf("Server running on port %d", port)
	return http.ListenAndServe(addr, Handler())
}
`
