// Package preview serves a compiled Program in-process so its routes can be
// exercised without generating and running a separate server.
package preview

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/broady/routegen/compiler"
	"github.com/broady/routegen/emit"
	"github.com/broady/routegen/ir"
	"github.com/broady/routegen/middleware"
)

// ShutdownTimeout bounds how long Run waits for in-flight requests.
const ShutdownTimeout = 5 * time.Second

// Server answers requests the way the generated server for prog would.
type Server struct {
	prog    *ir.Program
	logger  zerolog.Logger
	handler http.Handler
}

// New builds the router for prog. It fails if prog is invalid or its routes
// cannot be registered together.
func New(prog *ir.Program, logger zerolog.Logger) (*Server, error) {
	if err := emit.Check(prog); err != nil {
		return nil, err
	}
	s := &Server{prog: prog, logger: logger}
	h, err := s.routes()
	if err != nil {
		return nil, err
	}
	s.handler = h
	return s, nil
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() (h http.Handler, err error) {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.AccessLog(s.logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(middleware.JSONBody(middleware.DefaultMaxBodyBytes))
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteMessage(w, http.StatusNotFound, "Not Found")
	})

	// chi reports conflicting patterns by panicking.
	var current ir.RouteDecl
	defer func() {
		if p := recover(); p != nil {
			h, err = nil, fmt.Errorf("register %s %s (node %q): %v", current.Method, current.Path, current.NodeID, p)
		}
	}()

	for _, route := range s.prog.Routes {
		current = route
		var handler http.Handler = middleware.Message(route.Message)
		for i := len(route.Guards) - 1; i >= 0; i-- {
			handler = s.guard(route.Guards[i])(handler)
		}
		pattern := Pattern(route.Path)
		if route.Method == "all" {
			r.Handle(pattern, handler)
		} else {
			r.Method(strings.ToUpper(route.Method), pattern, handler)
		}
		s.logger.Debug().
			Str("method", route.Method).
			Str("path", route.Path).
			Str("guards", route.GuardNames()).
			Msg("registered route")
	}
	return r, nil
}

func (s *Server) guard(g ir.Guard) func(http.Handler) http.Handler {
	if g == ir.GuardAdmin {
		return middleware.RequireAdmin(s.prog.AdminToken)
	}
	return middleware.RequireAuth
}

// Run listens on addr and serves until ctx is done, then shuts down
// gracefully. An empty addr uses the program's port.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = ":" + strconv.Itoa(s.prog.Port)
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info().
			Str("addr", ln.Addr().String()).
			Int("routes", len(s.prog.Routes)).
			Msg("preview server listening")
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down preview server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Pattern converts a route path into a chi pattern. ":name" segments
// become "{name}", a trailing "*" stays a catch-all, and any other "*"
// becomes a single-segment parameter.
func Pattern(path string) string {
	segs := strings.Split(path, "/")
	wild := 0
	for i, seg := range segs {
		switch {
		case seg == "*" && i == len(segs)-1:
		case seg == "*":
			wild++
			segs[i] = "{_wild" + strconv.Itoa(wild) + "}"
		default:
			if name, ok := compiler.ParamName(seg); ok {
				segs[i] = "{" + name + "}"
			}
		}
	}
	return strings.Join(segs, "/")
}
