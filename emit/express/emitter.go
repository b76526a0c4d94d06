// Package express emits an Express.js server for a compiled Program.
package express

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/broady/routegen/emit"
	"github.com/broady/routegen/ir"
)

// Emitter generates JavaScript for Node.js with express and cors.
type Emitter struct{}

// Name returns "express".
func (e *Emitter) Name() string { return "express" }

// Filename returns "server.js".
func (e *Emitter) Filename() string { return "server.js" }

// Emit generates the server program.
func (e *Emitter) Emit(prog *ir.Program) ([]byte, error) {
	if err := emit.Check(prog); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("// " + emit.Header + "\n")
	buf.WriteString(`const express = require("express");` + "\n")
	buf.WriteString(`const cors = require("cors");` + "\n")
	buf.WriteString("const app = express();\n\n")
	buf.WriteString(`app.use(cors({ origin: "*" }));` + "\n")
	buf.WriteString("app.use(express.json());\n")

	for _, decl := range prog.Middleware {
		buf.WriteString("\n")
		switch decl.Guard {
		case ir.GuardAuth:
			buf.WriteString(authFunc)
		case ir.GuardAdmin:
			fmt.Fprintf(&buf, adminFunc, quote(prog.AdminToken))
		default:
			return nil, fmt.Errorf("unsupported guard %v declared by node %q", decl.Guard, decl.NodeID)
		}
	}

	if len(prog.Routes) > 0 {
		buf.WriteString("\n")
	}
	for _, r := range prog.Routes {
		fmt.Fprintf(&buf, "app.%s(%s, ", r.Method, quote(r.Path))
		for _, g := range r.Guards {
			buf.WriteString(g.Symbol())
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "(req, res) => res.json({ message: %s }));\n", quote(r.Message))
	}

	fmt.Fprintf(&buf, "\napp.listen(%d, () => console.log(%s));\n",
		prog.Port, quote(fmt.Sprintf("Server running on port %d", prog.Port)))
	return buf.Bytes(), nil
}

// quote renders s as a JavaScript string literal. JSON strings are valid
// JavaScript, and the encoder escapes U+2028/U+2029 as well.
func quote(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		// json.Marshal never fails for a string.
		panic(err)
	}
	return string(b)
}

const authFunc = `const authMiddleware = (req, res, next) => {
    if (!req.headers.authorization) {
        return res.status(401).json({ message: "Unauthorized" });
    }
    next();
};
`

const adminFunc = `const adminMiddleware = (req, res, next) => {
    if (req.headers.authorization !== %s) {
        return res.status(403).json({ message: "Forbidden" });
    }
    next();
};
`
