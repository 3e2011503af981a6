// Package repl implements the line-oriented read-eval-print loop: read
// one line, parse it, install any definitions, execute its top-level
// ops, and report " ok" or "error: <kind>".
package repl

import (
	"bufio"
	"fmt"
	"io"

	"github.com/forthjit/forthjit/pkg/interp"
	"github.com/forthjit/forthjit/pkg/parser"
)

// REPL drives one interpreter against a line-buffered input/output pair.
type REPL struct {
	Interp *interp.Interpreter
	In     io.Reader
	Out    io.Writer
}

// New builds a REPL over in wrapping an already-constructed interpreter
// — the caller may have pre-loaded definitions or a JIT batch onto it
// before handing it here (see cmd/forth's `load`/`compile` verbs).
func New(in *interp.Interpreter, r io.Reader, w io.Writer) *REPL {
	return &REPL{Interp: in, In: r, Out: w}
}

// Run reads lines until EOF, evaluating each one. It returns nil on a
// clean EOF; a read error other than EOF is returned to the caller.
func (r *REPL) Run() error {
	scanner := bufio.NewScanner(r.In)
	for scanner.Scan() {
		r.evalLine(scanner.Text())
	}
	return scanner.Err()
}

func (r *REPL) evalLine(line string) {
	prog, err := parser.Parse(line)
	if err != nil {
		fmt.Fprintf(r.Out, "error: %s\n", err)
		return
	}

	exec, defs := prog.Ops()
	for name, body := range defs {
		r.Interp.Dictionary.Define(name, body)
	}

	if err := r.Interp.Exec(exec); err != nil {
		fmt.Fprintf(r.Out, "error: %s\n", err)
		return
	}
	fmt.Fprint(r.Out, " ok\n")
}
