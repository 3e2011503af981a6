package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/forthjit/forthjit/pkg/interp"
	"github.com/forthjit/forthjit/pkg/ops"
	"github.com/forthjit/forthjit/pkg/parser"
)

var loadCmd = &cobra.Command{
	Use:   "load FILE",
	Short: "Parse FILE, install its definitions and run its top-level ops, then enter the REPL",
	Args:  cobra.ExactArgs(1),
	RunE:  runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	in := interp.New(stdout)
	exec, err := installFile(in, args[0])
	if err != nil {
		return err
	}
	if err := in.Exec(exec); err != nil {
		return fmt.Errorf("running %s: %w", args[0], err)
	}
	return runREPL(in)
}

// installFile parses filename and installs every definition it contains
// onto in's dictionary, returning its top-level op sequence still
// unexecuted — callers decide when to run it relative to other setup
// (compile installs a JIT batch first; load runs it immediately).
func installFile(in *interp.Interpreter, filename string) ([]ops.Op, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	prog, err := parser.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	exec, defs := prog.Ops()
	for name, body := range defs {
		in.Dictionary.Define(name, body)
	}
	return exec, nil
}
