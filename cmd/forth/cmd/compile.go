package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/forthjit/forthjit/pkg/interp"
	"github.com/forthjit/forthjit/pkg/jit"
	"github.com/forthjit/forthjit/pkg/parser"
)

var compileCmd = &cobra.Command{
	Use:   "compile FILE",
	Short: "Parse FILE, JIT-compile its definitions, run its top-level ops, then enter the REPL",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	in := interp.New(stdout)
	exec, err := installFile(in, args[0])
	if err != nil {
		return err
	}

	module := jit.NewModule(stdout)
	compiled, errs := module.Batch(in.Dictionary)
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "compile: %v\n", err)
	}
	in.InstallCompiled(compiled)

	if err := in.Exec(exec); err != nil {
		return fmt.Errorf("running %s: %w", args[0], err)
	}
	return runREPL(in)
}
