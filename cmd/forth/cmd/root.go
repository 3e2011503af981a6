// Package cmd wires the forth binary's subcommands with cobra, following
// the same root-plus-per-verb-file layout go-dws uses for its dwscript
// binary.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/forthjit/forthjit/pkg/interp"
	"github.com/forthjit/forthjit/pkg/repl"
)

var rootCmd = &cobra.Command{
	Use:   "forth",
	Short: "A FORTH-like stack language with a JIT compiler",
	Long: `forth runs a small interactive stack-oriented language in the
FORTH tradition. With no arguments it starts a REPL over a fresh
interpreter. The load and compile subcommands run a source file first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runREPL(interp.New(stdout))
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func stdout(s string) {
	_, _ = os.Stdout.WriteString(s)
}

func runREPL(in *interp.Interpreter) error {
	return repl.New(in, os.Stdin, os.Stdout).Run()
}
