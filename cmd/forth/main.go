// Command forth is a stack-language REPL and file-loader: invoked bare
// it starts an interactive session; `load`/`compile` run a source file
// first.
package main

import (
	"fmt"
	"os"

	"github.com/forthjit/forthjit/cmd/forth/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
