// Command engine is a thin CLI host for the embedded SQL engine. It
// consumes only the engine package's façade and embeds no storage
// knowledge of its own, per spec §1's framing of the shell as an
// external collaborator.
package main

import (
	"fmt"
	"os"
)

func main() {
	rootCmd := newRootCommand()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
