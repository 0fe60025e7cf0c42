package main

import (
	"fmt"
	"os"
)

// main.go - Process entry point. Grounded on ajroetker-goat/main.go's
// `func main() { if err := command.Execute(); err != nil { ...; os.Exit(1)
// } }`, with one addition: a single recovered panic for internal
// invariant violations (spec.md's "generator-time failures on malformed
// ASTs should be treated as unreachable"), so a compiler bug surfaces as
// a clean non-zero exit rather than a raw Go stack trace.
func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "internal compiler error: %v\n", r)
			os.Exit(1)
		}
	}()

	if err := rootCommand.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
