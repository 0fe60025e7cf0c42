package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// cli.go - The Cobra-based command-line driver. Grounded on
// ajroetker-goat/main.go's `command` var (cobra.Command with
// Args: cobra.ExactArgs(1) and a Run closure that exits non-zero on
// error), re-targeted to this compiler's single positional argument
// being literal source text rather than a file path (spec.md §1/§6).

const version = "0.1.0"

var options = &CompilerOptions{}

var rootCommand = &cobra.Command{
	Use:   "lotusc <source>",
	Short: "Compile a small C-like source string to x86-64 assembly",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if options.ShowVersionAndExit {
			fmt.Println(version)
			return
		}

		compiler := NewCompiler(options)
		if err := compiler.CompileSource(args[0], os.Stdout, os.Stderr); err != nil {
			reportError(args[0], err)
			os.Exit(1)
		}

		if options.ShowStat {
			compiler.Stats.Print(os.Stderr)
		}
	},
}

func init() {
	flags := rootCommand.Flags()
	flags.BoolVarP(&options.Verbose, "verbose", "v", false, "log phase timing to stderr")
	flags.BoolVar(&options.ShowStat, "stat", false, "print a compilation statistics report to stderr")
	flags.BoolVar(&options.TokenDump, "tokens", false, "dump the token stream to stderr and exit")
	flags.BoolVar(&options.NoPeephole, "no-peephole", false, "disable the assembly-level peephole pass")
	flags.BoolVar(&options.ShowVersionAndExit, "version", false, "print the compiler version and exit")
}

// reportError renders a *CompileError in the caret-under-source style,
// or falls back to a plain one-line message for any other error type
// (spec.md §7's argument-error category, and internal plumbing errors
// that never carry source positions).
func reportError(src string, err error) {
	if ce, ok := err.(*CompileError); ok {
		Render(os.Stderr, src, ce)
		return
	}
	Render(os.Stderr, "", &CompileError{Category: CategoryArgument, Message: err.Error()})
}
