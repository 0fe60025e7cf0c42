package main

// flags.go - CompilerOptions: the configuration struct populated by
// Cobra flags before the pipeline runs. Grounded on the teacher's
// flags.go CompilerOptions, trimmed to the flags SPEC_FULL.md §6.1 names
// (no -o/output-file flag: this driver always writes assembly to
// stdout, per spec.md §6).
type CompilerOptions struct {
	Verbose            bool // -v/--verbose: log phase timing to stderr
	ShowStat           bool // --stat: print a CompilationStats report to stderr
	TokenDump          bool // --tokens: dump the token stream to stderr and exit 0
	NoPeephole         bool // --no-peephole: skip the assembly-level peephole pass
	ShowVersionAndExit bool // --version: print the compiler version and exit 0
}
