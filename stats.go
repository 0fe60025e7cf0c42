package main

import (
	"fmt"
	"io"
	"time"
)

// stats.go - Compilation statistics, printed to stderr under --stat and
// never touching stdout. Grounded on the teacher's stats.go
// (CompilationStats/NewCompilationStats/Record*/Print), trimmed to the
// phases this pipeline actually has (no separate assemble/link stage,
// since this compiler only emits assembly text).

// CompilationStats tracks per-phase timing and counts for one run.
type CompilationStats struct {
	StartTime time.Time

	TokenizeTime time.Duration
	ParseTime    time.Duration
	OptimizeTime time.Duration
	CodegenTime  time.Duration
	TotalTime    time.Duration

	SourceBytes int
	TokenCount  int

	FunctionCount int
	GlobalCount   int
	StringCount   int

	AssemblyBytes int
	AssemblyLines int
}

// NewCompilationStats starts a stats tracker, capturing StartTime.
func NewCompilationStats() *CompilationStats {
	return &CompilationStats{StartTime: time.Now()}
}

func (cs *CompilationStats) RecordTokenize(d time.Duration, tokenCount, sourceBytes int) {
	cs.TokenizeTime = d
	cs.TokenCount = tokenCount
	cs.SourceBytes = sourceBytes
}

func (cs *CompilationStats) RecordParse(d time.Duration, funcCount, globalCount, stringCount int) {
	cs.ParseTime = d
	cs.FunctionCount = funcCount
	cs.GlobalCount = globalCount
	cs.StringCount = stringCount
}

func (cs *CompilationStats) RecordOptimize(d time.Duration) {
	cs.OptimizeTime = d
}

func (cs *CompilationStats) RecordCodegen(d time.Duration, assembly string) {
	cs.CodegenTime = d
	cs.AssemblyBytes = len(assembly)
	cs.AssemblyLines = countLines(assembly)
}

// Finalize records the total elapsed wall time since NewCompilationStats.
func (cs *CompilationStats) Finalize() {
	cs.TotalTime = time.Since(cs.StartTime)
}

// Print writes a human-readable report to w (always stderr in practice,
// never stdout — spec.md §6 reserves stdout for assembly).
func (cs *CompilationStats) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Compilation Statistics ===")
	fmt.Fprintf(w, "  Source:   %d bytes, %d tokens\n", cs.SourceBytes, cs.TokenCount)
	fmt.Fprintf(w, "  Symbols:  %d function(s), %d global(s), %d string literal(s)\n",
		cs.FunctionCount, cs.GlobalCount, cs.StringCount)
	fmt.Fprintf(w, "  Output:   %d bytes, %d lines\n", cs.AssemblyBytes, cs.AssemblyLines)
	fmt.Fprintf(w, "  Timing:   tokenize=%s parse=%s optimize=%s codegen=%s total=%s\n",
		cs.TokenizeTime, cs.ParseTime, cs.OptimizeTime, cs.CodegenTime, cs.TotalTime)
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := 1
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
		}
	}
	return n
}
