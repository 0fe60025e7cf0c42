package main

import (
	"fmt"
	"io"
	"log"
	"strings"
	"time"
)

// compiler.go - Pipeline orchestration: source text in, assembly text
// out. Grounded on the teacher's compiler.go Compiler/CompileFile,
// trimmed to this spec's single-shot text→text pipeline (no file I/O,
// no assemble/link stage — spec.md §1 explicitly stops at emitting
// assembly).

// Compiler holds the run's configuration and accumulated statistics.
type Compiler struct {
	Options *CompilerOptions
	Stats   *CompilationStats
}

// NewCompiler creates a Compiler with the given options.
func NewCompiler(opts *CompilerOptions) *Compiler {
	return &Compiler{Options: opts}
}

// CompileSource runs the full pipeline over src and writes the resulting
// assembly to out. If Options.TokenDump is set, it writes the token
// stream to dumpOut instead and returns without parsing or generating
// code, matching SPEC_FULL.md §6.1's "--tokens" contract.
func (c *Compiler) CompileSource(src string, out io.Writer, dumpOut io.Writer) error {
	c.Stats = NewCompilationStats()

	if c.Options.Verbose {
		log.Printf("compiling %d bytes of source", len(src))
	}

	tokenStart := time.Now()
	tokens, err := Tokenize(src)
	if err != nil {
		return err
	}
	c.Stats.RecordTokenize(time.Since(tokenStart), len(tokens), len(src))

	if c.Options.TokenDump {
		dumpTokens(dumpOut, tokens)
		return nil
	}

	if c.Options.Verbose {
		log.Printf("tokenized: %d tokens in %s", len(tokens), c.Stats.TokenizeTime)
	}

	parseStart := time.Now()
	p := NewParser(tokens)
	decls, scope, err := p.Program()
	if err != nil {
		return err
	}
	c.Stats.RecordParse(time.Since(parseStart), len(scope.functions), len(scope.globals), len(scope.Strings()))

	if c.Options.Verbose {
		log.Printf("parsed: %d top-level declaration(s) in %s", len(decls), c.Stats.ParseTime)
	}

	optimizeStart := time.Now()
	decls = OptimizeAST(decls)
	c.Stats.RecordOptimize(time.Since(optimizeStart))

	codegenStart := time.Now()
	var buf strings.Builder
	Generate(&buf, decls, scope)
	assembly := buf.String()

	if !c.Options.NoPeephole {
		assembly = NewPeepholeOptimizer(assembly).Optimize()
	}
	c.Stats.RecordCodegen(time.Since(codegenStart), assembly)

	if c.Options.Verbose {
		log.Printf("generated %d bytes of assembly in %s", len(assembly), c.Stats.CodegenTime)
	}

	if _, err := io.WriteString(out, assembly); err != nil {
		return fmt.Errorf("writing assembly output: %w", err)
	}

	c.Stats.Finalize()
	return nil
}

// dumpTokens prints a one-line-per-token listing, the debugging aid
// grounded on the teacher's TokenDump mode in compiler.go.
func dumpTokens(w io.Writer, tokens []Token) {
	fmt.Fprintln(w, "=== Token Stream ===")
	for i, t := range tokens {
		if t.Kind == TokNum {
			fmt.Fprintf(w, "[%d] %s %d\n", i, TokenKindName(t.Kind), t.Value)
		} else {
			fmt.Fprintf(w, "[%d] %s %q\n", i, TokenKindName(t.Kind), t.Text)
		}
	}
}
