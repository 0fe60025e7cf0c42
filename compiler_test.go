package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileSource_EndToEndArithmetic(t *testing.T) {
	var out, dump strings.Builder
	c := NewCompiler(&CompilerOptions{})
	err := c.CompileSource(`int main() { return 1 + 2 * 3; }`, &out, &dump)
	require.NoError(t, err)

	assembly := out.String()
	assert.Contains(t, assembly, ".intel_syntax noprefix")
	assert.Contains(t, assembly, "main:")
	assert.NotNil(t, c.Stats)
	assert.Greater(t, c.Stats.TokenCount, 0)
}

func TestCompileSource_TokenDumpSkipsCodegen(t *testing.T) {
	var out, dump strings.Builder
	c := NewCompiler(&CompilerOptions{TokenDump: true})
	err := c.CompileSource(`int main() { return 0; }`, &out, &dump)
	require.NoError(t, err)

	assert.Empty(t, out.String(), "no assembly should be written in token-dump mode")
	assert.Contains(t, dump.String(), "=== Token Stream ===")
	assert.Contains(t, dump.String(), "'return'")
}

func TestCompileSource_NoPeepholeLeavesRawOutput(t *testing.T) {
	var withPeephole, withoutPeephole, dump strings.Builder

	src := `int main() { int a; a = 1; return a; }`

	require.NoError(t, NewCompiler(&CompilerOptions{}).CompileSource(src, &withPeephole, &dump))
	require.NoError(t, NewCompiler(&CompilerOptions{NoPeephole: true}).CompileSource(src, &withoutPeephole, &dump))

	assert.LessOrEqual(t, len(withPeephole.String()), len(withoutPeephole.String()))
}

func TestCompileSource_LexicalErrorPropagates(t *testing.T) {
	var out, dump strings.Builder
	c := NewCompiler(&CompilerOptions{})
	err := c.CompileSource(`int main() { return 1 @ 2; }`, &out, &dump)
	require.Error(t, err)
	ce, ok := err.(*CompileError)
	require.True(t, ok)
	assert.Equal(t, CategoryLexical, ce.Category)
}

func TestCompileSource_SyntaxErrorPropagates(t *testing.T) {
	var out, dump strings.Builder
	c := NewCompiler(&CompilerOptions{})
	err := c.CompileSource(`int main() { return ; }`, &out, &dump)
	require.Error(t, err)
	_, ok := err.(*CompileError)
	require.True(t, ok)
}

func TestCompileSource_FibonacciScenario(t *testing.T) {
	var out, dump strings.Builder
	c := NewCompiler(&CompilerOptions{})
	err := c.CompileSource(`
		int fib(int n) {
			if (n < 2) return n;
			return fib(n - 1) + fib(n - 2);
		}
		int main() {
			return fib(10);
		}
	`, &out, &dump)
	require.NoError(t, err)

	assembly := out.String()
	assert.Contains(t, assembly, "call fib")
	assert.Contains(t, assembly, ".globl main")
	assert.Contains(t, assembly, ".globl fib")
}

func TestCompileSource_PointerAndArrayScenario(t *testing.T) {
	var out, dump strings.Builder
	c := NewCompiler(&CompilerOptions{})
	err := c.CompileSource(`
		int main() {
			int a[3];
			a[0] = 1;
			a[1] = 2;
			a[2] = 3;
			int *p;
			p = a;
			return *(p + 1);
		}
	`, &out, &dump)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "imul")
}
