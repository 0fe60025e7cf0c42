package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SimpleFunctionOffsets(t *testing.T) {
	decls, _, err := Parse(`
		int main() {
			int a;
			int b;
			return a + b;
		}
	`)
	require.NoError(t, err)
	require.Len(t, decls, 1)

	fn, ok := decls[0].(*FuncDef)
	require.True(t, ok)
	require.Len(t, fn.Body.Stmts, 3)

	aDecl, ok := fn.Body.Stmts[0].(*LocalRef)
	require.True(t, ok)
	assert.Equal(t, 8, aDecl.Binding.Offset, "first local must start at offset 8, not 0")

	bDecl, ok := fn.Body.Stmts[1].(*LocalRef)
	require.True(t, ok)
	assert.Equal(t, 16, bDecl.Binding.Offset)

	assert.Equal(t, 16, fn.FrameSize)
}

func TestParse_UnaryMinusDesugarsToSub(t *testing.T) {
	decls, _, err := Parse(`int main() { return -5; }`)
	require.NoError(t, err)
	fn := decls[0].(*FuncDef)
	ret := fn.Body.Stmts[0].(*Return)

	bin, ok := ret.Value.(*BinOp)
	require.True(t, ok, "unary minus must desugar to a BinOp")
	assert.Equal(t, OpSub, bin.Op)

	lhs, ok := bin.Lhs.(*Num)
	require.True(t, ok)
	assert.Equal(t, int32(0), lhs.Value)

	rhs, ok := bin.Rhs.(*Num)
	require.True(t, ok)
	assert.Equal(t, int32(5), rhs.Value)
}

func TestParse_SizeofReplacedAtParseTime(t *testing.T) {
	decls, _, err := Parse(`int main() { return sizeof(1) + sizeof(*(&1)); }`)
	require.NoError(t, err)
	fn := decls[0].(*FuncDef)
	ret := fn.Body.Stmts[0].(*Return)

	bin := ret.Value.(*BinOp)
	lhs, ok := bin.Lhs.(*Num)
	require.True(t, ok, "sizeof must lower to a Num literal")
	assert.Equal(t, int32(4), lhs.Value, "sizeof(int) is 4")
}

func TestParse_ArrayIndexDesugarsToDeref(t *testing.T) {
	decls, _, err := Parse(`
		int main() {
			int a[3];
			return a[1];
		}
	`)
	require.NoError(t, err)
	fn := decls[0].(*FuncDef)
	ret := fn.Body.Stmts[1].(*Return)

	deref, ok := ret.Value.(*Deref)
	require.True(t, ok, "a[1] must desugar to *(a + 1)")

	sum, ok := deref.Lhs.(*BinOp)
	require.True(t, ok)
	assert.Equal(t, OpAdd, sum.Op)
}

func TestParse_PointerArithmeticResultType(t *testing.T) {
	decls, _, err := Parse(`
		int main() {
			int *p;
			return p + 1;
		}
	`)
	require.NoError(t, err)
	fn := decls[0].(*FuncDef)
	ret := fn.Body.Stmts[1].(*Return)
	sum := ret.Value.(*BinOp)
	assert.Equal(t, KindPtr, sum.ResultType().Kind)
}

func TestParse_DuplicateFunctionDefinitionIsAnError(t *testing.T) {
	_, _, err := Parse(`
		int f() { return 0; }
		int f() { return 1; }
	`)
	require.Error(t, err)
	ce, ok := err.(*CompileError)
	require.True(t, ok)
	assert.Equal(t, CategorySyntax, ce.Category)
}

func TestParse_UndeclaredVariableIsAnError(t *testing.T) {
	_, _, err := Parse(`int main() { return x; }`)
	require.Error(t, err)
	ce, ok := err.(*CompileError)
	require.True(t, ok)
	assert.Equal(t, CategorySyntax, ce.Category)
}

func TestParse_ForLoopDefaultsInitCondInc(t *testing.T) {
	decls, _, err := Parse(`int main() { for (;;) return 0; }`)
	require.NoError(t, err)
	fn := decls[0].(*FuncDef)
	forStmt := fn.Body.Stmts[0].(*For)

	initNum := forStmt.Init.(*Num)
	assert.Equal(t, int32(0), initNum.Value)
	condNum := forStmt.Cond.(*Num)
	assert.Equal(t, int32(1), condNum.Value)
	incNum := forStmt.Inc.(*Num)
	assert.Equal(t, int32(0), incNum.Value)
}

func TestParse_ForwardCallReferenceIsNotARedefinition(t *testing.T) {
	_, _, err := Parse(`
		int main() { return f(1); }
		int f(int a) { return a; }
	`)
	require.NoError(t, err, "calling a function before its own textual definition must not error")
}

func TestParse_TooManyCallArgumentsIsAnError(t *testing.T) {
	_, _, err := Parse(`
		int f(int a, int b, int c, int d, int e, int g, int h) { return 0; }
		int main() { return f(1, 2, 3, 4, 5, 6, 7); }
	`)
	require.Error(t, err)
}

func TestParse_GlobalArrayDeclaration(t *testing.T) {
	decls, scope, err := Parse(`int buf[4];`)
	require.NoError(t, err)
	require.Len(t, decls, 1)

	g, ok := decls[0].(*GlobalDef)
	require.True(t, ok)
	assert.Equal(t, KindArr, g.Binding.Type.Kind)
	assert.Equal(t, 4, g.Binding.Type.Len)
	assert.Equal(t, 16, Size(g.Binding.Type))

	_, exists := scope.LookupGlobal("buf")
	assert.True(t, exists)
}
