package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSize(t *testing.T) {
	cases := []struct {
		name string
		typ  *Type
		want int
	}{
		{"char", TypeChar, 1},
		{"int", TypeInt, 4},
		{"ptr", PtrTo(TypeInt), 8},
		{"ptr-to-ptr", PtrTo(PtrTo(TypeChar)), 8},
		{"array of 3 int", ArrOf(TypeInt, 3), 12},
		{"array of 4 ptr", ArrOf(PtrTo(TypeInt), 4), 32},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Size(tc.typ))
		})
	}
}

func TestEqual_StructuralNotPointerIdentity(t *testing.T) {
	a := PtrTo(TypeInt)
	b := PtrTo(TypeInt)
	assert.True(t, a != b, "test requires two distinct pointer values")
	assert.True(t, Equal(a, b))

	assert.False(t, Equal(PtrTo(TypeInt), PtrTo(TypeChar)))
	assert.False(t, Equal(ArrOf(TypeInt, 3), ArrOf(TypeInt, 4)))
	assert.True(t, Equal(ArrOf(TypeInt, 3), ArrOf(TypeInt, 3)))
}

func TestPointee_DefaultsToIntForNonPointer(t *testing.T) {
	assert.Equal(t, TypeInt, Pointee(TypeInt))
	assert.Equal(t, TypeChar, Pointee(PtrTo(TypeChar)))
}

func TestDiagnostics_LineCol(t *testing.T) {
	src := "int main() {\n  return 0;\n}"
	line, col := lineCol(src, 15) // 'r' of "return"
	assert.Equal(t, 2, line)
	assert.Equal(t, 3, col)
}

func TestCompileError_ErrorMessageFormat(t *testing.T) {
	err := &CompileError{Category: CategorySyntax, Message: "unexpected token", Expected: "';'", Found: "'}'"}
	assert.Equal(t, "unexpected token: expected ';', got '}'", err.Error())

	plain := &CompileError{Message: "undeclared variable 'x'"}
	assert.Equal(t, "undeclared variable 'x'", plain.Error())
}
