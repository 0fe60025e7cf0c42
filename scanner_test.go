package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize_PunctuationAndKeywords(t *testing.T) {
	tokens, err := Tokenize("int main() { return 0; }")
	require.NoError(t, err)

	kinds := make([]TokenKind, 0, len(tokens))
	for _, tok := range tokens {
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal(t, []TokenKind{
		TokTypeInt, TokIdent, TokReserved, TokReserved, TokReserved,
		TokReturn, TokNum, TokReserved, TokReserved, TokEOF,
	}, kinds)
}

func TestTokenize_Numbers(t *testing.T) {
	tokens, err := Tokenize("123 0 9999")
	require.NoError(t, err)
	require.Len(t, tokens, 4) // 3 numbers + EOF
	assert.Equal(t, int32(123), tokens[0].Value)
	assert.Equal(t, int32(0), tokens[1].Value)
	assert.Equal(t, int32(9999), tokens[2].Value)
}

func TestTokenize_StringLiteral(t *testing.T) {
	tokens, err := Tokenize(`"hello, world"`)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(tokens), 1)
	assert.Equal(t, TokStrlit, tokens[0].Kind)
	assert.Equal(t, "hello, world", tokens[0].Text)
}

func TestTokenize_UnterminatedString(t *testing.T) {
	_, err := Tokenize(`"abc`)
	require.Error(t, err)
	ce, ok := err.(*CompileError)
	require.True(t, ok)
	assert.Equal(t, CategoryLexical, ce.Category)
}

func TestTokenize_RelationalOperators(t *testing.T) {
	tokens, err := Tokenize("== != <= >= < >")
	require.NoError(t, err)
	texts := make([]string, 0, 6)
	for _, tok := range tokens {
		if tok.Kind == TokEOF {
			break
		}
		texts = append(texts, tok.Text)
	}
	assert.Equal(t, []string{"==", "!=", "<=", ">=", "<", ">"}, texts)
}

func TestTokenize_CommentsAreSkipped(t *testing.T) {
	tokens, err := Tokenize("1 // a comment\n/* block */ 2")
	require.NoError(t, err)
	require.Len(t, tokens, 3) // 1, 2, EOF
	assert.Equal(t, int32(1), tokens[0].Value)
	assert.Equal(t, int32(2), tokens[1].Value)
}

func TestTokenize_UnrecognisedCharacter(t *testing.T) {
	_, err := Tokenize("int x = 1 @ 2;")
	require.Error(t, err)
	ce, ok := err.(*CompileError)
	require.True(t, ok)
	assert.Equal(t, CategoryLexical, ce.Category)
}

func TestTokenize_KeywordsVsIdentifiers(t *testing.T) {
	tokens, err := Tokenize("for while if else sizeof forward")
	require.NoError(t, err)
	assert.Equal(t, TokFor, tokens[0].Kind)
	assert.Equal(t, TokWhile, tokens[1].Kind)
	assert.Equal(t, TokIf, tokens[2].Kind)
	assert.Equal(t, TokElse, tokens[3].Kind)
	assert.Equal(t, TokSizeof, tokens[4].Kind)
	assert.Equal(t, TokIdent, tokens[5].Kind) // "forward" is not "for"
}
