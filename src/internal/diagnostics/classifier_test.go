package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifySingleParserError(t *testing.T) {
	msgs := []string{"ParserError: Expected ';' but got '}' --> Token.sol:12:5:"}

	s := NewClassifier().Classify(msgs)

	require.Len(t, s.Diagnostics, 1)
	d := s.Diagnostics[0]
	assert.Equal(t, KindSyntaxError, d.Kind)
	assert.Equal(t, 12, d.Line)
	assert.Equal(t, "Check syntax - missing semicolon, bracket, or parenthesis", d.SuggestedFix)
	assert.Equal(t, msgs[0], d.Raw)

	assert.Equal(t, 1, s.Total)
	assert.Equal(t, []string{"syntax_error"}, s.Kinds)
	assert.Equal(t, 1, s.SeverityCount["critical"])
	assert.Equal(t, 1, s.AutoFixable)
	assert.Equal(t, []string{"Review code syntax carefully - check for missing semicolons, brackets, and parentheses"}, s.GeneralSuggestions)
}

func TestClassifySeverityBuckets(t *testing.T) {
	msgs := []string{
		"ParserError: Unexpected token",
		"TypeError: Identifier not found or not unique",
		"DeclarationError: Identifier already declared",
		"CompilerError: Stack too deep",
		"Warning: Unused local variable. unused",
	}

	s := NewClassifier().Classify(msgs)

	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 2, s.SeverityCount["critical"])
	assert.Equal(t, 2, s.SeverityCount["high"])
	assert.Equal(t, 1, s.SeverityCount["medium"])
	// 编译器内部错误不可自动修复
	assert.Equal(t, 4, s.AutoFixable)

	assert.Equal(t, "Remove unexpected character or check syntax", s.Diagnostics[0].SuggestedFix)
	assert.Equal(t, "Check if variable/function is declared and spelled correctly", s.Diagnostics[1].SuggestedFix)
	assert.Equal(t, "Variable or function name already exists - use a different name", s.Diagnostics[2].SuggestedFix)
	assert.Equal(t, "Internal compiler error - try different solidity version", s.Diagnostics[3].SuggestedFix)
	assert.Equal(t, "Remove unused variables/imports or prefix with underscore", s.Diagnostics[4].SuggestedFix)
}

func TestClassifyGeneralSuggestionOrder(t *testing.T) {
	msgs := []string{
		"DeclarationError: Undeclared identifier. not declared",
		"ParserError: Expected primary expression",
	}

	s := NewClassifier().Classify(msgs)

	// 建议顺序固定：语法、类型、声明
	require.Len(t, s.GeneralSuggestions, 2)
	assert.Contains(t, s.GeneralSuggestions[0], "syntax")
	assert.Contains(t, s.GeneralSuggestions[1], "properly declared")
}

func TestClassifyUnknownMessage(t *testing.T) {
	s := NewClassifier().Classify([]string{"something odd happened"})

	require.Len(t, s.Diagnostics, 1)
	assert.Equal(t, KindUnknown, s.Diagnostics[0].Kind)
	assert.Equal(t, 0, s.Diagnostics[0].Line)
	assert.Equal(t, "Check the error message for details", s.Diagnostics[0].SuggestedFix)
	assert.Zero(t, s.SeverityCount["critical"]+s.SeverityCount["high"]+s.SeverityCount["medium"])
	assert.Equal(t, 1, s.AutoFixable)
	assert.Empty(t, s.GeneralSuggestions)
}

func TestClassifyKindsDeduplicated(t *testing.T) {
	s := NewClassifier().Classify([]string{
		"TypeError: Type uint256 is not compatible with bool",
		"TypeError: Member not found",
	})
	assert.Equal(t, []string{"type_error"}, s.Kinds)
	assert.Equal(t, 2, s.SeverityCount["high"])
}
