package metrics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeInlineContract(t *testing.T) {
	source := "pragma solidity ^0.8.0;\ncontract Foo { function bar() public {} }"

	r := Compute(source)

	assert.Equal(t, 1, r.Elements.Functions)
	assert.Equal(t, []string{"bar"}, r.Elements.FunctionNames)
	assert.Equal(t, 1, r.CyclomaticComplexity)
	assert.Equal(t, 7, r.ComplexityScore)
	assert.Equal(t, "low", r.ComplexityRating)

	// ^0.8 pragma 触发内建溢出保护探测
	assert.True(t, r.Security.SafeMath)
	assert.Equal(t, 15, r.SecurityScore)
	assert.Equal(t, 93, r.MaintainabilityScore)
	assert.InDelta(t, 54.0, r.OverallScore, 0.001)
}

func TestComputeLineMetrics(t *testing.T) {
	source := "// comment\n\nuint256 x;"

	r := Compute(source)

	assert.Equal(t, 3, r.Lines.Total)
	assert.Equal(t, 1, r.Lines.Comment)
	assert.Equal(t, 1, r.Lines.Code)
	assert.Equal(t, 1, r.Lines.Blank)
	assert.InDelta(t, 33.33, r.Lines.CommentRatio, 0.01)
}

func TestComputeExcludesPrivateFunctions(t *testing.T) {
	source := strings.Join([]string{
		"function shown() public {}",
		"function hidden() private {}",
		"function helper() internal {}",
	}, "\n")

	r := Compute(source)

	assert.Equal(t, 1, r.Elements.Functions)
	assert.Equal(t, []string{"shown"}, r.Elements.FunctionNames)
}

func TestComputeIgnoresCommentedDeclarations(t *testing.T) {
	source := strings.Join([]string{
		"// function ghost() public {}",
		"/* function phantom() public {} */",
		" * function starred() public {}",
		"function real() public {}",
	}, "\n")

	r := Compute(source)

	assert.Equal(t, 1, r.Elements.Functions)
	assert.Equal(t, []string{"real"}, r.Elements.FunctionNames)
}

func TestComputeSecurityFeatures(t *testing.T) {
	source := "ReentrancyGuard onlyOwner Pausable SafeMath emergencyStop dailyLimit"

	r := Compute(source)

	require.Equal(t, 6, r.Security.Count())
	assert.Equal(t, 90, r.SecurityScore)
}

func TestComputeMaintainabilityClamped(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 60; i++ {
		b.WriteString("// note\n")
	}

	r := Compute(b.String())

	assert.Equal(t, 100, r.MaintainabilityScore)
}

func TestComputeElementCollection(t *testing.T) {
	source := strings.Join([]string{
		`import "./IERC20.sol";`,
		"uint256 public supply;",
		"mapping(address => uint256) balances;",
		"event Transfer(address from, address to);",
		"modifier onlyAdmin() {",
		"function mint(address to) public {}",
	}, "\n")

	r := Compute(source)

	assert.Equal(t, 1, r.Elements.Imports)
	assert.Equal(t, 1, r.Elements.Functions)
	assert.Equal(t, []string{"onlyAdmin"}, r.Elements.ModifierNames)
	assert.Equal(t, []string{"Transfer"}, r.Elements.EventNames)
	assert.Equal(t, 1, r.Elements.StateVariables)
}
