package decompose

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecomposeInlineContract(t *testing.T) {
	source := "pragma solidity ^0.8.0;\ncontract Foo { function bar() public {} }"

	sections := Decompose(source)
	require.Len(t, sections, 3)

	assert.Equal(t, KindPragma, sections[0].Kind)
	assert.Equal(t, 1, sections[0].LineStart)
	assert.Equal(t, 1, sections[0].LineEnd)

	assert.Equal(t, KindContract, sections[1].Kind)
	assert.Equal(t, "Foo", sections[1].Name)
	assert.Equal(t, 2, sections[1].LineStart)

	assert.Equal(t, KindFunction, sections[2].Kind)
	assert.Equal(t, "bar", sections[2].Name)
	assert.Equal(t, "public", sections[2].Visibility)
	assert.Equal(t, 2, sections[2].LineStart)
}

func TestDecomposeFullContract(t *testing.T) {
	source := strings.Join([]string{
		"pragma solidity ^0.8.19;",
		"",
		`import "@openzeppelin/contracts/access/Ownable.sol";`,
		"",
		"contract Vault is Ownable {",
		"    uint256 public totalDeposits;",
		"    uint256 private constant FEE_BPS = 30;",
		"",
		"    event Deposited(address indexed from, uint256 amount);",
		"",
		"    modifier nonZero(uint256 amount) {",
		`        require(amount > 0, "zero amount");`,
		"        _;",
		"    }",
		"",
		"    constructor() {",
		"        totalDeposits = 0;",
		"    }",
		"",
		"    function deposit() external payable nonZero(msg.value) {",
		"        totalDeposits += msg.value;",
		"        emit Deposited(msg.sender, msg.value);",
		"    }",
		"}",
	}, "\n")

	sections := Decompose(source)

	kinds := make([]Kind, 0, len(sections))
	for _, s := range sections {
		kinds = append(kinds, s.Kind)
	}
	assert.Equal(t, []Kind{
		KindPragma, KindImport, KindContract, KindStateVariable, KindConstant,
		KindComment, KindEvent, KindModifier, KindComment, KindConstructor,
		KindComment, KindFunction, KindComment,
	}, kinds)

	byKind := map[Kind]Section{}
	for _, s := range sections {
		if _, ok := byKind[s.Kind]; !ok {
			byKind[s.Kind] = s
		}
	}
	assert.Equal(t, "Vault", byKind[KindContract].Name)
	assert.Equal(t, "totalDeposits", byKind[KindStateVariable].Name)
	assert.Equal(t, "FEE_BPS", byKind[KindConstant].Name)
	assert.Equal(t, "Deposited", byKind[KindEvent].Name)
	assert.Equal(t, "nonZero", byKind[KindModifier].Name)

	fn := byKind[KindFunction]
	assert.Equal(t, "deposit", fn.Name)
	assert.Equal(t, "external", fn.Visibility)
	assert.Equal(t, "payable", fn.Mutability)
	assert.Equal(t, 20, fn.LineStart)
	assert.Equal(t, 23, fn.LineEnd)

	// 区块连续覆盖全部行，无空洞无重叠
	totalLines := len(strings.Split(source, "\n"))
	next := 1
	for _, s := range sections {
		require.Equal(t, next, s.LineStart, "section %s should start at line %d", s.Kind, next)
		require.GreaterOrEqual(t, s.LineEnd, s.LineStart)
		next = s.LineEnd + 1
	}
	assert.Equal(t, totalLines+1, next)
}

func TestDecomposeUnterminatedFunction(t *testing.T) {
	source := "function f() public {\n    uint256 x = 1;"

	sections := Decompose(source)
	require.Len(t, sections, 1)
	assert.Equal(t, KindFunction, sections[0].Kind)
	assert.True(t, sections[0].Unterminated)
	assert.Equal(t, 1, sections[0].LineStart)
	assert.Equal(t, 2, sections[0].LineEnd)
}

func TestDecomposeBodylessDeclarations(t *testing.T) {
	source := strings.Join([]string{
		"function balanceOf(address owner) external view returns (uint256);",
		"function transfer(address to, uint256 amount) external returns (bool);",
		"event Transfer(address from, address to, uint256 amount);",
		"function approve(address spender, uint256 amount) external returns (bool);",
	}, "\n")

	sections := Decompose(source)
	require.Len(t, sections, 4)

	assert.Equal(t, KindFunction, sections[0].Kind)
	assert.Equal(t, "balanceOf", sections[0].Name)
	assert.Equal(t, "external", sections[0].Visibility)
	assert.Equal(t, "view", sections[0].Mutability)
	assert.Equal(t, 1, sections[0].LineEnd)
	assert.False(t, sections[0].Unterminated)

	assert.Equal(t, "transfer", sections[1].Name)
	assert.Equal(t, KindEvent, sections[2].Kind)
	assert.Equal(t, "Transfer", sections[2].Name)
	assert.Equal(t, KindFunction, sections[3].Kind)
	assert.Equal(t, "approve", sections[3].Name)
	assert.Equal(t, 4, sections[3].LineStart)
	assert.Equal(t, 4, sections[3].LineEnd)
}

func TestDecomposeMultilineBodylessDeclaration(t *testing.T) {
	source := strings.Join([]string{
		"function quorum()",
		"    external",
		"    view",
		"    returns (uint256);",
		"event QuorumReached(uint256 votes);",
	}, "\n")

	sections := Decompose(source)
	require.Len(t, sections, 2)

	assert.Equal(t, KindFunction, sections[0].Kind)
	assert.Equal(t, "quorum", sections[0].Name)
	assert.Equal(t, 1, sections[0].LineStart)
	assert.Equal(t, 4, sections[0].LineEnd)
	assert.Equal(t, KindEvent, sections[1].Kind)
	assert.Equal(t, "QuorumReached", sections[1].Name)
}

func TestDecomposeEmptySource(t *testing.T) {
	sections := Decompose("")
	require.Len(t, sections, 1)
	assert.Equal(t, KindComment, sections[0].Kind)
	assert.Equal(t, 1, sections[0].LineStart)
	assert.Equal(t, 1, sections[0].LineEnd)
}

func TestDecomposeNestedBraces(t *testing.T) {
	source := strings.Join([]string{
		"function sweep(address[] memory targets) public {",
		"    for (uint256 i = 0; i < targets.length; i++) {",
		"        if (targets[i] != address(0)) {",
		"            total++;",
		"        }",
		"    }",
		"}",
		"uint256 total;",
	}, "\n")

	sections := Decompose(source)
	require.Len(t, sections, 2)
	assert.Equal(t, KindFunction, sections[0].Kind)
	assert.Equal(t, 1, sections[0].LineStart)
	assert.Equal(t, 7, sections[0].LineEnd)
	assert.False(t, sections[0].Unterminated)
	assert.Equal(t, KindStateVariable, sections[1].Kind)
	assert.Equal(t, "total", sections[1].Name)
}

func TestExtractPragmaVersion(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"caret constraint", "pragma solidity ^0.8.16;", "0.8.16"},
		{"range picks highest", "pragma solidity >=0.7.0 <0.9.0;", "0.9.0"},
		{"no pragma", "contract C {}", ""},
		{"no version number", "pragma solidity funky;", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractPragmaVersion(tt.source))
		})
	}
}
