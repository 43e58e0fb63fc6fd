package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatIndentAndSpacing(t *testing.T) {
	source := strings.Join([]string{
		"pragma solidity ^0.8.0;",
		"contract Foo {",
		"uint256 x=1;",
		"function bar(uint a,uint b) public {",
		"x=a;",
		"}",
		"}",
	}, "\n")

	r := Format(source)

	want := strings.Join([]string{
		"pragma solidity ^0.8.0;",
		"contract Foo {",
		"",
		"    uint256 x = 1;",
		"    function bar(uint a, uint b) public {",
		"        x = a;",
		"    }",
		"}",
	}, "\n")
	assert.Equal(t, want, r.Code)
	assert.Equal(t, 7, r.OriginalLines)
	assert.Equal(t, 8, r.FormattedLines)
	assert.Contains(t, r.Applied, "Consistent indentation")
}

func TestFormatCollapsesBlankRuns(t *testing.T) {
	r := Format("uint256 a;\n\n\n\nuint256 b;")
	assert.Equal(t, "uint256 a;\n\nuint256 b;", r.Code)
}

func TestFormatImportSpacing(t *testing.T) {
	source := strings.Join([]string{
		"import \"./A.sol\";",
		"import \"./B.sol\";",
		"contract C {",
		"}",
	}, "\n")

	r := Format(source)

	lines := strings.Split(r.Code, "\n")
	assert.Equal(t, "import \"./B.sol\";", lines[1])
	assert.Equal(t, "", lines[2])
	assert.Equal(t, "contract C {", lines[3])
	assert.Equal(t, "", lines[4])
}

func TestFormatPreservesComments(t *testing.T) {
	source := strings.Join([]string{
		"contract C {",
		"/*",
		" * notes a=b",
		" */",
		"// trailing x=y",
		"}",
	}, "\n")

	r := Format(source)

	assert.Contains(t, r.Code, "* notes a=b")
	assert.Contains(t, r.Code, "// trailing x=y")
}
