package cleaner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePlainSourcePassthrough(t *testing.T) {
	source := "pragma solidity ^0.8.0;\ncontract Foo {}"
	out, err := Normalize(source)
	require.NoError(t, err)
	assert.Equal(t, source, out)
}

func TestIsJSONSource(t *testing.T) {
	assert.True(t, IsJSONSource(`{"sources":{"A.sol":{"content":"contract A {}"}}}`))
	assert.True(t, IsJSONSource(`{{"language":"Solidity","sources":{"A.sol":{"content":"x"}}}}`))
	assert.False(t, IsJSONSource("contract Foo {}"))
	assert.False(t, IsJSONSource(`{"language":"Solidity"}`))
}

func TestNormalizeStandardInputJSON(t *testing.T) {
	source := `{
		"language": "Solidity",
		"sources": {
			"contracts/Token.sol": {"content": "import \"@openzeppelin/contracts/token/ERC20/ERC20.sol\";\npragma solidity ^0.8.2;\ncontract Token is ERC20 {}"},
			"@openzeppelin/contracts/token/ERC20/ERC20.sol": {"content": "pragma solidity ^0.8.0;\ncontract ERC20 {}"}
		}
	}`

	out, err := Normalize(source)
	require.NoError(t, err)

	// 库文件在前，主合约在后
	libIdx := strings.Index(out, "// File: @openzeppelin/contracts/token/ERC20/ERC20.sol")
	mainIdx := strings.Index(out, "// File: contracts/Token.sol")
	require.GreaterOrEqual(t, libIdx, 0)
	require.Greater(t, mainIdx, libIdx)

	// import 被移除，pragma 只保留最高版本
	assert.NotContains(t, out, "import ")
	assert.Equal(t, 1, strings.Count(out, "pragma solidity"))
	assert.Contains(t, out, "pragma solidity ^0.8.2;")
}

func TestNormalizeDoubleBraceWrapper(t *testing.T) {
	source := `{{"language":"Solidity","sources":{"A.sol":{"content":"contract A {}"}}}}`
	out, err := Normalize(source)
	require.NoError(t, err)
	assert.Contains(t, out, "// File: A.sol")
	assert.Contains(t, out, "contract A {}")
}

func TestNormalizeBareSourcesMap(t *testing.T) {
	source := `{"A.sol":{"content":"contract A {}"},"B.sol":{"content":"contract B {}"}}`
	out, err := Normalize(source)
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "// File: A.sol"), strings.Index(out, "// File: B.sol"))
}

func TestNormalizeInvalidJSON(t *testing.T) {
	_, err := Normalize(`{"sources": "content" broken`)
	assert.Error(t, err)
}

func TestCleanupPragmasAfterSPDX(t *testing.T) {
	source := strings.Join([]string{
		"// SPDX-License-Identifier: MIT",
		"pragma solidity ^0.7.6;",
		"contract A {}",
		"pragma solidity ^0.8.4;",
		"contract B {}",
	}, "\n")

	out := cleanupPragmas(source)

	lines := strings.Split(out, "\n")
	assert.Contains(t, lines[0], "SPDX-License-Identifier")
	assert.Equal(t, "pragma solidity ^0.8.4;", lines[1])
	assert.Equal(t, 1, strings.Count(out, "pragma solidity"))
}
