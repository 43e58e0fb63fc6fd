package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadLinesPlainFile(t *testing.T) {
	path := writeTemp(t, "targets.txt", `
# 注释行
contracts/Token.sol
contracts/Vault.sol, extra column
// another comment

contracts/Token.sol
`)

	lines, err := ReadLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"contracts/Token.sol", "contracts/Vault.sol"}, lines)
}

func TestReadLinesYAMLList(t *testing.T) {
	path := writeTemp(t, "targets.yaml", "- a.sol\n- b.sol\n- a.sol\n")
	lines, err := ReadLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.sol", "b.sol"}, lines)
}

func TestReadLinesYAMLWrapper(t *testing.T) {
	path := writeTemp(t, "targets.yml", "targets:\n  - x.sol\n  - y.sol\n")
	lines, err := ReadLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"x.sol", "y.sol"}, lines)

	path = writeTemp(t, "addrs.yaml", "addresses:\n  - \"0xabc\"\n")
	lines, err = ReadLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"0xabc"}, lines)
}

func TestReadLinesMissingFile(t *testing.T) {
	_, err := ReadLines("/nonexistent/targets.txt")
	assert.Error(t, err)
}
