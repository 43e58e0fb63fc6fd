package gas

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const erc20ABI = `[
	{"type":"function","name":"balanceOf","stateMutability":"view"},
	{"type":"function","name":"mint","stateMutability":"nonpayable"},
	{"type":"function","name":"transfer","stateMutability":"nonpayable"},
	{"type":"function","name":"approve","stateMutability":"nonpayable"},
	{"type":"function","name":"configure","stateMutability":"nonpayable"},
	{"type":"event","name":"Transfer"}
]`

func TestAnalyzeBaseCosts(t *testing.T) {
	est, err := Analyze(erc20ABI, "", "")
	require.NoError(t, err)
	require.Len(t, est.Functions, 5)

	byName := map[string]FunctionEstimate{}
	for _, f := range est.Functions {
		byName[f.Name] = f
	}
	assert.Equal(t, 500, byName["balanceOf"].EstimatedGas)
	assert.Equal(t, 50000, byName["mint"].EstimatedGas)
	assert.Equal(t, 21000, byName["transfer"].EstimatedGas)
	assert.Equal(t, 45000, byName["approve"].EstimatedGas)
	assert.Equal(t, 25000, byName["configure"].EstimatedGas)
}

func TestAnalyzeBands(t *testing.T) {
	assert.Equal(t, "low", Band(29999))
	assert.Equal(t, "medium", Band(30000))
	assert.Equal(t, "medium", Band(59999))
	assert.Equal(t, "high", Band(60000))
}

func TestAnalyzeBodyWeighting(t *testing.T) {
	abi := `[{"type":"function","name":"configure","stateMutability":"nonpayable"}]`
	source := strings.Join([]string{
		"function configure(uint256 v) public {",
		`    require(v > 0, "bad value");`,
		"    emit Configured(v);",
		"}",
	}, "\n")

	plain, err := Analyze(abi, "", "")
	require.NoError(t, err)
	weighted, err := Analyze(abi, "", source)
	require.NoError(t, err)

	// require +500, emit +1000
	assert.Equal(t, plain.Functions[0].EstimatedGas+1500, weighted.Functions[0].EstimatedGas)
}

func TestAnalyzeDeploymentGas(t *testing.T) {
	est, err := Analyze(`[]`, "0x6080604052", "")
	require.NoError(t, err)

	assert.Equal(t, 5*gasPerByte, est.DeploymentGas)
	assert.InDelta(t, float64(est.DeploymentGas)*assumedGasWei, est.DeploymentCostETH, 1e-12)
}

func TestAnalyzeSkipsMalformedEntries(t *testing.T) {
	abi := `[
		{"type":"function","name":"ok","stateMutability":"view"},
		"not an object",
		{"type":"function","name":""},
		{"type":"constructor"}
	]`

	est, err := Analyze(abi, "", "")
	require.NoError(t, err)
	require.Len(t, est.Functions, 1)
	assert.Equal(t, "ok", est.Functions[0].Name)
}

func TestAnalyzeInvalidABI(t *testing.T) {
	_, err := Analyze(`{"not":"an array"}`, "", "")
	assert.Error(t, err)
}

func TestAnalyzeOptimizationNotes(t *testing.T) {
	abi := `[{"type":"function","name":"mintBatch","stateMutability":"nonpayable"}]`
	source := strings.Join([]string{
		"function mintBatch(address to) public {",
		`    require(to != address(0), "zero");`,
		`    (bool ok, ) = to.call("");`,
		"    emit Minted(to);",
		"}",
	}, "\n")

	est, err := Analyze(abi, "", source)
	require.NoError(t, err)

	// 50000 基础 + 500 require + 10000 call + 1000 emit = 61500，超过高耗标线
	require.Len(t, est.Functions, 1)
	assert.Equal(t, 61500, est.Functions[0].EstimatedGas)
	assert.Equal(t, "high", est.Functions[0].Category)
	require.Len(t, est.Optimizations, 1)
	assert.Contains(t, est.Optimizations[0], "mintBatch")
	assert.Equal(t, 85, est.EfficiencyScore)
}
