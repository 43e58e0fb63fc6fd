package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VectorBits/Polaris/src/internal/compiler"
	"github.com/VectorBits/Polaris/src/internal/decompose"
	"github.com/VectorBits/Polaris/src/internal/diagnostics"
	"github.com/VectorBits/Polaris/src/internal/gas"
	"github.com/VectorBits/Polaris/src/internal/intent"
)

const sampleSource = "pragma solidity ^0.8.0;\ncontract Counter {\n    uint256 public count;\n    function increment() public {\n        count += 1;\n    }\n}"

type stubCompiler struct {
	result *compiler.CompileResult
	err    error
}

func (s *stubCompiler) Compile(ctx context.Context, source, contractName string) (*compiler.CompileResult, error) {
	return s.result, s.err
}

func TestFullWithoutCompiler(t *testing.T) {
	r := New().Full(context.Background(), sampleSource, "Counter")
	require.True(t, r.OK())

	report, ok := r.Data.(*FullReport)
	require.True(t, ok)
	assert.Equal(t, "Counter", report.ContractName)
	assert.Equal(t, "0.8.0", report.PragmaVersion)
	assert.NotEmpty(t, report.Sections)
	require.NotNil(t, report.Metrics)
	require.NotNil(t, report.Review)
	assert.Nil(t, report.Gas)
	assert.Nil(t, report.Diagnostics)
	assert.False(t, report.GeneratedAt.IsZero())
}

func TestFullWithCompileDiagnostics(t *testing.T) {
	svc := &stubCompiler{err: &compiler.CompileError{
		Diagnostics: []string{"ParserError: Expected ';' --> C.sol:3:1:"},
	}}

	r := New(WithCompiler(svc)).Full(context.Background(), sampleSource, "Counter")
	require.True(t, r.OK())

	report := r.Data.(*FullReport)
	require.NotNil(t, report.Diagnostics)
	assert.Equal(t, 1, report.Diagnostics.Total)
	assert.Equal(t, diagnostics.KindSyntaxError, report.Diagnostics.Diagnostics[0].Kind)
	assert.Nil(t, report.Gas)
}

func TestFullWithWorkingCompiler(t *testing.T) {
	svc := &stubCompiler{result: &compiler.CompileResult{
		ABI:      json.RawMessage(`[{"type":"function","name":"increment","stateMutability":"nonpayable"}]`),
		Bytecode: "0x6080604052",
	}}

	r := New(WithCompiler(svc)).Full(context.Background(), sampleSource, "Counter")
	require.True(t, r.OK())

	report := r.Data.(*FullReport)
	require.NotNil(t, report.Gas)
	assert.Len(t, report.Gas.Functions, 1)
	assert.Nil(t, report.Diagnostics)
}

func TestFullCompilerUnavailable(t *testing.T) {
	svc := &stubCompiler{err: errors.New("solc binary not found")}

	r := New(WithCompiler(svc)).Full(context.Background(), sampleSource, "Counter")
	require.True(t, r.OK())

	// 编译服务不可用时降级：其余结果照常产出
	report := r.Data.(*FullReport)
	assert.Nil(t, report.Gas)
	assert.Nil(t, report.Diagnostics)
	assert.NotNil(t, report.Metrics)
}

func TestFullKeepsCallerContractName(t *testing.T) {
	a := New()

	const callers = 8
	names := make([]string, callers)
	for i := range names {
		names[i] = fmt.Sprintf("Contract%d", i)
	}

	results := make([]Result, callers)
	var wg sync.WaitGroup
	for i := range names {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = a.Full(context.Background(), sampleSource, names[i])
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		require.True(t, r.OK())
		report := r.Data.(*FullReport)
		assert.Equal(t, names[i], report.ContractName)
	}
}

func TestGasFailureEnvelope(t *testing.T) {
	r := New().Gas("not valid json", "", "")
	assert.False(t, r.OK())
	assert.Equal(t, ErrValidationFailure, r.ErrorType)
	assert.Contains(t, r.ErrorMessage, "Gas analysis failed")
	assert.Nil(t, r.Data)
}

func TestOperationEnvelopes(t *testing.T) {
	a := New()

	dec := a.Decompose(sampleSource)
	require.True(t, dec.OK())
	_, ok := dec.Data.([]decompose.Section)
	assert.True(t, ok)

	val := a.Validate("erc20 token with supply")
	require.True(t, val.OK())
	_, ok = val.Data.(*intent.Result)
	assert.True(t, ok)

	diag := a.Diagnose([]string{"Warning: unused variable"})
	require.True(t, diag.OK())
	summary := diag.Data.(*diagnostics.Summary)
	assert.Equal(t, 1, summary.Total)

	g := a.Gas(`[{"type":"function","name":"peek","stateMutability":"view"}]`, "", "")
	require.True(t, g.OK())
	est := g.Data.(*gas.Estimate)
	assert.Equal(t, 500, est.Functions[0].EstimatedGas)
}
