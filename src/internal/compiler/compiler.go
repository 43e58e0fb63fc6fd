// Package compiler 定义外部编译与部署服务的接口和结果类型。
// 核心只消费这些接口：字节码、ABI 和诊断字符串都由外部协作方提供，
// 本包不会调用任何真实编译器或网络。
package compiler

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// EIP-170 合约大小上限
const SizeLimitBytes = 24576

// CompileResult 编译服务返回的完整产物
type CompileResult struct {
	Bytecode        string          `json:"bytecode"`
	RuntimeBytecode string          `json:"runtime_bytecode"`
	ABI             json.RawMessage `json:"abi"`
	SizeBytes       int             `json:"contract_size_bytes"`
}

// SizeKB 返回合约大小（KB）
func (r *CompileResult) SizeKB() float64 {
	return float64(r.SizeBytes) / 1024
}

// OverSizeLimit 是否超过 EIP-170 部署上限
func (r *CompileResult) OverSizeLimit() bool {
	return r.SizeBytes > SizeLimitBytes
}

// ParsedABI 用 go-ethereum 解析 ABI，供签名枚举等强类型用途
func (r *CompileResult) ParsedABI() (abi.ABI, error) {
	parsed, err := abi.JSON(strings.NewReader(string(r.ABI)))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parse ABI: %w", err)
	}
	return parsed, nil
}

// FunctionSignatures 返回 name(type1,type2) 形式的函数签名列表
func (r *CompileResult) FunctionSignatures() ([]string, error) {
	parsed, err := r.ParsedABI()
	if err != nil {
		return nil, err
	}
	sigs := make([]string, 0, len(parsed.Methods))
	for _, m := range parsed.Methods {
		sigs = append(sigs, m.Sig)
	}
	return sigs, nil
}

// EventSignatures 返回事件签名列表
func (r *CompileResult) EventSignatures() ([]string, error) {
	parsed, err := r.ParsedABI()
	if err != nil {
		return nil, err
	}
	sigs := make([]string, 0, len(parsed.Events))
	for _, e := range parsed.Events {
		sigs = append(sigs, e.Sig)
	}
	return sigs, nil
}

// CompileError 编译失败时携带原始诊断字符串，直接喂给 diagnostics 分类器
type CompileError struct {
	Diagnostics []string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compilation failed with %d diagnostics", len(e.Diagnostics))
}

// Service 编译服务协作方
type Service interface {
	Compile(ctx context.Context, source, contractName string) (*CompileResult, error)
}

// DeployResult 部署服务返回的信息
type DeployResult struct {
	Network         string `json:"network"`
	ContractAddress string `json:"contract_address"`
	TxHash          string `json:"transaction_hash"`
	BlockNumber     uint64 `json:"block_number"`
	GasUsed         uint64 `json:"gas_used"`
}

// Deployer 部署/网络服务协作方
type Deployer interface {
	Deploy(ctx context.Context, abiJSON json.RawMessage, bytecode, network string) (*DeployResult, error)
}
