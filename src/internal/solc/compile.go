package solc

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/VectorBits/Polaris/src/internal/compiler"
	"github.com/VectorBits/Polaris/src/internal/decompose"
)

// Compiler 基于本机 solc 的编译服务实现
type Compiler struct {
	manager *SolcManager
}

func NewCompiler() *Compiler {
	return &Compiler{manager: GetManager()}
}

// combinedOutput solc --combined-json abi,bin,bin-runtime 的输出结构
type combinedOutput struct {
	Contracts map[string]struct {
		ABI        json.RawMessage `json:"abi"`
		Bin        string          `json:"bin"`
		BinRuntime string          `json:"bin-runtime"`
	} `json:"contracts"`
}

// Compile 按源码 pragma 匹配 solc 版本并编译。
// 编译器报错时返回 *compiler.CompileError，其余失败按普通错误返回
func (c *Compiler) Compile(ctx context.Context, source, contractName string) (*compiler.CompileResult, error) {
	version := decompose.ExtractPragmaVersion(source)
	if version == "" {
		return nil, fmt.Errorf("failed to extract solidity version from source")
	}

	solcPath, err := c.manager.GetSolcPath(version)
	if err != nil {
		return nil, err
	}

	tmpFile, err := os.CreateTemp("", "*.sol")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString(source); err != nil {
		tmpFile.Close()
		return nil, err
	}
	tmpFile.Close()

	cmd := exec.CommandContext(ctx, solcPath, "--combined-json", "abi,bin,bin-runtime", tmpFile.Name())
	output, err := cmd.CombinedOutput()
	if err != nil {
		if diags := extractDiagnostics(string(output)); len(diags) > 0 {
			return nil, &compiler.CompileError{Diagnostics: diags}
		}
		return nil, fmt.Errorf("solc execution failed: %v, output: %s", err, string(output))
	}

	var combined combinedOutput
	if err := json.Unmarshal(output, &combined); err != nil {
		return nil, fmt.Errorf("failed to parse solc output: %w", err)
	}
	if len(combined.Contracts) == 0 {
		return nil, fmt.Errorf("solc produced no contracts")
	}

	// key 形如 /tmp/x.sol:Token，优先精确匹配请求的合约名
	var picked string
	for key := range combined.Contracts {
		if picked == "" {
			picked = key
		}
		if contractName != "" && strings.HasSuffix(key, ":"+contractName) {
			picked = key
			break
		}
	}

	entry := combined.Contracts[picked]
	result := &compiler.CompileResult{
		Bytecode:        entry.Bin,
		RuntimeBytecode: entry.BinRuntime,
		ABI:             entry.ABI,
		SizeBytes:       len(entry.BinRuntime) / 2,
	}
	return result, nil
}

// extractDiagnostics 从 solc 输出里摘出错误与警告行
func extractDiagnostics(output string) []string {
	var diags []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.Contains(line, "Error") || strings.Contains(line, "Warning") {
			diags = append(diags, line)
		}
	}
	return diags
}
