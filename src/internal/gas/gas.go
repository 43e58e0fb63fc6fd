package gas

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// FunctionEstimate 单个函数的 gas 估算
type FunctionEstimate struct {
	Name            string `json:"function_name"`
	EstimatedGas    int    `json:"estimated_gas"`
	StateMutability string `json:"state_mutability"`
	Category        string `json:"gas_category"` // low|medium|high
}

// Estimate 文档级 gas 估算结果
type Estimate struct {
	DeploymentGas      int                `json:"deployment_gas_estimate"`
	DeploymentCostETH  float64            `json:"deployment_cost_eth"`
	Functions          []FunctionEstimate `json:"function_gas_estimates"`
	TotalFunctions     int                `json:"total_functions"`
	AverageFunctionGas int                `json:"average_function_gas"`
	Optimizations      []string           `json:"optimizations"`
	EfficiencyScore    int                `json:"gas_efficiency_score"`
}

// abiEntry 宽容解析用的 ABI 条目，坏条目逐个跳过而不是整体失败
type abiEntry struct {
	Type            string `json:"type"`
	Name            string `json:"name"`
	StateMutability string `json:"stateMutability"`
}

const (
	gasPerByte     = 200
	assumedGasWei  = 20e-9 // 按 20 gwei 计价
	bandLowCeil    = 30000
	bandMediumCeil = 60000
)

// Analyze 按启发式模型估算部署与函数调用成本。
// abiJSON 必须是 JSON 数组；source 可为空，为空时跳过函数体加权。
func Analyze(abiJSON string, bytecode string, source string) (*Estimate, error) {
	var rawEntries []json.RawMessage
	if err := json.Unmarshal([]byte(abiJSON), &rawEntries); err != nil {
		return nil, fmt.Errorf("invalid ABI JSON: %w", err)
	}

	est := &Estimate{
		DeploymentGas: bytecodeBytes(bytecode) * gasPerByte,
	}
	est.DeploymentCostETH = float64(est.DeploymentGas) * assumedGasWei

	for _, raw := range rawEntries {
		var entry abiEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			continue
		}
		if entry.Type != "function" || entry.Name == "" {
			continue
		}
		mutability := entry.StateMutability
		if mutability == "" {
			mutability = "nonpayable"
		}

		base := baseGas(entry.Name, mutability)
		if source != "" {
			base += bodyGas(source, entry.Name)
		}

		est.Functions = append(est.Functions, FunctionEstimate{
			Name:            entry.Name,
			EstimatedGas:    base,
			StateMutability: mutability,
			Category:        Band(base),
		})
	}
	est.TotalFunctions = len(est.Functions)

	if est.TotalFunctions > 0 {
		sum := 0
		for _, f := range est.Functions {
			sum += f.EstimatedGas
		}
		est.AverageFunctionGas = sum / est.TotalFunctions
	}

	est.Optimizations = optimizationNotes(est, source)
	est.EfficiencyScore = 100 - len(est.Optimizations)*15
	if est.EfficiencyScore < 0 {
		est.EfficiencyScore = 0
	}
	return est, nil
}

// baseGas 按优先级规则选取基础成本
func baseGas(name, mutability string) int {
	lower := strings.ToLower(name)
	switch {
	case mutability == "view" || mutability == "pure":
		return 500
	case strings.Contains(lower, "mint"):
		return 50000
	case strings.Contains(lower, "transfer"):
		return 21000
	case strings.Contains(lower, "approve"):
		return 45000
	default:
		return 25000
	}
}

// bodyGas 定位函数体并按关键操作加权
func bodyGas(source, name string) int {
	body := functionBody(source, name)
	if body == "" {
		return 0
	}
	extra := 0
	extra += 1000 * strings.Count(body, "emit ")
	extra += 10000 * strings.Count(body, ".call(")
	extra += 500 * strings.Count(body, "require(")
	extra += 5000 * strings.Count(body, "mapping(")
	return extra
}

// functionBody 用与结构分解相同的括号平衡法截取函数体
func functionBody(source, name string) string {
	var funcLines []string
	inFunction := false
	braceCount := 0
	sawBrace := false

	for _, line := range strings.Split(source, "\n") {
		if strings.Contains(line, "function "+name) {
			inFunction = true
		}
		if !inFunction {
			continue
		}
		funcLines = append(funcLines, line)
		if strings.Contains(line, "{") {
			sawBrace = true
		}
		braceCount += strings.Count(line, "{") - strings.Count(line, "}")
		if braceCount == 0 && sawBrace {
			break
		}
	}
	return strings.Join(funcLines, "\n")
}

// Band 粗分档，便于人眼扫描
func Band(gas int) string {
	switch {
	case gas < bandLowCeil:
		return "low"
	case gas < bandMediumCeil:
		return "medium"
	default:
		return "high"
	}
}

func optimizationNotes(est *Estimate, source string) []string {
	notes := make([]string, 0, 4)

	if est.DeploymentGas > 1000000 {
		notes = append(notes, "Contract is large. Consider splitting into multiple contracts or using libraries.")
	}

	var highGas []string
	for _, f := range est.Functions {
		if f.EstimatedGas > 60000 {
			highGas = append(highGas, f.Name)
		}
	}
	if len(highGas) > 0 {
		notes = append(notes, fmt.Sprintf("High gas functions detected: %s. Consider optimization.", strings.Join(highGas, ", ")))
	}

	if source != "" {
		if strings.Count(source, "for (") > 3 {
			notes = append(notes, "Multiple loops detected. Consider batch processing or pagination.")
		}
		if strings.Count(source, "mapping(") > 5 {
			notes = append(notes, "Many mappings detected. Consider struct packing for gas efficiency.")
		}
	}
	return notes
}

// bytecodeBytes 计算字节码字节长度，同时兼容带/不带 0x 前缀的 hex
func bytecodeBytes(bytecode string) int {
	bytecode = strings.TrimSpace(bytecode)
	if bytecode == "" {
		return 0
	}
	if strings.HasPrefix(bytecode, "0x") {
		if b, err := hexutil.Decode(bytecode); err == nil {
			return len(b)
		}
		return (len(bytecode) - 2) / 2
	}
	if b, err := hex.DecodeString(bytecode); err == nil {
		return len(b)
	}
	return len(bytecode) / 2
}
