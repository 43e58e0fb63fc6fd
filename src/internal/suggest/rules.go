package suggest

import (
	"fmt"
	"strings"
)

// Rule 一条独立的启发式规则。规则之间互不依赖，前置数据缺失时返回空
type Rule struct {
	Category Category
	Check    func(src *Source) []Finding
}

// 敏感函数名，出现时必须有访问控制
var sensitiveNames = []string{"mint", "burn", "pause", "withdraw"}

// DefaultRules 固定的规则目录。调用方持有后不应修改
func DefaultRules() []Rule {
	return []Rule{
		// ---- gas ----
		{CategoryGas, func(src *Source) []Finding {
			if strings.Contains(src.Raw, "uint256") && !strings.Contains(src.Raw, "uint8") {
				return []Finding{{
					Category: CategoryGas, Aspect: "data_types", Label: "medium",
					Message: "Consider using smaller uint types (uint8, uint16, uint32) for variables that don't need the full range of uint256",
					Note:    "2000-5000 gas per variable",
				}}
			}
			return nil
		}},
		{CategoryGas, func(src *Source) []Finding {
			if strings.Count(src.Raw, "mapping(") > 3 {
				return []Finding{{
					Category: CategoryGas, Aspect: "storage", Label: "high",
					Message: "Multiple mappings detected. Consider using structs to pack related data together",
					Note:    "20000+ gas per transaction",
				}}
			}
			return nil
		}},
		{CategoryGas, func(src *Source) []Finding {
			if strings.Contains(src.Raw, "string") && !strings.Contains(src.Raw, "bytes32") {
				return []Finding{{
					Category: CategoryGas, Aspect: "data_types", Label: "medium",
					Message: "For fixed-length strings, consider using bytes32 instead of string to save gas",
					Note:    "1000-3000 gas per operation",
				}}
			}
			return nil
		}},
		{CategoryGas, func(src *Source) []Finding {
			var out []Finding
			for i, line := range src.Lines {
				if !strings.Contains(line, "for (") {
					continue
				}
				if strings.Contains(line, "i++") {
					out = append(out, Finding{
						Category: CategoryGas, Aspect: "loops", Label: "low", Line: i + 1,
						Message: "Use ++i instead of i++ in loops to save gas",
						Note:    "5 gas per iteration",
					})
				}
				if strings.Contains(line, ".length") {
					out = append(out, Finding{
						Category: CategoryGas, Aspect: "loops", Label: "medium", Line: i + 1,
						Message: "Cache array length before loop to avoid repeated SLOAD operations",
						Note:    "100+ gas per iteration",
					})
				}
			}
			return out
		}},

		// ---- security ----
		{CategorySecurity, func(src *Source) []Finding {
			if !strings.Contains(src.Raw, "require(") && !strings.Contains(src.Raw, "assert(") {
				return []Finding{{
					Category: CategorySecurity, Aspect: "input_validation", Label: "high",
					Message: "Add require() statements for input validation to prevent invalid states",
				}}
			}
			return nil
		}},
		{CategorySecurity, func(src *Source) []Finding {
			if strings.Contains(src.Raw, "onlyOwner") || strings.Contains(src.Raw, "AccessControl") {
				return nil
			}
			for _, name := range sensitiveNames {
				if strings.Contains(src.Raw, name) {
					return []Finding{{
						Category: CategorySecurity, Aspect: "access_control", Label: "critical",
						Message: "Add access control to sensitive functions like mint, burn, pause, withdraw",
					}}
				}
			}
			return nil
		}},
		{CategorySecurity, func(src *Source) []Finding {
			if !strings.Contains(src.Raw, "ReentrancyGuard") && strings.Contains(src.Raw, ".call(") {
				return []Finding{{
					Category: CategorySecurity, Aspect: "reentrancy", Label: "high",
					Message: "Add ReentrancyGuard to functions that make external calls",
				}}
			}
			return nil
		}},
		{CategorySecurity, func(src *Source) []Finding {
			publicFuncs, events := 0, 0
			for _, line := range src.Lines {
				if strings.Contains(line, "function ") && strings.Contains(line, "public") {
					publicFuncs++
				}
				if strings.Contains(line, "event ") {
					events++
				}
			}
			if publicFuncs > events {
				return []Finding{{
					Category: CategorySecurity, Aspect: "transparency", Label: "medium",
					Message: "Add events to important state-changing functions for better transparency and monitoring",
				}}
			}
			return nil
		}},

		// ---- quality ----
		{CategoryQuality, func(src *Source) []Finding {
			if strings.Count(src.Raw, "// TODO") > 0 {
				return []Finding{{
					Category: CategoryQuality, Aspect: "completeness", Label: "high",
					Message: "Remove TODO comments and implement missing functionality",
				}}
			}
			return nil
		}},
		{CategoryQuality, func(src *Source) []Finding {
			long := longFunctions(src.Lines)
			if len(long) == 0 {
				return nil
			}
			if len(long) > 3 {
				long = long[:3]
			}
			return []Finding{{
				Category: CategoryQuality, Aspect: "function_length", Label: "medium",
				Message: fmt.Sprintf("Consider breaking down long functions: %s", strings.Join(long, ", ")),
			}}
		}},
		{CategoryQuality, func(src *Source) []Finding {
			if strings.Count(src.Raw, "///") < strings.Count(src.Raw, "function ") {
				return []Finding{{
					Category: CategoryQuality, Aspect: "documentation", Label: "medium",
					Message: "Add NatSpec documentation (///) to functions for better code documentation",
				}}
			}
			return nil
		}},

		// ---- architecture ----
		{CategoryArchitecture, func(src *Source) []Finding {
			if !strings.Contains(src.Lower, "factory") && strings.Count(src.Raw, "contract ") > 1 {
				return []Finding{{
					Category: CategoryArchitecture, Aspect: "design_pattern",
					Message: "Consider using Factory pattern for deploying multiple similar contracts",
					Note:    "Reduced deployment costs and better code organization",
				}}
			}
			return nil
		}},
		{CategoryArchitecture, func(src *Source) []Finding {
			if !strings.Contains(src.Lower, "proxy") && len(src.Raw) > 10000 {
				return []Finding{{
					Category: CategoryArchitecture, Aspect: "upgradeability",
					Message: "Consider implementing proxy pattern for contract upgradeability",
					Note:    "Allow future upgrades while preserving state and address",
				}}
			}
			return nil
		}},
	}
}

// longFunctions 找出声明与下一个 function 之间超过 50 行的函数（最后一个函数不计）
func longFunctions(lines []string) []string {
	var long []string
	current := ""
	length := 0
	for _, line := range lines {
		if strings.Contains(line, "function ") {
			if current != "" && length > 50 {
				long = append(long, current)
			}
			current = strings.TrimSpace(line)
			length = 0
			continue
		}
		if current != "" {
			length++
		}
	}
	return long
}
