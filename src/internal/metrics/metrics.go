package metrics

import (
	"regexp"
	"strings"
)

// LineMetrics 行级统计
type LineMetrics struct {
	Total        int     `json:"total_lines"`
	Code         int     `json:"code_lines"`
	Comment      int     `json:"comment_lines"`
	Blank        int     `json:"empty_lines"`
	CommentRatio float64 `json:"comment_ratio"`
}

// Elements 合约元素清单
type Elements struct {
	Functions      int      `json:"functions"`
	FunctionNames  []string `json:"function_names"`
	Modifiers      int      `json:"modifiers"`
	ModifierNames  []string `json:"modifier_names"`
	Events         int      `json:"events"`
	EventNames     []string `json:"event_names"`
	StateVariables int      `json:"state_variables"`
	VariableNames  []string `json:"variable_names"`
	Imports        int      `json:"imports"`
}

// SecurityFeatures 安全特性开关，全部基于子串探测
type SecurityFeatures struct {
	ReentrancyGuard bool `json:"reentrancy_guard"`
	AccessControl   bool `json:"access_control"`
	Pausable        bool `json:"pausable"`
	SafeMath        bool `json:"safe_math"`
	EmergencyStop   bool `json:"emergency_stop"`
	RateLimiting    bool `json:"rate_limiting"`
}

// Count 返回命中的安全特性数量
func (s SecurityFeatures) Count() int {
	n := 0
	for _, on := range []bool{s.ReentrancyGuard, s.AccessControl, s.Pausable, s.SafeMath, s.EmergencyStop, s.RateLimiting} {
		if on {
			n++
		}
	}
	return n
}

// GasOptimizations gas 优化惯用法开关
type GasOptimizations struct {
	ImmutableVariables bool `json:"immutable_variables"`
	ConstantVariables  bool `json:"constant_variables"`
	PackedStructs      bool `json:"packed_structs"`
	ExternalFunctions  bool `json:"external_functions"`
	ViewFunctions      bool `json:"view_functions"`
	PureFunctions      bool `json:"pure_functions"`
}

// Report 合约度量报告
type Report struct {
	Lines                LineMetrics      `json:"line_metrics"`
	Elements             Elements         `json:"contract_elements"`
	CyclomaticComplexity int              `json:"cyclomatic_complexity"`
	ComplexityScore      int              `json:"complexity_score"`
	ComplexityRating     string           `json:"complexity_rating"` // low|medium|high
	Security             SecurityFeatures `json:"security_features"`
	GasOpt               GasOptimizations `json:"gas_optimizations"`
	MaintainabilityScore int              `json:"maintainability_score"`
	SecurityScore        int              `json:"security_score"`
	OverallScore         float64          `json:"overall_score"`
}

// 圈复杂度计数的固定 token 集合
var complexityTokens = []string{"if", "else", "for", "while", "do", "switch", "case", "&&", "||", "?"}

var (
	functionRe = regexp.MustCompile(`function\s+(\w+)`)
	modifierRe = regexp.MustCompile(`modifier\s+(\w+)`)
	eventRe    = regexp.MustCompile(`event\s+(\w+)`)
	variableRe = regexp.MustCompile(`(?:public|private|internal)?\s*\w+\s+(\w+)`)
)

var variableTypePrefixes = []string{"uint", "int", "address", "string", "bool", "bytes", "mapping"}

// Compute 对原始源码计算全部度量，永不报错
func Compute(source string) *Report {
	lines := strings.Split(source, "\n")
	r := &Report{}

	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(stripped, "//"):
			r.Lines.Comment++
		case stripped != "":
			r.Lines.Code++
		}
	}
	r.Lines.Total = len(lines)
	r.Lines.Blank = r.Lines.Total - r.Lines.Code - r.Lines.Comment
	r.Lines.CommentRatio = float64(r.Lines.Comment) / float64(max(r.Lines.Total, 1)) * 100

	collectElements(lines, &r.Elements)

	// 圈复杂度：基数 1 加全部行内 token 出现次数
	r.CyclomaticComplexity = 1
	for _, line := range lines {
		for _, tok := range complexityTokens {
			r.CyclomaticComplexity += strings.Count(line, tok)
		}
	}

	r.Security = SecurityFeatures{
		ReentrancyGuard: strings.Contains(source, "ReentrancyGuard"),
		AccessControl: strings.Contains(source, "onlyOwner") ||
			strings.Contains(source, "AccessControl") ||
			strings.Contains(source, "Ownable"),
		Pausable: strings.Contains(source, "Pausable"),
		SafeMath: strings.Contains(source, "SafeMath") ||
			strings.Contains(source, "pragma solidity ^0.8"),
		EmergencyStop: strings.Contains(source, "emergencyStop"),
		RateLimiting: strings.Contains(source, "dailyLimit") ||
			strings.Contains(source, "rateLimit"),
	}

	r.GasOpt = GasOptimizations{
		ImmutableVariables: strings.Contains(source, "immutable"),
		ConstantVariables:  strings.Contains(source, "constant"),
		PackedStructs:      strings.Contains(source, "struct") && strings.Contains(source, "packed"),
		ExternalFunctions:  strings.Contains(source, "external"),
		ViewFunctions:      strings.Contains(source, "view"),
		PureFunctions:      strings.Contains(source, "pure"),
	}

	r.ComplexityScore = clamp(r.Elements.Functions*5+r.CyclomaticComplexity*2+r.Elements.StateVariables*3, 0, 100)
	switch {
	case r.ComplexityScore < 30:
		r.ComplexityRating = "low"
	case r.ComplexityScore < 60:
		r.ComplexityRating = "medium"
	default:
		r.ComplexityRating = "high"
	}

	r.MaintainabilityScore = clamp(100-r.ComplexityScore+r.Lines.Comment*2, 0, 100)
	r.SecurityScore = clamp(r.Security.Count()*15, 0, 100)
	r.OverallScore = float64(r.MaintainabilityScore+r.SecurityScore) / 2

	return r
}

func collectElements(lines []string, e *Elements) {
	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		// 注释行不进元素清单，被注释掉的声明不算
		if strings.HasPrefix(stripped, "//") || strings.HasPrefix(stripped, "/*") || strings.HasPrefix(stripped, "*") {
			continue
		}
		switch {
		case strings.HasPrefix(stripped, "import"):
			e.Imports++
		case strings.Contains(stripped, "function ") &&
			!strings.Contains(stripped, "private") && !strings.Contains(stripped, "internal"):
			if m := functionRe.FindStringSubmatch(stripped); m != nil {
				e.FunctionNames = append(e.FunctionNames, m[1])
			}
		case strings.HasPrefix(stripped, "modifier "):
			if m := modifierRe.FindStringSubmatch(stripped); m != nil {
				e.ModifierNames = append(e.ModifierNames, m[1])
			}
		case strings.HasPrefix(stripped, "event "):
			if m := eventRe.FindStringSubmatch(stripped); m != nil {
				e.EventNames = append(e.EventNames, m[1])
			}
		case isVariableLine(stripped):
			if m := variableRe.FindStringSubmatch(stripped); m != nil {
				e.VariableNames = append(e.VariableNames, m[1])
			}
		}
	}
	e.Functions = len(e.FunctionNames)
	e.Modifiers = len(e.ModifierNames)
	e.Events = len(e.EventNames)
	e.StateVariables = len(e.VariableNames)
}

func isVariableLine(stripped string) bool {
	matched := false
	for _, t := range variableTypePrefixes {
		if strings.HasPrefix(stripped, t) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	for _, kw := range []string{"function", "modifier", "event", "constructor"} {
		if strings.Contains(stripped, kw) {
			return false
		}
	}
	return true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
