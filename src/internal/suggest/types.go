package suggest

import "strings"

// Category 建议所属大类
type Category string

const (
	CategoryGas          Category = "gas_optimization"
	CategorySecurity     Category = "security"
	CategoryQuality      Category = "code_quality"
	CategoryArchitecture Category = "architecture"
)

// Finding 单条建议。Label 取 critical|high|medium|low，架构类建议可为空
type Finding struct {
	Category Category `json:"type"`
	Aspect   string   `json:"category"`
	Label    string   `json:"label,omitempty"`
	Message  string   `json:"suggestion"`
	Line     int      `json:"line,omitempty"`
	Note     string   `json:"note,omitempty"` // 预估节省或收益说明
}

// Summary 建议批次的汇总统计
type Summary struct {
	Total             int            `json:"total_suggestions"`
	GasOptimizations  int            `json:"gas_optimizations"`
	SecurityIssues    int            `json:"security_issues"`
	CodeQualityIssues int            `json:"code_quality_issues"`
	ImprovementScore  int            `json:"improvement_score"`
	PriorityBreakdown map[string]int `json:"priority_breakdown"`
}

// Review 一次完整评估的结果
type Review struct {
	Gas          []Finding `json:"gas_optimizations"`
	Security     []Finding `json:"security_improvements"`
	Quality      []Finding `json:"code_quality"`
	Architecture []Finding `json:"advanced_patterns"`
	Summary      Summary   `json:"summary"`
}

// All 按 gas、security、quality、architecture 顺序返回全部建议
func (r *Review) All() []Finding {
	out := make([]Finding, 0, len(r.Gas)+len(r.Security)+len(r.Quality)+len(r.Architecture))
	out = append(out, r.Gas...)
	out = append(out, r.Security...)
	out = append(out, r.Quality...)
	out = append(out, r.Architecture...)
	return out
}

// Source 预切分后的源码视图，规则共享同一份不可变输入
type Source struct {
	Raw   string
	Lower string
	Lines []string
}

// NewSource 构造规则输入
func NewSource(raw string) *Source {
	return &Source{
		Raw:   raw,
		Lower: strings.ToLower(raw),
		Lines: strings.Split(raw, "\n"),
	}
}

func labelWeight(label string) int {
	switch label {
	case "critical":
		return 100
	case "high":
		return 80
	case "medium":
		return 60
	case "low":
		return 40
	default:
		return 50
	}
}
