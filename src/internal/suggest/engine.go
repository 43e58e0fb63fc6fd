package suggest

// Engine 按固定规则目录评估源码。规则表在构造时注入，之后不可变，
// 因此每次 Evaluate 都是 (source, rules) 的纯函数
type Engine struct {
	rules []Rule
}

// NewEngine 用给定规则表构造引擎，rules 为空时使用默认目录
func NewEngine(rules []Rule) *Engine {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Engine{rules: rules}
}

// Evaluate 对源码运行全部规则并汇总。规则独立求值，单条规则无命中只是不产出
func (e *Engine) Evaluate(source string) *Review {
	src := NewSource(source)
	review := &Review{}

	for _, rule := range e.rules {
		findings := rule.Check(src)
		switch rule.Category {
		case CategoryGas:
			review.Gas = append(review.Gas, findings...)
		case CategorySecurity:
			review.Security = append(review.Security, findings...)
		case CategoryQuality:
			review.Quality = append(review.Quality, findings...)
		case CategoryArchitecture:
			review.Architecture = append(review.Architecture, findings...)
		}
	}

	review.Summary = summarize(review)
	return review
}

func summarize(r *Review) Summary {
	all := r.All()
	s := Summary{
		Total:             len(all),
		GasOptimizations:  len(r.Gas),
		SecurityIssues:    len(r.Security),
		CodeQualityIssues: len(r.Quality),
		PriorityBreakdown: map[string]int{"critical": 0, "high": 0, "medium": 0, "low": 0},
	}

	total := 0
	for _, f := range all {
		total += labelWeight(f.Label)
		if _, ok := s.PriorityBreakdown[f.Label]; ok {
			s.PriorityBreakdown[f.Label]++
		}
	}

	count := len(all)
	if count < 1 {
		count = 1
	}
	s.ImprovementScore = 100 - total/count
	if s.ImprovementScore < 0 {
		s.ImprovementScore = 0
	}
	return s
}
