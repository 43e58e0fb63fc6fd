package diagnostics

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind 诊断类别
type Kind string

const (
	KindSyntaxError      Kind = "syntax_error"
	KindTypeError        Kind = "type_error"
	KindDeclarationError Kind = "declaration_error"
	KindCompilerError    Kind = "compiler_error"
	KindWarning          Kind = "warning"
	KindUnknown          Kind = "unknown"
)

// Diagnostic 单条已分类的编译器消息
type Diagnostic struct {
	Raw          string `json:"original_error"`
	Kind         Kind   `json:"error_type"`
	Line         int    `json:"line_number,omitempty"` // 0 表示未提取到
	SuggestedFix string `json:"suggestion"`
}

// Summary 诊断批次汇总
type Summary struct {
	Diagnostics        []Diagnostic   `json:"parsed_errors"`
	Total              int            `json:"total_errors"`
	Kinds              []string       `json:"error_types"`
	SeverityCount      map[string]int `json:"severity_count"`
	GeneralSuggestions []string       `json:"general_suggestions"`
	AutoFixable        int            `json:"fixable_errors"`
}

// kindRule 类别判定规则：按顺序匹配首个命中的子串
type kindRule struct {
	marker string
	kind   Kind
}

// remedyRule 类别内的修复建议子匹配
type remedyRule struct {
	marker string
	fix    string
}

// Classifier 规则表在构造时注入，Classify 是 (messages, rules) 的纯函数
type Classifier struct {
	kindRules     []kindRule
	remedies      map[Kind][]remedyRule
	defaultFixes  map[Kind]string
	generalByKind map[Kind]string
}

const genericFix = "Check the error message for details"

var lineNumberRe = regexp.MustCompile(`:(\d+):`)

// NewClassifier 构造默认规则表的分类器
func NewClassifier() *Classifier {
	return &Classifier{
		kindRules: []kindRule{
			{"ParserError", KindSyntaxError},
			{"TypeError", KindTypeError},
			{"DeclarationError", KindDeclarationError},
			{"CompilerError", KindCompilerError},
			{"Warning", KindWarning},
		},
		remedies: map[Kind][]remedyRule{
			KindSyntaxError: {
				{"Expected", "Check syntax - missing semicolon, bracket, or parenthesis"},
				{"Unexpected", "Remove unexpected character or check syntax"},
			},
			KindTypeError: {
				{"not found", "Check if variable/function is declared and spelled correctly"},
				{"not compatible", "Check data types - ensure compatible types for assignment/comparison"},
				{"not callable", "Check if you're trying to call a variable as a function"},
			},
			KindDeclarationError: {
				{"already declared", "Variable or function name already exists - use a different name"},
				{"not declared", "Declare the variable or import the contract/library"},
			},
			KindWarning: {
				{"unused", "Remove unused variables/imports or prefix with underscore"},
				{"deprecated", "Update to use newer syntax or functions"},
			},
		},
		defaultFixes: map[Kind]string{
			KindCompilerError: "Internal compiler error - try different solidity version",
		},
		generalByKind: map[Kind]string{
			KindSyntaxError:      "Review code syntax carefully - check for missing semicolons, brackets, and parentheses",
			KindTypeError:        "Verify all variable types and function signatures match their usage",
			KindDeclarationError: "Ensure all variables and functions are properly declared before use",
		},
	}
}

// Classify 对原始编译器消息逐条分类并汇总，输入从不丢弃
func (c *Classifier) Classify(messages []string) *Summary {
	s := &Summary{
		Diagnostics:   make([]Diagnostic, 0, len(messages)),
		SeverityCount: map[string]int{"critical": 0, "high": 0, "medium": 0, "low": 0},
	}

	seen := make(map[Kind]bool)
	for _, msg := range messages {
		d := c.classifyOne(msg)
		s.Diagnostics = append(s.Diagnostics, d)
		if !seen[d.Kind] {
			seen[d.Kind] = true
			s.Kinds = append(s.Kinds, string(d.Kind))
		}
		switch d.Kind {
		case KindSyntaxError, KindCompilerError:
			s.SeverityCount["critical"]++
		case KindTypeError, KindDeclarationError:
			s.SeverityCount["high"]++
		case KindWarning:
			s.SeverityCount["medium"]++
		}
		if d.Kind != KindCompilerError {
			s.AutoFixable++
		}
	}
	s.Total = len(s.Diagnostics)

	for _, kind := range []Kind{KindSyntaxError, KindTypeError, KindDeclarationError} {
		if seen[kind] {
			s.GeneralSuggestions = append(s.GeneralSuggestions, c.generalByKind[kind])
		}
	}
	return s
}

func (c *Classifier) classifyOne(msg string) Diagnostic {
	d := Diagnostic{Raw: msg, Kind: KindUnknown, SuggestedFix: genericFix}

	if m := lineNumberRe.FindStringSubmatch(msg); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			d.Line = n
		}
	}

	for _, rule := range c.kindRules {
		if strings.Contains(msg, rule.marker) {
			d.Kind = rule.kind
			break
		}
	}

	if fix, ok := c.defaultFixes[d.Kind]; ok {
		d.SuggestedFix = fix
	}
	for _, r := range c.remedies[d.Kind] {
		if strings.Contains(msg, r.marker) {
			d.SuggestedFix = r.fix
			break
		}
	}
	return d
}
