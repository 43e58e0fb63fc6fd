package decompose

import (
	"regexp"
	"strings"
)

var (
	functionNameRe = regexp.MustCompile(`function\s+(\w+)`)
	eventNameRe    = regexp.MustCompile(`event\s+(\w+)`)
	modifierNameRe = regexp.MustCompile(`modifier\s+(\w+)`)
	contractNameRe = regexp.MustCompile(`contract\s+(\w+)`)
	variableNameRe = regexp.MustCompile(`^\s*(?:mapping\s*\([^)]*\)|\w+(?:\[\])?)\s+(?:(?:public|private|internal|constant|immutable)\s+)*(\w+)`)
)

// 状态变量声明的起始类型关键字
var typeKeywords = []string{"uint", "int", "address", "string", "bool", "bytes", "mapping"}

// openSection 扫描过程中尚未闭合的区块
type openSection struct {
	kind       Kind
	start      int
	lines      []string
	name       string
	visibility string
	mutability string

	depth    int  // 当前大括号深度
	sawBrace bool // 是否见过至少一个 {
	inline   []Section
}

// Decompose 将合约源码按行做单遍扫描，产出有序的结构区块列表。
// 任何输入都不会报错：括号不平衡的区块保持打开直到文件结尾并标记 Unterminated。
func Decompose(source string) []Section {
	lines := strings.Split(source, "\n")
	sections := make([]Section, 0, 16)
	var open *openSection

	closeOpen := func(end int, unterminated bool) {
		if open == nil {
			return
		}
		sections = append(sections, Section{
			Kind:         open.kind,
			LineStart:    open.start,
			LineEnd:      end,
			Text:         strings.Join(open.lines, "\n"),
			Name:         open.name,
			Visibility:   open.visibility,
			Mutability:   open.mutability,
			Unterminated: unterminated,
		})
		sections = append(sections, open.inline...)
		open = nil
	}

	for i, raw := range lines {
		lineNo := i + 1
		trimmed := strings.TrimSpace(raw)

		// 函数体内部的行直接吸收，直到深度回到 0。
		// 接口式声明没有函数体，遇到 { 之前以分号结束即闭合
		if open != nil && open.kind.IsBody() {
			open.lines = append(open.lines, raw)
			applyBraces(open, raw)
			if open.sawBrace && open.depth <= 0 {
				closeOpen(lineNo, false)
			} else if !open.sawBrace && strings.HasSuffix(trimmed, ";") {
				closeOpen(lineNo, false)
			}
			continue
		}

		kind, ok := classify(trimmed)
		if !ok {
			// 注释、空行或其他延续行：交给当前打开的区块，否则归为 comment
			if open != nil {
				open.lines = append(open.lines, raw)
				continue
			}
			open = &openSection{kind: KindComment, start: lineNo, lines: []string{raw}}
			continue
		}

		// 新的顶层关键字关闭上一个区块
		closeOpen(lineNo-1, false)

		open = &openSection{kind: kind, start: lineNo, lines: []string{raw}}
		decorate(open, trimmed)

		switch {
		case kind.IsBody():
			applyBraces(open, raw)
			if open.sawBrace && open.depth <= 0 {
				closeOpen(lineNo, false)
			} else if !open.sawBrace && strings.HasSuffix(trimmed, ";") {
				closeOpen(lineNo, false)
			}
		case kind == KindStateVariable || kind == KindConstant:
			// 单行声明立即闭合
			closeOpen(lineNo, false)
		case kind == KindContract:
			// 声明行内联的函数（单行合约）单独补一个 function 区块
			open.inline = appendInlineFunctions(open.inline, trimmed, lineNo)
		}
	}

	if open != nil {
		unterminated := open.kind.IsBody() && open.sawBrace && open.depth > 0
		closeOpen(len(lines), unterminated)
	}

	return sections
}

// classify 判断一行是否开启新的顶层区块
func classify(trimmed string) (Kind, bool) {
	switch {
	case trimmed == "" || strings.HasPrefix(trimmed, "//") ||
		strings.HasPrefix(trimmed, "/*") || strings.HasPrefix(trimmed, "*"):
		return "", false
	case strings.HasPrefix(trimmed, "pragma"):
		return KindPragma, true
	case strings.HasPrefix(trimmed, "import"):
		return KindImport, true
	case strings.HasPrefix(trimmed, "contract ") || strings.HasPrefix(trimmed, "abstract contract "):
		return KindContract, true
	case strings.HasPrefix(trimmed, "event "):
		return KindEvent, true
	case strings.HasPrefix(trimmed, "modifier "):
		return KindModifier, true
	case strings.HasPrefix(trimmed, "constructor"):
		return KindConstructor, true
	case strings.HasPrefix(trimmed, "function "):
		return KindFunction, true
	}
	for _, t := range typeKeywords {
		if strings.HasPrefix(trimmed, t) {
			// 先判 constant/immutable，再归为普通状态变量
			if strings.Contains(trimmed, "constant") || strings.Contains(trimmed, "immutable") {
				return KindConstant, true
			}
			return KindStateVariable, true
		}
	}
	return "", false
}

func decorate(open *openSection, trimmed string) {
	switch open.kind {
	case KindFunction:
		if m := functionNameRe.FindStringSubmatch(trimmed); m != nil {
			open.name = m[1]
		}
		open.visibility = parseVisibility(trimmed)
		open.mutability = parseMutability(trimmed)
	case KindModifier:
		if m := modifierNameRe.FindStringSubmatch(trimmed); m != nil {
			open.name = m[1]
		}
	case KindConstructor:
		open.mutability = parseMutability(trimmed)
	case KindEvent:
		if m := eventNameRe.FindStringSubmatch(trimmed); m != nil {
			open.name = m[1]
		}
	case KindContract:
		if m := contractNameRe.FindStringSubmatch(trimmed); m != nil {
			open.name = m[1]
		}
	case KindStateVariable, KindConstant:
		if m := variableNameRe.FindStringSubmatch(trimmed); m != nil {
			open.name = m[1]
		}
	}
}

func applyBraces(open *openSection, line string) {
	opens := strings.Count(line, "{")
	if opens > 0 {
		open.sawBrace = true
	}
	open.depth += opens - strings.Count(line, "}")
}

// appendInlineFunctions 处理 "contract Foo { function bar() ... }" 这类写在声明行里的函数
func appendInlineFunctions(inline []Section, trimmed string, lineNo int) []Section {
	idx := strings.Index(trimmed, "{")
	if idx < 0 {
		return inline
	}
	body := trimmed[idx+1:]
	for _, m := range functionNameRe.FindAllStringSubmatch(body, -1) {
		inline = append(inline, Section{
			Kind:       KindFunction,
			LineStart:  lineNo,
			LineEnd:    lineNo,
			Text:       trimmed,
			Name:       m[1],
			Visibility: parseVisibility(body),
			Mutability: parseMutability(body),
		})
	}
	return inline
}

func parseVisibility(s string) string {
	switch {
	case strings.Contains(s, "public"):
		return "public"
	case strings.Contains(s, "external"):
		return "external"
	case strings.Contains(s, "private"):
		return "private"
	default:
		return "internal"
	}
}

func parseMutability(s string) string {
	switch {
	case strings.Contains(s, "view"):
		return "view"
	case strings.Contains(s, "pure"):
		return "pure"
	case strings.Contains(s, "payable"):
		return "payable"
	default:
		return "nonpayable"
	}
}
