// Package format 对 Solidity 源码做纯文本层面的统一排版。
package format

import (
	"regexp"
	"strings"
)

// Result 排版结果与统计
type Result struct {
	Code           string   `json:"formatted_code"`
	OriginalLines  int      `json:"original_lines"`
	FormattedLines int      `json:"formatted_lines"`
	Applied        []string `json:"formatting_applied"`
}

var (
	assignSpacingRe = regexp.MustCompile(`(\w)\s*=\s*(\w)`)
	commaSpacingRe  = regexp.MustCompile(`,(\w)`)
	funcSpacingRe   = regexp.MustCompile(`function\s+(\w+)\s*\(`)
)

// Format 重排缩进与空白，不改变语义
func Format(source string) *Result {
	lines := strings.Split(source, "\n")
	formatted := make([]string, 0, len(lines))
	indent := 0
	inCommentBlock := false

	for _, line := range lines {
		stripped := strings.TrimSpace(line)

		if stripped == "" {
			formatted = append(formatted, "")
			continue
		}

		if strings.Contains(stripped, "/*") && !strings.Contains(stripped, "*/") {
			inCommentBlock = true
		} else if strings.Contains(stripped, "*/") {
			inCommentBlock = false
		}

		if strings.HasPrefix(stripped, "//") || strings.HasPrefix(stripped, "*") || inCommentBlock {
			formatted = append(formatted, strings.Repeat("    ", indent)+stripped)
			continue
		}

		// pragma 和 import 顶格
		if strings.HasPrefix(stripped, "pragma") || strings.HasPrefix(stripped, "import") {
			formatted = append(formatted, stripped)
			continue
		}

		if strings.HasPrefix(stripped, "}") && indent > 0 {
			indent--
		}

		out := strings.Repeat("    ", indent) + stripped
		out = assignSpacingRe.ReplaceAllString(out, "$1 = $2")
		out = commaSpacingRe.ReplaceAllString(out, ", $1")
		out = funcSpacingRe.ReplaceAllString(out, "function $1(")
		formatted = append(formatted, out)

		if strings.HasSuffix(stripped, "{") {
			indent++
		}
	}

	final := addSectionSpacing(collapseBlankRuns(formatted))

	return &Result{
		Code:           strings.Join(final, "\n"),
		OriginalLines:  len(lines),
		FormattedLines: len(final),
		Applied: []string{
			"Consistent indentation",
			"Proper spacing around operators",
			"Clean comment formatting",
			"Section separation",
			"Removed extra empty lines",
		},
	}
}

// collapseBlankRuns 连续空行压成一行
func collapseBlankRuns(lines []string) []string {
	out := make([]string, 0, len(lines))
	prevEmpty := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if !prevEmpty {
				out = append(out, line)
			}
			prevEmpty = true
			continue
		}
		out = append(out, line)
		prevEmpty = false
	}
	return out
}

// addSectionSpacing 在 import 块和合约声明后补空行
func addSectionSpacing(lines []string) []string {
	out := make([]string, 0, len(lines)+4)
	for i, line := range lines {
		out = append(out, line)

		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "import") && i+1 < len(lines) {
			next := strings.TrimSpace(lines[i+1])
			if next != "" && !strings.HasPrefix(next, "import") {
				out = append(out, "")
			}
		}
		if strings.Contains(line, "contract ") && strings.Contains(line, "{") {
			out = append(out, "")
		}
	}
	return out
}
