package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/VectorBits/Polaris/src/internal/analyzer"
	"github.com/VectorBits/Polaris/src/internal/suggest"
)

// Report 一批合约的分析汇总
type Report struct {
	GeneratedAt          time.Time
	TotalContracts       int
	TotalFindings        int
	SeverityDistribution map[string]int
	Results              []*analyzer.FullReport
}

type Generator interface {
	Generate(report *Report) (string, error)
}

type MarkdownGenerator struct{}

func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{}
}

// Generate 生成 markdown 报告
func (g *MarkdownGenerator) Generate(report *Report) (string, error) {
	var b strings.Builder

	// 报告头部
	b.WriteString("# Polaris Analysis Report\n\n")
	fmt.Fprintf(&b, "**Generated**: %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05"))

	// 汇总统计
	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- **Total Contracts**: %d\n", report.TotalContracts)
	fmt.Fprintf(&b, "- **Total Findings**: %d\n\n", report.TotalFindings)

	if len(report.SeverityDistribution) > 0 {
		b.WriteString("## Finding Severity Distribution\n\n")
		for _, label := range []string{"critical", "high", "medium", "low"} {
			if count := report.SeverityDistribution[label]; count > 0 {
				fmt.Fprintf(&b, "- %s **%s**: %d\n", severityIcon(label), label, count)
			}
		}
		b.WriteString("\n")
	}

	// 逐个合约的详细结果
	b.WriteString("## Detailed Results\n\n")
	for i, result := range report.Results {
		g.writeContract(&b, result)
		if i < len(report.Results)-1 {
			b.WriteString("---\n\n")
		}
	}

	return b.String(), nil
}

func (g *MarkdownGenerator) writeContract(b *strings.Builder, result *analyzer.FullReport) {
	fmt.Fprintf(b, "# Contract: %s\n\n", result.ContractName)
	if result.PragmaVersion != "" {
		fmt.Fprintf(b, "**Solidity Version**: %s\n", result.PragmaVersion)
	}
	fmt.Fprintf(b, "**Analyzed At**: %s\n\n", result.GeneratedAt.Format("2006-01-02 15:04:05"))

	if m := result.Metrics; m != nil {
		b.WriteString("### Metrics\n\n")
		fmt.Fprintf(b, "- **Lines**: %d total / %d code / %d comment\n", m.Lines.Total, m.Lines.Code, m.Lines.Comment)
		fmt.Fprintf(b, "- **Functions**: %d | **Events**: %d | **Modifiers**: %d | **State Variables**: %d\n",
			m.Elements.Functions, m.Elements.Events, m.Elements.Modifiers, m.Elements.StateVariables)
		fmt.Fprintf(b, "- **Cyclomatic Complexity**: %d (%s)\n", m.CyclomaticComplexity, m.ComplexityRating)
		fmt.Fprintf(b, "- **Scores**: complexity %d | maintainability %d | security %d\n\n",
			m.ComplexityScore, m.MaintainabilityScore, m.SecurityScore)
	}

	if r := result.Review; r != nil {
		all := r.All()
		fmt.Fprintf(b, "### Findings (%d)\n\n", len(all))
		for j, f := range all {
			icon := severityIcon(f.Label)
			label := f.Label
			if label == "" {
				label = "advisory"
			}
			fmt.Fprintf(b, "%d. %s **[%s]** %s\n", j+1, icon, label, f.Message)
			if f.Line > 0 {
				fmt.Fprintf(b, "   **Line**: %d\n", f.Line)
			}
			if f.Note != "" {
				fmt.Fprintf(b, "   **Note**: %s\n", f.Note)
			}
			b.WriteString("\n")
		}
		fmt.Fprintf(b, "**Improvement Score**: %d/100\n\n", r.Summary.ImprovementScore)
	}

	if gasEst := result.Gas; gasEst != nil {
		b.WriteString("### Gas Estimates\n\n")
		fmt.Fprintf(b, "- **Deployment**: %d units\n", gasEst.DeploymentGas)
		fmt.Fprintf(b, "- **Efficiency Score**: %d/100\n\n", gasEst.EfficiencyScore)
		if len(gasEst.Functions) > 0 {
			b.WriteString("| Function | Estimated Gas | Mutability | Band |\n")
			b.WriteString("|---|---|---|---|\n")
			for _, f := range gasEst.Functions {
				fmt.Fprintf(b, "| %s | %d | %s | %s |\n", f.Name, f.EstimatedGas, f.StateMutability, f.Category)
			}
			b.WriteString("\n")
		}
		for _, note := range gasEst.Optimizations {
			fmt.Fprintf(b, "- %s\n", note)
		}
		if len(gasEst.Optimizations) > 0 {
			b.WriteString("\n")
		}
	}

	if d := result.Diagnostics; d != nil && d.Total > 0 {
		b.WriteString("### Compiler Diagnostics\n\n")
		for _, diag := range d.Diagnostics {
			fmt.Fprintf(b, "- **[%s]** %s\n", diag.Kind, diag.Raw)
			fmt.Fprintf(b, "  **Fix**: %s\n", diag.SuggestedFix)
		}
		b.WriteString("\n")
	}
}

func severityIcon(label string) string {
	switch strings.ToLower(label) {
	case "critical":
		return "🔴"
	case "high":
		return "🟠"
	case "medium":
		return "🟡"
	case "low":
		return "🟢"
	default:
		return "⚪"
	}
}

// countBySeverity 统计一次评估里各标签的数量
func countBySeverity(review *suggest.Review, dist map[string]int) int {
	if review == nil {
		return 0
	}
	all := review.All()
	for _, f := range all {
		if f.Label != "" {
			dist[f.Label]++
		}
	}
	return len(all)
}
