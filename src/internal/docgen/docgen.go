// Package docgen 基于结构分解生成合约文档与逐段讲解。
// 与 metrics 共用同一套 decompose 原语，不做第二次结构恢复。
package docgen

import (
	"fmt"
	"strings"

	"github.com/VectorBits/Polaris/src/internal/decompose"
)

// Documentation 合约文档产物
type Documentation struct {
	Markdown         string            `json:"markdown_documentation"`
	NatSpecContract  string            `json:"natspec_contract"`
	NatSpecFunctions map[string]string `json:"natspec_functions"`
	Sections         []string          `json:"documentation_sections"`
}

// Generate 产出 markdown 文档和 NatSpec 注释骨架
func Generate(source, contractName string) *Documentation {
	sections := decompose.Decompose(source)

	var functions, events, modifiers []decompose.Section
	for _, s := range sections {
		switch s.Kind {
		case decompose.KindFunction:
			functions = append(functions, s)
		case decompose.KindEvent:
			events = append(events, s)
		case decompose.KindModifier:
			modifiers = append(modifiers, s)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s Documentation\n\n", contractName)
	b.WriteString("## Overview\n")
	fmt.Fprintf(&b, "%s is a Solidity smart contract.\n\n", contractName)
	b.WriteString("## Contract Details\n")
	fmt.Fprintf(&b, "- **Name**: %s\n", contractName)
	if v := decompose.ExtractPragmaVersion(source); v != "" {
		fmt.Fprintf(&b, "- **Solidity Version**: %s\n", v)
	}
	b.WriteString("\n## Architecture\n\n")

	fmt.Fprintf(&b, "### Functions (%d)\n", len(functions))
	for _, f := range functions {
		fmt.Fprintf(&b, "\n#### `%s`\n", f.Name)
		fmt.Fprintf(&b, "- **Visibility**: %s\n", f.Visibility)
		fmt.Fprintf(&b, "- **State Mutability**: %s\n", f.Mutability)
		fmt.Fprintf(&b, "- **Lines**: %d-%d\n", f.LineStart, f.LineEnd)
	}

	if len(events) > 0 {
		fmt.Fprintf(&b, "\n### Events (%d)\n", len(events))
		for _, e := range events {
			fmt.Fprintf(&b, "\n#### `%s`\n", e.Name)
			fmt.Fprintf(&b, "- **Line**: %d\n", e.LineStart)
		}
	}

	if len(modifiers) > 0 {
		fmt.Fprintf(&b, "\n### Modifiers (%d)\n", len(modifiers))
		for _, m := range modifiers {
			fmt.Fprintf(&b, "\n#### `%s`\n", m.Name)
			fmt.Fprintf(&b, "- **Lines**: %d-%d\n", m.LineStart, m.LineEnd)
		}
	}

	b.WriteString("\n## Security Considerations\n- Review access controls on state-changing functions\n- Verify external call targets\n\n")
	b.WriteString("## Gas Optimization\n- See the gas estimation report for per-function costs\n")

	natspec := make(map[string]string, len(functions))
	for _, f := range functions {
		natspec[f.Name] = "    /// @notice [Describe what this function does]\n" +
			"    /// @dev [Add implementation details]\n" +
			"    /// @param [Add parameter descriptions]\n" +
			"    /// @return [Add return value description]\n"
	}

	return &Documentation{
		Markdown: b.String(),
		NatSpecContract: fmt.Sprintf("/// @title %s\n/// @notice This contract implements [describe main functionality]\n/// @dev Generated documentation skeleton\n",
			contractName),
		NatSpecFunctions: natspec,
		Sections: []string{
			"Overview", "Contract Details", "Functions", "Events",
			"Security Considerations", "Gas Optimization",
		},
	}
}
