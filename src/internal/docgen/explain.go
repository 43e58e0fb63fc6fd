package docgen

import (
	"fmt"
	"strings"

	"github.com/VectorBits/Polaris/src/internal/decompose"
)

// Explanation 一个区块的讲解条目
type Explanation struct {
	Section     string `json:"section"`
	LineStart   int    `json:"line_start"`
	LineEnd     int    `json:"line_end"`
	Code        string `json:"code"`
	Explanation string `json:"explanation"`
	Importance  string `json:"importance"` // critical|high|medium
	Visibility  string `json:"visibility,omitempty"`
	Mutability  string `json:"state_mutability,omitempty"`
}

// ExplainSummary 讲解汇总
type ExplainSummary struct {
	TotalSections  int    `json:"total_sections"`
	Functions      int    `json:"functions"`
	Modifiers      int    `json:"modifiers"`
	Events         int    `json:"events"`
	StateVariables int    `json:"state_variables"`
	Complexity     string `json:"complexity"` // low|medium|high
}

// ExplainResult 整体讲解结果
type ExplainResult struct {
	Explanations    []Explanation  `json:"explanations"`
	Summary         ExplainSummary `json:"summary"`
	TotalLines      int            `json:"total_lines"`
	ComplexityScore int            `json:"complexity_score"`
}

// Explain 将源码分解并为每个区块生成人类可读的说明
func Explain(source string) *ExplainResult {
	sections := decompose.Decompose(source)
	result := &ExplainResult{
		TotalLines: len(strings.Split(source, "\n")),
	}

	for _, s := range sections {
		e := Explanation{
			LineStart: s.LineStart,
			LineEnd:   s.LineEnd,
			Code:      s.Text,
		}
		switch s.Kind {
		case decompose.KindPragma:
			e.Section = "Pragma Declaration"
			e.Importance = "critical"
			e.Explanation = "Specifies the Solidity compiler version to use. The '^' symbol means any version compatible with this version."
		case decompose.KindImport:
			e.Section = "Import Statements"
			e.Importance = "high"
			e.Explanation = "Imports external contracts for standard implementations and security features."
		case decompose.KindContract:
			e.Section = "Contract Declaration"
			e.Importance = "critical"
			e.Explanation = contractExplanation(s)
		case decompose.KindConstant:
			e.Section = "Constants & Immutable Variables"
			e.Importance = "medium"
			e.Explanation = "Defines constants and immutable variables. These save gas as they're stored in the contract bytecode."
		case decompose.KindStateVariable:
			e.Section = "State Variables"
			e.Importance = "high"
			e.Explanation = "Defines the contract's storage variables. These persist between function calls and cost gas to modify."
			result.Summary.StateVariables++
		case decompose.KindEvent:
			e.Section = "Events"
			e.Importance = "medium"
			e.Explanation = fmt.Sprintf("Defines event '%s'. Events allow external applications to listen for contract activity.", s.Name)
			result.Summary.Events++
		case decompose.KindModifier:
			e.Section = fmt.Sprintf("Modifier: %s", s.Name)
			e.Importance = "high"
			e.Explanation = fmt.Sprintf("Modifier '%s' adds reusable checks to functions. The '_' symbol indicates where the function code executes.", s.Name)
			result.Summary.Modifiers++
		case decompose.KindConstructor:
			e.Section = "Constructor"
			e.Importance = "critical"
			e.Explanation = "The constructor runs once when the contract is deployed. It initializes the contract's state."
		case decompose.KindFunction:
			e.Section = fmt.Sprintf("Function: %s", s.Name)
			e.Importance = "high"
			e.Visibility = s.Visibility
			e.Mutability = s.Mutability
			e.Explanation = functionExplanation(s)
			result.Summary.Functions++
		case decompose.KindComment:
			e.Section = "Comments"
			e.Importance = "medium"
			e.Explanation = "Commentary and spacing between declarations."
		}
		result.Explanations = append(result.Explanations, e)
	}

	result.Summary.TotalSections = len(result.Explanations)
	switch n := result.Summary.TotalSections; {
	case n < 5:
		result.Summary.Complexity = "low"
	case n < 10:
		result.Summary.Complexity = "medium"
	default:
		result.Summary.Complexity = "high"
	}

	result.ComplexityScore = result.Summary.TotalSections * 8
	if result.ComplexityScore > 100 {
		result.ComplexityScore = 100
	}
	return result
}

func contractExplanation(s decompose.Section) string {
	line := strings.TrimSpace(strings.SplitN(s.Text, "\n", 2)[0])
	explanation := fmt.Sprintf("Declares the main contract '%s'. ", s.Name)
	if idx := strings.Index(line, " is "); idx >= 0 {
		inheritance := strings.TrimSuffix(strings.TrimSpace(line[idx+4:]), "{")
		explanation += fmt.Sprintf("Inherits from: %s", strings.TrimSpace(inheritance))
	} else {
		explanation += "No inheritance."
	}
	return explanation
}

func functionExplanation(s decompose.Section) string {
	text := fmt.Sprintf("Function '%s' with %s visibility and %s state mutability.", s.Name, s.Visibility, s.Mutability)
	switch s.Mutability {
	case "view":
		text += " This function only reads data and doesn't modify state."
	case "pure":
		text += " This function doesn't read or modify state."
	case "payable":
		text += " This function can receive Ether."
	default:
		text += " This function can modify contract state."
	}
	return text
}
