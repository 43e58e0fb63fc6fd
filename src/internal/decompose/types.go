package decompose

// Kind 区块类型
type Kind string

const (
	KindPragma        Kind = "pragma"
	KindImport        Kind = "import"
	KindContract      Kind = "contract_declaration"
	KindStateVariable Kind = "state_variable"
	KindConstant      Kind = "constant"
	KindEvent         Kind = "event"
	KindModifier      Kind = "modifier"
	KindConstructor   Kind = "constructor"
	KindFunction      Kind = "function"
	KindComment       Kind = "comment"
)

// Section 表示源码中一个已分类的连续区块，行号从 1 开始，区间闭合
type Section struct {
	Kind       Kind   `json:"kind"`
	LineStart  int    `json:"line_start"`
	LineEnd    int    `json:"line_end"`
	Text       string `json:"text"`
	Name       string `json:"name,omitempty"`
	Visibility string `json:"visibility,omitempty"` // public|external|internal|private
	Mutability string `json:"mutability,omitempty"` // view|pure|payable|nonpayable

	// Unterminated 表示区块的大括号直到文件结尾都没有闭合（输入损坏时的兜底）
	Unterminated bool `json:"unterminated,omitempty"`
}

// IsBody 返回该类型是否带大括号函数体（需要括号深度跟踪）
func (k Kind) IsBody() bool {
	return k == KindModifier || k == KindConstructor || k == KindFunction
}
