package intent

import "strings"

// Result 需求校验结果。ClarityScore 允许为负且不截断，
// 负分本身就是不可行信号，可行性判断用的是原始值
type Result struct {
	Feasible            bool     `json:"is_feasible"`
	ClarityScore        int      `json:"clarity_score"`
	MissingInfo         []string `json:"missing_info"`
	Suggestions         []string `json:"suggestions"`
	EstimatedComplexity string   `json:"estimated_complexity"` // simple|moderate|complex
	RecommendedType     string   `json:"recommended_contract_type,omitempty"`
	DetectedTypes       []string `json:"detected_contract_types"`
	FoundRequirements   []string `json:"found_requirements"`
	WordCount           int      `json:"word_count"`
	ClarifyingQuestions []string `json:"clarifying_questions"`
	NeedsClarification  bool     `json:"needs_clarification"`
}

// keywordGroup 保序的关键字组，首个命中者决定推荐类型
type keywordGroup struct {
	name     string
	keywords []string
}

// 合约类型指示词，检测顺序固定
var contractIndicators = []keywordGroup{
	{"erc20", []string{"token", "erc20", "fungible", "currency", "coin"}},
	{"erc721", []string{"nft", "erc721", "non-fungible", "collectible", "unique"}},
	{"erc1155", []string{"erc1155", "multi-token", "batch", "gaming"}},
	{"dao", []string{"dao", "governance", "voting", "proposal", "community"}},
	{"dex", []string{"dex", "exchange", "swap", "liquidity", "trading"}},
	{"staking", []string{"staking", "stake", "reward", "yield", "farming"}},
	{"marketplace", []string{"marketplace", "auction", "buy", "sell", "listing"}},
	{"multisig", []string{"multisig", "multi-signature", "multiple owners", "threshold"}},
}

// 需求信息关键字组，检测顺序固定
var requirementGroups = []keywordGroup{
	{"name", []string{"name", "called", "title"}},
	{"symbol", []string{"symbol", "ticker", "abbreviation"}},
	{"supply", []string{"supply", "amount", "quantity", "total"}},
	{"features", []string{"feature", "function", "capability", "ability"}},
	{"access", []string{"owner", "admin", "permission", "access", "control"}},
	{"security", []string{"secure", "safe", "protection", "guard"}},
}

var complexKeywords = []string{"complex", "advanced", "custom", "sophisticated", "enterprise"}
var advancedFeatureKeywords = []string{"upgrade", "proxy", "oracle", "multi", "batch", "governance"}

// Validate 对自由文本的合约需求做清晰度与可行性判断，空输入也返回尽力结果
func Validate(description string) *Result {
	text := strings.ToLower(strings.TrimSpace(description))
	r := &Result{
		Feasible:          true,
		MissingInfo:       make([]string, 0, 2),
		Suggestions:       make([]string, 0, 2),
		DetectedTypes:     make([]string, 0, 2),
		FoundRequirements: make([]string, 0, len(requirementGroups)),
	}

	for _, group := range contractIndicators {
		if matchesAny(text, group.keywords) {
			r.DetectedTypes = append(r.DetectedTypes, group.name)
		}
	}
	if len(r.DetectedTypes) > 0 {
		r.RecommendedType = r.DetectedTypes[0]
		r.ClarityScore += 30
	} else {
		r.MissingInfo = append(r.MissingInfo, "contract_type")
		r.Suggestions = append(r.Suggestions, "Please specify what type of smart contract you want (e.g., token, NFT, DAO, DEX)")
	}

	for _, group := range requirementGroups {
		if matchesAny(text, group.keywords) {
			r.FoundRequirements = append(r.FoundRequirements, group.name)
			r.ClarityScore += 10
		}
	}

	r.WordCount = len(strings.Fields(text))
	switch {
	case r.WordCount < 5:
		r.Suggestions = append(r.Suggestions, "Please provide more details about your requirements")
		r.ClarityScore -= 20
	case r.WordCount > 100:
		r.ClarityScore += 20
	default:
		r.ClarityScore += 10
	}

	complexity := 1
	if matchesAny(text, complexKeywords) {
		complexity += 2
	}
	if matchesAny(text, advancedFeatureKeywords) {
		complexity++
	}
	if len(r.FoundRequirements) > 4 {
		complexity++
	}
	switch {
	case complexity <= 2:
		r.EstimatedComplexity = "simple"
	case complexity <= 4:
		r.EstimatedComplexity = "moderate"
	default:
		r.EstimatedComplexity = "complex"
	}

	r.ClarifyingQuestions = clarifyingQuestions(r)
	r.NeedsClarification = len(r.ClarifyingQuestions) > 0

	if len(r.MissingInfo) > 3 || r.ClarityScore < 20 {
		r.Feasible = false
		r.Suggestions = append(r.Suggestions, "Please provide more specific details about your requirements")
	}
	return r
}

// clarifyingQuestions 按固定顺序生成澄清问题，每个未满足条件一条
func clarifyingQuestions(r *Result) []string {
	var questions []string

	if contains(r.MissingInfo, "contract_type") {
		questions = append(questions, "What type of smart contract do you want to create? (e.g., ERC-20 token, NFT, DAO)")
	}
	if !contains(r.FoundRequirements, "name") && r.RecommendedType != "" {
		questions = append(questions, "What would you like to name your contract/token?")
	}
	if r.RecommendedType == "erc20" && !contains(r.FoundRequirements, "symbol") {
		questions = append(questions, "What symbol should your token have? (e.g., BTC, ETH)")
	}
	if r.RecommendedType == "erc20" && !contains(r.FoundRequirements, "supply") {
		questions = append(questions, "What should be the total supply of your token?")
	}
	if !contains(r.FoundRequirements, "access") {
		questions = append(questions, "Do you need access control? (e.g., only owner can mint, admin roles)")
	}
	if !contains(r.FoundRequirements, "security") && r.EstimatedComplexity != "simple" {
		questions = append(questions, "What security features do you need? (e.g., pausable, reentrancy protection)")
	}
	return questions
}

func matchesAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func contains(items []string, target string) bool {
	for _, it := range items {
		if it == target {
			return true
		}
	}
	return false
}
