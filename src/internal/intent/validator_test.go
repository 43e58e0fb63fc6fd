package intent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateShortTokenRequest(t *testing.T) {
	r := Validate("simple token")

	assert.Equal(t, "erc20", r.RecommendedType)
	assert.Equal(t, []string{"erc20"}, r.DetectedTypes)
	// 类型 +30，少于 5 词 -20
	assert.Equal(t, 10, r.ClarityScore)
	assert.False(t, r.Feasible)
	assert.Equal(t, "simple", r.EstimatedComplexity)
	assert.Equal(t, 2, r.WordCount)

	require.Len(t, r.ClarifyingQuestions, 4)
	assert.Contains(t, r.ClarifyingQuestions[0], "name your contract")
	assert.Contains(t, r.ClarifyingQuestions[1], "symbol")
	assert.Contains(t, r.ClarifyingQuestions[2], "total supply")
	assert.Contains(t, r.ClarifyingQuestions[3], "access control")
	assert.True(t, r.NeedsClarification)
}

func TestValidateNegativeClarity(t *testing.T) {
	r := Validate("cat dog")

	assert.Empty(t, r.DetectedTypes)
	assert.Equal(t, -20, r.ClarityScore)
	assert.False(t, r.Feasible)
	assert.Equal(t, []string{"contract_type"}, r.MissingInfo)
}

func TestValidateDetailedDescription(t *testing.T) {
	desc := "token named MyToken with symbol MTK total supply of one million with mint function owner access and safe guard protection" +
		strings.Repeat(" detail", 110)

	r := Validate(desc)

	assert.Equal(t, "erc20", r.RecommendedType)
	assert.Equal(t, []string{"name", "symbol", "supply", "features", "access", "security"}, r.FoundRequirements)
	// 30 类型 + 60 需求 + 20 长描述
	assert.Equal(t, 110, r.ClarityScore)
	assert.True(t, r.Feasible)
	assert.Empty(t, r.ClarifyingQuestions)
	assert.False(t, r.NeedsClarification)
	assert.Equal(t, "simple", r.EstimatedComplexity)
}

func TestValidateNoTypeQuestionOrder(t *testing.T) {
	r := Validate("please build something great for me")

	require.Len(t, r.ClarifyingQuestions, 2)
	assert.Contains(t, r.ClarifyingQuestions[0], "What type of smart contract")
	assert.Contains(t, r.ClarifyingQuestions[1], "access control")
	assert.False(t, r.Feasible)
}

func TestValidateComplexityEstimate(t *testing.T) {
	r := Validate("advanced nft collectible with oracle and proxy upgrade integration please")

	assert.Equal(t, "erc721", r.RecommendedType)
	assert.Equal(t, "moderate", r.EstimatedComplexity)
	assert.True(t, r.Feasible)
	// 非 simple 复杂度会追问安全特性
	last := r.ClarifyingQuestions[len(r.ClarifyingQuestions)-1]
	assert.Contains(t, last, "security features")
}

func TestValidateEmptyInput(t *testing.T) {
	r := Validate("")

	assert.False(t, r.Feasible)
	assert.Equal(t, 0, r.WordCount)
	assert.Equal(t, "simple", r.EstimatedComplexity)
	assert.NotEmpty(t, r.Suggestions)
}
