package renderer

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/prompt-catalog/internal/models"
)

func sample() *models.Record {
	return &models.Record{
		ID:          "r1",
		Title:       "Welcome email",
		Description: "Onboarding letter",
		Category:    "Маркетинг",
		Tags:        []string{"Email-рассылка", "onboarding"},
		Prompt:      "Write a welcome email for {{product}} aimed at {{audience}}.\nMention {{product}} twice.",
		Variables: []models.Variable{
			{Name: "product", Description: "Product name", Example: "Acme"},
			{Name: "audience"},
		},
		Instructions: []string{"Fill in the variables", "Paste into the chat"},
	}
}

func TestVariablesTemplate(t *testing.T) {
	assert.Equal(t, "product=\naudience=", NewRenderer(sample()).VariablesTemplate())
	assert.Equal(t, NoVariables, NewRenderer(&models.Record{ID: "x"}).VariablesTemplate())
}

func TestRenderJSON(t *testing.T) {
	out, err := NewRenderer(sample()).RenderJSON()
	require.NoError(t, err)

	var msgs []Message
	require.NoError(t, json.Unmarshal([]byte(out), &msgs))
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, sample().Prompt, msgs[0].Content)
}

func TestHighlight(t *testing.T) {
	got := Highlight("a {{x}} b {{ y }}", func(p string) string { return "[" + p + "]" })
	assert.Equal(t, "a [{{x}}] b [{{ y }}]", got)
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"product", "audience"}, NewRenderer(sample()).Placeholders())
}

func TestRenderMarkdown(t *testing.T) {
	md := NewRenderer(sample()).RenderMarkdown()

	assert.True(t, strings.HasPrefix(md, "# Welcome email\n"))
	assert.Contains(t, md, "**Category:** Маркетинг")
	assert.Contains(t, md, "`Email-рассылка`")
	assert.Contains(t, md, "> Write a welcome email for `{{product}}`")
	assert.Contains(t, md, "## Variables")
	assert.Contains(t, md, "- `product` Product name (e.g. Acme)")
	assert.Contains(t, md, "1. Fill in the variables\n2. Paste into the chat")
}
