package renderer

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/dpshade/prompt-catalog/internal/models"
)

// NoVariables is copied in place of an empty variables template.
const NoVariables = "No variables"

var placeholderPattern = regexp.MustCompile(`\{\{(.*?)\}\}`)

// Renderer projects a single record into the text forms the detail view
// and the copy actions need.
type Renderer struct {
	record *models.Record
}

// NewRenderer creates a new renderer instance
func NewRenderer(record *models.Record) *Renderer {
	return &Renderer{record: record}
}

// RenderText returns the prompt exactly as it should be copied
func (r *Renderer) RenderText() string {
	return r.record.Prompt
}

// RenderJSON renders the prompt as a JSON message array for LLM APIs
func (r *Renderer) RenderJSON() (string, error) {
	messages := []Message{
		{
			Role:    "user",
			Content: r.RenderText(),
		},
	}

	jsonBytes, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal to JSON: %w", err)
	}

	return string(jsonBytes), nil
}

// Message represents a chat message for LLM APIs
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// VariablesTemplate returns one "name=" line per variable, or NoVariables.
func (r *Renderer) VariablesTemplate() string {
	if len(r.record.Variables) == 0 {
		return NoVariables
	}
	lines := make([]string, 0, len(r.record.Variables))
	for _, v := range r.record.Variables {
		lines = append(lines, v.Name+"=")
	}
	return strings.Join(lines, "\n")
}

// Highlight passes every {{name}} placeholder in text through wrap.
func Highlight(text string, wrap func(placeholder string) string) string {
	return placeholderPattern.ReplaceAllStringFunc(text, wrap)
}

// Placeholders lists the variable names referenced in the prompt, in order
// of first appearance.
func (r *Renderer) Placeholders() []string {
	var names []string
	seen := map[string]bool{}
	for _, m := range placeholderPattern.FindAllStringSubmatch(r.record.Prompt, -1) {
		name := strings.TrimSpace(m[1])
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// RenderMarkdown renders the full detail view as markdown, suitable for
// glamour. Placeholders are emphasized as inline code.
func (r *Renderer) RenderMarkdown() string {
	rec := r.record
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", rec.Title)
	fmt.Fprintf(&b, "**Category:** %s\n\n", rec.Category)
	if rec.Description != "" {
		fmt.Fprintf(&b, "**Description:** %s\n\n", rec.Description)
	}
	if len(rec.Tags) > 0 {
		tags := make([]string, len(rec.Tags))
		for i, t := range rec.Tags {
			tags[i] = "`" + t + "`"
		}
		fmt.Fprintf(&b, "**Tags:** %s\n\n", strings.Join(tags, " "))
	}

	b.WriteString("---\n\n")
	for _, line := range strings.Split(rec.Prompt, "\n") {
		b.WriteString("> ")
		b.WriteString(Highlight(line, func(p string) string { return "`" + p + "`" }))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(rec.Variables) > 0 {
		b.WriteString("## Variables\n\n")
		for _, v := range rec.Variables {
			fmt.Fprintf(&b, "- `%s`", v.Name)
			if v.Description != "" {
				fmt.Fprintf(&b, " %s", v.Description)
			}
			if v.Example != "" {
				fmt.Fprintf(&b, " (e.g. %s)", v.Example)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(rec.Instructions) > 0 {
		b.WriteString("## How to use\n\n")
		for i, step := range rec.Instructions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step)
		}
	}

	return b.String()
}
