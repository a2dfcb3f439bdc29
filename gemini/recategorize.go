package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"screenusage/categorize"
)

type Recategorizer struct {
	gen TextGenerator
}

func NewRecategorizer(gen TextGenerator) *Recategorizer {
	return &Recategorizer{gen: gen}
}

type assignments struct {
	Assignments []struct {
		Index    int    `json:"index"`
		Category string `json:"category"`
	} `json:"assignments"`
}

// Recategorize asks the model to name a content category for each title.
// The result is aligned with titles; titles the model skipped stay in categorize.Other.
func (r *Recategorizer) Recategorize(ctx context.Context, titles []string) ([]string, error) {
	text, err := r.gen.Generate(ctx, recategorizePrompt(titles))
	if err != nil {
		return nil, err
	}
	raw, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}
	var parsed assignments
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("Recategorize: %w", err)
	}
	out := make([]string, len(titles))
	for i := range out {
		out[i] = categorize.Other
	}
	for _, a := range parsed.Assignments {
		i := a.Index - 1
		name := strings.TrimSpace(a.Category)
		if i < 0 || i >= len(titles) || name == "" {
			continue
		}
		out[i] = name
	}
	return out, nil
}

func recategorizePrompt(titles []string) string {
	var b strings.Builder
	b.WriteString("Group these browser tab and video titles into short content categories ")
	b.WriteString("(for example \"Cooking\", \"News\", \"Programming\", \"Shopping\"). ")
	b.WriteString("Use the same category name for similar content. ")
	fmt.Fprintf(&b, "Use %q only when nothing fits.\n\n", categorize.Other)
	for i, t := range titles {
		fmt.Fprintf(&b, "%d. %s\n", i+1, t)
	}
	b.WriteString(`
Respond in JSON format ONLY (no markdown, no code blocks):
{"assignments": [{"index": number, "category": "category name"}]}
`)
	return b.String()
}
