// Package extract turns free-form social media text into a structured
// health claim, or decides that no checkable claim is present.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/claimsift/claimsift/internal/llm"
	"github.com/claimsift/claimsift/internal/model"
)

const extractSystemPrompt = `You are a nutrition claim extractor. Your job is to:
1. Identify if a tweet contains a nutrition or health claim.
2. Extract the specific claim in a standardized format.
3. If a claim is found, return a JSON object with "subject" (the main intervention or thing being claimed) and "object" (the main outcome or effect).
4. If no claim is found, return null.

Examples:
Tweet: "Just learned that chia seeds are great for heart health!"
Output: {"subject": "chia seeds", "object": "heart health"}

Tweet: "Studies show that turmeric reduces inflammation"
Output: {"subject": "turmeric", "object": "inflammation"}

Tweet: "This new protein shake has 30g of protein per serving"
Output: null

Tweet: "Just had the best smoothie ever!"
Output: null`

// Extractor asks an LLM provider whether a text carries a checkable
// health claim.
type Extractor struct {
	provider llm.Provider
	model    string
}

// NewExtractor creates an extractor backed by the given provider.
func NewExtractor(provider llm.Provider, model string) *Extractor {
	return &Extractor{provider: provider, model: model}
}

// Extract returns the claim found in text, or (nil, nil) when the text
// carries no checkable claim. Provider failures surface as errors so
// the caller can fall back to treating the whole text as the claim.
func (e *Extractor) Extract(ctx context.Context, text string) (*model.Claim, error) {
	if e.provider == nil {
		return nil, fmt.Errorf("no LLM provider configured")
	}

	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		System:      extractSystemPrompt,
		Prompt:      fmt.Sprintf("Tweet: %s\nOutput:", text),
		Model:       e.model,
		MaxTokens:   100,
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("claim extraction failed: %w", err)
	}

	return parseClaim(resp.Text)
}

// parseClaim interprets the oracle output. The null sentinels and
// unparseable output both mean "no claim"; only transport failures are
// errors.
func parseClaim(raw string) (*model.Claim, error) {
	trimmed := strings.TrimSpace(raw)
	switch strings.ToLower(trimmed) {
	case "null", "none", "no claim", "":
		return nil, nil
	}

	// Some models wrap JSON in code fences.
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var payload struct {
		Subject string `json:"subject"`
		Object  string `json:"object"`
	}
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return nil, nil
	}
	if payload.Subject == "" && payload.Object == "" {
		return nil, nil
	}

	return &model.Claim{
		Subject: strings.TrimSpace(payload.Subject),
		Outcome: strings.TrimSpace(payload.Object),
	}, nil
}
