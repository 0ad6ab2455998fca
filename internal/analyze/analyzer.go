// Package analyze judges individual papers against a claim using an
// LLM oracle and parses the structured verdicts it returns.
package analyze

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/claimsift/claimsift/internal/cache"
	"github.com/claimsift/claimsift/internal/llm"
	"github.com/claimsift/claimsift/internal/model"
)

const paperAnalysisPrompt = `You are a scientific paper analyzer. Your job is to:
1. Read the paper's title and abstract
2. Classify the paper's relevance to the claim as one of:
   - DIRECT: The paper studies the specific subject and outcome in the claim.
   - INDIRECT: The paper studies a related subject or outcome, but not both.
   - CONTEXTUAL: The paper provides background information but does not address the claim directly.
   - NOT RELEVANT: The paper is not relevant to the claim.
3. Score each component of the paper's quality (0-1 scale):
   a) Study Design (0-1):
      - 1.0: Meta-analysis/systematic review
      - 0.9: Randomized controlled trial
      - 0.8: Controlled clinical trial
      - 0.7: Cohort study
      - 0.6: Case-control study
      - 0.5: Cross-sectional study
      - 0.4: Case series/report
      - 0.3: Review article
      - 0.2: Opinion/commentary
      - 0.1: Other

   b) Sample Size (0-1):
      - 1.0: >1000 participants
      - 0.9: 500-1000 participants
      - 0.8: 200-499 participants
      - 0.7: 100-199 participants
      - 0.6: 50-99 participants
      - 0.5: 20-49 participants
      - 0.4: 10-19 participants
      - 0.3: 5-9 participants
      - 0.2: 2-4 participants
      - 0.1: Single case

   c) Directness (0-1):
      - 1.0: Directly measures the exact outcome in the claim
      - 0.8: Measures a closely related outcome
      - 0.6: Measures a surrogate outcome
      - 0.4: Indirect evidence
      - 0.2: Very indirect evidence

   d) Statistical Significance (0-1):
      - 1.0: p < 0.001
      - 0.9: p < 0.01
      - 0.8: p < 0.05
      - 0.6: p < 0.1
      - 0.4: Not statistically significant
      - 0.2: No statistical analysis

   e) Study Quality (0-1):
      - 1.0: High quality, well-controlled, minimal bias
      - 0.8: Good quality, some limitations
      - 0.6: Moderate quality, notable limitations
      - 0.4: Low quality, significant limitations
      - 0.2: Very low quality, major limitations

4. Calculate the overall confidence score as the weighted average:
   - Study Design: 30%
   - Sample Size: 20%
   - Directness: 25%
   - Statistical Significance: 15%
   - Study Quality: 10%

5. If relevant, provide a concise summary of the key findings.
6. Determine if the paper supports, contradicts, or is neutral regarding the claim.
7. Explain your reasoning.

Format your response as:
RELEVANCE: [DIRECT/INDIRECT/CONTEXTUAL/NOT RELEVANT]
CONFIDENCE_SCORES:
- Study Design: [0-1]
- Sample Size: [0-1]
- Directness: [0-1]
- Statistical Significance: [0-1]
- Study Quality: [0-1]
OVERALL_CONFIDENCE: [0-1]
CONFIDENCE_REASON: [1-2 sentences justifying the overall confidence score]
SUMMARY: [2-3 sentences summarizing the key findings, or 'N/A' if not relevant]
VALIDITY: [SUPPORTS/CONTRADICTS/NEUTRAL/N/A]
REASONING: [1-2 sentences explaining why]

IMPORTANT: Each confidence score must be on its own line starting with "- " and must include both the component name and score separated by a colon.`

// Analyzer runs paper-versus-claim judgments through an LLM provider,
// memoizing results per (claim, pmid) pair.
type Analyzer struct {
	provider llm.Provider
	cache    cache.Cache
	model    string
}

// NewAnalyzer creates an analyzer. A nil cache disables memoization.
func NewAnalyzer(provider llm.Provider, store cache.Cache, model string) *Analyzer {
	return &Analyzer{provider: provider, cache: store, model: model}
}

// Analyze judges one paper against the claim. Oracle failures degrade
// to a NOT RELEVANT / UNKNOWN analysis instead of aborting the run, so
// one bad paper never sinks the batch.
func (a *Analyzer) Analyze(ctx context.Context, claim string, doc model.Document) model.DocumentAnalysis {
	key := cache.AnalysisKey(claim, doc.PMID)
	if a.cache != nil {
		if data, found := a.cache.Get(key); found {
			var cached model.DocumentAnalysis
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached
			}
		}
	}

	analysis, err := a.analyze(ctx, claim, doc)
	if err != nil {
		return errorAnalysis(err)
	}

	if a.cache != nil {
		if data, err := json.Marshal(analysis); err == nil {
			_ = a.cache.Set(key, data, cache.AnalysisTTL)
		}
	}
	return analysis
}

func (a *Analyzer) analyze(ctx context.Context, claim string, doc model.Document) (model.DocumentAnalysis, error) {
	if a.provider == nil {
		return model.DocumentAnalysis{}, fmt.Errorf("no LLM provider configured")
	}

	prompt := fmt.Sprintf("Claim: %s\n\nPaper:\nTitle: %s\nAbstract: %s", claim, doc.Title, doc.Abstract)
	resp, err := a.provider.Complete(ctx, llm.CompletionRequest{
		System:      paperAnalysisPrompt,
		Prompt:      prompt,
		Model:       a.model,
		Temperature: 0.1,
	})
	if err != nil {
		return model.DocumentAnalysis{}, fmt.Errorf("paper analysis failed: %w", err)
	}

	return ParseAnalysis(resp.Text), nil
}

// errorAnalysis is the degraded verdict for a paper the oracle could
// not judge. NOT RELEVANT keeps it out of the score; UNKNOWN marks the
// validity as undetermined rather than neutral.
func errorAnalysis(err error) model.DocumentAnalysis {
	return model.DocumentAnalysis{
		Relevance:        model.RelevanceNotRelevant,
		ConfidenceScores: map[string]float64{},
		ConfidenceReason: "Error analyzing paper",
		Summary:          "Error analyzing paper",
		Validity:         model.ValidityUnknown,
		Reasoning:        err.Error(),
	}
}
