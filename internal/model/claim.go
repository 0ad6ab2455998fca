package model

// Claim is the structured form of a health/nutrition assertion extracted
// from free text: the intervention being claimed and the outcome it is
// claimed to affect.
type Claim struct {
	Subject string `json:"subject"` // The intervention or thing being claimed (e.g., "chia seeds")
	Outcome string `json:"outcome"` // The effect or outcome (e.g., "heart health")
}

// Text joins subject and outcome into the claim context used for
// normalization and paper analysis.
func (c Claim) Text() string {
	if c.Subject == "" {
		return c.Outcome
	}
	if c.Outcome == "" {
		return c.Subject
	}
	return c.Subject + " " + c.Outcome
}

// MatchMethod records how a consumer phrase was resolved to a
// standardized concept.
type MatchMethod string

const (
	MatchExact      MatchMethod = "exact"      // Direct lookup-table hit
	MatchFuzzy      MatchMethod = "fuzzy"      // Similarity match above threshold
	MatchContextual MatchMethod = "contextual" // Curated standalone-term mapping
	MatchReduced    MatchMethod = "reduced"    // Synonym cluster or connector-phrase reduction
	MatchUnmatched  MatchMethod = "unmatched"  // No mapping found; term kept verbatim
)

// NormalizedTerm is the result of normalizing one phrase.
// StandardTerm is always populated: when Method is MatchUnmatched it
// falls back to the original phrase so callers never handle an empty
// result.
type NormalizedTerm struct {
	Original     string      `json:"original"`
	StandardTerm string      `json:"standard_term"`
	ConceptID    string      `json:"concept_id,omitempty"` // UMLS CUI when known
	Method       MatchMethod `json:"method"`
}

// Matched reports whether the term resolved to a standardized concept.
func (t NormalizedTerm) Matched() bool {
	return t.Method != MatchUnmatched
}
