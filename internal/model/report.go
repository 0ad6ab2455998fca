package model

import "time"

// Verdict is the display-level decision derived from unweighted label
// counts. It is a summary for humans; the numeric truth score is the
// authoritative output.
type Verdict string

const (
	VerdictSupported    Verdict = "supported"
	VerdictContradicted Verdict = "contradicted"
	VerdictInconclusive Verdict = "inconclusive"
)

// Contribution is one paper's effect on the aggregate truth score,
// kept for the transparent per-paper breakdown.
type Contribution struct {
	PMID         string    `json:"pmid"`
	Title        string    `json:"title"`
	Relevance    Relevance `json:"relevance"`
	Confidence   float64   `json:"confidence"`
	Validity     Validity  `json:"validity"`
	Weight       float64   `json:"weight"`       // relevance weight
	Contribution float64   `json:"contribution"` // sign(validity) * weight * confidence
}

// TruthScore is the bounded aggregate verdict over all analyzed papers.
// Value is always in [-1, 1] and defined as 0 when no weighted evidence
// exists. Counts tally validity labels directly, independent of the
// weighted score.
type TruthScore struct {
	Value              float64        `json:"value"`
	SupportingCount    int            `json:"supporting_count"`
	ContradictingCount int            `json:"contradicting_count"`
	NeutralCount       int            `json:"neutral_count"`
	Breakdown          []Contribution `json:"breakdown,omitempty"`
}

// Verdict returns the majority-vote decision label.
func (s TruthScore) Verdict() Verdict {
	switch {
	case s.SupportingCount > s.ContradictingCount:
		return VerdictSupported
	case s.ContradictingCount > s.SupportingCount:
		return VerdictContradicted
	default:
		return VerdictInconclusive
	}
}

// AnalyzedDocument pairs a retrieved paper with its oracle judgment.
type AnalyzedDocument struct {
	Document Document         `json:"document"`
	Analysis DocumentAnalysis `json:"analysis"`
}

// Report is the complete result of checking one claim.
type Report struct {
	Input      string    `json:"input"`       // Raw text as submitted
	CheckedAt  time.Time `json:"checked_at"`  //
	ClaimFound bool      `json:"claim_found"` // False means the keyword fallback query was used
	Claim      *Claim    `json:"claim,omitempty"`

	Normalized []NormalizedTerm `json:"normalized,omitempty"` // Phrase normalization of subject and outcome
	Query      string           `json:"query"`                // The literature search expression actually used

	Documents []AnalyzedDocument `json:"documents"` // Relevant papers with their analyses
	Excluded  int                `json:"excluded"`  // Papers dropped as NOT RELEVANT

	Score   TruthScore `json:"score"`
	Verdict Verdict    `json:"verdict"`

	// NoEvidence marks the first-class "no evidence found" outcome:
	// the search succeeded but returned nothing.
	NoEvidence bool `json:"no_evidence,omitempty"`
}
