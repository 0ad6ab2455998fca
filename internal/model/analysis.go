package model

// Relevance classifies how directly a paper addresses the claim's
// subject/outcome pair.
type Relevance string

const (
	RelevanceDirect      Relevance = "DIRECT"       // Studies the specific subject and outcome
	RelevanceIndirect    Relevance = "INDIRECT"     // Studies a related subject or outcome, not both
	RelevanceContextual  Relevance = "CONTEXTUAL"   // Background only
	RelevanceNotRelevant Relevance = "NOT RELEVANT" // Does not address the claim
)

// Weight returns the relevance weight used by the truth-score
// aggregator. Unknown or unparsable values weigh zero.
func (r Relevance) Weight() float64 {
	switch r {
	case RelevanceDirect:
		return 1.0
	case RelevanceIndirect:
		return 0.5
	case RelevanceContextual:
		return 0.2
	default:
		return 0.0
	}
}

// Validity is the paper's verdict on the claim.
type Validity string

const (
	ValiditySupports    Validity = "SUPPORTS"
	ValidityContradicts Validity = "CONTRADICTS"
	ValidityNeutral     Validity = "NEUTRAL"
	ValidityUnknown     Validity = "UNKNOWN"
)

// Sign maps validity to the signed direction of its score contribution.
func (v Validity) Sign() float64 {
	switch v {
	case ValiditySupports:
		return 1
	case ValidityContradicts:
		return -1
	default:
		return 0
	}
}

// Confidence criteria names as emitted by the analysis oracle.
const (
	CriterionStudyDesign  = "Study Design"
	CriterionSampleSize   = "Sample Size"
	CriterionDirectness   = "Directness"
	CriterionSignificance = "Statistical Significance"
	CriterionQuality      = "Study Quality"
)

// CriterionWeights is the weighting the oracle is instructed to apply
// when computing overall confidence from the five criteria.
var CriterionWeights = map[string]float64{
	CriterionStudyDesign:  0.30,
	CriterionSampleSize:   0.20,
	CriterionDirectness:   0.25,
	CriterionSignificance: 0.15,
	CriterionQuality:      0.10,
}

// DocumentAnalysis is the parsed judgment of one paper against the
// claim. Missing or unparsable oracle fields keep their zero values;
// an analysis is never discarded for a single malformed line.
type DocumentAnalysis struct {
	Relevance         Relevance          `json:"relevance"`
	ConfidenceScores  map[string]float64 `json:"confidence_scores,omitempty"`
	OverallConfidence float64            `json:"overall_confidence"`
	ConfidenceReason  string             `json:"confidence_reason,omitempty"`
	Summary           string             `json:"summary,omitempty"`
	Validity          Validity           `json:"validity"`
	Reasoning         string             `json:"reasoning,omitempty"`

	// ConfidenceMismatch is set when the oracle-reported overall
	// confidence disagrees with the weighted average of its own
	// sub-scores. The reported value stays authoritative.
	ConfidenceMismatch bool `json:"confidence_mismatch,omitempty"`
}

// WeightedConfidence recomputes overall confidence from the sub-scores
// using CriterionWeights. The second return is false unless all five
// criteria are present.
func (a DocumentAnalysis) WeightedConfidence() (float64, bool) {
	if len(a.ConfidenceScores) == 0 {
		return 0, false
	}
	var sum float64
	for name, weight := range CriterionWeights {
		score, ok := a.ConfidenceScores[name]
		if !ok {
			return 0, false
		}
		sum += weight * score
	}
	return sum, true
}

// Included reports whether the analysis participates in scoring and
// counting. NOT RELEVANT and unparsable relevance values are excluded
// entirely.
func (a DocumentAnalysis) Included() bool {
	switch a.Relevance {
	case RelevanceDirect, RelevanceIndirect, RelevanceContextual:
		return true
	default:
		return false
	}
}
