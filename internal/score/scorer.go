// Package score folds per-paper relevance/validity/confidence judgments
// into one bounded, auditable truth score.
package score

import (
	"github.com/claimsift/claimsift/internal/model"
)

// Scorer computes the aggregate truth score. It is stateless; Score is
// a pure function of its input.
type Scorer struct{}

// NewScorer creates a new scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score aggregates all paper analyses into a TruthScore.
//
// Papers whose relevance is NOT RELEVANT or unparsable are excluded
// before both scoring and counting. Each included paper contributes
// sign(validity) * relevanceWeight * overallConfidence; the aggregate
// is the contribution sum divided by the sum of weight * confidence,
// or 0 when that denominator is 0. Every contribution's magnitude is
// bounded by its own denominator term, so the value always lands in
// [-1, 1] regardless of input, and the commutative sums make the
// result independent of arrival order.
//
// The supporting/contradicting/neutral counts tally validity labels
// directly, unweighted, for the majority-vote verdict.
func (s *Scorer) Score(docs []model.AnalyzedDocument) model.TruthScore {
	var result model.TruthScore
	var sum, weightSum float64

	for _, doc := range docs {
		analysis := doc.Analysis
		if !analysis.Included() {
			continue
		}

		switch analysis.Validity {
		case model.ValiditySupports:
			result.SupportingCount++
		case model.ValidityContradicts:
			result.ContradictingCount++
		default:
			result.NeutralCount++
		}

		weight := analysis.Relevance.Weight()
		confidence := clamp01(analysis.OverallConfidence)
		contribution := analysis.Validity.Sign() * weight * confidence

		sum += contribution
		weightSum += weight * confidence

		result.Breakdown = append(result.Breakdown, model.Contribution{
			PMID:         doc.Document.PMID,
			Title:        doc.Document.Title,
			Relevance:    analysis.Relevance,
			Confidence:   confidence,
			Validity:     analysis.Validity,
			Weight:       weight,
			Contribution: contribution,
		})
	}

	if weightSum > 0 {
		result.Value = sum / weightSum
	}

	return result
}

// clamp01 guards against oracle confidences that escape [0, 1].
func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
