package score

import (
	"math"
	"math/rand"
	"testing"

	"github.com/claimsift/claimsift/internal/model"
)

func doc(pmid string, rel model.Relevance, val model.Validity, conf float64) model.AnalyzedDocument {
	return model.AnalyzedDocument{
		Document: model.Document{PMID: pmid, Title: "Paper " + pmid},
		Analysis: model.DocumentAnalysis{
			Relevance:         rel,
			Validity:          val,
			OverallConfidence: conf,
		},
	}
}

func TestScore_TwoPaperExample(t *testing.T) {
	scorer := NewScorer()

	// DIRECT SUPPORTS 0.8 -> +0.8; INDIRECT CONTRADICTS 0.6 -> -0.3.
	result := scorer.Score([]model.AnalyzedDocument{
		doc("1", model.RelevanceDirect, model.ValiditySupports, 0.8),
		doc("2", model.RelevanceIndirect, model.ValidityContradicts, 0.6),
	})

	want := 0.5 / 1.1
	if math.Abs(result.Value-want) > 1e-9 {
		t.Errorf("Expected value %.4f, got %.4f", want, result.Value)
	}
	if result.SupportingCount != 1 || result.ContradictingCount != 1 || result.NeutralCount != 0 {
		t.Errorf("Unexpected counts: %+v", result)
	}
	if len(result.Breakdown) != 2 {
		t.Fatalf("Expected 2 breakdown entries, got %d", len(result.Breakdown))
	}
	if math.Abs(result.Breakdown[0].Contribution-0.8) > 1e-9 {
		t.Errorf("Expected contribution +0.8, got %.4f", result.Breakdown[0].Contribution)
	}
	if math.Abs(result.Breakdown[1].Contribution+0.3) > 1e-9 {
		t.Errorf("Expected contribution -0.3, got %.4f", result.Breakdown[1].Contribution)
	}
}

func TestScore_Empty(t *testing.T) {
	result := NewScorer().Score(nil)

	if result.Value != 0 {
		t.Errorf("Expected value 0 for empty input, got %v", result.Value)
	}
	if result.SupportingCount != 0 || result.ContradictingCount != 0 || result.NeutralCount != 0 {
		t.Errorf("Expected zero counts, got %+v", result)
	}
	if result.Verdict() != model.VerdictInconclusive {
		t.Errorf("Expected inconclusive verdict, got %s", result.Verdict())
	}
}

func TestScore_ExcludesNotRelevantAndUnknown(t *testing.T) {
	result := NewScorer().Score([]model.AnalyzedDocument{
		doc("1", model.RelevanceNotRelevant, model.ValiditySupports, 0.9),
		doc("2", model.Relevance("GARBAGE"), model.ValiditySupports, 0.9),
		doc("3", model.Relevance(""), model.ValiditySupports, 0.9),
	})

	if result.Value != 0 {
		t.Errorf("Excluded papers must not score, got %v", result.Value)
	}
	if result.SupportingCount != 0 {
		t.Errorf("Excluded papers must not count, got %d", result.SupportingCount)
	}
	if len(result.Breakdown) != 0 {
		t.Errorf("Excluded papers must not appear in breakdown, got %d", len(result.Breakdown))
	}
}

func TestScore_NeutralContributesZeroButCounts(t *testing.T) {
	result := NewScorer().Score([]model.AnalyzedDocument{
		doc("1", model.RelevanceDirect, model.ValidityNeutral, 0.9),
		doc("2", model.RelevanceDirect, model.ValidityUnknown, 0.7),
	})

	if result.Value != 0 {
		t.Errorf("Neutral-only evidence should score 0, got %v", result.Value)
	}
	if result.NeutralCount != 2 {
		t.Errorf("Expected 2 neutral papers, got %d", result.NeutralCount)
	}
}

func TestScore_AllConfidencesZero(t *testing.T) {
	result := NewScorer().Score([]model.AnalyzedDocument{
		doc("1", model.RelevanceDirect, model.ValiditySupports, 0),
		doc("2", model.RelevanceIndirect, model.ValidityContradicts, 0),
	})

	// Zero denominator: defined as 0, not NaN.
	if result.Value != 0 {
		t.Errorf("Expected 0 on zero weighted evidence, got %v", result.Value)
	}
	if result.SupportingCount != 1 || result.ContradictingCount != 1 {
		t.Errorf("Counts are unweighted and must survive: %+v", result)
	}
}

func TestScore_Commutative(t *testing.T) {
	docs := []model.AnalyzedDocument{
		doc("1", model.RelevanceDirect, model.ValiditySupports, 0.8),
		doc("2", model.RelevanceIndirect, model.ValidityContradicts, 0.6),
		doc("3", model.RelevanceContextual, model.ValiditySupports, 0.4),
		doc("4", model.RelevanceDirect, model.ValidityNeutral, 0.9),
		doc("5", model.RelevanceNotRelevant, model.ValidityContradicts, 1.0),
	}

	scorer := NewScorer()
	want := scorer.Score(docs)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 25; i++ {
		shuffled := make([]model.AnalyzedDocument, len(docs))
		copy(shuffled, docs)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got := scorer.Score(shuffled)
		if math.Abs(got.Value-want.Value) > 1e-9 {
			t.Fatalf("Score depends on order: %v vs %v", got.Value, want.Value)
		}
		if got.SupportingCount != want.SupportingCount ||
			got.ContradictingCount != want.ContradictingCount ||
			got.NeutralCount != want.NeutralCount {
			t.Fatalf("Counts depend on order: %+v vs %+v", got, want)
		}
	}
}

func TestScore_AlwaysBounded(t *testing.T) {
	relevances := []model.Relevance{
		model.RelevanceDirect, model.RelevanceIndirect,
		model.RelevanceContextual, model.RelevanceNotRelevant,
	}
	validities := []model.Validity{
		model.ValiditySupports, model.ValidityContradicts,
		model.ValidityNeutral, model.ValidityUnknown,
	}

	rng := rand.New(rand.NewSource(7))
	scorer := NewScorer()

	for trial := 0; trial < 200; trial++ {
		n := rng.Intn(12)
		docs := make([]model.AnalyzedDocument, n)
		for i := range docs {
			docs[i] = doc(
				"x",
				relevances[rng.Intn(len(relevances))],
				validities[rng.Intn(len(validities))],
				rng.Float64(),
			)
		}

		result := scorer.Score(docs)
		if result.Value < -1 || result.Value > 1 {
			t.Fatalf("Value out of bounds: %v (trial %d)", result.Value, trial)
		}
		if math.IsNaN(result.Value) {
			t.Fatalf("Value is NaN (trial %d)", trial)
		}
	}
}

func TestScore_VerdictLabels(t *testing.T) {
	tests := []struct {
		name string
		docs []model.AnalyzedDocument
		want model.Verdict
	}{
		{
			name: "supported",
			docs: []model.AnalyzedDocument{
				doc("1", model.RelevanceDirect, model.ValiditySupports, 0.9),
				doc("2", model.RelevanceDirect, model.ValiditySupports, 0.2),
				doc("3", model.RelevanceDirect, model.ValidityContradicts, 1.0),
			},
			want: model.VerdictSupported,
		},
		{
			name: "contradicted",
			docs: []model.AnalyzedDocument{
				doc("1", model.RelevanceContextual, model.ValidityContradicts, 0.5),
			},
			want: model.VerdictContradicted,
		},
		{
			name: "inconclusive",
			docs: []model.AnalyzedDocument{
				doc("1", model.RelevanceDirect, model.ValiditySupports, 0.9),
				doc("2", model.RelevanceDirect, model.ValidityContradicts, 0.9),
			},
			want: model.VerdictInconclusive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewScorer().Score(tt.docs).Verdict(); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}
