package analyze

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/claimsift/claimsift/internal/cache"
	"github.com/claimsift/claimsift/internal/llm"
	"github.com/claimsift/claimsift/internal/model"
)

type countingProvider struct {
	response string
	err      error
	calls    int
}

func (p *countingProvider) Name() string { return "counting" }

func (p *countingProvider) Complete(context.Context, llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &llm.CompletionResponse{Text: p.response}, nil
}

func (p *countingProvider) IsAvailable(context.Context) bool { return true }

func testDoc() model.Document {
	return model.Document{
		PMID:     "12345678",
		Title:    "Chia seed supplementation and cardiovascular risk factors",
		Abstract: "A 12-week randomized trial of daily chia seed intake.",
	}
}

func TestAnalyzeParsesOracleOutput(t *testing.T) {
	provider := &countingProvider{response: wellFormedAnalysis}
	a := NewAnalyzer(provider, nil, "")

	analysis := a.Analyze(context.Background(), "chia seeds help heart health", testDoc())
	if analysis.Relevance != model.RelevanceDirect {
		t.Errorf("relevance = %q, want DIRECT", analysis.Relevance)
	}
	if analysis.Validity != model.ValiditySupports {
		t.Errorf("validity = %q, want SUPPORTS", analysis.Validity)
	}
}

func TestAnalyzeCacheHitSkipsOracle(t *testing.T) {
	provider := &countingProvider{response: wellFormedAnalysis}
	store := cache.NewMemoryCache(time.Minute, time.Minute)
	a := NewAnalyzer(provider, store, "")

	claim := "chia seeds help heart health"
	first := a.Analyze(context.Background(), claim, testDoc())
	second := a.Analyze(context.Background(), claim, testDoc())

	if provider.calls != 1 {
		t.Errorf("oracle called %d times, want 1", provider.calls)
	}
	if first.OverallConfidence != second.OverallConfidence || first.Relevance != second.Relevance {
		t.Error("cached analysis must match the fresh one")
	}
}

func TestAnalyzeDifferentClaimMissesCache(t *testing.T) {
	provider := &countingProvider{response: wellFormedAnalysis}
	store := cache.NewMemoryCache(time.Minute, time.Minute)
	a := NewAnalyzer(provider, store, "")

	a.Analyze(context.Background(), "claim one", testDoc())
	a.Analyze(context.Background(), "claim two", testDoc())

	if provider.calls != 2 {
		t.Errorf("oracle called %d times, want 2 for distinct claims", provider.calls)
	}
}

func TestAnalyzeOracleFailureDegrades(t *testing.T) {
	provider := &countingProvider{err: errors.New("rate limited")}
	a := NewAnalyzer(provider, nil, "")

	analysis := a.Analyze(context.Background(), "any claim", testDoc())
	if analysis.Relevance != model.RelevanceNotRelevant {
		t.Errorf("relevance = %q, want NOT RELEVANT", analysis.Relevance)
	}
	if analysis.Validity != model.ValidityUnknown {
		t.Errorf("validity = %q, want UNKNOWN", analysis.Validity)
	}
	if analysis.Included() {
		t.Error("degraded analysis must be excluded from scoring")
	}
}

func TestAnalyzeFailureNotCached(t *testing.T) {
	provider := &countingProvider{err: errors.New("transient")}
	store := cache.NewMemoryCache(time.Minute, time.Minute)
	a := NewAnalyzer(provider, store, "")

	a.Analyze(context.Background(), "claim", testDoc())

	// Recovery: the next call should reach the oracle again.
	provider.err = nil
	provider.response = wellFormedAnalysis
	analysis := a.Analyze(context.Background(), "claim", testDoc())
	if provider.calls != 2 {
		t.Errorf("oracle called %d times, want 2", provider.calls)
	}
	if analysis.Relevance != model.RelevanceDirect {
		t.Error("retry after transient failure should succeed")
	}
}
