package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/claimsift/claimsift/internal/model"
	"github.com/claimsift/claimsift/internal/normalize"
	"github.com/claimsift/claimsift/internal/query"
	"github.com/claimsift/claimsift/internal/score"
)

type fakeExtractor struct {
	claim *model.Claim
	err   error
}

func (f *fakeExtractor) Extract(context.Context, string) (*model.Claim, error) {
	return f.claim, f.err
}

type fakeLiterature struct {
	pmids     []string
	docs      []model.Document
	searchErr error
	lastQuery string
	lastMax   int
}

func (f *fakeLiterature) Search(_ context.Context, q string, max int) ([]string, error) {
	f.lastQuery = q
	f.lastMax = max
	return f.pmids, f.searchErr
}

func (f *fakeLiterature) Fetch(context.Context, []string) ([]model.Document, error) {
	return f.docs, nil
}

// fakeAnalyzer maps PMIDs to canned analyses.
type fakeAnalyzer struct {
	analyses map[string]model.DocumentAnalysis
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _ string, doc model.Document) model.DocumentAnalysis {
	return f.analyses[doc.PMID]
}

type headRanker struct{ called bool }

func (r *headRanker) Rank(_ context.Context, _ string, docs []model.Document, topK int) ([]model.Document, error) {
	r.called = true
	return docs[:topK], nil
}

func testPipeline(cfg *model.Config, extractor ClaimExtractor, lit Literature, ranker Ranker, analyzer PaperAnalyzer) *Pipeline {
	normalizer := normalize.New(normalize.NewTable(map[string]normalize.Entry{
		"chia seeds":   {StandardTerm: "chia", CUI: "C2267497"},
		"heart health": {StandardTerm: "cardiovascular health", CUI: "C4277571"},
	}))

	return &Pipeline{
		extractor:  extractor,
		normalizer: normalizer,
		builder:    query.NewBuilder(normalizer),
		literature: lit,
		ranker:     ranker,
		analyzer:   analyzer,
		scorer:     score.NewScorer(),
		renderer:   NewRenderer(false),
		config:     cfg,
	}
}

func analysis(rel model.Relevance, val model.Validity, conf float64) model.DocumentAnalysis {
	return model.DocumentAnalysis{
		Relevance:         rel,
		OverallConfidence: conf,
		Validity:          val,
	}
}

func TestCheckClaimFullRun(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = false
	cfg.MaxPapers = 5

	lit := &fakeLiterature{
		pmids: []string{"1", "2", "3"},
		docs: []model.Document{
			{PMID: "1", Title: "Direct supporting trial"},
			{PMID: "2", Title: "Contradicting cohort"},
			{PMID: "3", Title: "Unrelated paper"},
		},
	}
	analyzer := &fakeAnalyzer{analyses: map[string]model.DocumentAnalysis{
		"1": analysis(model.RelevanceDirect, model.ValiditySupports, 0.8),
		"2": analysis(model.RelevanceIndirect, model.ValidityContradicts, 0.6),
		"3": analysis(model.RelevanceNotRelevant, model.ValidityUnknown, 0),
	}}
	extractor := &fakeExtractor{claim: &model.Claim{Subject: "chia seeds", Outcome: "heart health"}}

	p := testPipeline(cfg, extractor, lit, nil, analyzer)
	report, err := p.CheckClaim(context.Background(), "chia seeds are great for heart health")
	if err != nil {
		t.Fatalf("CheckClaim failed: %v", err)
	}

	if !report.ClaimFound {
		t.Error("expected ClaimFound")
	}
	if len(report.Documents) != 2 {
		t.Fatalf("got %d documents, want 2", len(report.Documents))
	}
	if report.Excluded != 1 {
		t.Errorf("excluded = %d, want 1", report.Excluded)
	}
	if report.Verdict != model.VerdictSupported {
		t.Errorf("verdict = %q, want supported", report.Verdict)
	}
	if report.Score.Value <= 0 {
		t.Errorf("score = %v, want positive", report.Score.Value)
	}
	// Input order survives the concurrent analysis.
	if report.Documents[0].Document.PMID != "1" || report.Documents[1].Document.PMID != "2" {
		t.Errorf("document order = %s, %s", report.Documents[0].Document.PMID, report.Documents[1].Document.PMID)
	}
	if !strings.Contains(lit.lastQuery, `"chia seeds"[TIAB]`) {
		t.Errorf("query = %q, expected subject group", lit.lastQuery)
	}
}

func TestCheckClaimNoEvidence(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = false

	lit := &fakeLiterature{pmids: nil}
	extractor := &fakeExtractor{claim: &model.Claim{Subject: "zorblax", Outcome: "longevity"}}

	p := testPipeline(cfg, extractor, lit, nil, &fakeAnalyzer{})
	report, err := p.CheckClaim(context.Background(), "zorblax extends longevity")
	if err != nil {
		t.Fatalf("CheckClaim failed: %v", err)
	}

	if !report.NoEvidence {
		t.Error("expected NoEvidence")
	}
	if report.Verdict != model.VerdictInconclusive {
		t.Errorf("verdict = %q, want inconclusive", report.Verdict)
	}
	if report.Score.Value != 0 {
		t.Errorf("score = %v, want 0", report.Score.Value)
	}
}

func TestCheckClaimFallbackOnExtractionFailure(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = false

	lit := &fakeLiterature{pmids: nil}
	extractor := &fakeExtractor{err: errors.New("provider down")}

	p := testPipeline(cfg, extractor, lit, nil, &fakeAnalyzer{})
	report, err := p.CheckClaim(context.Background(), "studies show turmeric reduces chronic inflammation")
	if err != nil {
		t.Fatalf("CheckClaim failed: %v", err)
	}

	if report.ClaimFound {
		t.Error("extraction failure must not set ClaimFound")
	}
	if report.Query == "" {
		t.Fatal("expected fallback query")
	}
	if !strings.Contains(report.Query, `"turmeric"[TIAB]`) {
		t.Errorf("fallback query = %q", report.Query)
	}
}

func TestCheckClaimNoExtractorUsesFallback(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = false

	lit := &fakeLiterature{pmids: nil}
	p := testPipeline(cfg, nil, lit, nil, &fakeAnalyzer{})

	report, err := p.CheckClaim(context.Background(), "turmeric reduces chronic inflammation")
	if err != nil {
		t.Fatalf("CheckClaim failed: %v", err)
	}
	if report.ClaimFound {
		t.Error("no extractor means no structured claim")
	}
}

func TestCheckClaimSearchError(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = false

	lit := &fakeLiterature{searchErr: errors.New("pubmed down")}
	extractor := &fakeExtractor{claim: &model.Claim{Subject: "a", Outcome: "b"}}

	p := testPipeline(cfg, extractor, lit, nil, &fakeAnalyzer{})
	if _, err := p.CheckClaim(context.Background(), "a improves b"); err == nil {
		t.Error("expected error when search fails")
	}
}

func TestCheckClaimOverFetchAndShortlist(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = false
	cfg.MaxPapers = 2

	docs := make([]model.Document, 6)
	analyses := map[string]model.DocumentAnalysis{}
	pmids := make([]string, 6)
	for i := range docs {
		pmid := string(rune('1' + i))
		docs[i] = model.Document{PMID: pmid, Title: "paper " + pmid}
		analyses[pmid] = analysis(model.RelevanceDirect, model.ValiditySupports, 0.5)
		pmids[i] = pmid
	}
	lit := &fakeLiterature{pmids: pmids, docs: docs}
	ranker := &headRanker{}
	extractor := &fakeExtractor{claim: &model.Claim{Subject: "chia seeds", Outcome: "heart health"}}

	p := testPipeline(cfg, extractor, lit, ranker, &fakeAnalyzer{analyses: analyses})
	report, err := p.CheckClaim(context.Background(), "chia seeds help heart health")
	if err != nil {
		t.Fatalf("CheckClaim failed: %v", err)
	}

	if lit.lastMax != 6 {
		t.Errorf("search retmax = %d, want MaxPapers*3 = 6", lit.lastMax)
	}
	if !ranker.called {
		t.Error("expected ranker to shortlist")
	}
	if len(report.Documents) != 2 {
		t.Errorf("got %d documents, want MaxPapers = 2", len(report.Documents))
	}
}

func TestCheckClaimNormalizedTermsInReport(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = false

	lit := &fakeLiterature{pmids: nil}
	extractor := &fakeExtractor{claim: &model.Claim{Subject: "chia seeds", Outcome: "heart health"}}

	p := testPipeline(cfg, extractor, lit, nil, &fakeAnalyzer{})
	report, err := p.CheckClaim(context.Background(), "chia seeds help heart health")
	if err != nil {
		t.Fatalf("CheckClaim failed: %v", err)
	}

	if len(report.Normalized) != 2 {
		t.Fatalf("got %d normalized terms, want 2", len(report.Normalized))
	}
	if report.Normalized[0].StandardTerm != "chia" {
		t.Errorf("subject normalized to %q", report.Normalized[0].StandardTerm)
	}
	if report.Normalized[1].StandardTerm != "cardiovascular health" {
		t.Errorf("outcome normalized to %q", report.Normalized[1].StandardTerm)
	}
}
