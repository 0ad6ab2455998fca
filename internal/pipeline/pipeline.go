// Package pipeline orchestrates the complete claim check: extract,
// normalize, search, fetch, rank, analyze, score.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/claimsift/claimsift/internal/analyze"
	"github.com/claimsift/claimsift/internal/cache"
	"github.com/claimsift/claimsift/internal/extract"
	"github.com/claimsift/claimsift/internal/llm"
	"github.com/claimsift/claimsift/internal/model"
	"github.com/claimsift/claimsift/internal/normalize"
	"github.com/claimsift/claimsift/internal/pubmed"
	"github.com/claimsift/claimsift/internal/query"
	"github.com/claimsift/claimsift/internal/rank"
	"github.com/claimsift/claimsift/internal/score"
	"github.com/claimsift/claimsift/internal/worker"
)

// ClaimExtractor turns free text into a structured claim, or nil when
// none is present.
type ClaimExtractor interface {
	Extract(ctx context.Context, text string) (*model.Claim, error)
}

// Literature searches and fetches papers.
type Literature interface {
	Search(ctx context.Context, query string, max int) ([]string, error)
	Fetch(ctx context.Context, pmids []string) ([]model.Document, error)
}

// Ranker pre-filters fetched papers by similarity to the claim.
type Ranker interface {
	Rank(ctx context.Context, claim string, docs []model.Document, topK int) ([]model.Document, error)
}

// PaperAnalyzer judges one paper against the claim.
type PaperAnalyzer interface {
	Analyze(ctx context.Context, claim string, doc model.Document) model.DocumentAnalysis
}

// Pipeline orchestrates the complete check process
type Pipeline struct {
	extractor  ClaimExtractor // nil when no oracle provider is configured
	normalizer *normalize.Normalizer
	builder    *query.Builder
	literature Literature
	ranker     Ranker // nil when ranking is disabled
	analyzer   PaperAnalyzer
	scorer     *score.Scorer
	renderer   *Renderer
	cache      cache.Cache // nil when caching is disabled
	config     *model.Config
}

// NewPipeline creates a pipeline with the given configuration.
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("init LLM provider: %w", err)
	}

	table := normalize.NewTable(nil)
	if cfg.Normalize.TablePath != "" {
		table, err = normalize.LoadTable(cfg.Normalize.TablePath)
		if err != nil {
			return nil, fmt.Errorf("load lookup table: %w", err)
		}
	}
	normalizer := normalize.New(table, normalize.WithFuzzyThreshold(cfg.Normalize.FuzzyThreshold))

	var store cache.Cache
	if cfg.Cache.Enabled {
		store = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}

	var extractor ClaimExtractor
	if provider != nil {
		extractor = extract.NewExtractor(provider, cfg.LLM.Model)
	}

	var ranker Ranker
	if cfg.Rank.Enabled && cfg.Rank.APIKey != "" {
		embedder, err := rank.NewOpenAIEmbedder(cfg.Rank.APIKey, cfg.Rank.Model)
		if err != nil {
			fmt.Printf("Warning: embedding ranker disabled: %v\n", err)
		} else {
			ranker = rank.NewRanker(embedder)
		}
	}

	return &Pipeline{
		extractor:  extractor,
		normalizer: normalizer,
		builder:    query.NewBuilder(normalizer),
		literature: pubmed.NewClient(cfg.PubMed),
		ranker:     ranker,
		analyzer:   analyze.NewAnalyzer(provider, store, cfg.LLM.Model),
		scorer:     score.NewScorer(),
		renderer:   NewRenderer(cfg.Output.IncludeFooter),
		cache:      store,
		config:     cfg,
	}, nil
}

// CheckClaim runs one claim through the full pipeline and returns the
// report. Failure to extract a structured claim is not fatal: the check
// proceeds on a keyword fallback query with ClaimFound false.
func (p *Pipeline) CheckClaim(ctx context.Context, text string) (*model.Report, error) {
	report := &model.Report{
		Input:     text,
		CheckedAt: time.Now().UTC(),
	}

	claim := p.extractClaim(ctx, text)
	if claim != nil {
		report.ClaimFound = true
		report.Claim = claim
		report.Normalized = p.normalizeClaim(claim)
	}

	report.Query = p.buildQuery(text, claim)

	// Over-fetch so the ranker has candidates to discard, capped to
	// keep E-utilities happy.
	fetchCount := p.config.MaxPapers * 3
	if fetchCount > 100 {
		fetchCount = 100
	}
	pmids, err := p.literature.Search(ctx, report.Query, fetchCount)
	if err != nil {
		return nil, fmt.Errorf("search literature: %w", err)
	}
	if len(pmids) == 0 {
		report.NoEvidence = true
		report.Verdict = model.VerdictInconclusive
		return report, nil
	}

	docs, err := p.literature.Fetch(ctx, pmids)
	if err != nil {
		return nil, fmt.Errorf("fetch papers: %w", err)
	}
	if len(docs) == 0 {
		report.NoEvidence = true
		report.Verdict = model.VerdictInconclusive
		return report, nil
	}

	claimText := text
	if claim != nil {
		claimText = claim.Text()
	}

	docs = p.shortlist(ctx, claimText, docs)

	analyzed := p.analyzeAll(ctx, claimText, docs)
	for _, ad := range analyzed {
		if ad.Analysis.Included() {
			report.Documents = append(report.Documents, ad)
		} else {
			report.Excluded++
		}
	}

	report.Score = p.scorer.Score(report.Documents)
	report.Verdict = report.Score.Verdict()
	if len(report.Documents) == 0 {
		report.NoEvidence = true
	}

	return report, nil
}

// extractClaim runs the oracle extraction. Errors degrade to "no claim
// found" so the keyword fallback still produces a check.
func (p *Pipeline) extractClaim(ctx context.Context, text string) *model.Claim {
	if p.extractor == nil {
		return nil
	}
	claim, err := p.extractor.Extract(ctx, text)
	if err != nil {
		fmt.Printf("Warning: claim extraction failed, using keyword fallback: %v\n", err)
		return nil
	}
	return claim
}

// normalizeClaim records how the subject and outcome phrases map to
// standardized concepts, for the report.
func (p *Pipeline) normalizeClaim(claim *model.Claim) []model.NormalizedTerm {
	maxLen := p.config.Normalize.MaxPhraseLength
	terms := p.normalizer.NormalizeClaimPhrases(claim.Subject, maxLen)
	return append(terms, p.normalizer.NormalizeClaimPhrases(claim.Outcome, maxLen)...)
}

// buildQuery synthesizes (or recalls) the search expression. The query
// is memoized per input text: identical claims always search the same
// expression.
func (p *Pipeline) buildQuery(text string, claim *model.Claim) string {
	key := cache.QueryKey(text)
	if p.cache != nil {
		if cached, found := p.cache.Get(key); found {
			return string(cached)
		}
	}

	opts := query.OptionsFromConfig(p.config.Query, p.config.Normalize.MaxPhraseLength)
	var q string
	if claim != nil {
		q = p.builder.Build(claim.Subject, claim.Outcome, opts)
	} else {
		q = p.builder.BuildFallback(text, opts)
	}

	if p.cache != nil {
		_ = p.cache.Set(key, []byte(q), 0)
	}
	return q
}

// shortlist cuts the fetched set down to MaxPapers, by embedding
// similarity when the ranker is available and by search order
// otherwise.
func (p *Pipeline) shortlist(ctx context.Context, claimText string, docs []model.Document) []model.Document {
	max := p.config.MaxPapers
	if max <= 0 || len(docs) <= max {
		return docs
	}

	if p.ranker != nil {
		ranked, err := p.ranker.Rank(ctx, claimText, docs, max)
		if err == nil {
			return ranked
		}
		fmt.Printf("Warning: ranking failed, keeping search order: %v\n", err)
	}
	return docs[:max]
}

// analysisJob judges one paper; index preserves input order across the
// pool's completion-order results.
type analysisJob struct {
	index    int
	doc      model.Document
	claim    string
	analyzer PaperAnalyzer
}

type analysisResult struct {
	index    int
	analyzed model.AnalyzedDocument
}

func (r *analysisResult) GetError() error { return nil }

func (j *analysisJob) Execute(ctx context.Context) worker.Result {
	return &analysisResult{
		index: j.index,
		analyzed: model.AnalyzedDocument{
			Document: j.doc,
			Analysis: j.analyzer.Analyze(ctx, j.claim, j.doc),
		},
	}
}

// analyzeAll runs paper analyses concurrently, returning results in
// input order.
func (p *Pipeline) analyzeAll(ctx context.Context, claimText string, docs []model.Document) []model.AnalyzedDocument {
	workers := p.config.Concurrency.AnalysisWorkers
	pool := worker.NewPool(workers)
	pool.Start()

	for i, doc := range docs {
		pool.Submit(&analysisJob{
			index:    i,
			doc:      doc,
			claim:    claimText,
			analyzer: p.analyzer,
		})
	}

	results := pool.Wait()
	ordered := make([]*analysisResult, 0, len(results))
	for _, r := range results {
		ordered = append(ordered, r.(*analysisResult))
	}
	sort.Slice(ordered, func(a, b int) bool {
		return ordered[a].index < ordered[b].index
	})

	analyzed := make([]model.AnalyzedDocument, 0, len(ordered))
	for _, r := range ordered {
		analyzed = append(analyzed, r.analyzed)
	}
	return analyzed
}

// RenderReport renders the report to the specified outputs
func (p *Pipeline) RenderReport(report *model.Report, jsonPath string, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	p.renderer.RenderSummary(report)

	return nil
}
