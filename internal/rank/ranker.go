// Package rank pre-filters fetched papers by semantic similarity to
// the claim, so only the closest abstracts reach the analysis oracle.
package rank

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/claimsift/claimsift/internal/model"
)

// Embedder turns texts into dense vectors. Inputs map to outputs by
// index.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Ranker orders documents by embedding similarity to the claim.
type Ranker struct {
	embedder Embedder
}

// NewRanker creates a ranker over the given embedder.
func NewRanker(embedder Embedder) *Ranker {
	return &Ranker{embedder: embedder}
}

// Rank returns the topK documents most similar to the claim, most
// similar first. Ties break by original input order, so the ranking is
// deterministic for a fixed embedder.
func (r *Ranker) Rank(ctx context.Context, claim string, docs []model.Document, topK int) ([]model.Document, error) {
	if len(docs) == 0 || topK <= 0 {
		return nil, nil
	}
	if topK >= len(docs) {
		topK = len(docs)
	}

	texts := make([]string, 0, len(docs)+1)
	texts = append(texts, claim)
	for _, doc := range docs {
		texts = append(texts, docText(doc))
	}

	vectors, err := r.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embed: got %d vectors for %d texts", len(vectors), len(texts))
	}

	claimVec := vectors[0]
	type scored struct {
		index int
		sim   float64
	}
	ranked := make([]scored, len(docs))
	for i := range docs {
		ranked[i] = scored{index: i, sim: cosine(claimVec, vectors[i+1])}
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].sim > ranked[b].sim
	})

	out := make([]model.Document, 0, topK)
	for _, s := range ranked[:topK] {
		out = append(out, docs[s.index])
	}
	return out, nil
}

// docText is the text the document is embedded as. Title plus abstract
// carries enough signal; full sections would blow past embedding input
// limits on long papers.
func docText(doc model.Document) string {
	return strings.TrimSpace(doc.Title + "\n" + doc.Abstract)
}

// cosine computes cosine similarity, 0 for zero-length or mismatched
// vectors.
func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
