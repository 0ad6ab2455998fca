package normalize

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/adrg/strutil/metrics"

	"github.com/claimsift/claimsift/internal/model"
)

// DefaultFuzzyThreshold is the minimum similarity (0-100 scale) for a
// fuzzy match to be accepted. Calibrated against the CHV vocabulary;
// lower values start producing spurious neighbors.
const DefaultFuzzyThreshold = 95

// standaloneTerms only normalize when they are not embedded inside a
// longer phrase. "drinking" alone means alcohol consumption; "drinking
// water" does not.
var standaloneTerms = map[string]string{
	"drinking": "alcohol consumption",
}

// periodPainCluster maps the common consumer variants of menstrual pain
// straight to the canonical concept.
var periodPainCluster = []string{
	"period cramping",
	"period pain",
	"menstrual pain",
	"menstrual cramps",
}

const (
	dysmenorrheaTerm = "dysmenorrhea"
	dysmenorrheaCUI  = "C0013390"
)

// connectors split descriptor phrases like "relief from headaches" into
// descriptor + trailing condition.
var connectors = []string{" from ", " of ", " in ", " due to "}

var wordPattern = regexp.MustCompile(`[a-z0-9]+`)

// Observer is invoked once per successful normalization. It replaces
// hidden side effects: callers wire logging in, the algorithm stays
// pure.
type Observer func(term, context string, result model.NormalizedTerm)

// Normalizer resolves consumer phrases to standardized terms against an
// injected lookup table. It is safe for concurrent use: all state is
// read-only after construction.
type Normalizer struct {
	table     *Table
	threshold float64
	metric    *metrics.Levenshtein
	observer  Observer
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithFuzzyThreshold overrides the fuzzy acceptance threshold (0-100).
func WithFuzzyThreshold(threshold float64) Option {
	return func(n *Normalizer) {
		n.threshold = threshold
	}
}

// WithObserver registers a callback invoked per successful match.
func WithObserver(obs Observer) Option {
	return func(n *Normalizer) {
		n.observer = obs
	}
}

// New creates a Normalizer over the given table.
func New(table *Table, opts ...Option) *Normalizer {
	// Substitutions cost 2 so the distance counts pure inserts and
	// deletes, which is what the indel ratio normalizes.
	metric := metrics.NewLevenshtein()
	metric.CaseSensitive = false
	metric.ReplaceCost = 2

	n := &Normalizer{
		table:     table,
		threshold: DefaultFuzzyThreshold,
		metric:    metric,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize resolves one term to its standardized form. Resolution
// steps short-circuit in order: standalone-ambiguity check, exact
// lookup, fuzzy match, reduction. Normalization never fails: when
// nothing matches, the term is returned verbatim with MatchUnmatched
// and callers tolerate the degraded result.
func (n *Normalizer) Normalize(term, context string) model.NormalizedTerm {
	term = strings.ToLower(strings.TrimSpace(term))

	if std, ok := standaloneTerms[term]; ok {
		if suppressed(term, context) {
			return unmatched(term)
		}
		result := model.NormalizedTerm{
			Original:     term,
			StandardTerm: std,
			Method:       model.MatchContextual,
		}
		// The vocabulary table is authoritative when it knows the term;
		// the curated map only supplies the disambiguated reading for
		// terms the table lacks.
		if entry, ok := n.table.Lookup(term); ok {
			result.StandardTerm = entry.StandardTerm
			result.ConceptID = entry.CUI
		}
		return n.observe(term, context, result)
	}

	if result, ok := n.resolve(term); ok {
		return n.observe(term, context, result)
	}

	if result, ok := n.reduce(term); ok {
		return n.observe(term, context, result)
	}

	return unmatched(term)
}

// resolve runs the exact and fuzzy steps only.
func (n *Normalizer) resolve(term string) (model.NormalizedTerm, bool) {
	if entry, ok := n.table.Lookup(term); ok {
		return model.NormalizedTerm{
			Original:     term,
			StandardTerm: entry.StandardTerm,
			ConceptID:    entry.CUI,
			Method:       model.MatchExact,
		}, true
	}
	return n.fuzzy(term)
}

// fuzzy scans every table key for the best similarity score. Keys are
// iterated in sorted order and ties require a strictly greater score,
// so equal scores keep the lexicographically smallest key and output
// stays deterministic.
func (n *Normalizer) fuzzy(term string) (model.NormalizedTerm, bool) {
	var bestKey string
	bestScore := -1.0

	for _, key := range n.table.Keys() {
		score := n.ratio(term, key)
		if score > bestScore {
			bestScore = score
			bestKey = key
		}
	}

	if bestScore < n.threshold || bestKey == "" {
		return model.NormalizedTerm{}, false
	}

	entry, _ := n.table.Lookup(bestKey)
	return model.NormalizedTerm{
		Original:     term,
		StandardTerm: entry.StandardTerm,
		ConceptID:    entry.CUI,
		Method:       model.MatchFuzzy,
	}, true
}

// ratio is the indel similarity on a 0-100 scale:
// 100 * (|a| + |b| - indel(a, b)) / (|a| + |b|), where indel counts a
// substitution as one delete plus one insert. Normalizing by the
// combined length keeps single-character slips in short phrases above
// the acceptance threshold; normalizing by the longer string alone
// would not.
func (n *Normalizer) ratio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 100
	}
	return 100 * float64(total-n.metric.Distance(a, b)) / float64(total)
}

// reduce handles phrases the table cannot resolve directly: known
// synonym clusters map straight to their canonical concept, and
// connector phrases ("X from/of/in/due to Y") are retried on the
// trailing condition Y.
func (n *Normalizer) reduce(term string) (model.NormalizedTerm, bool) {
	for _, variant := range periodPainCluster {
		if strings.Contains(term, variant) {
			return model.NormalizedTerm{
				Original:     term,
				StandardTerm: dysmenorrheaTerm,
				ConceptID:    dysmenorrheaCUI,
				Method:       model.MatchReduced,
			}, true
		}
	}

	for _, sep := range connectors {
		if !strings.Contains(term, sep) {
			continue
		}
		parts := strings.Split(term, sep)
		trailing := strings.TrimSpace(parts[len(parts)-1])
		if trailing == "" {
			return model.NormalizedTerm{}, false
		}
		if hit, ok := n.resolve(trailing); ok {
			return model.NormalizedTerm{
				Original:     term,
				StandardTerm: hit.StandardTerm,
				ConceptID:    hit.ConceptID,
				Method:       model.MatchReduced,
			}, true
		}
		// Best effort: keep the trailing phrase verbatim.
		return model.NormalizedTerm{
			Original:     term,
			StandardTerm: trailing,
			Method:       model.MatchReduced,
		}, true
	}

	return model.NormalizedTerm{}, false
}

func (n *Normalizer) observe(term, context string, result model.NormalizedTerm) model.NormalizedTerm {
	if n.observer != nil {
		n.observer(term, context, result)
	}
	return result
}

// suppressed reports whether a standalone-ambiguous term appears as
// part of a compound phrase in its context rather than standing alone.
func suppressed(term, context string) bool {
	if context == "" {
		return false
	}
	words := wordPattern.FindAllString(strings.ToLower(context), -1)
	if len(words) <= 1 {
		return false
	}
	for _, w := range words {
		if w == term {
			return true
		}
	}
	return false
}

func unmatched(term string) model.NormalizedTerm {
	return model.NormalizedTerm{
		Original:     term,
		StandardTerm: term,
		Method:       model.MatchUnmatched,
	}
}
