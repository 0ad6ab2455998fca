// Package query turns a claim's subject and outcome into a
// deterministic PubMed boolean search expression.
package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/claimsift/claimsift/internal/model"
	"github.com/claimsift/claimsift/internal/normalize"
)

// Options control the shape of the generated expression. Zero values
// fall back to the standard TIAB/MeSH fields.
type Options struct {
	SearchField      string   // free-text field, default TIAB
	ConceptField     string   // controlled vocabulary field, default "MeSH Terms"
	HumanOnly        bool     // append the human-subject filter
	PublicationTypes []string // explicit publication types; empty means the trial/RCT default
	MaxPhraseLength  int      // passed through to phrase normalization
}

const (
	defaultSearchField  = "TIAB"
	defaultConceptField = "MeSH Terms"
)

// defaultPublicationClause prefers interventional study designs when the
// caller does not pin publication types.
const defaultPublicationClause = "(Clinical Trial[pt] OR Randomized Controlled Trial[pt])"

// studyTypeClause is always appended: it keeps results within designs a
// claim verdict can reasonably rest on.
const studyTypeClause = "(Clinical Trial[pt] OR Randomized Controlled Trial[pt] OR Meta-Analysis[pt] OR Systematic Review[pt] OR Review[pt])"

// conjunctionPattern splits an outcome like "cholesterol and blood
// pressure" into independent sub-outcomes.
var conjunctionPattern = regexp.MustCompile(`\band\b|\bor\b`)

// Builder synthesizes search expressions. It shares the claim's term
// identity with the normalizer it wraps: the same standardized terms
// that describe the claim drive the query.
type Builder struct {
	normalizer *normalize.Normalizer
}

// NewBuilder creates a Builder over the given normalizer.
func NewBuilder(n *normalize.Normalizer) *Builder {
	return &Builder{normalizer: n}
}

// Build constructs the boolean query for a subject/outcome pair.
// Identical inputs always produce a byte-identical string; the query is
// a cache key upstream.
func (b *Builder) Build(subject, outcome string, opts Options) string {
	searchField := opts.SearchField
	if searchField == "" {
		searchField = defaultSearchField
	}
	conceptField := opts.ConceptField
	if conceptField == "" {
		conceptField = defaultConceptField
	}

	subjectTerms := b.expand(subject, opts.MaxPhraseLength)

	var outcomeTerms []string
	for _, sub := range splitConjunctions(outcome) {
		outcomeTerms = append(outcomeTerms, b.expand(sub, opts.MaxPhraseLength)...)
	}
	outcomeTerms = dedupe(outcomeTerms)

	// An empty clause is never emitted: a blank subject or outcome
	// simply drops its group.
	var clauses []string
	if len(subjectTerms) > 0 {
		clauses = append(clauses, orGroup(subjectTerms, searchField, conceptField))
	}
	if len(outcomeTerms) > 0 {
		clauses = append(clauses, orGroup(outcomeTerms, searchField, conceptField))
	}

	return strings.Join(append(clauses, filterClauses(opts, conceptField)...), " AND ")
}

// expand produces the term list for one phrase: the raw phrase first,
// then every standardized term from phrase normalization, deduplicated
// in first-seen order.
func (b *Builder) expand(phrase string, maxPhraseLen int) []string {
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	if phrase == "" {
		return nil
	}

	terms := []string{phrase}
	for _, norm := range b.normalizer.NormalizeClaimPhrases(phrase, maxPhraseLen) {
		terms = append(terms, norm.StandardTerm)
	}
	return dedupe(terms)
}

// filterClauses appends the optional clauses in their fixed order:
// human filter, publication types, language, abstract presence, study
// types.
func filterClauses(opts Options, conceptField string) []string {
	var clauses []string

	if opts.HumanOnly {
		clauses = append(clauses, fmt.Sprintf("humans[%s]", conceptField))
	}

	if len(opts.PublicationTypes) > 0 {
		types := make([]string, len(opts.PublicationTypes))
		for i, pt := range opts.PublicationTypes {
			types[i] = pt + "[pt]"
		}
		clauses = append(clauses, "("+strings.Join(types, " OR ")+")")
	} else {
		clauses = append(clauses, defaultPublicationClause)
	}

	clauses = append(clauses,
		"English[lang]",
		"hasabstract",
		studyTypeClause,
	)
	return clauses
}

// orGroup renders one parenthesized OR-expression scoping every term to
// both the free-text and the controlled-vocabulary field.
func orGroup(terms []string, searchField, conceptField string) string {
	parts := make([]string, 0, len(terms)*2)
	for _, term := range terms {
		parts = append(parts,
			fmt.Sprintf("%q[%s]", term, searchField),
			fmt.Sprintf("%q[%s]", term, conceptField),
		)
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

func splitConjunctions(outcome string) []string {
	var subs []string
	for _, part := range conjunctionPattern.Split(strings.ToLower(outcome), -1) {
		if part = strings.TrimSpace(part); part != "" {
			subs = append(subs, part)
		}
	}
	return subs
}

func dedupe(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	var unique []string
	for _, term := range terms {
		if !seen[term] {
			seen[term] = true
			unique = append(unique, term)
		}
	}
	return unique
}

// OptionsFromConfig converts the configured query defaults.
func OptionsFromConfig(cfg model.QueryConfig, maxPhraseLen int) Options {
	return Options{
		SearchField:      cfg.SearchField,
		ConceptField:     cfg.ConceptField,
		HumanOnly:        cfg.HumanOnly,
		PublicationTypes: cfg.PublicationTypes,
		MaxPhraseLength:  maxPhraseLen,
	}
}
