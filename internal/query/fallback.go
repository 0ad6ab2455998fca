package query

import (
	"fmt"
	"regexp"
	"strings"
)

// stopwords dropped by the keyword fallback before anything else.
var stopwords = map[string]bool{
	"the": true, "and": true, "or": true, "with": true, "for": true,
	"that": true, "this": true, "are": true, "was": true, "has": true,
	"had": true, "have": true, "from": true, "per": true, "just": true,
	"ever": true, "show": true, "shows": true, "been": true, "will": true,
	"can": true, "may": true, "but": true, "not": true, "all": true,
	"any": true, "out": true, "our": true, "your": true, "their": true,
	"more": true, "less": true, "than": true, "each": true, "new": true,
	"best": true, "good": true, "bad": true, "great": true, "very": true,
	"much": true, "some": true, "most": true, "such": true, "also": true,
	"like": true, "get": true, "got": true, "make": true, "made": true,
	"use": true, "used": true, "using": true, "into": true, "over": true,
	"under": true, "about": true, "after": true, "before": true,
	"while": true, "when": true, "where": true, "which": true, "who": true,
	"whose": true, "whom": true, "because": true, "since": true,
	"until": true, "though": true, "although": true, "if": true,
	"then": true, "so": true, "too": true, "as": true, "on": true,
	"in": true, "by": true, "of": true, "to": true, "at": true,
	"is": true, "it": true, "an": true, "a": true,
}

var tokenPattern = regexp.MustCompile(`\b\w+\b`)

// BuildFallback constructs a query directly from the raw claim text,
// used whenever subject/outcome extraction is unavailable. Keywords are
// the claim's tokens minus stopwords and anything of length <= 3. With
// two or more keywords the first acts as subject and the rest as
// outcome terms; with one keyword it is searched alone; with none the
// whole claim is quoted verbatim. Degenerate input is an expected
// outcome; this never fails.
func (b *Builder) BuildFallback(claim string, opts Options) string {
	searchField := opts.SearchField
	if searchField == "" {
		searchField = defaultSearchField
	}
	conceptField := opts.ConceptField
	if conceptField == "" {
		conceptField = defaultConceptField
	}

	var keywords []string
	for _, word := range tokenPattern.FindAllString(strings.ToLower(claim), -1) {
		if len(word) > 3 && !stopwords[word] {
			keywords = append(keywords, word)
		}
	}

	var clauses []string
	switch {
	case len(keywords) >= 2:
		clauses = []string{
			orGroup(keywords[:1], searchField, conceptField),
			orGroup(keywords[1:], searchField, conceptField),
		}
	case len(keywords) == 1:
		clauses = []string{
			fmt.Sprintf("%q[%s]", keywords[0], searchField),
			fmt.Sprintf("%q[%s]", keywords[0], conceptField),
		}
	default:
		// Last resort: quote the whole claim. Embedded double quotes
		// would break the expression, so they become single quotes.
		term := strings.ReplaceAll(strings.TrimSpace(claim), `"`, "'")
		clauses = []string{
			fmt.Sprintf("%q[%s]", term, searchField),
			fmt.Sprintf("%q[%s]", term, conceptField),
		}
	}

	return strings.Join(append(clauses, filterClauses(opts, conceptField)...), " AND ")
}
