package normalize

import (
	"strings"

	"github.com/claimsift/claimsift/internal/model"
)

// DefaultMaxPhraseLength bounds the longest multi-word phrase tried by
// the greedy covering pass.
const DefaultMaxPhraseLength = 5

// NormalizeClaimPhrases normalizes every phrase in a claim with a
// greedy, non-overlapping covering: longer phrases are tried first and
// claim every token they match, so "heart attack" wins over separate
// "heart" and "attack" hits. Only exact table lookups participate;
// fuzzy and reduction fallbacks would make spans ambiguous. The final
// length-1 pass picks up any remaining uncovered single tokens.
//
// Every token index belongs to at most one result.
func (n *Normalizer) NormalizeClaimPhrases(claim string, maxPhraseLen int) []model.NormalizedTerm {
	if maxPhraseLen <= 0 {
		maxPhraseLen = DefaultMaxPhraseLength
	}

	words := strings.Fields(strings.ToLower(claim))
	if len(words) == 0 {
		return nil
	}
	if maxPhraseLen > len(words) {
		maxPhraseLen = len(words)
	}

	used := make([]bool, len(words))
	var results []model.NormalizedTerm

	for length := maxPhraseLen; length >= 1; length-- {
		for start := 0; start+length <= len(words); start++ {
			if anyUsed(used, start, length) {
				continue
			}
			phrase := strings.Join(words[start:start+length], " ")
			entry, ok := n.table.Lookup(phrase)
			if !ok {
				continue
			}
			results = append(results, model.NormalizedTerm{
				Original:     phrase,
				StandardTerm: entry.StandardTerm,
				ConceptID:    entry.CUI,
				Method:       model.MatchExact,
			})
			for i := start; i < start+length; i++ {
				used[i] = true
			}
		}
	}

	return results
}

func anyUsed(used []bool, start, length int) bool {
	for i := start; i < start+length; i++ {
		if used[i] {
			return true
		}
	}
	return false
}
