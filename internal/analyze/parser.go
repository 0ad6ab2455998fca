package analyze

import (
	"math"
	"strconv"
	"strings"

	"github.com/claimsift/claimsift/internal/model"
)

// mismatchTolerance bounds how far the reported overall confidence may
// drift from the weighted average of its sub-scores before the analysis
// is flagged. The reported value stays authoritative either way.
const mismatchTolerance = 0.05

// ParseAnalysis parses the oracle's line-oriented analysis output. The
// format is label-prefixed lines; confidence sub-scores are "- name:
// value" lines between CONFIDENCE_SCORES: and OVERALL_CONFIDENCE:.
// Malformed lines are skipped, never fatal: a missing field keeps its
// zero value.
func ParseAnalysis(raw string) model.DocumentAnalysis {
	analysis := model.DocumentAnalysis{
		ConfidenceScores: map[string]float64{},
	}

	inScores := false
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, "RELEVANCE:"):
			analysis.Relevance = model.Relevance(trimLabel(line, "RELEVANCE:"))

		case strings.HasPrefix(line, "CONFIDENCE_SCORES:"):
			inScores = true

		case strings.HasPrefix(line, "OVERALL_CONFIDENCE:"):
			inScores = false
			if v, err := strconv.ParseFloat(trimLabel(line, "OVERALL_CONFIDENCE:"), 64); err == nil {
				analysis.OverallConfidence = clamp01(v)
			}

		case inScores && strings.HasPrefix(line, "- "):
			name, score, ok := parseScoreLine(line)
			if ok {
				analysis.ConfidenceScores[name] = score
			}

		case strings.HasPrefix(line, "CONFIDENCE_REASON:"):
			analysis.ConfidenceReason = trimLabel(line, "CONFIDENCE_REASON:")

		case strings.HasPrefix(line, "SUMMARY:"):
			analysis.Summary = trimLabel(line, "SUMMARY:")

		case strings.HasPrefix(line, "VALIDITY:"):
			analysis.Validity = model.Validity(trimLabel(line, "VALIDITY:"))

		case strings.HasPrefix(line, "REASONING:"):
			analysis.Reasoning = trimLabel(line, "REASONING:")
		}
	}

	flagMismatch(&analysis)
	return analysis
}

// parseScoreLine parses a "- <criterion>: <value>" line. A line whose
// value does not parse as a float is dropped alone; the other criteria
// survive.
func parseScoreLine(line string) (string, float64, bool) {
	body := strings.TrimPrefix(line, "- ")
	name, value, found := strings.Cut(body, ":")
	if !found {
		return "", 0, false
	}
	score, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return "", 0, false
	}
	return strings.TrimSpace(name), clamp01(score), true
}

// flagMismatch marks analyses whose reported overall confidence strays
// from the weighted average of the sub-scores. Flag only: the reported
// value is never corrected.
func flagMismatch(analysis *model.DocumentAnalysis) {
	weighted, ok := analysis.WeightedConfidence()
	if !ok {
		return
	}
	if math.Abs(analysis.OverallConfidence-weighted) > mismatchTolerance {
		analysis.ConfidenceMismatch = true
	}
}

func trimLabel(line, label string) string {
	return strings.TrimSpace(strings.TrimPrefix(line, label))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
