package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/claimsift/claimsift/internal/model"
)

// Renderer writes reports as JSON, Markdown and a terminal summary.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer.
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the full report as indented JSON.
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// RenderMarkdown writes a human-readable report.
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	var md strings.Builder

	md.WriteString("# Claim Check Report\n\n")
	md.WriteString(fmt.Sprintf("**Input:** %s\n\n", report.Input))
	md.WriteString(fmt.Sprintf("**Checked:** %s\n\n", report.CheckedAt.Format("2006-01-02 15:04 UTC")))

	if report.Claim != nil {
		md.WriteString(fmt.Sprintf("**Claim:** %s → %s\n\n", report.Claim.Subject, report.Claim.Outcome))
	} else {
		md.WriteString("**Claim:** none extracted (keyword fallback search)\n\n")
	}

	md.WriteString(fmt.Sprintf("## Verdict: %s\n\n", strings.ToUpper(string(report.Verdict))))
	md.WriteString(fmt.Sprintf("**Truth score:** %+.2f (supporting: %d, contradicting: %d, neutral: %d)\n\n",
		report.Score.Value, report.Score.SupportingCount, report.Score.ContradictingCount, report.Score.NeutralCount))

	if report.NoEvidence {
		md.WriteString("No scientific evidence found for this claim.\n\n")
	}

	if len(report.Normalized) > 0 {
		md.WriteString("## Term Normalization\n\n")
		md.WriteString("| Phrase | Standard Term | Concept | Method |\n")
		md.WriteString("|--------|---------------|---------|--------|\n")
		for _, term := range report.Normalized {
			md.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				term.Original, term.StandardTerm, term.ConceptID, term.Method))
		}
		md.WriteString("\n")
	}

	md.WriteString("## Search Query\n\n")
	md.WriteString("```\n" + report.Query + "\n```\n\n")

	if len(report.Documents) > 0 {
		md.WriteString("## Evidence\n\n")
		for i, ad := range report.Documents {
			doc := ad.Document
			a := ad.Analysis
			md.WriteString(fmt.Sprintf("### %d. %s\n\n", i+1, doc.Title))
			md.WriteString(fmt.Sprintf("- **PMID:** [%s](%s)\n", doc.PMID, doc.URL()))
			if doc.Journal != "" {
				md.WriteString(fmt.Sprintf("- **Journal:** %s (%s)\n", doc.Journal, doc.PublicationDate))
			}
			md.WriteString(fmt.Sprintf("- **Relevance:** %s\n", a.Relevance))
			md.WriteString(fmt.Sprintf("- **Validity:** %s\n", a.Validity))
			md.WriteString(fmt.Sprintf("- **Confidence:** %.2f", a.OverallConfidence))
			if a.ConfidenceMismatch {
				md.WriteString(" (inconsistent with sub-scores)")
			}
			md.WriteString("\n")
			if a.Summary != "" {
				md.WriteString(fmt.Sprintf("- **Summary:** %s\n", a.Summary))
			}
			if a.Reasoning != "" {
				md.WriteString(fmt.Sprintf("- **Reasoning:** %s\n", a.Reasoning))
			}
			md.WriteString("\n")
		}
	}

	if report.Excluded > 0 {
		md.WriteString(fmt.Sprintf("_%d papers excluded as not relevant._\n\n", report.Excluded))
	}

	if len(report.Score.Breakdown) > 0 {
		md.WriteString("## Score Breakdown\n\n")
		md.WriteString("| PMID | Relevance | Validity | Confidence | Weight | Contribution |\n")
		md.WriteString("|------|-----------|----------|------------|--------|--------------|\n")
		for _, c := range report.Score.Breakdown {
			md.WriteString(fmt.Sprintf("| %s | %s | %s | %.2f | %.2f | %+.3f |\n",
				c.PMID, c.Relevance, c.Validity, c.Confidence, c.Weight, c.Contribution))
		}
		md.WriteString("\n")
	}

	if r.includeFooter {
		md.WriteString("---\n\n")
		md.WriteString("_Generated by claimsift. The truth score weighs study relevance and quality; it is not medical advice._\n")
	}

	if err := os.WriteFile(path, []byte(md.String()), 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// RenderSummary prints a short result to stdout.
func (r *Renderer) RenderSummary(report *model.Report) {
	fmt.Println()
	if report.Claim != nil {
		fmt.Printf("Claim:   %s → %s\n", report.Claim.Subject, report.Claim.Outcome)
	} else {
		fmt.Printf("Claim:   none extracted, keyword search on %q\n", report.Input)
	}
	fmt.Printf("Verdict: %s (score %+.2f)\n", report.Verdict, report.Score.Value)
	if report.NoEvidence {
		fmt.Println("No scientific evidence found.")
		return
	}
	fmt.Printf("Papers:  %d supporting, %d contradicting, %d neutral (%d excluded)\n",
		report.Score.SupportingCount, report.Score.ContradictingCount,
		report.Score.NeutralCount, report.Excluded)
	for _, ad := range report.Documents {
		fmt.Printf("  [%s] %s: %s\n", ad.Analysis.Validity, ad.Document.PMID, ad.Document.Title)
	}
}
