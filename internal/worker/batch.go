package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/claimsift/claimsift/internal/model"
)

// Checker defines the interface for checking a single claim
type Checker interface {
	CheckClaim(ctx context.Context, text string) (*model.Report, error)
}

// CheckJob represents one claim check
type CheckJob struct {
	Text    string
	Checker Checker
}

// Execute executes the claim check
func (j *CheckJob) Execute(ctx context.Context) Result {
	report, err := j.Checker.CheckClaim(ctx, j.Text)
	return &CheckResult{
		Text:   j.Text,
		Report: report,
		Error:  err,
	}
}

// CheckResult represents the result of a claim check
type CheckResult struct {
	Text   string
	Report *model.Report
	Error  error
}

// GetError returns the error from the check result
func (r *CheckResult) GetError() error {
	return r.Error
}

// BatchProcessor checks multiple claims concurrently
type BatchProcessor struct {
	checker     Checker
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(checker Checker, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		checker:     checker,
		concurrency: concurrency,
	}
}

// ProcessClaims checks multiple claims concurrently
func (b *BatchProcessor) ProcessClaims(ctx context.Context, claims []string) []*CheckResult {
	if len(claims) == 0 {
		return []*CheckResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, claim := range claims {
		pool.Submit(&CheckJob{
			Text:    claim,
			Checker: b.checker,
		})
	}

	results := pool.Wait()

	checkResults := make([]*CheckResult, len(results))
	for i, result := range results {
		checkResults[i] = result.(*CheckResult)
	}

	return checkResults
}

// ProcessFile reads claims from a file and checks them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*CheckResult, error) {
	claims, err := ReadClaimsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read claims: %w", err)
	}

	return b.ProcessClaims(ctx, claims), nil
}

// ReadClaimsFromFile reads claims from a file (one per line). Empty
// lines and # comments are skipped; duplicate lines check once.
func ReadClaimsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var claims []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			claims = append(claims, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return claims, nil
}
