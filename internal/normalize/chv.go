package normalize

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Column indices of the CHV concepts-terms flatfile. The file ships
// without a header row.
const (
	chvColCUI           = 0
	chvColTerm          = 1
	chvColUMLSPreferred = 3
	chvColDisparaged    = 7
	chvColumns          = 15
)

// BuildCHVLookup converts the tab-separated CHV flatfile into the JSON
// lookup table the normalizer loads. Disparaged rows (misspellings and
// abnormal entries) are skipped; later rows win on duplicate terms.
func BuildCHVLookup(r io.Reader) (map[string]Entry, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	lookup := make(map[string]Entry)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read flatfile: %w", err)
		}
		if len(row) < chvColumns {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(row[chvColDisparaged]), "yes") {
			continue
		}

		consumer := strings.ToLower(strings.TrimSpace(row[chvColTerm]))
		standard := strings.ToLower(strings.TrimSpace(row[chvColUMLSPreferred]))
		cui := strings.TrimSpace(row[chvColCUI])
		if consumer == "" || standard == "" {
			continue
		}

		lookup[consumer] = Entry{StandardTerm: standard, CUI: cui}
	}

	return lookup, nil
}

// ConvertCHVFile reads a CHV flatfile and writes the JSON lookup table.
// It returns the number of entries written.
func ConvertCHVFile(inPath, outPath string) (int, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return 0, fmt.Errorf("open flatfile: %w", err)
	}
	defer func() { _ = in.Close() }()

	lookup, err := BuildCHVLookup(in)
	if err != nil {
		return 0, err
	}

	data, err := json.MarshalIndent(lookup, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshal lookup: %w", err)
	}

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return 0, fmt.Errorf("write lookup: %w", err)
	}

	return len(lookup), nil
}
