// Package normalize maps consumer-language health phrases to
// standardized biomedical concepts using a CHV-style lookup table.
package normalize

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Entry is one vocabulary mapping: a lowercase consumer phrase resolved
// to its standardized term and concept identifier.
type Entry struct {
	StandardTerm string `json:"standard_term"`
	CUI          string `json:"CUI"`
}

// Table is the immutable concept lookup table. It is built once (from
// the offline CHV preprocessing step) and shared read-only for the
// process lifetime.
type Table struct {
	entries map[string]Entry
	keys    []string // sorted, for deterministic fuzzy iteration
}

// NewTable builds a table from an in-memory mapping. Keys are trimmed
// and lowercased; entries with an empty phrase or standard term are
// dropped.
func NewTable(entries map[string]Entry) *Table {
	t := &Table{entries: make(map[string]Entry, len(entries))}
	for phrase, entry := range entries {
		phrase = strings.ToLower(strings.TrimSpace(phrase))
		if phrase == "" || entry.StandardTerm == "" {
			continue
		}
		t.entries[phrase] = entry
	}
	t.keys = make([]string, 0, len(t.entries))
	for phrase := range t.entries {
		t.keys = append(t.keys, phrase)
	}
	sort.Strings(t.keys)
	return t
}

// LoadTable reads the lookup table from a JSON file produced by
// `claimsift chv build`.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lookup table: %w", err)
	}

	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse lookup table: %w", err)
	}

	return NewTable(entries), nil
}

// Lookup returns the entry for a phrase, if present. The phrase is
// expected to be already trimmed and lowercased.
func (t *Table) Lookup(phrase string) (Entry, bool) {
	entry, ok := t.entries[phrase]
	return entry, ok
}

// Keys returns all phrases in sorted order. The returned slice is
// shared and must not be modified.
func (t *Table) Keys() []string {
	return t.keys
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.entries)
}
