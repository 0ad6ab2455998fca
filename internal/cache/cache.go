// Package cache memoizes oracle calls so repeated checks of the same
// claim never re-pay for analysis. A cache hit is semantically
// equivalent to a fresh oracle call.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
	"time"
)

const (
	// AnalysisTTL bounds how long a cached paper judgment stays
	// reusable. Oracle models drift; a month keeps repeat checks cheap
	// without pinning stale judgments forever.
	AnalysisTTL = 30 * 24 * time.Hour

	// QueryTTL bounds cached search queries. Synthesis is
	// deterministic, so this is a disk hygiene limit rather than a
	// correctness one.
	QueryTTL = 90 * 24 * time.Hour
)

// schemaVersion prefixes every key. Bumping it abandons all prior
// entries at once when the cached payload format changes.
const schemaVersion = "v1"

// Cache is the store shared by the analyzer and the query synthesizer.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key families. Each gets its own namespace segment so stores can
// apply per-family defaults and the on-disk layout stays inspectable.
const (
	analysisFamily = "analysis"
	queryFamily    = "query"
)

// AnalysisKey builds the memoization key for one paper analysis. The
// claim text participates: the same paper judged against a different
// claim is a different computation.
func AnalysisKey(claim, pmid string) string {
	return namespaced(analysisFamily, claim+"::"+pmid)
}

// QueryKey builds the memoization key for a synthesized search query.
func QueryKey(claim string) string {
	return namespaced(queryFamily, claim)
}

// namespaced hashes the logical key so arbitrary claim text stays safe
// to use as a file name, and prefixes version and family segments that
// persistent stores turn into directories.
func namespaced(family, logical string) string {
	hash := sha256.Sum256([]byte(logical))
	return path.Join(schemaVersion, family, hex.EncodeToString(hash[:]))
}
