package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the complete claimsift configuration.
type Config struct {
	LLM         LLMConfig         `yaml:"llm" json:"llm"`
	PubMed      PubMedConfig      `yaml:"pubmed" json:"pubmed"`
	Normalize   NormalizeConfig   `yaml:"normalize" json:"normalize"`
	Query       QueryConfig       `yaml:"query" json:"query"`
	Rank        RankConfig        `yaml:"rank" json:"rank"`
	Cache       CacheConfig       `yaml:"cache" json:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
	Output      OutputConfig      `yaml:"output" json:"output"`

	// MaxPapers is how many relevant papers the final report may contain.
	MaxPapers int `yaml:"max_papers" json:"max_papers"`
}

// LLMConfig configures the oracle provider (claim extraction and paper
// analysis).
type LLMConfig struct {
	Provider   string `yaml:"provider" json:"provider"` // openai, anthropic, ollama
	Model      string `yaml:"model" json:"model"`
	APIKey     string `yaml:"api_key,omitempty" json:"api_key,omitempty"`
	BaseURL    string `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	Timeout    int    `yaml:"timeout" json:"timeout"` // seconds
	MaxTokens  int    `yaml:"max_tokens" json:"max_tokens"`
	HTTPProxy  string `yaml:"http_proxy,omitempty" json:"http_proxy,omitempty"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" json:"https_proxy,omitempty"`
	NoProxy    string `yaml:"no_proxy,omitempty" json:"no_proxy,omitempty"`
}

// PubMedConfig configures the NCBI E-utilities client.
type PubMedConfig struct {
	BaseURL           string        `yaml:"base_url" json:"base_url"`
	Tool              string        `yaml:"tool" json:"tool"`
	Email             string        `yaml:"email" json:"email"`
	APIKey            string        `yaml:"api_key,omitempty" json:"api_key,omitempty"`
	Timeout           time.Duration `yaml:"timeout" json:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int           `yaml:"burst" json:"burst"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes" json:"max_body_bytes"`
}

// NormalizeConfig configures the phrase normalizer.
type NormalizeConfig struct {
	TablePath       string  `yaml:"table_path" json:"table_path"` // CHV lookup JSON
	FuzzyThreshold  float64 `yaml:"fuzzy_threshold" json:"fuzzy_threshold"`
	MaxPhraseLength int     `yaml:"max_phrase_length" json:"max_phrase_length"`
}

// QueryConfig configures the search-expression builder.
type QueryConfig struct {
	SearchField      string   `yaml:"search_field" json:"search_field"`   // free-text field, e.g. TIAB
	ConceptField     string   `yaml:"concept_field" json:"concept_field"` // controlled vocabulary field
	HumanOnly        bool     `yaml:"human_only" json:"human_only"`
	PublicationTypes []string `yaml:"publication_types,omitempty" json:"publication_types,omitempty"`
}

// RankConfig configures the semantic pre-filter over fetched abstracts.
// The embedder always talks to the OpenAI endpoint, so it carries its
// own key independent of the oracle provider.
type RankConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Model   string `yaml:"model" json:"model"` // embedding model name
	APIKey  string `yaml:"api_key,omitempty" json:"api_key,omitempty"`
}

// CacheConfig configures oracle-call memoization.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" json:"enabled"`
	Dir       string        `yaml:"dir" json:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" json:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" json:"disk_ttl"`
}

// ConcurrencyConfig bounds parallel work.
type ConcurrencyConfig struct {
	AnalysisWorkers int `yaml:"analysis_workers" json:"analysis_workers"` // concurrent paper analyses
	Workers         int `yaml:"workers" json:"workers"`                   // batch claim workers
}

// OutputConfig controls rendering.
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" json:"verbose"`
	IncludeFooter bool `yaml:"include_footer" json:"include_footer"`
}

// DefaultConfig returns sensible defaults. NCBI allows 3 requests per
// second without an API key; the limiter default stays under that.
func DefaultConfig() *Config {
	cacheDir := ".claimsift-cache"
	if home, err := os.UserHomeDir(); err == nil {
		cacheDir = filepath.Join(home, ".claimsift", "cache")
	}

	return &Config{
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     "",
			Timeout:   30,
			MaxTokens: 1000,
		},
		PubMed: PubMedConfig{
			BaseURL:           "https://eutils.ncbi.nlm.nih.gov/entrez/eutils",
			Tool:              "claimsift",
			Email:             "",
			Timeout:           30 * time.Second,
			RequestsPerSecond: 3,
			Burst:             3,
			MaxBodyBytes:      8_000_000,
		},
		Normalize: NormalizeConfig{
			TablePath:       "",
			FuzzyThreshold:  95,
			MaxPhraseLength: 5,
		},
		Query: QueryConfig{
			SearchField:  "TIAB",
			ConceptField: "MeSH Terms",
			HumanOnly:    true,
		},
		Rank: RankConfig{
			Enabled: true,
			Model:   "text-embedding-3-small",
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       cacheDir,
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   30 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			AnalysisWorkers: 4,
			Workers:         4,
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
		},
		MaxPapers: 5,
	}
}
