// Package pubmed is a client for the NCBI E-utilities API: esearch for
// PMIDs, efetch for article records.
package pubmed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/claimsift/claimsift/internal/model"
)

// Client talks to the E-utilities endpoints. All requests go through a
// shared limiter: NCBI enforces 3 requests per second without an API
// key and bans offenders.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	tool       string
	email      string
	apiKey     string
	maxBytes   int64
}

// NewClient creates a client from configuration.
func NewClient(cfg model.PubMedConfig) *Client {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 3
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 8_000_000
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		tool:       cfg.Tool,
		email:      cfg.Email,
		apiKey:     cfg.APIKey,
		maxBytes:   maxBytes,
	}
}

// esearchResponse mirrors the JSON envelope of esearch.fcgi.
type esearchResponse struct {
	ESearchResult struct {
		Count  string   `json:"count"`
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// Search runs the query against PubMed and returns up to max PMIDs in
// relevance order. An empty result is not an error.
func (c *Client) Search(ctx context.Context, query string, max int) ([]string, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("term", query)
	params.Set("retmode", "json")
	params.Set("retmax", strconv.Itoa(max))

	body, err := c.get(ctx, "/esearch.fcgi", params)
	if err != nil {
		return nil, fmt.Errorf("esearch: %w", err)
	}

	var result esearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("esearch: decode response: %w", err)
	}

	return result.ESearchResult.IDList, nil
}

// Fetch retrieves full article records for the given PMIDs.
func (c *Client) Fetch(ctx context.Context, pmids []string) ([]model.Document, error) {
	if len(pmids) == 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("id", strings.Join(pmids, ","))
	params.Set("retmode", "xml")
	params.Set("rettype", "abstract")

	body, err := c.get(ctx, "/efetch.fcgi", params)
	if err != nil {
		return nil, fmt.Errorf("efetch: %w", err)
	}

	docs, err := ParseArticleSet(body)
	if err != nil {
		return nil, fmt.Errorf("efetch: %w", err)
	}
	return docs, nil
}

// get performs one rate-limited request against an E-utilities
// endpoint, attaching the identification params NCBI asks every tool
// to send.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if c.tool != "" {
		params.Set("tool", c.tool)
	}
	if c.email != "" {
		params.Set("email", c.email)
	}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
