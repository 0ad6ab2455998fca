package pubmed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/claimsift/claimsift/internal/model"
)

func testConfig(baseURL string) model.PubMedConfig {
	return model.PubMedConfig{
		BaseURL:           baseURL,
		Tool:              "claimsift",
		Email:             "dev@example.com",
		Timeout:           5 * time.Second,
		RequestsPerSecond: 100,
		Burst:             10,
		MaxBodyBytes:      1_000_000,
	}
}

func TestSearch(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/esearch.fcgi" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotQuery = map[string]string{
			"db":      r.URL.Query().Get("db"),
			"term":    r.URL.Query().Get("term"),
			"retmax":  r.URL.Query().Get("retmax"),
			"retmode": r.URL.Query().Get("retmode"),
			"tool":    r.URL.Query().Get("tool"),
			"email":   r.URL.Query().Get("email"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"esearchresult": {"count": "2", "idlist": ["36000001", "36000002"]}}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	pmids, err := client.Search(context.Background(), `"chia seeds"[TIAB] AND humans[MeSH Terms]`, 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(pmids) != 2 || pmids[0] != "36000001" {
		t.Errorf("pmids = %v", pmids)
	}
	if gotQuery["db"] != "pubmed" || gotQuery["retmode"] != "json" || gotQuery["retmax"] != "5" {
		t.Errorf("request params = %v", gotQuery)
	}
	if gotQuery["term"] != `"chia seeds"[TIAB] AND humans[MeSH Terms]` {
		t.Errorf("term = %q", gotQuery["term"])
	}
	if gotQuery["tool"] != "claimsift" || gotQuery["email"] != "dev@example.com" {
		t.Errorf("identification params = %v", gotQuery)
	}
}

func TestSearchEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"esearchresult": {"count": "0", "idlist": []}}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	pmids, err := client.Search(context.Background(), "zorblax", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(pmids) != 0 {
		t.Errorf("pmids = %v, want empty", pmids)
	}
}

func TestSearchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	if _, err := client.Search(context.Background(), "anything", 5); err == nil {
		t.Error("expected error on 502")
	}
}

func TestFetch(t *testing.T) {
	var gotIDs string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/efetch.fcgi" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotIDs = r.URL.Query().Get("id")
		w.Header().Set("Content-Type", "text/xml")
		w.Write([]byte(articleFixture))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	docs, err := client.Fetch(context.Background(), []string{"36000001", "36000002"})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if gotIDs != "36000001,36000002" {
		t.Errorf("id param = %q", gotIDs)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2", len(docs))
	}
	if docs[0].PMID != "36000001" {
		t.Errorf("pmid = %q", docs[0].PMID)
	}
}

func TestFetchNoPMIDs(t *testing.T) {
	client := NewClient(testConfig("http://unused.invalid"))
	docs, err := client.Fetch(context.Background(), nil)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if docs != nil {
		t.Errorf("docs = %v, want nil without a network call", docs)
	}
}

func TestRateLimiterRespectsContext(t *testing.T) {
	cfg := testConfig("http://unused.invalid")
	cfg.RequestsPerSecond = 0.001
	cfg.Burst = 1
	client := NewClient(cfg)

	// Exhaust the burst, then the next call must block until the
	// context deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_ = client.limiter.Wait(ctx)

	if _, err := client.Search(ctx, "q", 1); err == nil {
		t.Error("expected context deadline error while rate limited")
	}
}
