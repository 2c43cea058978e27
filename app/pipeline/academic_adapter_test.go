package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/airightslab/monitor/app/content"
)

const testSearchJSON = `{
  "data": [
    {
      "paperId": "abc123",
      "title": "Algorithmic Discrimination and Human Rights",
      "abstract": "We study the impact of automated decisions on protected groups.",
      "url": "https://example.org/paper/abc123",
      "venue": "FAccT",
      "year": 2025,
      "publicationDate": "2025-03-15",
      "authors": [{"name": "A. Researcher"}, {"name": "B. Scholar"}]
    },
    {
      "paperId": "def456",
      "title": "Paper Without Abstract",
      "abstract": "",
      "url": "https://example.org/paper/def456",
      "venue": "NeurIPS"
    },
    {
      "paperId": "ghi789",
      "title": "Paper Without URL",
      "abstract": "An abstract is present here.",
      "url": ""
    }
  ]
}`

func TestAcademicAdapterFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") == "" {
			t.Error("Expected query parameter to be set")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(testSearchJSON))
	}))
	defer server.Close()

	adapter := NewAcademicAdapter(server.Client(), []string{"AI human rights"}, 5, 0, "test-agent")
	adapter.endpoint = server.URL

	items, stats, err := adapter.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	// Paper without an abstract is skipped: the abstract is the
	// enrichment input
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if stats.Skipped != 1 {
		t.Errorf("Expected 1 skipped paper, got %d", stats.Skipped)
	}

	first := items[0]
	if first.ContentType != content.TypePaper {
		t.Errorf("Expected content type Paper, got %q", first.ContentType)
	}
	if first.Source != "Academic - FAccT" {
		t.Errorf("Expected venue-based source label, got %q", first.Source)
	}
	if first.Text != "We study the impact of automated decisions on protected groups." {
		t.Errorf("Expected abstract as enrichment text, got %q", first.Text)
	}
	if first.PublishedAt == nil {
		t.Error("Expected publication date to be parsed")
	}

	authors, ok := first.Metadata["authors"].([]string)
	if !ok || len(authors) != 2 {
		t.Errorf("Expected 2 authors in metadata, got %v", first.Metadata["authors"])
	}

	// Papers without a URL fall back to the Semantic Scholar page
	second := items[1]
	if second.URL != "https://www.semanticscholar.org/paper/ghi789" {
		t.Errorf("Expected fallback URL, got %q", second.URL)
	}
	if second.Source != "Academic" {
		t.Errorf("Expected plain source label without venue, got %q", second.Source)
	}
	if second.PublishedAt != nil {
		t.Error("Expected nil publish time for paper without publicationDate")
	}
}

// A failing search term must not abort the remaining terms.
func TestAcademicAdapterTermFailureIsolation(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("query") == "broken term" {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(testSearchJSON))
	}))
	defer server.Close()

	adapter := NewAcademicAdapter(server.Client(), []string{"broken term", "working term"}, 5, 0, "test-agent")
	adapter.endpoint = server.URL

	items, stats, err := adapter.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if calls != 2 {
		t.Errorf("Expected both terms attempted, got %d calls", calls)
	}
	if stats.Failed != 1 {
		t.Errorf("Expected 1 failed term, got %d", stats.Failed)
	}
	if len(items) != 2 {
		t.Errorf("Expected items from the working term, got %d", len(items))
	}
}

func TestParsePublicationDate(t *testing.T) {
	if parsePublicationDate("") != nil {
		t.Error("Expected nil for empty date")
	}
	if parsePublicationDate("not-a-date") != nil {
		t.Error("Expected nil for unparsable date")
	}

	parsed := parsePublicationDate("2025-03-15")
	if parsed == nil {
		t.Fatal("Expected valid date to parse")
	}
	if parsed.Year() != 2025 || parsed.Month() != 3 || parsed.Day() != 15 {
		t.Errorf("Unexpected parsed date: %v", parsed)
	}
}
