package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadValidSources(t *testing.T) {
	tempDir := t.TempDir()

	content := `
feeds:
  - url: "https://example.com/feed.xml"
    name: "Example Feed"
  - url: "https://example.org/rss"
    name: "Example Org"

academic:
  search_terms:
    - "AI human rights"
    - "algorithmic discrimination"
  results_per_term: 3

podcasts:
  feeds:
    - url: "https://example.com/podcast.xml"
      name: "Example Podcast"
  episodes_per_feed: 2
`

	path := filepath.Join(tempDir, "sources.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(path)
	sources, err := loader.Load()
	if err != nil {
		t.Fatal(err)
	}

	if len(sources.Feeds) != 2 {
		t.Errorf("Expected 2 feeds, got %d", len(sources.Feeds))
	}
	if sources.Feeds[0].Name != "Example Feed" {
		t.Errorf("Expected feed name 'Example Feed', got '%s'", sources.Feeds[0].Name)
	}
	if len(sources.Academic.SearchTerms) != 2 {
		t.Errorf("Expected 2 search terms, got %d", len(sources.Academic.SearchTerms))
	}
	if sources.Academic.ResultsPerTerm != 3 {
		t.Errorf("Expected 3 results per term, got %d", sources.Academic.ResultsPerTerm)
	}
	if sources.Podcasts.EpisodesPerFeed != 2 {
		t.Errorf("Expected 2 episodes per feed, got %d", sources.Podcasts.EpisodesPerFeed)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	tempDir := t.TempDir()

	content := `
feeds:
  - url: "https://example.com/feed.xml"
    name: "Example Feed"

academic:
  search_terms:
    - "AI surveillance"

podcasts:
  feeds: []
`

	path := filepath.Join(tempDir, "sources.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	sources, err := NewLoader(path).Load()
	if err != nil {
		t.Fatal(err)
	}

	if sources.Academic.ResultsPerTerm != 5 {
		t.Errorf("Expected default results per term 5, got %d", sources.Academic.ResultsPerTerm)
	}
	if sources.Podcasts.EpisodesPerFeed != 3 {
		t.Errorf("Expected default episodes per feed 3, got %d", sources.Podcasts.EpisodesPerFeed)
	}
}

func TestLoadRejectsFeedWithoutURL(t *testing.T) {
	tempDir := t.TempDir()

	content := `
feeds:
  - name: "No URL"
`

	path := filepath.Join(tempDir, "sources.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewLoader(path).Load(); err == nil {
		t.Error("Expected error for feed without URL")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := NewLoader("/nonexistent/sources.yml").Load(); err == nil {
		t.Error("Expected error for missing sources file")
	}
}
