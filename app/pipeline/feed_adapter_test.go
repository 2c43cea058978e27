package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/airightslab/monitor/app/config"
	"github.com/airightslab/monitor/app/content"
)

const testFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <item>
      <title>First Article</title>
      <link>https://example.com/first</link>
      <description>&lt;p&gt;AI systems and &lt;b&gt;surveillance&lt;/b&gt;&lt;/p&gt;</description>
      <pubDate>Mon, 02 Jun 2025 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Second Article</title>
      <link>https://example.com/second</link>
      <description>Plain description</description>
    </item>
    <item>
      <title>No Link</title>
      <description>Entry without a link</description>
    </item>
    <item>
      <link>https://example.com/untitled</link>
      <description>Entry without a title</description>
    </item>
  </channel>
</rss>`

func TestFeedAdapterFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testFeedXML))
	}))
	defer server.Close()

	adapter := NewFeedAdapter(server.Client(), NewExtractor(),
		[]config.Feed{{URL: server.URL, Name: "Test Feed"}}, "test-agent")

	items, stats, err := adapter.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(items) != 2 {
		t.Fatalf("Expected 2 items (link-less and title-less entries skipped), got %d", len(items))
	}
	if stats.Skipped != 2 {
		t.Errorf("Expected 2 skipped entries, got %d", stats.Skipped)
	}

	first := items[0]
	if first.URL != "https://example.com/first" {
		t.Errorf("Expected first item URL, got %q", first.URL)
	}
	if first.Title != "First Article" {
		t.Errorf("Expected first item title, got %q", first.Title)
	}
	if first.ContentType != content.TypeArticle {
		t.Errorf("Expected content type Article, got %q", first.ContentType)
	}
	if first.PublishedAt == nil {
		t.Error("Expected first item publish time to be parsed")
	}
	if first.Source != "Test Feed" {
		t.Errorf("Expected source 'Test Feed', got %q", first.Source)
	}

	second := items[1]
	if second.PublishedAt != nil {
		t.Error("Expected nil publish time for entry without pubDate")
	}
}

func TestFeedAdapterFailureIsolation(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testFeedXML))
	}))
	defer good.Close()

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	adapter := NewFeedAdapter(http.DefaultClient, NewExtractor(), []config.Feed{
		{URL: bad.URL, Name: "Broken Feed"},
		{URL: good.URL, Name: "Good Feed"},
	}, "test-agent")

	items, stats, err := adapter.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	// The broken feed must not abort the good one
	if len(items) != 2 {
		t.Errorf("Expected 2 items from the good feed, got %d", len(items))
	}
	if stats.Failed != 1 {
		t.Errorf("Expected 1 failed feed, got %d", stats.Failed)
	}
}
