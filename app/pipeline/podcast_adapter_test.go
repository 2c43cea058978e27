package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/airightslab/monitor/app/config"
	"github.com/airightslab/monitor/app/content"
)

const testPodcastXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Podcast</title>
    <item>
      <title>Episode With Audio</title>
      <link>https://example.com/ep1</link>
      <enclosure url="https://example.com/ep1.mp3" type="audio/mpeg" length="1000"/>
    </item>
    <item>
      <title>Episode Without Audio</title>
      <link>https://example.com/ep2</link>
      <enclosure url="https://example.com/ep2.pdf" type="application/pdf" length="1000"/>
    </item>
    <item>
      <title>Episode With No Enclosure</title>
      <link>https://example.com/ep3</link>
    </item>
  </channel>
</rss>`

func podcastServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testPodcastXML))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestPodcastAdapterTranscribesAudioEpisodes(t *testing.T) {
	server := podcastServer(t)

	enricher := &fakeEnricher{transcript: "full episode transcript"}
	store := newFakeStore()

	adapter := NewPodcastAdapter(server.Client(), enricher, store,
		[]config.Feed{{URL: server.URL, Name: "Test Podcast"}}, 3, 0, "test-agent")

	items, stats, err := adapter.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(items) != 1 {
		t.Fatalf("Expected 1 item (only the audio episode), got %d", len(items))
	}
	if stats.Skipped != 2 {
		t.Errorf("Expected 2 skipped episodes, got %d", stats.Skipped)
	}
	if enricher.transcribeCalls != 1 {
		t.Errorf("Expected exactly 1 transcription call, got %d", enricher.transcribeCalls)
	}

	item := items[0]
	if item.URL != "https://example.com/ep1" {
		t.Errorf("Expected episode link as URL, got %q", item.URL)
	}
	if item.ContentType != content.TypePodcast {
		t.Errorf("Expected content type Podcast, got %q", item.ContentType)
	}
	if item.Transcript != "full episode transcript" {
		t.Errorf("Expected transcript set, got %q", item.Transcript)
	}
	if item.Metadata["audio_url"] != "https://example.com/ep1.mp3" {
		t.Errorf("Expected audio_url metadata, got %v", item.Metadata)
	}
	if item.Metadata["transcript_preview"] != "full episode transcript" {
		t.Errorf("Expected transcript preview metadata, got %v", item.Metadata)
	}
}

// Episodes with no audio/* enclosure must never trigger transcription.
func TestPodcastAdapterSkipsWithoutTranscribing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<?xml version="1.0"?>
<rss version="2.0"><channel><title>No Audio</title>
<item><title>Ep</title><link>https://example.com/ep</link></item>
</channel></rss>`))
	}))
	defer server.Close()

	enricher := &fakeEnricher{transcript: "should not be used"}

	adapter := NewPodcastAdapter(server.Client(), enricher, newFakeStore(),
		[]config.Feed{{URL: server.URL}}, 3, 0, "test-agent")

	items, _, err := adapter.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(items) != 0 {
		t.Errorf("Expected zero items, got %d", len(items))
	}
	if enricher.transcribeCalls != 0 {
		t.Errorf("Expected no transcription calls, got %d", enricher.transcribeCalls)
	}
}

// Already-stored episodes are skipped before the costly transcription.
func TestPodcastAdapterDedupBeforeTranscription(t *testing.T) {
	server := podcastServer(t)

	enricher := &fakeEnricher{transcript: "transcript"}
	store := newFakeStore()
	store.records["https://example.com/ep1"] = &content.Content{URL: "https://example.com/ep1"}

	adapter := NewPodcastAdapter(server.Client(), enricher, store,
		[]config.Feed{{URL: server.URL}}, 3, 0, "test-agent")

	items, _, err := adapter.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(items) != 0 {
		t.Errorf("Expected zero items for already-stored episode, got %d", len(items))
	}
	if enricher.transcribeCalls != 0 {
		t.Errorf("Expected no transcription calls for known URL, got %d", enricher.transcribeCalls)
	}
}

func TestPodcastAdapterTruncatesTranscript(t *testing.T) {
	server := podcastServer(t)

	full := strings.Repeat("x", 12000)
	enricher := &fakeEnricher{transcript: full}

	adapter := NewPodcastAdapter(server.Client(), enricher, newFakeStore(),
		[]config.Feed{{URL: server.URL}}, 1, 0, "test-agent")

	items, _, err := adapter.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}

	item := items[0]
	if len(item.Text) != transcriptEnrichmentLimit {
		t.Errorf("Expected enrichment text truncated to %d chars, got %d", transcriptEnrichmentLimit, len(item.Text))
	}
	preview, _ := item.Metadata["transcript_preview"].(string)
	if len(preview) != transcriptPreviewLimit {
		t.Errorf("Expected preview truncated to %d chars, got %d", transcriptPreviewLimit, len(preview))
	}

	// Storage keeps more than enrichment sees: the preview exceeds the
	// enrichment prefix and the transcript column holds the full text
	if len(preview) <= len(item.Text) {
		t.Errorf("Expected preview (%d) longer than enrichment text (%d)", len(preview), len(item.Text))
	}
	if item.Transcript != full {
		t.Errorf("Expected full transcript retained, got %d of %d chars", len(item.Transcript), len(full))
	}
}

func TestTruncateKeepsRuneBoundaries(t *testing.T) {
	s := strings.Repeat("é", 10) // 2 bytes per rune

	got := truncate(s, 11)
	if !utf8.ValidString(got) {
		t.Errorf("Expected valid UTF-8 after truncation, got %q", got)
	}
	if len(got) != 10 {
		t.Errorf("Expected backoff to the rune boundary at 10 bytes, got %d", len(got))
	}

	if truncate(s, 40) != s {
		t.Error("Expected string under the limit to pass through unchanged")
	}
}

func TestPodcastAdapterLimitsEpisodesPerFeed(t *testing.T) {
	server := podcastServer(t)

	enricher := &fakeEnricher{transcript: "transcript"}

	adapter := NewPodcastAdapter(server.Client(), enricher, newFakeStore(),
		[]config.Feed{{URL: server.URL}}, 1, 0, "test-agent")

	items, _, err := adapter.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	// Only the most recent episode is considered, and it has audio
	if len(items) != 1 {
		t.Errorf("Expected 1 item with episodesPerFeed=1, got %d", len(items))
	}
	if enricher.transcribeCalls != 1 {
		t.Errorf("Expected 1 transcription call, got %d", enricher.transcribeCalls)
	}
}
