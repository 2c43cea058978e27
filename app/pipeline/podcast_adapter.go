package pipeline

import (
	"bytes"
	"cmp"
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mmcdole/gofeed"

	"github.com/airightslab/monitor/app/ai"
	"github.com/airightslab/monitor/app/config"
	"github.com/airightslab/monitor/app/content"
)

const (
	// transcriptEnrichmentLimit bounds the transcript prefix handed to
	// the enrichment calls.
	transcriptEnrichmentLimit = 4000
	// transcriptPreviewLimit bounds the preview kept in metadata. It
	// exceeds the enrichment limit: storage keeps more of the
	// transcript than the model ever sees.
	transcriptPreviewLimit = 10000
)

// PodcastAdapter produces podcast candidates from a fixed list of
// podcast feeds, transcribing the most recent episodes of each.
type PodcastAdapter struct {
	client          *http.Client
	parser          *gofeed.Parser
	enricher        ai.Enricher
	store           Store
	feeds           []config.Feed
	episodesPerFeed int
	pacing          time.Duration
	userAgent       string
}

func NewPodcastAdapter(client *http.Client, enricher ai.Enricher, store Store,
	feeds []config.Feed, episodesPerFeed int, pacing time.Duration, userAgent string) *PodcastAdapter {
	return &PodcastAdapter{
		client:          client,
		parser:          gofeed.NewParser(),
		enricher:        enricher,
		store:           store,
		feeds:           feeds,
		episodesPerFeed: episodesPerFeed,
		pacing:          pacing,
		userAgent:       userAgent,
	}
}

func (a *PodcastAdapter) Name() string {
	return "podcast"
}

// Fetch pulls the most recent episodes of every configured podcast
// feed. Episodes without an audio enclosure are skipped without a
// transcription call, and already-stored URLs are skipped before the
// costly transcription. Per-feed and per-episode failures never abort
// the remaining work. A fixed delay paces requests between episodes.
func (a *PodcastAdapter) Fetch(ctx context.Context) ([]RawItem, FetchStats, error) {
	var items []RawItem
	var stats FetchStats

	for _, feed := range a.feeds {
		slog.Info("Fetching podcast feed", "url", feed.URL)

		data, err := fetchURL(ctx, a.client, feed.URL, a.userAgent, feedAccept)
		if err != nil {
			slog.Error("Failed to fetch podcast feed, skipping", "url", feed.URL, "error", err)
			stats.Failed++
			continue
		}

		parsed, err := a.parser.Parse(bytes.NewReader(data))
		if err != nil {
			slog.Error("Failed to parse podcast feed, skipping", "url", feed.URL, "error", err)
			stats.Failed++
			continue
		}

		source := cmp.Or(feed.Name, parsed.Title, feed.URL)

		episodes := parsed.Items
		if len(episodes) > a.episodesPerFeed {
			episodes = episodes[:a.episodesPerFeed]
		}

		for i, episode := range episodes {
			if i > 0 {
				if err := pace(ctx, a.pacing); err != nil {
					return items, stats, err
				}
			}

			item, ok := a.processEpisode(ctx, episode, source)
			if !ok {
				stats.Skipped++
				continue
			}
			items = append(items, item)
		}
	}

	return items, stats, nil
}

// processEpisode turns one feed entry into a candidate. Returns false
// when the episode should be skipped: no audio enclosure, URL already
// stored, or transcription unavailable.
func (a *PodcastAdapter) processEpisode(ctx context.Context, episode *gofeed.Item, source string) (RawItem, bool) {
	audioURL := findAudioEnclosure(episode)
	if audioURL == "" {
		slog.Debug("Episode has no audio enclosure, skipping", "title", episode.Title)
		return RawItem{}, false
	}

	episodeURL := cmp.Or(episode.Link, audioURL)

	// Dedup before transcription: a known URL must not pay for a
	// transcription call.
	exists, err := a.store.Exists(episodeURL)
	if err != nil {
		slog.Error("Failed to check existing episode, skipping", "url", episodeURL, "error", err)
		return RawItem{}, false
	}
	if exists {
		slog.Debug("Episode already stored, skipping", "url", episodeURL)
		return RawItem{}, false
	}

	slog.Info("Transcribing episode", "title", episode.Title, "audio_url", audioURL)

	transcript := a.enricher.Transcribe(ctx, audioURL)
	if transcript == "" {
		slog.Warn("Empty transcript, skipping episode", "title", episode.Title)
		return RawItem{}, false
	}

	return RawItem{
		URL:         episodeURL,
		Title:       episode.Title,
		Text:        truncate(transcript, transcriptEnrichmentLimit),
		Source:      source,
		ContentType: content.TypePodcast,
		PublishedAt: episode.PublishedParsed,
		Transcript:  transcript,
		Metadata: map[string]interface{}{
			"audio_url":          audioURL,
			"transcript_preview": truncate(transcript, transcriptPreviewLimit),
		},
	}, true
}

// findAudioEnclosure returns the URL of the first enclosure with an
// audio/* MIME type, or empty when the episode carries none.
func findAudioEnclosure(episode *gofeed.Item) string {
	for _, enclosure := range episode.Enclosures {
		if enclosure == nil {
			continue
		}
		if strings.HasPrefix(enclosure.Type, "audio/") && enclosure.URL != "" {
			return enclosure.URL
		}
	}
	return ""
}

// truncate cuts s to at most limit bytes, backing off to a rune
// boundary so a multibyte sequence is never split.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
