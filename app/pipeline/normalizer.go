package pipeline

import (
	"time"

	"github.com/airightslab/monitor/app/content"
)

// Enrichment holds the AI-derived outputs attached to a candidate.
type Enrichment struct {
	Summary   string
	Category  content.Category
	Relevance float64
}

// Normalize maps a raw candidate and its enrichment into the
// canonical content record. published_at falls back to the ingestion
// time when the source carries no parsable timestamp; summary[0] and
// category are always set by this point, fallback values included.
func Normalize(item RawItem, enrichment Enrichment, now time.Time) *content.Content {
	publishedAt := now
	if item.PublishedAt != nil {
		publishedAt = *item.PublishedAt
	}

	c := &content.Content{
		URL:            item.URL,
		Title:          item.Title,
		Summary:        []string{enrichment.Summary},
		Source:         item.Source,
		ContentType:    item.ContentType,
		Category:       enrichment.Category,
		RelevanceScore: enrichment.Relevance,
		Status:         content.StatusPending,
		Metadata:       item.Metadata,
		PublishedAt:    publishedAt,
		CreatedAt:      now,
	}

	// Raw source text: transcript for podcasts, original text for
	// everything else. Mutually exclusive by content type.
	if item.ContentType == content.TypePodcast {
		c.Transcript = item.Transcript
	} else {
		c.OriginalText = item.Text
	}

	return c
}
