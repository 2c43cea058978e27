package content

import (
	"time"
)

type Category string

const (
	CategoryRisk          Category = "Risk-focused"
	CategoryOpportunity   Category = "Opportunity-focused"
	CategoryUncategorized Category = "Uncategorized"
)

type Type string

const (
	TypeArticle Type = "Article"
	TypePodcast Type = "Podcast"
	TypePaper   Type = "Paper"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Content is the canonical record for one discovered item. The url is
// the natural key: the pipeline never stores two records with the same
// url. summary[0] holds the latest AI- or human-edited summary.
type Content struct {
	ID              string                 `json:"id,omitempty"`
	URL             string                 `json:"url"`
	Title           string                 `json:"title"`
	Summary         []string               `json:"summary"`
	OriginalText    string                 `json:"original_text,omitempty"`
	Transcript      string                 `json:"transcript,omitempty"`
	Source          string                 `json:"source"`
	ContentType     Type                   `json:"content_type"`
	Category        Category               `json:"category"`
	RelevanceScore  float64                `json:"relevance_score"`
	HelpfulVotes    int                    `json:"helpful_votes"`
	NotHelpfulVotes int                    `json:"not_helpful_votes"`
	Status          Status                 `json:"status"`
	EditorNotes     string                 `json:"editor_notes,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
	Feedback        []FeedbackEntry        `json:"feedback,omitempty"`
	Curated         bool                   `json:"curated"`
	PublishedAt     time.Time              `json:"published_at"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       *time.Time             `json:"updated_at,omitempty"`
}

// FeedbackEntry is one helpfulness vote from a reader, appended by the
// feedback endpoint after publication.
type FeedbackEntry struct {
	IsHelpful bool      `json:"is_helpful"`
	Comments  string    `json:"comments,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ValidCategory reports whether s is one of the known category labels.
func ValidCategory(s string) bool {
	switch Category(s) {
	case CategoryRisk, CategoryOpportunity, CategoryUncategorized:
		return true
	}
	return false
}
