package pipeline

import (
	"context"
	"time"

	"github.com/airightslab/monitor/app/content"
)

// RawItem is one candidate item produced by a source adapter, before
// enrichment and normalization. Text is the cleaned input handed to
// the enrichment calls.
type RawItem struct {
	URL         string
	Title       string
	Text        string
	Source      string
	ContentType content.Type
	PublishedAt *time.Time
	Transcript  string
	Metadata    map[string]interface{}
}

// FetchStats counts the items an adapter dropped while producing its
// candidates (missing enclosures, missing abstracts, failed feeds).
type FetchStats struct {
	Skipped int
	Failed  int
}

// SourceAdapter turns one external source family into raw candidates.
// A returned error means the whole source failed; partial failures are
// absorbed into FetchStats instead.
type SourceAdapter interface {
	Name() string
	Fetch(ctx context.Context) ([]RawItem, FetchStats, error)
}

// Store is the persistence collaborator: an existence check on the
// url natural key and an atomic single-document insert.
type Store interface {
	Ping() error
	Exists(url string) (bool, error)
	Insert(c *content.Content) (string, error)
}

// Report is the structured outcome of one adapter run.
type Report struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// CompleteReport aggregates the per-adapter reports of a complete run.
type CompleteReport struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Results []Report `json:"results"`
}

const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusError   = "error"
)
