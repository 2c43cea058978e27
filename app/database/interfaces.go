package database

import (
	"github.com/airightslab/monitor/app/content"
)

// CurationUpdate carries the optional edits applied alongside a
// curation status change. Nil fields leave the stored value untouched.
type CurationUpdate struct {
	Status        content.Status
	EditedTitle   *string
	EditedSummary *string
	EditorNotes   *string
}

type ContentRepository interface {
	Exists(url string) (bool, error)
	Insert(c *content.Content) (string, error)

	GetRecent(limit int) ([]content.Content, error)
	GetByStatus(status content.Status, limit int) ([]content.Content, error)
	GetApproved(limit int, category string) ([]content.Content, error)
	Search(query, category, contentType string, limit int) ([]content.Content, error)

	Curate(id string, update CurationUpdate) (bool, error)
	ApproveLatest(limit int) (int, error)
	AddFeedback(id string, entry content.FeedbackEntry) (bool, error)

	StatusCounts() (map[string]int, error)
	Categories() ([]string, error)
}
