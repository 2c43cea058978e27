package api

import (
	"context"

	"github.com/airightslab/monitor/app/database"
	"github.com/airightslab/monitor/app/pipeline"
)

// PipelineRunner triggers ingestion runs on behalf of the API.
type PipelineRunner interface {
	RunBasic(ctx context.Context) (pipeline.Report, error)
	RunComplete(ctx context.Context) (pipeline.CompleteReport, error)
}

var _ PipelineRunner = (*pipeline.Orchestrator)(nil)

type Handler struct {
	repo   database.ContentRepository
	runner PipelineRunner
}

// CurationAction is a curator's decision on one pending record.
type CurationAction struct {
	ContentID     string `json:"content_id" binding:"required"`
	Action        string `json:"action" binding:"required"`
	EditorNotes   string `json:"editor_notes"`
	EditedSummary string `json:"edited_summary"`
	EditedTitle   string `json:"edited_title"`
}

// FeedbackSubmission is a reader's helpfulness vote on one record.
type FeedbackSubmission struct {
	ContentID string `json:"content_id" binding:"required"`
	IsHelpful *bool  `json:"is_helpful" binding:"required"`
	Comments  string `json:"comments"`
}
