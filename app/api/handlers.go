package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/airightslab/monitor/app/cfg"
	"github.com/airightslab/monitor/app/content"
	"github.com/airightslab/monitor/app/database"
)

func NewHandler(repo database.ContentRepository, runner PipelineRunner) *Handler {
	return &Handler{
		repo:   repo,
		runner: runner,
	}
}

func (h *Handler) GetRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":     "AI Rights Monitor",
		"version":     cfg.Get().Version,
		"description": "A service to discover, summarize, and prioritize content on AI and human rights.",
		"endpoints": map[string]string{
			"health":       "/health",
			"content":      "/content",
			"approved":     "/content/approved",
			"pending":      "/content/pending",
			"search":       "/content/search?query=<q>",
			"run":          "/pipeline/run (POST)",
			"run_complete": "/pipeline/run-complete (POST)",
		},
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := gin.H{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if counts, err := h.repo.StatusCounts(); err == nil {
		health["content"] = counts
	}

	c.JSON(http.StatusOK, health)
}

// RunPipeline triggers ingestion of the RSS feed source only
func (h *Handler) RunPipeline(c *gin.Context) {
	report, err := h.runner.RunBasic(c.Request.Context())
	if err != nil {
		slog.Error("Pipeline run failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// RunCompletePipeline triggers ingestion of all sources: RSS feeds,
// academic search and podcasts
func (h *Handler) RunCompletePipeline(c *gin.Context) {
	report, err := h.runner.RunComplete(c.Request.Context())
	if err != nil {
		slog.Error("Complete pipeline run failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// ListContent returns the 10 most recent records regardless of status
func (h *Handler) ListContent(c *gin.Context) {
	contents, err := h.repo.GetRecent(10)
	if err != nil {
		slog.Error("Database error", "operation", "list_content", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch content"})
		return
	}

	c.JSON(http.StatusOK, contents)
}

// GetPendingContent returns records awaiting human curation
func (h *Handler) GetPendingContent(c *gin.Context) {
	limit := parseLimit(c, 20)

	contents, err := h.repo.GetByStatus(content.StatusPending, limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_pending", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch pending content"})
		return
	}

	c.JSON(http.StatusOK, contents)
}

// GetApprovedContent returns approved records for public display
func (h *Handler) GetApprovedContent(c *gin.Context) {
	limit := parseLimit(c, 20)
	category := c.Query("category")

	contents, err := h.repo.GetApproved(limit, category)
	if err != nil {
		slog.Error("Database error", "operation", "get_approved", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch approved content"})
		return
	}

	c.JSON(http.StatusOK, contents)
}

// CurateContent applies a curator's approve/reject/edit decision
func (h *Handler) CurateContent(c *gin.Context) {
	var action CurationAction
	if err := c.ShouldBindJSON(&action); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	update := database.CurationUpdate{}
	if action.EditorNotes != "" {
		update.EditorNotes = &action.EditorNotes
	}

	switch action.Action {
	case "approve":
		update.Status = content.StatusApproved
	case "reject":
		update.Status = content.StatusRejected
	case "edit":
		update.Status = content.StatusApproved
		if action.EditedTitle != "" {
			update.EditedTitle = &action.EditedTitle
		}
		if action.EditedSummary != "" {
			update.EditedSummary = &action.EditedSummary
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid action"})
		return
	}

	found, err := h.repo.Curate(action.ContentID, update)
	if err != nil {
		slog.Error("Database error", "operation", "curate", "content_id", action.ContentID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update content"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "content not found or not pending"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Content " + action.Action + "d successfully",
	})
}

// ApproveLatest approves the 10 most recent pending records. Exists to
// test the dashboard without manual curation.
func (h *Handler) ApproveLatest(c *gin.Context) {
	approved, err := h.repo.ApproveLatest(10)
	if err != nil {
		slog.Error("Database error", "operation", "approve_latest", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to approve content"})
		return
	}

	if approved == 0 {
		c.JSON(http.StatusOK, gin.H{"status": "noop", "message": "No pending content to approve."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": strconv.Itoa(approved) + " items approved.",
	})
}

// SubmitFeedback appends a reader's helpfulness vote to a record
func (h *Handler) SubmitFeedback(c *gin.Context) {
	var submission FeedbackSubmission
	if err := c.ShouldBindJSON(&submission); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	entry := content.FeedbackEntry{
		IsHelpful: *submission.IsHelpful,
		Comments:  submission.Comments,
		Timestamp: time.Now(),
	}

	found, err := h.repo.AddFeedback(submission.ContentID, entry)
	if err != nil {
		slog.Error("Database error", "operation", "add_feedback", "content_id", submission.ContentID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit feedback"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "content not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Feedback submitted successfully"})
}

// GetStatusCounts returns the number of records per curation status
func (h *Handler) GetStatusCounts(c *gin.Context) {
	counts, err := h.repo.StatusCounts()
	if err != nil {
		slog.Error("Database error", "operation", "status_counts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get status counts"})
		return
	}

	c.JSON(http.StatusOK, counts)
}

// GetCategories returns the distinct categories in use
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.repo.Categories()
	if err != nil {
		slog.Error("Database error", "operation", "get_categories", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get categories"})
		return
	}

	if categories == nil {
		categories = []string{}
	}

	c.JSON(http.StatusOK, categories)
}

// SearchContent performs a full-text search over approved records
func (h *Handler) SearchContent(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing 'query' parameter"})
		return
	}

	limit := parseLimit(c, 20)

	contents, err := h.repo.Search(query, c.Query("category"), c.Query("content_type"), limit)
	if err != nil {
		slog.Error("Database error", "operation", "search", "query", query, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search content"})
		return
	}

	c.JSON(http.StatusOK, contents)
}

// parseLimit reads the limit query parameter, clamped to 1..100
func parseLimit(c *gin.Context, defaultLimit int) int {
	limit := defaultLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}
	return limit
}
