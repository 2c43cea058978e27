package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/airightslab/monitor/app/content"
)

var _ ContentRepository = (*PostgresContentRepository)(nil)

// PostgresContentRepository handles database operations for content records
type PostgresContentRepository struct {
	db *DB
}

// NewContentRepository creates a new content repository
func NewContentRepository(db *DB) *PostgresContentRepository {
	return &PostgresContentRepository{db: db}
}

// Ping verifies the database connection is alive
func (r *PostgresContentRepository) Ping() error {
	return r.db.Ping()
}

const contentColumns = `
	id, url, title, summary,
	COALESCE(original_text, ''), COALESCE(transcript, ''),
	source, content_type, category, relevance_score,
	helpful_votes, not_helpful_votes, status,
	COALESCE(editor_notes, ''), metadata, feedback, curated,
	published_at, created_at, updated_at`

// Exists checks whether a record with the given URL is already stored.
// This is the deduplication gate: a plain existence check, not a merge.
func (r *PostgresContentRepository) Exists(url string) (bool, error) {
	var id string
	err := r.db.QueryRow(`SELECT id FROM contents WHERE url = $1 LIMIT 1`, url).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check existing url: %w", err)
	}
	return true, nil
}

// Insert stores a new content record and returns its generated id
func (r *PostgresContentRepository) Insert(c *content.Content) (string, error) {
	metadataJSON, err := marshalOptional(c.Metadata)
	if err != nil {
		return "", fmt.Errorf("failed to marshal metadata: %w", err)
	}

	feedbackJSON, err := marshalOptional(c.Feedback)
	if err != nil {
		return "", fmt.Errorf("failed to marshal feedback: %w", err)
	}

	var id string
	err = r.db.QueryRow(`
		INSERT INTO contents (
			url, title, summary, original_text, transcript,
			source, content_type, category, relevance_score,
			status, editor_notes, metadata, feedback, curated,
			published_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id
	`, c.URL, c.Title, pq.Array(c.Summary),
		nullIfEmpty(c.OriginalText), nullIfEmpty(c.Transcript),
		c.Source, string(c.ContentType), string(c.Category), c.RelevanceScore,
		string(c.Status), nullIfEmpty(c.EditorNotes), metadataJSON, feedbackJSON,
		c.Curated, c.PublishedAt, c.CreatedAt).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert content: %w", err)
	}

	return id, nil
}

// GetRecent returns the most recently ingested records regardless of status
func (r *PostgresContentRepository) GetRecent(limit int) ([]content.Content, error) {
	rows, err := r.db.Query(`
		SELECT `+contentColumns+`
		FROM contents
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent content: %w", err)
	}
	defer rows.Close()

	return scanContents(rows)
}

// GetByStatus returns the most recent records with the given status
func (r *PostgresContentRepository) GetByStatus(status content.Status, limit int) ([]content.Content, error) {
	rows, err := r.db.Query(`
		SELECT `+contentColumns+`
		FROM contents
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get content by status: %w", err)
	}
	defer rows.Close()

	return scanContents(rows)
}

// GetApproved returns approved records for public display, newest
// publication first, optionally restricted to one category
func (r *PostgresContentRepository) GetApproved(limit int, category string) ([]content.Content, error) {
	var rows *sql.Rows
	var err error

	if category != "" {
		rows, err = r.db.Query(`
			SELECT `+contentColumns+`
			FROM contents
			WHERE status = 'approved' AND category = $1
			ORDER BY published_at DESC
			LIMIT $2
		`, category, limit)
	} else {
		rows, err = r.db.Query(`
			SELECT `+contentColumns+`
			FROM contents
			WHERE status = 'approved'
			ORDER BY published_at DESC
			LIMIT $1
		`, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get approved content: %w", err)
	}
	defer rows.Close()

	return scanContents(rows)
}

// Search performs a full-text search over approved records
func (r *PostgresContentRepository) Search(query, category, contentType string, limit int) ([]content.Content, error) {
	sqlQuery := `
		SELECT ` + contentColumns + `
		FROM contents
		WHERE status = 'approved'
		  AND to_tsvector('english', title || ' ' || array_to_string(summary, ' '))
		      @@ plainto_tsquery('english', $1)`
	args := []interface{}{query}

	if category != "" {
		args = append(args, category)
		sqlQuery += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if contentType != "" {
		args = append(args, contentType)
		sqlQuery += fmt.Sprintf(" AND content_type = $%d", len(args))
	}

	args = append(args, limit)
	sqlQuery += fmt.Sprintf(" ORDER BY published_at DESC LIMIT $%d", len(args))

	rows, err := r.db.Query(sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search content: %w", err)
	}
	defer rows.Close()

	return scanContents(rows)
}

// Curate applies a curation decision. Returns false when no record
// with the given id exists. Status only moves forward from pending;
// approved/rejected records are never reverted.
func (r *PostgresContentRepository) Curate(id string, update CurationUpdate) (bool, error) {
	result, err := r.db.Exec(`
		UPDATE contents SET
			status = $2,
			curated = true,
			updated_at = now(),
			editor_notes = COALESCE($3, editor_notes),
			title = COALESCE($4, title),
			summary = CASE WHEN $5::text IS NULL THEN summary ELSE ARRAY[$5::text] END
		WHERE id = $1 AND status = 'pending'
	`, id, string(update.Status), update.EditorNotes, update.EditedTitle, update.EditedSummary)
	if err != nil {
		return false, fmt.Errorf("failed to curate content: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected > 0, nil
}

// ApproveLatest approves the given number of most recent pending
// records and returns how many were updated
func (r *PostgresContentRepository) ApproveLatest(limit int) (int, error) {
	result, err := r.db.Exec(`
		UPDATE contents SET status = 'approved', curated = true, updated_at = now()
		WHERE id IN (
			SELECT id FROM contents
			WHERE status = 'pending'
			ORDER BY created_at DESC
			LIMIT $1
		)
	`, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to approve latest content: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return int(affected), nil
}

// AddFeedback appends a helpfulness vote to a record's feedback list
// and bumps the matching vote counter
func (r *PostgresContentRepository) AddFeedback(id string, entry content.FeedbackEntry) (bool, error) {
	entryJSON, err := json.Marshal(entry)
	if err != nil {
		return false, fmt.Errorf("failed to marshal feedback entry: %w", err)
	}

	result, err := r.db.Exec(`
		UPDATE contents SET
			feedback = COALESCE(feedback, '[]'::jsonb) || $2::jsonb,
			helpful_votes = helpful_votes + CASE WHEN $3 THEN 1 ELSE 0 END,
			not_helpful_votes = not_helpful_votes + CASE WHEN $3 THEN 0 ELSE 1 END,
			updated_at = now()
		WHERE id = $1
	`, id, string(entryJSON), entry.IsHelpful)
	if err != nil {
		return false, fmt.Errorf("failed to add feedback: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected > 0, nil
}

// StatusCounts returns the number of records per curation status
func (r *PostgresContentRepository) StatusCounts() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT status, COUNT(*) FROM contents GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to get status counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status counts: %w", err)
	}

	return counts, nil
}

// Categories returns the distinct non-empty categories in use
func (r *PostgresContentRepository) Categories() ([]string, error) {
	rows, err := r.db.Query(`SELECT DISTINCT category FROM contents WHERE category <> '' ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

func scanContents(rows *sql.Rows) ([]content.Content, error) {
	var contents []content.Content

	for rows.Next() {
		var c content.Content
		var metadataJSON, feedbackJSON []byte

		err := rows.Scan(
			&c.ID, &c.URL, &c.Title, pq.Array(&c.Summary),
			&c.OriginalText, &c.Transcript,
			&c.Source, &c.ContentType, &c.Category, &c.RelevanceScore,
			&c.HelpfulVotes, &c.NotHelpfulVotes, &c.Status,
			&c.EditorNotes, &metadataJSON, &feedbackJSON, &c.Curated,
			&c.PublishedAt, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan content row: %w", err)
		}

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &c.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}
		if len(feedbackJSON) > 0 {
			if err := json.Unmarshal(feedbackJSON, &c.Feedback); err != nil {
				return nil, fmt.Errorf("failed to unmarshal feedback: %w", err)
			}
		}

		contents = append(contents, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating content rows: %w", err)
	}

	return contents, nil
}

// marshalOptional serializes v to JSON, mapping nil to SQL NULL so
// unset optional fields are omitted rather than stored as nulls
func marshalOptional(v interface{}) (interface{}, error) {
	switch val := v.(type) {
	case map[string]interface{}:
		if val == nil {
			return nil, nil
		}
	case []content.FeedbackEntry:
		if val == nil {
			return nil, nil
		}
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
