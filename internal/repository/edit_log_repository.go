package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/greencampus/waste-portal-api/internal/models"
)

// EditLogRepository persists the append-only verifier edit trail.
type EditLogRepository struct {
	db *sqlx.DB
}

// NewEditLogRepository constructs the repository.
func NewEditLogRepository(db *sqlx.DB) *EditLogRepository {
	return &EditLogRepository{db: db}
}

func (r *EditLogRepository) ext(q sqlx.ExtContext) sqlx.ExtContext {
	if q != nil {
		return q
	}
	return r.db
}

// Insert appends one edit record. Records are immutable after this point.
func (r *EditLogRepository) Insert(ctx context.Context, q sqlx.ExtContext, record *models.EditRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.EditedAt.IsZero() {
		record.EditedAt = time.Now().UTC()
	}
	query := `INSERT INTO submission_edits
(id, submission_id, submission_type, original_data, edited_data, edited_by, edited_at, edit_reason)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.ext(q).ExecContext(ctx, query,
		record.ID, record.SubmissionID, record.SubmissionType,
		record.OriginalData, record.EditedData,
		record.EditedBy, record.EditedAt, record.Reason,
	); err != nil {
		return fmt.Errorf("insert edit record: %w", err)
	}
	return nil
}

// ListBySubmission returns all edit records for one submission id, oldest first.
func (r *EditLogRepository) ListBySubmission(ctx context.Context, submissionID string) ([]models.EditRecord, error) {
	query := `SELECT id, submission_id, submission_type, original_data, edited_data, edited_by, edited_at, edit_reason
FROM submission_edits WHERE submission_id = $1 ORDER BY edited_at`
	var rows []models.EditRecord
	if err := r.db.SelectContext(ctx, &rows, query, submissionID); err != nil {
		return nil, fmt.Errorf("list edits for submission: %w", err)
	}
	return rows, nil
}

// ListDetails returns every edit record joined with its submission's hostel and
// date for the audit history view, newest first.
func (r *EditLogRepository) ListDetails(ctx context.Context) ([]models.EditRecordDetail, error) {
	query := `SELECT se.id, se.submission_id, se.submission_type, se.original_data, se.edited_data,
se.edited_by, se.edited_at, se.edit_reason,
CASE WHEN se.submission_type = 'mess_waste' THEN mws.hostel ELSE hws.hostel END AS hostel,
CASE WHEN se.submission_type = 'mess_waste' THEN mws.submission_date ELSE hws.submission_date END AS submission_date
FROM submission_edits se
LEFT JOIN mess_waste_submissions mws ON se.submission_type = 'mess_waste' AND se.submission_id = mws.submission_id
LEFT JOIN hostel_waste_submissions hws ON se.submission_type = 'hostel_waste' AND se.submission_id = hws.submission_id
ORDER BY se.edited_at DESC`
	var rows []models.EditRecordDetail
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list edit details: %w", err)
	}
	return rows, nil
}
