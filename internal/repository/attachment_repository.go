package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/greencampus/waste-portal-api/internal/models"
)

// AttachmentRepository maps submissions to externally stored binary objects.
type AttachmentRepository struct {
	db *sqlx.DB
}

// NewAttachmentRepository constructs the repository.
func NewAttachmentRepository(db *sqlx.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// Insert stores one attachment reference.
func (r *AttachmentRepository) Insert(ctx context.Context, att *models.Attachment) error {
	if att.ID == "" {
		att.ID = uuid.NewString()
	}
	if att.UploadedAt.IsZero() {
		att.UploadedAt = time.Now().UTC()
	}
	query := `INSERT INTO submission_attachments
(id, submission_id, submission_type, filename, url, storage_path, file_size, uploaded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(ctx, query,
		att.ID, att.SubmissionID, att.SubmissionType, att.Filename, att.URL, att.StoragePath, att.FileSize, att.UploadedAt,
	); err != nil {
		return fmt.Errorf("insert attachment: %w", err)
	}
	return nil
}

// ListBySubmission returns attachment references for one submission.
func (r *AttachmentRepository) ListBySubmission(ctx context.Context, submissionID string, submissionType models.SubmissionType) ([]models.Attachment, error) {
	query := `SELECT id, submission_id, submission_type, filename, url, storage_path, file_size, uploaded_at
FROM submission_attachments WHERE submission_id = $1 AND submission_type = $2 ORDER BY uploaded_at`
	var rows []models.Attachment
	if err := r.db.SelectContext(ctx, &rows, query, submissionID, submissionType); err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return rows, nil
}

// FindByID returns one attachment reference.
func (r *AttachmentRepository) FindByID(ctx context.Context, id string) (*models.Attachment, error) {
	query := `SELECT id, submission_id, submission_type, filename, url, storage_path, file_size, uploaded_at
FROM submission_attachments WHERE id = $1`
	var att models.Attachment
	if err := r.db.GetContext(ctx, &att, query, id); err != nil {
		return nil, err
	}
	return &att, nil
}

// Usage sums attachment counts and sizes recorded in the registry.
func (r *AttachmentRepository) Usage(ctx context.Context) (int, int64, error) {
	row := struct {
		Count int   `db:"cnt"`
		Bytes int64 `db:"total"`
	}{}
	if err := r.db.GetContext(ctx, &row, `SELECT COUNT(*) AS cnt, COALESCE(SUM(file_size), 0) AS total FROM submission_attachments`); err != nil {
		return 0, 0, fmt.Errorf("attachment usage: %w", err)
	}
	return row.Count, row.Bytes, nil
}

// DeleteOlderThan removes registry rows uploaded before the cutoff, used only
// by the administrative purge.
func (r *AttachmentRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM submission_attachments WHERE uploaded_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge attachments: %w", err)
	}
	return res.RowsAffected()
}
