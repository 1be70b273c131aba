package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/greencampus/waste-portal-api/internal/models"
)

// HostelSubmissionRepository handles persistence for hostel waste submissions.
type HostelSubmissionRepository struct {
	db *sqlx.DB
}

// NewHostelSubmissionRepository constructs the repository.
func NewHostelSubmissionRepository(db *sqlx.DB) *HostelSubmissionRepository {
	return &HostelSubmissionRepository{db: db}
}

func (r *HostelSubmissionRepository) ext(q sqlx.ExtContext) sqlx.ExtContext {
	if q != nil {
		return q
	}
	return r.db
}

const hostelSubmissionColumns = `submission_id, submission_date, hostel,
dry_waste, wet_waste, e_waste, biomedical_waste, hazardous_waste,
total_waste, remarks, submitted_by, submitted_at, status, verified_by, verified_at`

// Insert stores a new pending submission.
func (r *HostelSubmissionRepository) Insert(ctx context.Context, sub *models.HostelWasteSubmission) error {
	query := fmt.Sprintf(`INSERT INTO hostel_waste_submissions (%s)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
RETURNING id`, hostelSubmissionColumns)
	f := sub.HostelWasteFields
	if err := r.db.GetContext(ctx, &sub.ID, query,
		sub.SubmissionID, sub.SubmissionDate, sub.Hostel,
		f.DryWaste, f.WetWaste, f.EWaste, f.BiomedicalWaste, f.HazardousWaste,
		sub.TotalWaste, sub.Remarks, sub.SubmittedBy, sub.SubmittedAt,
		sub.Status, sub.VerifiedBy, sub.VerifiedAt,
	); err != nil {
		return fmt.Errorf("insert hostel submission: %w", err)
	}
	return nil
}

// GetBySubmissionID fetches one submission, optionally inside a transaction.
func (r *HostelSubmissionRepository) GetBySubmissionID(ctx context.Context, q sqlx.ExtContext, submissionID string) (*models.HostelWasteSubmission, error) {
	query := fmt.Sprintf(`SELECT id, %s FROM hostel_waste_submissions WHERE submission_id = $1`, hostelSubmissionColumns)
	var sub models.HostelWasteSubmission
	if err := sqlx.GetContext(ctx, r.ext(q), &sub, query, submissionID); err != nil {
		return nil, err
	}
	return &sub, nil
}

// List returns submissions matching the filter, newest date first.
func (r *HostelSubmissionRepository) List(ctx context.Context, filter models.SubmissionFilter) ([]models.HostelWasteSubmission, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Hostel != "" {
		where = append(where, fmt.Sprintf("hostel = $%d", len(args)+1))
		args = append(args, filter.Hostel)
	}
	if filter.SubmittedBy != "" {
		where = append(where, fmt.Sprintf("submitted_by = $%d", len(args)+1))
		args = append(args, filter.SubmittedBy)
	}
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("submission_date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("submission_date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}
	query := fmt.Sprintf(`SELECT id, %s FROM hostel_waste_submissions WHERE %s ORDER BY submission_date DESC, hostel`,
		hostelSubmissionColumns, strings.Join(where, " AND "))
	var rows []models.HostelWasteSubmission
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list hostel submissions: %w", err)
	}
	return rows, nil
}

// MarkVerified transitions pending -> verified with a conditional update.
func (r *HostelSubmissionRepository) MarkVerified(ctx context.Context, q sqlx.ExtContext, submissionID, verifiedBy string, at time.Time) (int64, error) {
	res, err := r.ext(q).ExecContext(ctx, `UPDATE hostel_waste_submissions
SET status = 'verified', verified_by = $1, verified_at = $2
WHERE submission_id = $3 AND status = 'pending'`, verifiedBy, at, submissionID)
	if err != nil {
		return 0, fmt.Errorf("mark hostel submission verified: %w", err)
	}
	return res.RowsAffected()
}

// MarkRejected transitions pending -> rejected with a conditional update.
func (r *HostelSubmissionRepository) MarkRejected(ctx context.Context, q sqlx.ExtContext, submissionID, verifiedBy string, at time.Time) (int64, error) {
	res, err := r.ext(q).ExecContext(ctx, `UPDATE hostel_waste_submissions
SET status = 'rejected', verified_by = $1, verified_at = $2
WHERE submission_id = $3 AND status = 'pending'`, verifiedBy, at, submissionID)
	if err != nil {
		return 0, fmt.Errorf("mark hostel submission rejected: %w", err)
	}
	return res.RowsAffected()
}

// UpdateFieldsAndVerify overwrites the category fields with edited values,
// refreshes the stored total and transitions pending -> verified.
func (r *HostelSubmissionRepository) UpdateFieldsAndVerify(ctx context.Context, q sqlx.ExtContext, submissionID string, f models.HostelWasteFields, totalWaste float64, verifiedBy string, at time.Time) (int64, error) {
	res, err := r.ext(q).ExecContext(ctx, `UPDATE hostel_waste_submissions
SET dry_waste = $1, wet_waste = $2, e_waste = $3, biomedical_waste = $4, hazardous_waste = $5,
    total_waste = $6, status = 'verified', verified_by = $7, verified_at = $8
WHERE submission_id = $9 AND status = 'pending'`,
		f.DryWaste, f.WetWaste, f.EWaste, f.BiomedicalWaste, f.HazardousWaste,
		totalWaste, verifiedBy, at, submissionID,
	)
	if err != nil {
		return 0, fmt.Errorf("update hostel submission fields: %w", err)
	}
	return res.RowsAffected()
}

// PendingGroups summarises pending submissions per (hostel, date) for the
// verifier queue.
func (r *HostelSubmissionRepository) PendingGroups(ctx context.Context) ([]models.PendingGroup, error) {
	query := `SELECT hostel, submission_date, array_to_string(array_agg(submission_id ORDER BY submitted_at), ',') AS ids, COUNT(*) AS cnt
FROM hostel_waste_submissions WHERE status = 'pending'
GROUP BY hostel, submission_date
ORDER BY submission_date DESC, hostel`
	rows := []struct {
		Hostel         string    `db:"hostel"`
		SubmissionDate time.Time `db:"submission_date"`
		IDs            string    `db:"ids"`
		Count          int       `db:"cnt"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("pending hostel groups: %w", err)
	}
	groups := make([]models.PendingGroup, 0, len(rows))
	for _, row := range rows {
		groups = append(groups, models.PendingGroup{
			Hostel:         row.Hostel,
			SubmissionDate: row.SubmissionDate,
			Type:           models.TypeHostelWaste,
			SubmissionIDs:  strings.Split(row.IDs, ","),
			Count:          row.Count,
		})
	}
	return groups, nil
}
