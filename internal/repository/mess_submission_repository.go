package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/greencampus/waste-portal-api/internal/models"
)

// MessSubmissionRepository handles persistence for mess waste submissions.
type MessSubmissionRepository struct {
	db *sqlx.DB
}

// NewMessSubmissionRepository constructs the repository.
func NewMessSubmissionRepository(db *sqlx.DB) *MessSubmissionRepository {
	return &MessSubmissionRepository{db: db}
}

func (r *MessSubmissionRepository) ext(q sqlx.ExtContext) sqlx.ExtContext {
	if q != nil {
		return q
	}
	return r.db
}

const messSubmissionColumns = `submission_id, submission_date, hostel,
breakfast_students, breakfast_student_waste, breakfast_counter_waste, breakfast_vegetable_peels,
lunch_students, lunch_student_waste, lunch_counter_waste, lunch_vegetable_peels,
snacks_students, snacks_student_waste, snacks_counter_waste, snacks_vegetable_peels,
dinner_students, dinner_student_waste, dinner_counter_waste, dinner_vegetable_peels,
mess_dry_waste, total_students, total_mess_waste, remarks, submitted_by, submitted_at,
status, verified_by, verified_at`

// Insert stores a new pending submission.
func (r *MessSubmissionRepository) Insert(ctx context.Context, sub *models.MessWasteSubmission) error {
	query := fmt.Sprintf(`INSERT INTO mess_waste_submissions (%s)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)
RETURNING id`, messSubmissionColumns)
	f := sub.MessWasteFields
	if err := r.db.GetContext(ctx, &sub.ID, query,
		sub.SubmissionID, sub.SubmissionDate, sub.Hostel,
		f.BreakfastStudents, f.BreakfastStudentWaste, f.BreakfastCounterWaste, f.BreakfastVegetablePeels,
		f.LunchStudents, f.LunchStudentWaste, f.LunchCounterWaste, f.LunchVegetablePeels,
		f.SnacksStudents, f.SnacksStudentWaste, f.SnacksCounterWaste, f.SnacksVegetablePeels,
		f.DinnerStudents, f.DinnerStudentWaste, f.DinnerCounterWaste, f.DinnerVegetablePeels,
		f.MessDryWaste, sub.TotalStudents, sub.TotalMessWaste, sub.Remarks, sub.SubmittedBy, sub.SubmittedAt,
		sub.Status, sub.VerifiedBy, sub.VerifiedAt,
	); err != nil {
		return fmt.Errorf("insert mess submission: %w", err)
	}
	return nil
}

// GetBySubmissionID fetches one submission. Pass a transaction to read inside
// the verification transaction; nil reads from the pool.
func (r *MessSubmissionRepository) GetBySubmissionID(ctx context.Context, q sqlx.ExtContext, submissionID string) (*models.MessWasteSubmission, error) {
	query := fmt.Sprintf(`SELECT id, %s FROM mess_waste_submissions WHERE submission_id = $1`, messSubmissionColumns)
	var sub models.MessWasteSubmission
	if err := sqlx.GetContext(ctx, r.ext(q), &sub, query, submissionID); err != nil {
		return nil, err
	}
	return &sub, nil
}

// List returns submissions matching the filter, newest date first.
func (r *MessSubmissionRepository) List(ctx context.Context, filter models.SubmissionFilter) ([]models.MessWasteSubmission, error) {
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
	query := fmt.Sprintf(`SELECT id, %s FROM mess_waste_submissions WHERE %s ORDER BY submission_date DESC, hostel`,
		messSubmissionColumns, strings.Join(where, " AND "))
	var rows []models.MessWasteSubmission
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list mess submissions: %w", err)
	}
	return rows, nil
}

// MarkVerified transitions pending -> verified with a conditional update.
// Returns the number of rows affected; zero means the submission was missing
// or already left pending.
func (r *MessSubmissionRepository) MarkVerified(ctx context.Context, q sqlx.ExtContext, submissionID, verifiedBy string, at time.Time) (int64, error) {
	res, err := r.ext(q).ExecContext(ctx, `UPDATE mess_waste_submissions
SET status = 'verified', verified_by = $1, verified_at = $2
WHERE submission_id = $3 AND status = 'pending'`, verifiedBy, at, submissionID)
	if err != nil {
		return 0, fmt.Errorf("mark mess submission verified: %w", err)
	}
	return res.RowsAffected()
}

// MarkRejected transitions pending -> rejected with a conditional update.
func (r *MessSubmissionRepository) MarkRejected(ctx context.Context, q sqlx.ExtContext, submissionID, verifiedBy string, at time.Time) (int64, error) {
	res, err := r.ext(q).ExecContext(ctx, `UPDATE mess_waste_submissions
SET status = 'rejected', verified_by = $1, verified_at = $2
WHERE submission_id = $3 AND status = 'pending'`, verifiedBy, at, submissionID)
	if err != nil {
		return 0, fmt.Errorf("mark mess submission rejected: %w", err)
	}
	return res.RowsAffected()
}

// UpdateFieldsAndVerify overwrites the component fields with edited values,
// refreshes the stored totals and transitions pending -> verified, all in one
// conditional statement.
func (r *MessSubmissionRepository) UpdateFieldsAndVerify(ctx context.Context, q sqlx.ExtContext, submissionID string, f models.MessWasteFields, totalStudents int, totalMessWaste float64, verifiedBy string, at time.Time) (int64, error) {
	res, err := r.ext(q).ExecContext(ctx, `UPDATE mess_waste_submissions
SET breakfast_students = $1, breakfast_student_waste = $2, breakfast_counter_waste = $3, breakfast_vegetable_peels = $4,
    lunch_students = $5, lunch_student_waste = $6, lunch_counter_waste = $7, lunch_vegetable_peels = $8,
    snacks_students = $9, snacks_student_waste = $10, snacks_counter_waste = $11, snacks_vegetable_peels = $12,
    dinner_students = $13, dinner_student_waste = $14, dinner_counter_waste = $15, dinner_vegetable_peels = $16,
    mess_dry_waste = $17, total_students = $18, total_mess_waste = $19,
    status = 'verified', verified_by = $20, verified_at = $21
WHERE submission_id = $22 AND status = 'pending'`,
		f.BreakfastStudents, f.BreakfastStudentWaste, f.BreakfastCounterWaste, f.BreakfastVegetablePeels,
		f.LunchStudents, f.LunchStudentWaste, f.LunchCounterWaste, f.LunchVegetablePeels,
		f.SnacksStudents, f.SnacksStudentWaste, f.SnacksCounterWaste, f.SnacksVegetablePeels,
		f.DinnerStudents, f.DinnerStudentWaste, f.DinnerCounterWaste, f.DinnerVegetablePeels,
		f.MessDryWaste, totalStudents, totalMessWaste, verifiedBy, at, submissionID,
	)
	if err != nil {
		return 0, fmt.Errorf("update mess submission fields: %w", err)
	}
	return res.RowsAffected()
}

// PendingGroups summarises pending submissions per (hostel, date) for the
// verifier queue.
func (r *MessSubmissionRepository) PendingGroups(ctx context.Context) ([]models.PendingGroup, error) {
	query := `SELECT hostel, submission_date, array_to_string(array_agg(submission_id ORDER BY submitted_at), ',') AS ids, COUNT(*) AS cnt
FROM mess_waste_submissions WHERE status = 'pending'
GROUP BY hostel, submission_date
ORDER BY submission_date DESC, hostel`
	rows := []struct {
		Hostel         string    `db:"hostel"`
		SubmissionDate time.Time `db:"submission_date"`
		IDs            string    `db:"ids"`
		Count          int       `db:"cnt"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("pending mess groups: %w", err)
	}
	groups := make([]models.PendingGroup, 0, len(rows))
	for _, row := range rows {
		groups = append(groups, models.PendingGroup{
			Hostel:         row.Hostel,
			SubmissionDate: row.SubmissionDate,
			Type:           models.TypeMessWaste,
			SubmissionIDs:  strings.Split(row.IDs, ","),
			Count:          row.Count,
		})
	}
	return groups, nil
}
