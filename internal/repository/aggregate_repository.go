package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/greencampus/waste-portal-api/internal/models"
)

// AggregateRepository owns the master_waste_data table. Each variant writes
// only its own column group; the ON CONFLICT clause must never touch the other
// group's stored values.
type AggregateRepository struct {
	db *sqlx.DB
}

// NewAggregateRepository constructs the repository.
func NewAggregateRepository(db *sqlx.DB) *AggregateRepository {
	return &AggregateRepository{db: db}
}

func (r *AggregateRepository) ext(q sqlx.ExtContext) sqlx.ExtContext {
	if q != nil {
		return q
	}
	return r.db
}

// UpsertMess inserts or merge-updates the mess-derived group of the
// (date, hostel) row. A row created here starts with the hostel group at its
// column defaults; an existing row keeps whatever the hostel side last wrote.
func (r *AggregateRepository) UpsertMess(ctx context.Context, q sqlx.ExtContext, date time.Time, hostel string, g models.MessAggregateGroup) error {
	query := `INSERT INTO master_waste_data
(date, hostel, total_students,
 breakfast_student_waste, breakfast_counter_waste, breakfast_vegetable_peels,
 lunch_student_waste, lunch_counter_waste, lunch_vegetable_peels,
 snacks_student_waste, snacks_counter_waste, snacks_vegetable_peels,
 dinner_student_waste, dinner_counter_waste, dinner_vegetable_peels,
 mess_dry_waste, total_mess_waste, total_mess_waste_no_peels,
 per_capita_mess_waste, per_capita_mess_waste_no_peels)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
ON CONFLICT (date, hostel)
DO UPDATE SET
    total_students = EXCLUDED.total_students,
    breakfast_student_waste = EXCLUDED.breakfast_student_waste,
    breakfast_counter_waste = EXCLUDED.breakfast_counter_waste,
    breakfast_vegetable_peels = EXCLUDED.breakfast_vegetable_peels,
    lunch_student_waste = EXCLUDED.lunch_student_waste,
    lunch_counter_waste = EXCLUDED.lunch_counter_waste,
    lunch_vegetable_peels = EXCLUDED.lunch_vegetable_peels,
    snacks_student_waste = EXCLUDED.snacks_student_waste,
    snacks_counter_waste = EXCLUDED.snacks_counter_waste,
    snacks_vegetable_peels = EXCLUDED.snacks_vegetable_peels,
    dinner_student_waste = EXCLUDED.dinner_student_waste,
    dinner_counter_waste = EXCLUDED.dinner_counter_waste,
    dinner_vegetable_peels = EXCLUDED.dinner_vegetable_peels,
    mess_dry_waste = EXCLUDED.mess_dry_waste,
    total_mess_waste = EXCLUDED.total_mess_waste,
    total_mess_waste_no_peels = EXCLUDED.total_mess_waste_no_peels,
    per_capita_mess_waste = EXCLUDED.per_capita_mess_waste,
    per_capita_mess_waste_no_peels = EXCLUDED.per_capita_mess_waste_no_peels`
	if _, err := r.ext(q).ExecContext(ctx, query,
		date, hostel, g.TotalStudents,
		g.BreakfastStudentWaste, g.BreakfastCounterWaste, g.BreakfastVegetablePeels,
		g.LunchStudentWaste, g.LunchCounterWaste, g.LunchVegetablePeels,
		g.SnacksStudentWaste, g.SnacksCounterWaste, g.SnacksVegetablePeels,
		g.DinnerStudentWaste, g.DinnerCounterWaste, g.DinnerVegetablePeels,
		g.MessDryWaste, g.TotalMessWaste, g.TotalMessWasteNoPeels,
		g.PerCapitaMessWaste, g.PerCapitaMessWasteNoPeels,
	); err != nil {
		return fmt.Errorf("upsert mess aggregate: %w", err)
	}
	return nil
}

// UpsertHostel inserts or merge-updates the hostel-derived group of the
// (date, hostel) row, leaving the mess group untouched on conflict.
func (r *AggregateRepository) UpsertHostel(ctx context.Context, q sqlx.ExtContext, date time.Time, hostel string, g models.HostelAggregateGroup) error {
	query := `INSERT INTO master_waste_data
(date, hostel, dry_waste, wet_waste, e_waste, biomedical_waste, hazardous_waste, total_hostel_waste)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (date, hostel)
DO UPDATE SET
    dry_waste = EXCLUDED.dry_waste,
    wet_waste = EXCLUDED.wet_waste,
    e_waste = EXCLUDED.e_waste,
    biomedical_waste = EXCLUDED.biomedical_waste,
    hazardous_waste = EXCLUDED.hazardous_waste,
    total_hostel_waste = EXCLUDED.total_hostel_waste`
	if _, err := r.ext(q).ExecContext(ctx, query,
		date, hostel, g.DryWaste, g.WetWaste, g.EWaste, g.BiomedicalWaste, g.HazardousWaste, g.TotalHostelWaste,
	); err != nil {
		return fmt.Errorf("upsert hostel aggregate: %w", err)
	}
	return nil
}

// List returns master rows matching the filter, newest first.
func (r *AggregateRepository) List(ctx context.Context, filter models.MasterDataFilter) ([]models.MasterWasteRecord, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Hostel != "" {
		where = append(where, fmt.Sprintf("hostel = $%d", len(args)+1))
		args = append(args, filter.Hostel)
	}
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}
	query := fmt.Sprintf(`SELECT id, date, hostel, total_students,
breakfast_student_waste, breakfast_counter_waste, breakfast_vegetable_peels,
lunch_student_waste, lunch_counter_waste, lunch_vegetable_peels,
snacks_student_waste, snacks_counter_waste, snacks_vegetable_peels,
dinner_student_waste, dinner_counter_waste, dinner_vegetable_peels,
mess_dry_waste, total_mess_waste, total_mess_waste_no_peels,
per_capita_mess_waste, per_capita_mess_waste_no_peels,
dry_waste, wet_waste, e_waste, biomedical_waste, hazardous_waste, total_hostel_waste, created_at
FROM master_waste_data WHERE %s ORDER BY date DESC, hostel`, strings.Join(where, " AND "))
	var rows []models.MasterWasteRecord
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list master data: %w", err)
	}
	return rows, nil
}

// Get fetches the aggregate row for one (date, hostel) key.
func (r *AggregateRepository) Get(ctx context.Context, date time.Time, hostel string) (*models.MasterWasteRecord, error) {
	query := `SELECT id, date, hostel, total_students,
breakfast_student_waste, breakfast_counter_waste, breakfast_vegetable_peels,
lunch_student_waste, lunch_counter_waste, lunch_vegetable_peels,
snacks_student_waste, snacks_counter_waste, snacks_vegetable_peels,
dinner_student_waste, dinner_counter_waste, dinner_vegetable_peels,
mess_dry_waste, total_mess_waste, total_mess_waste_no_peels,
per_capita_mess_waste, per_capita_mess_waste_no_peels,
dry_waste, wet_waste, e_waste, biomedical_waste, hazardous_waste, total_hostel_waste, created_at
FROM master_waste_data WHERE date = $1 AND hostel = $2`
	var row models.MasterWasteRecord
	if err := r.db.GetContext(ctx, &row, query, date, hostel); err != nil {
		return nil, err
	}
	return &row, nil
}

// Hostels lists the distinct hostel codes present in the aggregate.
func (r *AggregateRepository) Hostels(ctx context.Context) ([]string, error) {
	var hostels []string
	if err := r.db.SelectContext(ctx, &hostels, `SELECT DISTINCT hostel FROM master_waste_data ORDER BY hostel`); err != nil {
		return nil, fmt.Errorf("list hostels: %w", err)
	}
	return hostels, nil
}
