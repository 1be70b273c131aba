package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greencampus/waste-portal-api/internal/models"
)

func TestAggregateRepositoryUpsertMess(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAggregateRepository(db)
	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO master_waste_data").
		WillReturnResult(sqlmock.NewResult(0, 1))

	group := models.MessAggregateGroup{
		TotalStudents:  50,
		TotalMessWaste: 4.5,
		PerCapitaMessWaste: 0.09,
	}
	require.NoError(t, repo.UpsertMess(context.Background(), nil, date, "H1", group))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAggregateRepositoryUpsertHostel(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAggregateRepository(db)
	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO master_waste_data").
		WithArgs(date, "H1", 10.0, 20.0, 0.5, 0.0, 0.0, 30.5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	group := models.HostelAggregateGroup{
		DryWaste:         10,
		WetWaste:         20,
		EWaste:           0.5,
		TotalHostelWaste: 30.5,
	}
	require.NoError(t, repo.UpsertHostel(context.Background(), nil, date, "H1", group))
	require.NoError(t, mock.ExpectationsWereMet())
}

// Each upsert variant must name only its own column group. A mess upsert that
// mentions a hostel column (or vice versa) would clobber the other side's
// stored values on conflict.
func TestAggregateRepositoryUpsertsTouchOnlyOwnColumnGroup(t *testing.T) {
	var captured []string
	recorder := sqlmock.QueryMatcherFunc(func(expectedSQL, actualSQL string) error {
		captured = append(captured, actualSQL)
		return nil
	})
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(recorder))
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	defer sqlxDB.Close()

	repo := NewAggregateRepository(sqlxDB)
	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpsertMess(context.Background(), nil, date, "H1", models.MessAggregateGroup{}))
	require.NoError(t, repo.UpsertHostel(context.Background(), nil, date, "H1", models.HostelAggregateGroup{}))
	require.Len(t, captured, 2)
	messSQL, hostelSQL := captured[0], captured[1]

	// underscores are word characters, so \bdry_waste\b cannot match inside
	// mess_dry_waste
	hostelColumns := []string{"dry_waste", "wet_waste", "e_waste", "biomedical_waste", "hazardous_waste", "total_hostel_waste"}
	for _, col := range hostelColumns {
		assert.NotRegexp(t, `\b`+col+`\b`, messSQL, col)
		assert.Regexp(t, `\b`+col+`\b`, hostelSQL, col)
	}
	messColumns := []string{"total_students", "breakfast_student_waste", "lunch_vegetable_peels", "mess_dry_waste", "total_mess_waste", "per_capita_mess_waste"}
	for _, col := range messColumns {
		assert.Regexp(t, `\b`+col+`\b`, messSQL, col)
		assert.NotRegexp(t, `\b`+col+`\b`, hostelSQL, col)
	}
}

func TestAggregateRepositoryListFiltersByHostelAndRange(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAggregateRepository(db)
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "date", "hostel", "total_mess_waste", "total_hostel_waste"}).
		AddRow(int64(1), from.AddDate(0, 0, 14), "H1", 4.5, 30.5)
	mock.ExpectQuery("SELECT id, date, hostel").
		WithArgs("H1", from).
		WillReturnRows(rows)

	result, err := repo.List(context.Background(), models.MasterDataFilter{Hostel: "H1", DateFrom: &from})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, 4.5, result[0].TotalMessWaste)
	assert.Equal(t, 30.5, result[0].TotalHostelWaste)
}

func TestAggregateRepositoryHostels(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAggregateRepository(db)
	rows := sqlmock.NewRows([]string{"hostel"}).AddRow("H1").AddRow("H2")
	mock.ExpectQuery("SELECT DISTINCT hostel").WillReturnRows(rows)

	hostels, err := repo.Hostels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"H1", "H2"}, hostels)
}
