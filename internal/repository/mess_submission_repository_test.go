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

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestMessSubmissionRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewMessSubmissionRepository(db)
	mock.ExpectQuery("INSERT INTO mess_waste_submissions").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	sub := &models.MessWasteSubmission{
		SubmissionID:   "MESS_20260115_081203_alice",
		SubmissionDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Hostel:         "H1",
		MessWasteFields: models.MessWasteFields{
			BreakfastStudents:     120,
			BreakfastStudentWaste: 3.5,
		},
		TotalStudents:  120,
		TotalMessWaste: 3.5,
		SubmittedBy:    "alice",
		SubmittedAt:    time.Now().UTC(),
		Status:         models.StatusPending,
	}
	require.NoError(t, repo.Insert(context.Background(), sub))
	assert.Equal(t, int64(7), sub.ID)
}

func TestMessSubmissionRepositoryMarkVerified(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewMessSubmissionRepository(db)
	at := time.Now().UTC()
	mock.ExpectExec("UPDATE mess_waste_submissions").
		WithArgs("verifier1", at, "MESS_20260115_081203_alice").
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.MarkVerified(context.Background(), nil, "MESS_20260115_081203_alice", "verifier1", at)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
}

func TestMessSubmissionRepositoryMarkVerifiedAlreadyDecided(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewMessSubmissionRepository(db)
	at := time.Now().UTC()
	mock.ExpectExec("UPDATE mess_waste_submissions").
		WithArgs("verifier1", at, "MESS_20260115_081203_alice").
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err := repo.MarkVerified(context.Background(), nil, "MESS_20260115_081203_alice", "verifier1", at)
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestMessSubmissionRepositoryListFiltersByStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewMessSubmissionRepository(db)
	rows := sqlmock.NewRows([]string{"id", "submission_id", "hostel", "status"}).
		AddRow(int64(1), "MESS_20260115_081203_alice", "H1", "pending")
	mock.ExpectQuery("SELECT id, submission_id").
		WithArgs("pending").
		WillReturnRows(rows)

	status := models.StatusPending
	result, err := repo.List(context.Background(), models.SubmissionFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "H1", result[0].Hostel)
}

func TestMessSubmissionRepositoryPendingGroups(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewMessSubmissionRepository(db)
	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"hostel", "submission_date", "ids", "cnt"}).
		AddRow("H1", date, "MESS_a,MESS_b", 2)
	mock.ExpectQuery("SELECT hostel, submission_date").WillReturnRows(rows)

	groups, err := repo.PendingGroups(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, models.TypeMessWaste, groups[0].Type)
	assert.Equal(t, []string{"MESS_a", "MESS_b"}, groups[0].SubmissionIDs)
	assert.Equal(t, 2, groups[0].Count)
}
