package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greencampus/waste-portal-api/internal/models"
)

func TestEditLogRepositoryInsertAssignsIdentity(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEditLogRepository(db)
	mock.ExpectExec("INSERT INTO submission_edits").
		WillReturnResult(sqlmock.NewResult(0, 1))

	record := &models.EditRecord{
		SubmissionID:   "MESS_20260115_081203_alice",
		SubmissionType: models.TypeMessWaste,
		OriginalData:   json.RawMessage(`{"total_mess_waste":4.5}`),
		EditedData:     json.RawMessage(`{"total_mess_waste":5.0}`),
		EditedBy:       "verifier1",
		Reason:         "scale misread at breakfast",
	}
	require.NoError(t, repo.Insert(context.Background(), nil, record))
	assert.NotEmpty(t, record.ID)
	assert.False(t, record.EditedAt.IsZero())
}

func TestEditLogRepositoryListBySubmission(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEditLogRepository(db)
	rows := sqlmock.NewRows([]string{"id", "submission_id", "submission_type", "edited_by", "edited_at", "edit_reason"}).
		AddRow("e1", "MESS_a", "mess_waste", "verifier1", time.Now(), "typo")
	mock.ExpectQuery("SELECT id, submission_id").
		WithArgs("MESS_a").
		WillReturnRows(rows)

	result, err := repo.ListBySubmission(context.Background(), "MESS_a")
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "verifier1", result[0].EditedBy)
}

func TestEditLogRepositoryListDetails(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEditLogRepository(db)
	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "submission_id", "submission_type", "edited_by", "edit_reason", "hostel", "submission_date"}).
		AddRow("e1", "MESS_a", "mess_waste", "verifier1", "typo", "H1", date)
	mock.ExpectQuery("SELECT se.id").WillReturnRows(rows)

	result, err := repo.ListDetails(context.Background())
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.NotNil(t, result[0].Hostel)
	assert.Equal(t, "H1", *result[0].Hostel)
}
