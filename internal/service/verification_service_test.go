package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greencampus/waste-portal-api/internal/models"
	appErrors "github.com/greencampus/waste-portal-api/pkg/errors"
)

type messRepoStub struct {
	sub            *models.MessWasteSubmission
	getErr         error
	verifyAffected int64
	verifyResults  []int64
	verifyCalled   bool
	updateCalled   bool
	updatedFields  models.MessWasteFields
	rejectAffected int64
	groups         []models.PendingGroup
}

func (s *messRepoStub) GetBySubmissionID(ctx context.Context, q sqlx.ExtContext, submissionID string) (*models.MessWasteSubmission, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.sub, nil
}

func (s *messRepoStub) MarkVerified(ctx context.Context, q sqlx.ExtContext, submissionID, verifiedBy string, at time.Time) (int64, error) {
	s.verifyCalled = true
	if len(s.verifyResults) > 0 {
		affected := s.verifyResults[0]
		s.verifyResults = s.verifyResults[1:]
		return affected, nil
	}
	return s.verifyAffected, nil
}

func (s *messRepoStub) MarkRejected(ctx context.Context, q sqlx.ExtContext, submissionID, verifiedBy string, at time.Time) (int64, error) {
	return s.rejectAffected, nil
}

func (s *messRepoStub) UpdateFieldsAndVerify(ctx context.Context, q sqlx.ExtContext, submissionID string, f models.MessWasteFields, totalStudents int, totalMessWaste float64, verifiedBy string, at time.Time) (int64, error) {
	s.updateCalled = true
	s.updatedFields = f
	return s.verifyAffected, nil
}

func (s *messRepoStub) PendingGroups(ctx context.Context) ([]models.PendingGroup, error) {
	return s.groups, nil
}

type hostelRepoStub struct {
	sub            *models.HostelWasteSubmission
	getErr         error
	verifyAffected int64
	rejectAffected int64
	groups         []models.PendingGroup
}

func (s *hostelRepoStub) GetBySubmissionID(ctx context.Context, q sqlx.ExtContext, submissionID string) (*models.HostelWasteSubmission, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.sub, nil
}

func (s *hostelRepoStub) MarkVerified(ctx context.Context, q sqlx.ExtContext, submissionID, verifiedBy string, at time.Time) (int64, error) {
	return s.verifyAffected, nil
}

func (s *hostelRepoStub) MarkRejected(ctx context.Context, q sqlx.ExtContext, submissionID, verifiedBy string, at time.Time) (int64, error) {
	return s.rejectAffected, nil
}

func (s *hostelRepoStub) UpdateFieldsAndVerify(ctx context.Context, q sqlx.ExtContext, submissionID string, f models.HostelWasteFields, totalWaste float64, verifiedBy string, at time.Time) (int64, error) {
	return s.verifyAffected, nil
}

func (s *hostelRepoStub) PendingGroups(ctx context.Context) ([]models.PendingGroup, error) {
	return s.groups, nil
}

type editLogStub struct {
	records []*models.EditRecord
}

func (s *editLogStub) Insert(ctx context.Context, q sqlx.ExtContext, record *models.EditRecord) error {
	s.records = append(s.records, record)
	return nil
}

func (s *editLogStub) ListBySubmission(ctx context.Context, submissionID string) ([]models.EditRecord, error) {
	return nil, nil
}

func (s *editLogStub) ListDetails(ctx context.Context) ([]models.EditRecordDetail, error) {
	return nil, nil
}

type aggregateStub struct {
	messCalls   int
	hostelCalls int
	lastDate    time.Time
	lastHostel  string
	lastMess    models.MessAggregateGroup
	lastHostelG models.HostelAggregateGroup
}

func (s *aggregateStub) UpsertMess(ctx context.Context, q sqlx.ExtContext, date time.Time, hostel string, g models.MessAggregateGroup) error {
	s.messCalls++
	s.lastDate = date
	s.lastHostel = hostel
	s.lastMess = g
	return nil
}

func (s *aggregateStub) UpsertHostel(ctx context.Context, q sqlx.ExtContext, date time.Time, hostel string, g models.HostelAggregateGroup) error {
	s.hostelCalls++
	s.lastDate = date
	s.lastHostel = hostel
	s.lastHostelG = g
	return nil
}

type auditStub struct {
	logs []*models.AuditLog
}

func (s *auditStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.logs = append(s.logs, log)
	return nil
}

func newVerificationFixture(t *testing.T, mess *messRepoStub, hostel *hostelRepoStub) (*VerificationService, *aggregateStub, *editLogStub, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	agg := &aggregateStub{}
	edits := &editLogStub{}
	svc := NewVerificationService(sqlxDB, mess, hostel, edits, agg, &auditStub{}, nil, nil, nil, nil)
	return svc, agg, edits, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func pendingMessSubmission() *models.MessWasteSubmission {
	return &models.MessWasteSubmission{
		SubmissionID:   "MESS_20260115_081203_alice_ab12cd34",
		SubmissionDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Hostel:         "H1",
		MessWasteFields: models.MessWasteFields{
			BreakfastStudents:       20,
			BreakfastStudentWaste:   1.0,
			BreakfastCounterWaste:   0.5,
			BreakfastVegetablePeels: 0.5,
			LunchStudents:           30,
			LunchStudentWaste:       1.5,
			LunchCounterWaste:       0.5,
			MessDryWaste:            0.5,
		},
		Status: models.StatusPending,
	}
}

func TestVerificationServiceApproveMess(t *testing.T) {
	mess := &messRepoStub{sub: pendingMessSubmission(), verifyAffected: 1}
	svc, agg, _, mock, cleanup := newVerificationFixture(t, mess, &hostelRepoStub{})
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectCommit()

	require.NoError(t, svc.Approve(context.Background(), models.TypeMessWaste, mess.sub.SubmissionID, "verifier1"))
	assert.True(t, mess.verifyCalled)
	assert.Equal(t, 1, agg.messCalls)
	assert.Equal(t, "H1", agg.lastHostel)
	assert.Equal(t, 50, agg.lastMess.TotalStudents)
	assert.InDelta(t, 4.5, agg.lastMess.TotalMessWaste, 1e-9)
	assert.InDelta(t, 0.09, agg.lastMess.PerCapitaMessWaste, 1e-9)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVerificationServiceApproveMissing(t *testing.T) {
	mess := &messRepoStub{getErr: sql.ErrNoRows}
	svc, agg, _, mock, cleanup := newVerificationFixture(t, mess, &hostelRepoStub{})
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := svc.Approve(context.Background(), models.TypeMessWaste, "MESS_missing", "verifier1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Zero(t, agg.messCalls)
}

func TestVerificationServiceApproveAlreadyDecided(t *testing.T) {
	sub := pendingMessSubmission()
	sub.Status = models.StatusVerified
	mess := &messRepoStub{sub: sub}
	svc, agg, _, mock, cleanup := newVerificationFixture(t, mess, &hostelRepoStub{})
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := svc.Approve(context.Background(), models.TypeMessWaste, sub.SubmissionID, "verifier1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
	assert.Zero(t, agg.messCalls)
}

func TestVerificationServiceApproveLosesRace(t *testing.T) {
	mess := &messRepoStub{sub: pendingMessSubmission(), verifyAffected: 0}
	svc, agg, _, mock, cleanup := newVerificationFixture(t, mess, &hostelRepoStub{})
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := svc.Approve(context.Background(), models.TypeMessWaste, mess.sub.SubmissionID, "verifier1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
	assert.Zero(t, agg.messCalls)
}

func TestVerificationServiceEditMessAndApprove(t *testing.T) {
	mess := &messRepoStub{sub: pendingMessSubmission(), verifyAffected: 1}
	svc, agg, edits, mock, cleanup := newVerificationFixture(t, mess, &hostelRepoStub{})
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectCommit()

	corrected := 1.5
	req := models.MessEditRequest{
		MessEditFields: models.MessEditFields{BreakfastStudentWaste: &corrected},
		Reason:         "scale misread at breakfast",
	}

	require.NoError(t, svc.EditMessAndApprove(context.Background(), mess.sub.SubmissionID, req, "verifier1"))
	assert.True(t, mess.updateCalled)
	assert.Equal(t, 1.5, mess.updatedFields.BreakfastStudentWaste)
	assert.InDelta(t, 5.0, agg.lastMess.TotalMessWaste, 1e-9)

	require.Len(t, edits.records, 1)
	record := edits.records[0]
	assert.Equal(t, "verifier1", record.EditedBy)
	assert.Equal(t, "scale misread at breakfast", record.Reason)

	var original, changed models.MessWasteFields
	require.NoError(t, json.Unmarshal(record.OriginalData, &original))
	require.NoError(t, json.Unmarshal(record.EditedData, &changed))
	assert.Equal(t, 1.0, original.BreakfastStudentWaste)
	assert.Equal(t, 1.5, changed.BreakfastStudentWaste)
}

func TestVerificationServiceEditMessKeepsOmittedFields(t *testing.T) {
	mess := &messRepoStub{sub: pendingMessSubmission(), verifyAffected: 1}
	svc, agg, edits, mock, cleanup := newVerificationFixture(t, mess, &hostelRepoStub{})
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectCommit()

	var req models.MessEditRequest
	require.NoError(t, json.Unmarshal([]byte(`{"breakfast_student_waste": 2.0, "reason": "typo"}`), &req))

	require.NoError(t, svc.EditMessAndApprove(context.Background(), mess.sub.SubmissionID, req, "verifier1"))

	assert.Equal(t, 2.0, mess.updatedFields.BreakfastStudentWaste)
	assert.Equal(t, 20, mess.updatedFields.BreakfastStudents)
	assert.Equal(t, 30, mess.updatedFields.LunchStudents)
	assert.Equal(t, 1.5, mess.updatedFields.LunchStudentWaste)
	assert.Equal(t, 0.5, mess.updatedFields.MessDryWaste)

	assert.Equal(t, 50, agg.lastMess.TotalStudents)
	assert.InDelta(t, 5.5, agg.lastMess.TotalMessWaste, 1e-9)

	require.Len(t, edits.records, 1)
	var changed models.MessWasteFields
	require.NoError(t, json.Unmarshal(edits.records[0].EditedData, &changed))
	assert.Equal(t, 2.0, changed.BreakfastStudentWaste)
	assert.Equal(t, 30, changed.LunchStudents)
}

func TestVerificationServiceEditHostelKeepsOmittedFields(t *testing.T) {
	hostel := &hostelRepoStub{
		sub: &models.HostelWasteSubmission{
			SubmissionID:   "HOSTEL_20260115_100000_bob_12345678",
			SubmissionDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
			Hostel:         "H2",
			HostelWasteFields: models.HostelWasteFields{
				DryWaste: 10,
				WetWaste: 20,
				EWaste:   0.5,
			},
			Status: models.StatusPending,
		},
		verifyAffected: 1,
	}
	svc, agg, _, mock, cleanup := newVerificationFixture(t, &messRepoStub{}, hostel)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectCommit()

	var req models.HostelEditRequest
	require.NoError(t, json.Unmarshal([]byte(`{"dry_waste": 12.0, "reason": "weighbridge correction"}`), &req))

	require.NoError(t, svc.EditHostelAndApprove(context.Background(), hostel.sub.SubmissionID, req, "verifier1"))

	assert.Equal(t, 12.0, agg.lastHostelG.DryWaste)
	assert.Equal(t, 20.0, agg.lastHostelG.WetWaste)
	assert.Equal(t, 0.5, agg.lastHostelG.EWaste)
	assert.InDelta(t, 32.5, agg.lastHostelG.TotalHostelWaste, 1e-9)
}

func TestVerificationServiceRejectSkipsAggregate(t *testing.T) {
	mess := &messRepoStub{rejectAffected: 1}
	svc, agg, _, _, cleanup := newVerificationFixture(t, mess, &hostelRepoStub{})
	defer cleanup()

	require.NoError(t, svc.Reject(context.Background(), models.TypeMessWaste, "MESS_x", "verifier1"))
	assert.Zero(t, agg.messCalls)
	assert.Zero(t, agg.hostelCalls)
}

func TestVerificationServiceRejectAlreadyDecided(t *testing.T) {
	mess := &messRepoStub{sub: pendingMessSubmission(), rejectAffected: 0}
	svc, _, _, _, cleanup := newVerificationFixture(t, mess, &hostelRepoStub{})
	defer cleanup()

	err := svc.Reject(context.Background(), models.TypeMessWaste, "MESS_x", "verifier1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
}

func TestVerificationServiceRejectLookupFailure(t *testing.T) {
	mess := &messRepoStub{rejectAffected: 0, getErr: errors.New("connection reset")}
	svc, _, _, _, cleanup := newVerificationFixture(t, mess, &hostelRepoStub{})
	defer cleanup()

	err := svc.Reject(context.Background(), models.TypeMessWaste, "MESS_x", "verifier1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPersistence.Code, appErrors.FromError(err).Code)
}

func TestVerificationServiceApproveHostel(t *testing.T) {
	hostel := &hostelRepoStub{
		sub: &models.HostelWasteSubmission{
			SubmissionID:   "HOSTEL_20260115_100000_bob_12345678",
			SubmissionDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
			Hostel:         "H2",
			HostelWasteFields: models.HostelWasteFields{
				DryWaste: 10,
				WetWaste: 20,
				EWaste:   0.5,
			},
			Status: models.StatusPending,
		},
		verifyAffected: 1,
	}
	svc, agg, _, mock, cleanup := newVerificationFixture(t, &messRepoStub{}, hostel)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectCommit()

	require.NoError(t, svc.Approve(context.Background(), models.TypeHostelWaste, hostel.sub.SubmissionID, "verifier1"))
	assert.Equal(t, 1, agg.hostelCalls)
	assert.Equal(t, "H2", agg.lastHostel)
	assert.InDelta(t, 30.5, agg.lastHostelG.TotalHostelWaste, 1e-9)
}

func TestVerificationServiceApproveAllReportsEachOutcome(t *testing.T) {
	mess := &messRepoStub{sub: pendingMessSubmission(), verifyResults: []int64{1, 0}}
	svc, _, _, mock, cleanup := newVerificationFixture(t, mess, &hostelRepoStub{})
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()

	outcomes := svc.ApproveAll(context.Background(), models.TypeMessWaste, []string{"MESS_a", "MESS_b"}, "verifier1")
	require.Len(t, outcomes, 2)
	assert.True(t, outcomes[0].Approved)
	assert.False(t, outcomes[1].Approved)
	assert.NotEmpty(t, outcomes[1].Error)
}

func TestVerificationServicePendingGroupsMergesVariants(t *testing.T) {
	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	mess := &messRepoStub{groups: []models.PendingGroup{{Hostel: "H1", SubmissionDate: date, Type: models.TypeMessWaste, Count: 2}}}
	hostel := &hostelRepoStub{groups: []models.PendingGroup{{Hostel: "H1", SubmissionDate: date, Type: models.TypeHostelWaste, Count: 1}}}
	svc, _, _, _, cleanup := newVerificationFixture(t, mess, hostel)
	defer cleanup()

	groups, err := svc.PendingGroups(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, models.TypeMessWaste, groups[0].Type)
	assert.Equal(t, models.TypeHostelWaste, groups[1].Type)
}
