package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greencampus/waste-portal-api/internal/models"
	appErrors "github.com/greencampus/waste-portal-api/pkg/errors"
	"github.com/greencampus/waste-portal-api/pkg/storage"
)

type messWriterStub struct {
	inserted *models.MessWasteSubmission
	err      error
}

func (s *messWriterStub) Insert(ctx context.Context, sub *models.MessWasteSubmission) error {
	if s.err != nil {
		return s.err
	}
	s.inserted = sub
	return nil
}

func (s *messWriterStub) List(ctx context.Context, filter models.SubmissionFilter) ([]models.MessWasteSubmission, error) {
	return nil, nil
}

type hostelWriterStub struct {
	inserted *models.HostelWasteSubmission
}

func (s *hostelWriterStub) Insert(ctx context.Context, sub *models.HostelWasteSubmission) error {
	s.inserted = sub
	return nil
}

func (s *hostelWriterStub) List(ctx context.Context, filter models.SubmissionFilter) ([]models.HostelWasteSubmission, error) {
	return nil, nil
}

type attachmentWriterStub struct {
	inserted []*models.Attachment
	err      error
}

func (s *attachmentWriterStub) Insert(ctx context.Context, att *models.Attachment) error {
	if s.err != nil {
		return s.err
	}
	s.inserted = append(s.inserted, att)
	return nil
}

func (s *attachmentWriterStub) ListBySubmission(ctx context.Context, submissionID string, submissionType models.SubmissionType) ([]models.Attachment, error) {
	return nil, nil
}

type storeStub struct {
	putErr error
	puts   []string
}

func (s *storeStub) Put(targetPath, contentType string, data []byte) (string, error) {
	if s.putErr != nil {
		return "", s.putErr
	}
	s.puts = append(s.puts, targetPath)
	return "https://files.local/" + targetPath, nil
}

func (s *storeStub) Delete(targetPath string) error { return nil }

func (s *storeStub) Usage() (storage.UsageSummary, error) { return storage.UsageSummary{}, nil }

func (s *storeStub) Purge(olderThan time.Duration) ([]string, error) { return nil, nil }

func newSubmissionFixture(mess *messWriterStub, hostel *hostelWriterStub, atts *attachmentWriterStub, store *storeStub) *SubmissionService {
	return NewSubmissionService(mess, hostel, atts, &auditStub{}, store, nil, nil, nil, SubmissionLimits{
		MaxFileSizeBytes: 1024,
		AllowedMIMEs:     []string{"image/jpeg", "image/png"},
	})
}

func validMessRequest() models.MessSubmissionRequest {
	return models.MessSubmissionRequest{
		SubmissionDate: "2026-01-15",
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
	}
}

func TestSubmissionServiceSubmitMessRecomputesTotals(t *testing.T) {
	mess := &messWriterStub{}
	svc := newSubmissionFixture(mess, &hostelWriterStub{}, &attachmentWriterStub{}, &storeStub{})

	req := validMessRequest()
	declaredStudents := 999
	req.DeclaredTotalStudents = &declaredStudents

	result, err := svc.SubmitMess(context.Background(), req, "alice")
	require.NoError(t, err)
	require.NotNil(t, mess.inserted)

	assert.True(t, strings.HasPrefix(result.SubmissionID, "MESS_"), result.SubmissionID)
	assert.Contains(t, result.SubmissionID, "_alice_")
	assert.Equal(t, models.StatusPending, result.Status)
	assert.Equal(t, 50, result.TotalStudents)
	assert.InDelta(t, 4.5, result.Total, 1e-9)
	assert.Equal(t, 50, mess.inserted.TotalStudents)
	assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), mess.inserted.SubmissionDate)
}

func TestSubmissionServiceSubmitMessBadDate(t *testing.T) {
	svc := newSubmissionFixture(&messWriterStub{}, &hostelWriterStub{}, &attachmentWriterStub{}, &storeStub{})

	req := validMessRequest()
	req.SubmissionDate = "15-01-2026"

	_, err := svc.SubmitMess(context.Background(), req, "alice")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSubmissionServiceSubmitMessPersistenceFailure(t *testing.T) {
	mess := &messWriterStub{err: errors.New("connection reset")}
	svc := newSubmissionFixture(mess, &hostelWriterStub{}, &attachmentWriterStub{}, &storeStub{})

	_, err := svc.SubmitMess(context.Background(), validMessRequest(), "alice")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPersistence.Code, appErrors.FromError(err).Code)
}

func TestSubmissionServiceSubmitMessWithAttachments(t *testing.T) {
	atts := &attachmentWriterStub{}
	store := &storeStub{}
	svc := newSubmissionFixture(&messWriterStub{}, &hostelWriterStub{}, atts, store)

	req := validMessRequest()
	req.Attachments = []models.AttachmentUpload{
		{Filename: "weighing slip.jpg", ContentType: "image/jpeg", Data: []byte("jpegdata")},
	}

	result, err := svc.SubmitMess(context.Background(), req, "alice")
	require.NoError(t, err)
	require.Len(t, result.Attachments, 1)
	assert.Empty(t, result.UploadFailures)
	require.Len(t, atts.inserted, 1)
	assert.Equal(t, "weighing slip.jpg", atts.inserted[0].Filename)
	require.Len(t, store.puts, 1)
	assert.True(t, strings.HasSuffix(store.puts[0], "/weighing_slip.jpg"), store.puts[0])
}

func TestSubmissionServiceSubmitMessPartialUpload(t *testing.T) {
	store := &storeStub{putErr: errors.New("disk full")}
	svc := newSubmissionFixture(&messWriterStub{}, &hostelWriterStub{}, &attachmentWriterStub{}, store)

	req := validMessRequest()
	req.Attachments = []models.AttachmentUpload{
		{Filename: "slip.jpg", ContentType: "image/jpeg", Data: []byte("jpegdata")},
	}

	result, err := svc.SubmitMess(context.Background(), req, "alice")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPartialUpload.Code, appErrors.FromError(err).Code)
	require.NotNil(t, result)
	assert.NotEmpty(t, result.SubmissionID)
	require.Len(t, result.UploadFailures, 1)
	assert.Equal(t, "slip.jpg", result.UploadFailures[0].Filename)
}

func TestSubmissionServiceRejectsOversizedAndUnknownUploads(t *testing.T) {
	store := &storeStub{}
	svc := newSubmissionFixture(&messWriterStub{}, &hostelWriterStub{}, &attachmentWriterStub{}, store)

	req := validMessRequest()
	req.Attachments = []models.AttachmentUpload{
		{Filename: "big.jpg", ContentType: "image/jpeg", Data: make([]byte, 2048)},
		{Filename: "notes.exe", ContentType: "application/octet-stream", Data: []byte("x")},
	}

	result, err := svc.SubmitMess(context.Background(), req, "alice")
	require.Error(t, err)
	require.Len(t, result.UploadFailures, 2)
	assert.Empty(t, store.puts)
}

func TestSubmissionServiceSubmitHostelComputesTotal(t *testing.T) {
	hostel := &hostelWriterStub{}
	svc := newSubmissionFixture(&messWriterStub{}, hostel, &attachmentWriterStub{}, &storeStub{})

	result, err := svc.SubmitHostel(context.Background(), models.HostelSubmissionRequest{
		SubmissionDate: "2026-01-15",
		Hostel:         "H2",
		HostelWasteFields: models.HostelWasteFields{
			DryWaste:        10,
			WetWaste:        20,
			EWaste:          0.5,
			BiomedicalWaste: 0.25,
			HazardousWaste:  0.25,
		},
	}, "bob")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.SubmissionID, "HOSTEL_"))
	assert.InDelta(t, 31.0, result.Total, 1e-9)
	require.NotNil(t, hostel.inserted)
	assert.InDelta(t, 31.0, hostel.inserted.TotalWaste, 1e-9)
	assert.Equal(t, models.StatusPending, hostel.inserted.Status)
}
