package service

import (
	"context"
	"fmt"
	"math"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/greencampus/waste-portal-api/internal/models"
	appErrors "github.com/greencampus/waste-portal-api/pkg/errors"
	"github.com/greencampus/waste-portal-api/pkg/storage"
)

type messSubmissionWriter interface {
	Insert(ctx context.Context, sub *models.MessWasteSubmission) error
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.MessWasteSubmission, error)
}

type hostelSubmissionWriter interface {
	Insert(ctx context.Context, sub *models.HostelWasteSubmission) error
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.HostelWasteSubmission, error)
}

type attachmentWriter interface {
	Insert(ctx context.Context, att *models.Attachment) error
	ListBySubmission(ctx context.Context, submissionID string, submissionType models.SubmissionType) ([]models.Attachment, error)
}

type submissionAuditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// SubmissionLimits bounds what the intake accepts per attachment.
type SubmissionLimits struct {
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
}

// SubmissionService handles raw waste data intake for both variants.
type SubmissionService struct {
	messRepo    messSubmissionWriter
	hostelRepo  hostelSubmissionWriter
	attachments attachmentWriter
	audit       submissionAuditWriter
	store       storage.ObjectStore
	validator   *validator.Validate
	logger      *zap.Logger
	metrics     *MetricsService
	limits      SubmissionLimits
}

// NewSubmissionService constructs a SubmissionService.
func NewSubmissionService(
	messRepo messSubmissionWriter,
	hostelRepo hostelSubmissionWriter,
	attachments attachmentWriter,
	audit submissionAuditWriter,
	store storage.ObjectStore,
	validate *validator.Validate,
	logger *zap.Logger,
	metrics *MetricsService,
	limits SubmissionLimits,
) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SubmissionService{
		messRepo:    messRepo,
		hostelRepo:  hostelRepo,
		attachments: attachments,
		audit:       audit,
		store:       store,
		validator:   validate,
		logger:      logger,
		metrics:     metrics,
		limits:      limits,
	}
}

// SubmitMess stores a pending mess submission. Stored totals are recomputed
// from the component fields; declared client totals are only checked for drift.
// The returned error is ErrPartialUpload when the row was stored but one or
// more attachments could not be.
func (s *SubmissionService) SubmitMess(ctx context.Context, req models.MessSubmissionRequest, submittedBy string) (*models.SubmissionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mess submission payload")
	}
	date, err := parseSubmissionDate(req.SubmissionDate)
	if err != nil {
		return nil, err
	}

	agg := ComputeMessAggregate(req.MessWasteFields)
	if req.DeclaredTotalStudents != nil && *req.DeclaredTotalStudents != agg.TotalStudents {
		s.logger.Warn("declared student total diverges from recomputed value",
			zap.Int("declared", *req.DeclaredTotalStudents),
			zap.Int("computed", agg.TotalStudents))
	}
	if req.DeclaredTotalWaste != nil && math.Abs(*req.DeclaredTotalWaste-agg.TotalMessWaste) > 1e-6 {
		s.logger.Warn("declared mess total diverges from recomputed value",
			zap.Float64("declared", *req.DeclaredTotalWaste),
			zap.Float64("computed", agg.TotalMessWaste))
	}

	sub := &models.MessWasteSubmission{
		SubmissionID:    newSubmissionID("MESS", submittedBy),
		SubmissionDate:  date,
		Hostel:          req.Hostel,
		MessWasteFields: req.MessWasteFields,
		TotalStudents:   agg.TotalStudents,
		TotalMessWaste:  agg.TotalMessWaste,
		Remarks:         req.Remarks,
		SubmittedBy:     submittedBy,
		SubmittedAt:     time.Now().UTC(),
		Status:          models.StatusPending,
	}
	if err := s.messRepo.Insert(ctx, sub); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to store mess submission")
	}

	s.metrics.RecordSubmission(models.TypeMessWaste)
	s.recordSubmitAudit(ctx, submittedBy, sub.SubmissionID, models.TypeMessWaste)

	result := &models.SubmissionResult{
		SubmissionID:  sub.SubmissionID,
		Status:        sub.Status,
		TotalStudents: sub.TotalStudents,
		Total:         sub.TotalMessWaste,
	}
	return s.attachUploads(ctx, result, models.TypeMessWaste, req.Attachments)
}

// SubmitHostel stores a pending hostel submission.
func (s *SubmissionService) SubmitHostel(ctx context.Context, req models.HostelSubmissionRequest, submittedBy string) (*models.SubmissionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid hostel submission payload")
	}
	date, err := parseSubmissionDate(req.SubmissionDate)
	if err != nil {
		return nil, err
	}

	agg := ComputeHostelAggregate(req.HostelWasteFields)
	if req.DeclaredTotalWaste != nil && math.Abs(*req.DeclaredTotalWaste-agg.TotalHostelWaste) > 1e-6 {
		s.logger.Warn("declared hostel total diverges from recomputed value",
			zap.Float64("declared", *req.DeclaredTotalWaste),
			zap.Float64("computed", agg.TotalHostelWaste))
	}

	sub := &models.HostelWasteSubmission{
		SubmissionID:      newSubmissionID("HOSTEL", submittedBy),
		SubmissionDate:    date,
		Hostel:            req.Hostel,
		HostelWasteFields: req.HostelWasteFields,
		TotalWaste:        agg.TotalHostelWaste,
		Remarks:           req.Remarks,
		SubmittedBy:       submittedBy,
		SubmittedAt:       time.Now().UTC(),
		Status:            models.StatusPending,
	}
	if err := s.hostelRepo.Insert(ctx, sub); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to store hostel submission")
	}

	s.metrics.RecordSubmission(models.TypeHostelWaste)
	s.recordSubmitAudit(ctx, submittedBy, sub.SubmissionID, models.TypeHostelWaste)

	result := &models.SubmissionResult{
		SubmissionID: sub.SubmissionID,
		Status:       sub.Status,
		Total:        sub.TotalWaste,
	}
	return s.attachUploads(ctx, result, models.TypeHostelWaste, req.Attachments)
}

// ListMess returns mess submissions matching the filter.
func (s *SubmissionService) ListMess(ctx context.Context, filter models.SubmissionFilter) ([]models.MessWasteSubmission, error) {
	rows, err := s.messRepo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list mess submissions")
	}
	return rows, nil
}

// ListHostel returns hostel submissions matching the filter.
func (s *SubmissionService) ListHostel(ctx context.Context, filter models.SubmissionFilter) ([]models.HostelWasteSubmission, error) {
	rows, err := s.hostelRepo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list hostel submissions")
	}
	return rows, nil
}

// Attachments returns the stored attachment references for one submission.
func (s *SubmissionService) Attachments(ctx context.Context, submissionID string, submissionType models.SubmissionType) ([]models.Attachment, error) {
	if !submissionType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown submission type")
	}
	rows, err := s.attachments.ListBySubmission(ctx, submissionID, submissionType)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list attachments")
	}
	return rows, nil
}

func (s *SubmissionService) attachUploads(ctx context.Context, result *models.SubmissionResult, submissionType models.SubmissionType, uploads []models.AttachmentUpload) (*models.SubmissionResult, error) {
	for _, upload := range uploads {
		if reason := s.rejectUpload(upload); reason != "" {
			result.UploadFailures = append(result.UploadFailures, models.UploadFailure{Filename: upload.Filename, Reason: reason})
			continue
		}
		target := path.Join(result.SubmissionID, sanitizeFilename(upload.Filename))
		url, err := s.store.Put(target, upload.ContentType, upload.Data)
		if err != nil {
			s.logger.Warn("attachment upload failed",
				zap.String("submission_id", result.SubmissionID),
				zap.String("filename", upload.Filename),
				zap.Error(err))
			result.UploadFailures = append(result.UploadFailures, models.UploadFailure{Filename: upload.Filename, Reason: "storage unavailable"})
			continue
		}
		att := &models.Attachment{
			SubmissionID:   result.SubmissionID,
			SubmissionType: submissionType,
			Filename:       upload.Filename,
			URL:            url,
			StoragePath:    target,
			FileSize:       int64(len(upload.Data)),
		}
		if err := s.attachments.Insert(ctx, att); err != nil {
			s.logger.Warn("attachment registry insert failed",
				zap.String("submission_id", result.SubmissionID),
				zap.String("filename", upload.Filename),
				zap.Error(err))
			result.UploadFailures = append(result.UploadFailures, models.UploadFailure{Filename: upload.Filename, Reason: "registry write failed"})
			continue
		}
		result.Attachments = append(result.Attachments, *att)
	}
	if len(result.UploadFailures) > 0 {
		return result, appErrors.Clone(appErrors.ErrPartialUpload,
			fmt.Sprintf("%d of %d attachments failed to upload", len(result.UploadFailures), len(uploads)))
	}
	return result, nil
}

func (s *SubmissionService) rejectUpload(upload models.AttachmentUpload) string {
	if s.limits.MaxFileSizeBytes > 0 && int64(len(upload.Data)) > s.limits.MaxFileSizeBytes {
		return fmt.Sprintf("file exceeds %d bytes", s.limits.MaxFileSizeBytes)
	}
	if len(s.limits.AllowedMIMEs) == 0 {
		return ""
	}
	for _, allowed := range s.limits.AllowedMIMEs {
		if strings.EqualFold(allowed, upload.ContentType) {
			return ""
		}
	}
	return "unsupported content type " + upload.ContentType
}

func (s *SubmissionService) recordSubmitAudit(ctx context.Context, submittedBy, submissionID string, submissionType models.SubmissionType) {
	if s.audit == nil {
		return
	}
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &submittedBy,
		Action:     models.AuditActionSubmit,
		Resource:   string(submissionType),
		ResourceID: &submissionID,
	}); err != nil {
		s.logger.Warn("failed to record submission audit log", zap.Error(err))
	}
}

func newSubmissionID(prefix, user string) string {
	return fmt.Sprintf("%s_%s_%s_%s",
		prefix,
		time.Now().UTC().Format("20060102_150405"),
		user,
		uuid.NewString()[:8])
}

func parseSubmissionDate(value string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "submission_date must use YYYY-MM-DD")
	}
	return date, nil
}

func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}
