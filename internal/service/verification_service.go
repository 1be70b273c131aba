package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/greencampus/waste-portal-api/internal/models"
	appErrors "github.com/greencampus/waste-portal-api/pkg/errors"
)

type messVerificationRepo interface {
	GetBySubmissionID(ctx context.Context, q sqlx.ExtContext, submissionID string) (*models.MessWasteSubmission, error)
	MarkVerified(ctx context.Context, q sqlx.ExtContext, submissionID, verifiedBy string, at time.Time) (int64, error)
	MarkRejected(ctx context.Context, q sqlx.ExtContext, submissionID, verifiedBy string, at time.Time) (int64, error)
	UpdateFieldsAndVerify(ctx context.Context, q sqlx.ExtContext, submissionID string, f models.MessWasteFields, totalStudents int, totalMessWaste float64, verifiedBy string, at time.Time) (int64, error)
	PendingGroups(ctx context.Context) ([]models.PendingGroup, error)
}

type hostelVerificationRepo interface {
	GetBySubmissionID(ctx context.Context, q sqlx.ExtContext, submissionID string) (*models.HostelWasteSubmission, error)
	MarkVerified(ctx context.Context, q sqlx.ExtContext, submissionID, verifiedBy string, at time.Time) (int64, error)
	MarkRejected(ctx context.Context, q sqlx.ExtContext, submissionID, verifiedBy string, at time.Time) (int64, error)
	UpdateFieldsAndVerify(ctx context.Context, q sqlx.ExtContext, submissionID string, f models.HostelWasteFields, totalWaste float64, verifiedBy string, at time.Time) (int64, error)
	PendingGroups(ctx context.Context) ([]models.PendingGroup, error)
}

type editLogWriter interface {
	Insert(ctx context.Context, q sqlx.ExtContext, record *models.EditRecord) error
	ListBySubmission(ctx context.Context, submissionID string) ([]models.EditRecord, error)
	ListDetails(ctx context.Context) ([]models.EditRecordDetail, error)
}

type aggregateWriter interface {
	UpsertMess(ctx context.Context, q sqlx.ExtContext, date time.Time, hostel string, g models.MessAggregateGroup) error
	UpsertHostel(ctx context.Context, q sqlx.ExtContext, date time.Time, hostel string, g models.HostelAggregateGroup) error
}

type verificationAuditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// VerificationService drives the pending -> verified/rejected workflow. Every
// approval and its aggregate projection commit in one database transaction.
type VerificationService struct {
	db         *sqlx.DB
	messRepo   messVerificationRepo
	hostelRepo hostelVerificationRepo
	edits      editLogWriter
	aggregates aggregateWriter
	audit      verificationAuditWriter
	cache      *CacheService
	validator  *validator.Validate
	logger     *zap.Logger
	metrics    *MetricsService
}

// NewVerificationService constructs a VerificationService.
func NewVerificationService(
	db *sqlx.DB,
	messRepo messVerificationRepo,
	hostelRepo hostelVerificationRepo,
	edits editLogWriter,
	aggregates aggregateWriter,
	audit verificationAuditWriter,
	cache *CacheService,
	validate *validator.Validate,
	logger *zap.Logger,
	metrics *MetricsService,
) *VerificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &VerificationService{
		db:         db,
		messRepo:   messRepo,
		hostelRepo: hostelRepo,
		edits:      edits,
		aggregates: aggregates,
		audit:      audit,
		cache:      cache,
		validator:  validate,
		logger:     logger,
		metrics:    metrics,
	}
}

// Approve verifies a pending submission as submitted and folds it into the
// master aggregate.
func (s *VerificationService) Approve(ctx context.Context, submissionType models.SubmissionType, submissionID, verifiedBy string) error {
	switch submissionType {
	case models.TypeMessWaste:
		return s.approveMess(ctx, submissionID, nil, verifiedBy)
	case models.TypeHostelWaste:
		return s.approveHostel(ctx, submissionID, nil, verifiedBy)
	default:
		return appErrors.Clone(appErrors.ErrValidation, "unknown submission type")
	}
}

// EditMessAndApprove merges the corrected fields over the stored submission,
// records the change in the edit trail and verifies it, all atomically.
func (s *VerificationService) EditMessAndApprove(ctx context.Context, submissionID string, req models.MessEditRequest, verifiedBy string) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid edit payload")
	}
	return s.approveMess(ctx, submissionID, &req, verifiedBy)
}

// EditHostelAndApprove is the hostel counterpart of EditMessAndApprove.
func (s *VerificationService) EditHostelAndApprove(ctx context.Context, submissionID string, req models.HostelEditRequest, verifiedBy string) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid edit payload")
	}
	return s.approveHostel(ctx, submissionID, &req, verifiedBy)
}

// Reject marks a pending submission rejected. Rejected data never reaches the
// master aggregate.
func (s *VerificationService) Reject(ctx context.Context, submissionType models.SubmissionType, submissionID, verifiedBy string) error {
	if !submissionType.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown submission type")
	}
	now := time.Now().UTC()
	var affected int64
	var err error
	switch submissionType {
	case models.TypeMessWaste:
		affected, err = s.messRepo.MarkRejected(ctx, nil, submissionID, verifiedBy, now)
	default:
		affected, err = s.hostelRepo.MarkRejected(ctx, nil, submissionID, verifiedBy, now)
	}
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to reject submission")
	}
	if affected == 0 {
		return s.explainNoTransition(ctx, submissionType, submissionID)
	}
	s.metrics.RecordDecision(submissionType, "rejected")
	s.recordDecisionAudit(ctx, verifiedBy, submissionID, submissionType, models.AuditActionReject)
	return nil
}

// ApproveAll approves a batch one by one, reporting each outcome instead of
// aborting on the first failure.
func (s *VerificationService) ApproveAll(ctx context.Context, submissionType models.SubmissionType, submissionIDs []string, verifiedBy string) []models.VerificationOutcome {
	outcomes := make([]models.VerificationOutcome, 0, len(submissionIDs))
	for _, id := range submissionIDs {
		outcome := models.VerificationOutcome{SubmissionID: id, Approved: true}
		if err := s.Approve(ctx, submissionType, id, verifiedBy); err != nil {
			outcome.Approved = false
			outcome.Error = appErrors.FromError(err).Message
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// PendingGroups lists pending submissions grouped per (hostel, date), both
// variants interleaved.
func (s *VerificationService) PendingGroups(ctx context.Context) ([]models.PendingGroup, error) {
	mess, err := s.messRepo.PendingGroups(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list pending mess groups")
	}
	hostel, err := s.hostelRepo.PendingGroups(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list pending hostel groups")
	}
	return append(mess, hostel...), nil
}

// EditHistory returns every verifier edit with its submission context.
func (s *VerificationService) EditHistory(ctx context.Context) ([]models.EditRecordDetail, error) {
	rows, err := s.edits.ListDetails(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list edit history")
	}
	return rows, nil
}

// SubmissionEdits returns the edit trail for one submission.
func (s *VerificationService) SubmissionEdits(ctx context.Context, submissionID string) ([]models.EditRecord, error) {
	rows, err := s.edits.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list submission edits")
	}
	return rows, nil
}

func (s *VerificationService) approveMess(ctx context.Context, submissionID string, edit *models.MessEditRequest, verifiedBy string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to open transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	sub, err := s.messRepo.GetBySubmissionID(ctx, tx, submissionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load submission")
	}
	if sub.Status != models.StatusPending {
		return appErrors.Clone(appErrors.ErrInvalidState, "submission already "+string(sub.Status))
	}

	now := time.Now().UTC()
	fields := sub.MessWasteFields
	if edit != nil {
		fields = edit.MessEditFields.ApplyTo(sub.MessWasteFields)
	}
	agg := ComputeMessAggregate(fields)

	var affected int64
	if edit != nil {
		affected, err = s.messRepo.UpdateFieldsAndVerify(ctx, tx, submissionID, fields, agg.TotalStudents, agg.TotalMessWaste, verifiedBy, now)
	} else {
		affected, err = s.messRepo.MarkVerified(ctx, tx, submissionID, verifiedBy, now)
	}
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to verify submission")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrInvalidState, "submission already decided")
	}

	if edit != nil {
		record, err := buildEditRecord(submissionID, models.TypeMessWaste, sub.MessWasteFields, fields, verifiedBy, edit.Reason)
		if err != nil {
			return err
		}
		if err := s.edits.Insert(ctx, tx, record); err != nil {
			return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to record edit")
		}
	}

	if err := s.aggregates.UpsertMess(ctx, tx, sub.SubmissionDate, sub.Hostel, agg); err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to update master data")
	}

	if err := tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to commit verification")
	}

	s.afterApproval(ctx, verifiedBy, submissionID, models.TypeMessWaste, edit != nil)
	return nil
}

func (s *VerificationService) approveHostel(ctx context.Context, submissionID string, edit *models.HostelEditRequest, verifiedBy string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to open transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	sub, err := s.hostelRepo.GetBySubmissionID(ctx, tx, submissionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load submission")
	}
	if sub.Status != models.StatusPending {
		return appErrors.Clone(appErrors.ErrInvalidState, "submission already "+string(sub.Status))
	}

	now := time.Now().UTC()
	fields := sub.HostelWasteFields
	if edit != nil {
		fields = edit.HostelEditFields.ApplyTo(sub.HostelWasteFields)
	}
	agg := ComputeHostelAggregate(fields)

	var affected int64
	if edit != nil {
		affected, err = s.hostelRepo.UpdateFieldsAndVerify(ctx, tx, submissionID, fields, agg.TotalHostelWaste, verifiedBy, now)
	} else {
		affected, err = s.hostelRepo.MarkVerified(ctx, tx, submissionID, verifiedBy, now)
	}
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to verify submission")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrInvalidState, "submission already decided")
	}

	if edit != nil {
		record, err := buildEditRecord(submissionID, models.TypeHostelWaste, sub.HostelWasteFields, fields, verifiedBy, edit.Reason)
		if err != nil {
			return err
		}
		if err := s.edits.Insert(ctx, tx, record); err != nil {
			return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to record edit")
		}
	}

	if err := s.aggregates.UpsertHostel(ctx, tx, sub.SubmissionDate, sub.Hostel, agg); err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to update master data")
	}

	if err := tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to commit verification")
	}

	s.afterApproval(ctx, verifiedBy, submissionID, models.TypeHostelWaste, edit != nil)
	return nil
}

// explainNoTransition disambiguates a zero-row conditional update outside a
// transaction: either the submission never existed or it already left pending.
func (s *VerificationService) explainNoTransition(ctx context.Context, submissionType models.SubmissionType, submissionID string) error {
	var err error
	switch submissionType {
	case models.TypeMessWaste:
		_, err = s.messRepo.GetBySubmissionID(ctx, nil, submissionID)
	default:
		_, err = s.hostelRepo.GetBySubmissionID(ctx, nil, submissionID)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load submission")
	}
	return appErrors.Clone(appErrors.ErrInvalidState, "submission already decided")
}

func (s *VerificationService) afterApproval(ctx context.Context, verifiedBy, submissionID string, submissionType models.SubmissionType, edited bool) {
	s.metrics.RecordDecision(submissionType, "approved")
	action := models.AuditActionApprove
	if edited {
		action = models.AuditActionEditApprove
	}
	s.recordDecisionAudit(ctx, verifiedBy, submissionID, submissionType, action)
	if err := s.cache.Invalidate(ctx, "reports:*"); err != nil {
		s.logger.Warn("report cache invalidation failed", zap.Error(err))
	}
}

func (s *VerificationService) recordDecisionAudit(ctx context.Context, verifiedBy, submissionID string, submissionType models.SubmissionType, action string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &verifiedBy,
		Action:     action,
		Resource:   string(submissionType),
		ResourceID: &submissionID,
	}); err != nil {
		s.logger.Warn("failed to record verification audit log", zap.Error(err))
	}
}

func buildEditRecord(submissionID string, submissionType models.SubmissionType, original, edited interface{}, editedBy, reason string) (*models.EditRecord, error) {
	originalJSON, err := json.Marshal(original)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to snapshot original fields")
	}
	editedJSON, err := json.Marshal(edited)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to snapshot edited fields")
	}
	return &models.EditRecord{
		SubmissionID:   submissionID,
		SubmissionType: submissionType,
		OriginalData:   originalJSON,
		EditedData:     editedJSON,
		EditedBy:       editedBy,
		Reason:         reason,
	}, nil
}
