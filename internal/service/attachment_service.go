package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/greencampus/waste-portal-api/internal/models"
	appErrors "github.com/greencampus/waste-portal-api/pkg/errors"
	"github.com/greencampus/waste-portal-api/pkg/storage"
)

type attachmentRegistry interface {
	FindByID(ctx context.Context, id string) (*models.Attachment, error)
	Usage(ctx context.Context) (int, int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type objectOpener interface {
	Open(targetPath string) (io.ReadCloser, error)
}

type attachmentAuditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// AttachmentService exposes signed attachment downloads and the administrative
// storage views: usage reporting and old-object purges.
type AttachmentService struct {
	registry attachmentRegistry
	store    storage.ObjectStore
	opener   objectOpener
	signer   *storage.SignedURLSigner
	audit    attachmentAuditWriter
	logger   *zap.Logger
}

// NewAttachmentService constructs an AttachmentService.
func NewAttachmentService(
	registry attachmentRegistry,
	store storage.ObjectStore,
	opener objectOpener,
	signer *storage.SignedURLSigner,
	audit attachmentAuditWriter,
	logger *zap.Logger,
) *AttachmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttachmentService{registry: registry, store: store, opener: opener, signer: signer, audit: audit, logger: logger}
}

// DownloadLink issues a short-lived signed token for one attachment.
func (s *AttachmentService) DownloadLink(ctx context.Context, attachmentID string) (*models.AttachmentLink, error) {
	att, err := s.registry.FindByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attachment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load attachment")
	}

	token, expiresAt, err := s.signer.Generate(att.ID, att.StoragePath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}
	return &models.AttachmentLink{
		AttachmentID: att.ID,
		Filename:     att.Filename,
		Token:        token,
		ExpiresAt:    expiresAt,
	}, nil
}

// OpenDownload validates a token and opens the referenced object. The caller
// owns the returned reader.
func (s *AttachmentService) OpenDownload(ctx context.Context, token string) (io.ReadCloser, *models.Attachment, error) {
	attachmentID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}

	att, err := s.registry.FindByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "attachment not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load attachment")
	}
	if att.StoragePath != relPath {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "token does not match attachment")
	}

	reader, err := s.opener.Open(att.StoragePath)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "attachment object missing")
	}
	return reader, att, nil
}

// StorageReport combines registry bookkeeping with what the store holds.
// The two can drift after a purge or a failed registry write; surfacing both
// lets admins spot that.
func (s *AttachmentService) StorageReport(ctx context.Context) (*models.StorageReport, error) {
	count, bytes, err := s.registry.Usage(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to read attachment registry")
	}
	summary, err := s.store.Usage()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to inspect object store")
	}
	return &models.StorageReport{
		RegisteredFiles: count,
		RegisteredBytes: bytes,
		StoredFiles:     summary.FileCount,
		StoredBytes:     summary.TotalBytes,
		StoredMB:        float64(summary.TotalBytes) / (1024 * 1024),
	}, nil
}

// Purge removes stored objects older than the given age along with their
// registry rows.
func (s *AttachmentService) Purge(ctx context.Context, olderThan time.Duration, requestedBy string) (*models.PurgeResult, error) {
	if olderThan <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "purge age must be positive")
	}

	// Registry rows go first: a store failure afterwards leaves orphaned
	// objects, which StorageReport surfaces, never rows pointing at deleted
	// objects.
	rows, err := s.registry.DeleteOlderThan(ctx, time.Now().UTC().Add(-olderThan))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to purge attachment registry")
	}
	deleted, err := s.store.Purge(olderThan)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to purge object store")
	}

	s.logger.Info("attachment purge completed",
		zap.Int("deleted_objects", len(deleted)),
		zap.Int64("deleted_rows", rows),
		zap.String("requested_by", requestedBy))

	if s.audit != nil {
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UserID:   &requestedBy,
			Action:   models.AuditActionPurge,
			Resource: "attachments",
		}); err != nil {
			s.logger.Warn("failed to record purge audit log", zap.Error(err))
		}
	}
	return &models.PurgeResult{DeletedObjects: len(deleted), DeletedRows: rows}, nil
}
