package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/greencampus/waste-portal-api/internal/models"
	appErrors "github.com/greencampus/waste-portal-api/pkg/errors"
)

type userRepoStub struct {
	existing       *models.User
	created        *models.User
	deleteAffected int64
	logs           []*models.AuditLog
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	s.created = user
	return nil
}

func (s *userRepoStub) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if s.existing != nil && s.existing.Username == username {
		return s.existing, nil
	}
	return nil, sql.ErrNoRows
}

func (s *userRepoStub) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	return nil, nil
}

func (s *userRepoStub) Delete(ctx context.Context, username string) (int64, error) {
	return s.deleteAffected, nil
}

func (s *userRepoStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.logs = append(s.logs, log)
	return nil
}

func TestUserServiceCreateHashesPassword(t *testing.T) {
	repo := &userRepoStub{}
	svc := NewUserService(repo, nil, nil)

	user, err := svc.Create(context.Background(), models.CreateUserRequest{
		Username: "verifier1",
		Password: "long enough secret",
		FullName: "V. One",
		Role:     models.RoleVerifier,
	}, "admin")
	require.NoError(t, err)
	require.NotNil(t, repo.created)
	assert.NotEqual(t, "long enough secret", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("long enough secret")))
	require.Len(t, repo.logs, 1)
	assert.Equal(t, models.AuditActionUserCreate, repo.logs[0].Action)
}

func TestUserServiceCreateDuplicateUsername(t *testing.T) {
	repo := &userRepoStub{existing: &models.User{Username: "verifier1"}}
	svc := NewUserService(repo, nil, nil)

	_, err := svc.Create(context.Background(), models.CreateUserRequest{
		Username: "verifier1",
		Password: "long enough secret",
		FullName: "V. One",
		Role:     models.RoleVerifier,
	}, "admin")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestUserServiceCreateUnknownRole(t *testing.T) {
	svc := NewUserService(&userRepoStub{}, nil, nil)

	_, err := svc.Create(context.Background(), models.CreateUserRequest{
		Username: "verifier1",
		Password: "long enough secret",
		FullName: "V. One",
		Role:     models.UserRole("superuser"),
	}, "admin")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUserServiceDeleteSelfRefused(t *testing.T) {
	svc := NewUserService(&userRepoStub{deleteAffected: 1}, nil, nil)

	err := svc.Delete(context.Background(), "admin", "admin")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestUserServiceDeleteMissing(t *testing.T) {
	svc := NewUserService(&userRepoStub{deleteAffected: 0}, nil, nil)

	err := svc.Delete(context.Background(), "ghost", "admin")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
