package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcastellanos/cursoadmin-api/internal/models"
	appErrors "github.com/mcastellanos/cursoadmin-api/pkg/errors"
)

type userRepoStub struct {
	users map[string]*models.User
}

func (s *userRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := s.users[email]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (s *userRepoStub) FindByID(ctx context.Context, id int64) (*models.User, error) {
	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func newAuthServiceForTest(t *testing.T) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secreto123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &userRepoStub{users: map[string]*models.User{
		"admin@curso.test":    {ID: 1, Name: "Admin", Email: "admin@curso.test", PasswordHash: string(hash), Active: true},
		"inactive@curso.test": {ID: 2, Name: "Baja", Email: "inactive@curso.test", PasswordHash: string(hash), Active: false},
	}}
	return NewAuthService(repo, nil, nil, AuthConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "cursoadmin-test"})
}

func TestAuthServiceLoginIssuesValidToken(t *testing.T) {
	svc := newAuthServiceForTest(t)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@curso.test", Password: "secreto123"})
	require.NoError(t, err)
	require.Equal(t, "Bearer", res.TokenType)
	require.Equal(t, int64(3600), res.ExpiresIn)
	require.NotEmpty(t, res.AccessToken)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	require.Equal(t, int64(1), claims.UserID)
	require.Equal(t, "admin@curso.test", claims.Email)
	require.Equal(t, "cursoadmin-test", claims.Issuer)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	svc := newAuthServiceForTest(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@curso.test", Password: "incorrecto"})
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	svc := newAuthServiceForTest(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nadie@curso.test", Password: "secreto123"})
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	svc := newAuthServiceForTest(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "inactive@curso.test", Password: "secreto123"})
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestAuthServiceCurrentUserReturnsFreshRecord(t *testing.T) {
	svc := newAuthServiceForTest(t)

	user, err := svc.CurrentUser(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "admin@curso.test", user.Email)
	require.Equal(t, "Admin", user.Name)
}

func TestAuthServiceCurrentUserDeletedAccount(t *testing.T) {
	svc := newAuthServiceForTest(t)

	_, err := svc.CurrentUser(context.Background(), 99)
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestAuthServiceCurrentUserInactiveAccount(t *testing.T) {
	svc := newAuthServiceForTest(t)

	_, err := svc.CurrentUser(context.Background(), 2)
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthServiceForTest(t)

	_, err := svc.ValidateToken("not-a-token")
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}
