package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fieldserve/booking-api/internal/models"
	appErrors "github.com/fieldserve/booking-api/pkg/errors"
)

type mockAuthRepo struct {
	users     map[string]*models.User
	lastLogin string
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLogin = id
	return nil
}

func authFixture(t *testing.T) (*AuthService, *mockAuthRepo) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("dispatch-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &mockAuthRepo{users: map[string]*models.User{
		"user-1": {
			ID:           "user-1",
			Email:        "dispatch@example.com",
			PasswordHash: string(hash),
			FullName:     "Dana Dispatch",
			Role:         models.RoleDispatcher,
			Active:       true,
		},
	}}
	service := NewAuthService(repo, nil, nil, AuthConfig{
		AccessTokenSecret: "test-secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "booking-api-test",
	})
	return service, repo
}

func TestAuthLoginSuccess(t *testing.T) {
	service, repo := authFixture(t)

	res, err := service.Login(context.Background(), models.LoginRequest{
		Email:    "dispatch@example.com",
		Password: "dispatch-pass",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "user-1", res.User.ID)
	assert.Equal(t, "user-1", repo.lastLogin)

	claims, err := service.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleDispatcher, claims.Role)
}

func TestAuthLoginWrongPassword(t *testing.T) {
	service, _ := authFixture(t)

	_, err := service.Login(context.Background(), models.LoginRequest{
		Email:    "dispatch@example.com",
		Password: "wrong",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthLoginUnknownEmailMatchesWrongPassword(t *testing.T) {
	service, _ := authFixture(t)

	_, err := service.Login(context.Background(), models.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthLoginInactiveAccount(t *testing.T) {
	service, repo := authFixture(t)
	repo.users["user-1"].Active = false

	_, err := service.Login(context.Background(), models.LoginRequest{
		Email:    "dispatch@example.com",
		Password: "dispatch-pass",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestAuthValidateTokenRejectsTampered(t *testing.T) {
	service, _ := authFixture(t)

	res, err := service.Login(context.Background(), models.LoginRequest{
		Email:    "dispatch@example.com",
		Password: "dispatch-pass",
	})
	require.NoError(t, err)

	_, err = service.ValidateToken(res.AccessToken + "x")
	require.Error(t, err)

	other := NewAuthService(&mockAuthRepo{}, nil, nil, AuthConfig{AccessTokenSecret: "different-secret"})
	_, err = other.ValidateToken(res.AccessToken)
	require.Error(t, err)
}

func TestAuthCurrentUser(t *testing.T) {
	service, _ := authFixture(t)

	user, err := service.CurrentUser(context.Background(), &Claims{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, "dispatch@example.com", user.Email)

	_, err = service.CurrentUser(context.Background(), &Claims{UserID: "ghost"})
	require.Error(t, err)
}
