package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"alfredoptarigan/resume-analyzer/internal/apperror"
	"alfredoptarigan/resume-analyzer/internal/logger"
	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/repositories"
)

func newTestAuth(t *testing.T, store *repositories.MemoryStore) AuthService {
	t.Helper()
	svc := NewAuthService(store.Users(), NewTokenService("test-secret", 60*time.Minute), 2, logger.Discard())
	svc.(*authService).bcryptCost = bcrypt.MinCost
	return svc
}

func registerUser(t *testing.T, auth AuthService, username, email string) *models.User {
	t.Helper()
	user, err := auth.Register(context.Background(), models.RegisterRequest{
		Username: username,
		Email:    email,
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	return user
}

func TestRegister(t *testing.T) {
	store := repositories.NewMemoryStore()
	auth := newTestAuth(t, store)

	user := registerUser(t, auth, "jane", "jane@example.com")

	stored, err := store.Users().FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsSubscribed)
	require.NotNil(t, stored.RemainingAttempts)
	assert.Equal(t, 2, *stored.RemainingAttempts)
	assert.NotEqual(t, "s3cret-pass", stored.HashedPassword)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.HashedPassword), []byte("s3cret-pass")))
}

func TestRegisterDuplicate(t *testing.T) {
	store := repositories.NewMemoryStore()
	auth := newTestAuth(t, store)
	original := registerUser(t, auth, "jane", "jane@example.com")

	for name, req := range map[string]models.RegisterRequest{
		"same username": {Username: "jane", Email: "other@example.com", Password: "whatever1"},
		"same email":    {Username: "janet", Email: "jane@example.com", Password: "whatever1"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := auth.Register(context.Background(), req)
			require.Error(t, err)
			assert.True(t, apperror.IsCode(err, apperror.CodeInvalidArgument))
			assert.Equal(t, "Email or username already exists.", apperror.Message(err))
		})
	}

	stored, err := store.Users().FindByID(context.Background(), original.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", stored.Email)
	assert.Equal(t, original.HashedPassword, stored.HashedPassword)
}

func TestLogin(t *testing.T) {
	store := repositories.NewMemoryStore()
	auth := newTestAuth(t, store)
	registerUser(t, auth, "jane", "jane@example.com")

	for _, identifier := range []string{"jane", "jane@example.com"} {
		t.Run(identifier, func(t *testing.T) {
			resp, err := auth.Login(context.Background(), models.LoginRequest{Identifier: identifier, Password: "s3cret-pass"})
			require.NoError(t, err)
			assert.Equal(t, "bearer", resp.TokenType)

			claims := &jwt.RegisteredClaims{}
			_, err = jwt.ParseWithClaims(resp.AccessToken, claims, func(*jwt.Token) (any, error) {
				return []byte("test-secret"), nil
			})
			require.NoError(t, err)
			assert.Equal(t, "jane", claims.Subject)
			assert.WithinDuration(t, time.Now().Add(60*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
		})
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	store := repositories.NewMemoryStore()
	auth := newTestAuth(t, store)
	registerUser(t, auth, "jane", "jane@example.com")

	for name, req := range map[string]models.LoginRequest{
		"wrong password": {Identifier: "jane", Password: "nope-nope"},
		"unknown user":   {Identifier: "ghost", Password: "s3cret-pass"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := auth.Login(context.Background(), req)
			require.Error(t, err)
			assert.True(t, apperror.IsCode(err, apperror.CodeUnauthorized))
			assert.Equal(t, "Invalid credentials.", apperror.Message(err))
		})
	}
}

func TestCurrentUser(t *testing.T) {
	store := repositories.NewMemoryStore()
	auth := newTestAuth(t, store)
	user := registerUser(t, auth, "jane", "jane@example.com")

	resp, err := auth.Login(context.Background(), models.LoginRequest{Identifier: "jane", Password: "s3cret-pass"})
	require.NoError(t, err)

	current, err := auth.CurrentUser(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, current.ID)

	ghost, err := NewTokenService("test-secret", time.Hour).Issue("ghost")
	require.NoError(t, err)
	_, err = auth.CurrentUser(context.Background(), ghost)
	assert.True(t, apperror.IsCode(err, apperror.CodeUnauthorized))

	_, err = auth.CurrentUser(context.Background(), "garbage")
	assert.True(t, apperror.IsCode(err, apperror.CodeUnauthorized))
}
