package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"alfredoptarigan/resume-analyzer/internal/apperror"
	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/repositories"
)

const (
	msgDuplicateUser      = "Email or username already exists."
	msgInvalidCredentials = "Invalid credentials."
)

type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.TokenResponse, error)
	CurrentUser(ctx context.Context, tokenStr string) (*models.User, error)
}

type authService struct {
	users        repositories.UserRepository
	tokens       TokenService
	freeAttempts int
	bcryptCost   int
	log          logrus.FieldLogger
}

func NewAuthService(users repositories.UserRepository, tokens TokenService, freeAttempts int, log logrus.FieldLogger) AuthService {
	return &authService{
		users:        users,
		tokens:       tokens,
		freeAttempts: freeAttempts,
		bcryptCost:   bcrypt.DefaultCost,
		log:          log.WithField("component", "auth"),
	}
}

func (s *authService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	const op = "AuthService.Register"

	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, apperror.E(apperror.CodeInternal, op, "failed to check existing users", err)
	}
	if exists {
		return nil, apperror.E(apperror.CodeInvalidArgument, op, msgDuplicateUser, nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, apperror.E(apperror.CodeInternal, op, "failed to hash password", err)
	}

	attempts := s.freeAttempts
	user := &models.User{
		Username:          username,
		Email:             email,
		HashedPassword:    string(hash),
		IsSubscribed:      false,
		RemainingAttempts: &attempts,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// lost a race against a concurrent registration
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperror.E(apperror.CodeInvalidArgument, op, msgDuplicateUser, err)
		}
		return nil, apperror.E(apperror.CodeInternal, op, "failed to create user", err)
	}

	s.log.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

func (s *authService) Login(ctx context.Context, req models.LoginRequest) (*models.TokenResponse, error) {
	const op = "AuthService.Login"

	user, err := s.users.FindByIdentifier(ctx, strings.TrimSpace(req.Identifier))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.E(apperror.CodeUnauthorized, op, msgInvalidCredentials, nil)
		}
		return nil, apperror.E(apperror.CodeInternal, op, "failed to load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		return nil, apperror.E(apperror.CodeUnauthorized, op, msgInvalidCredentials, nil)
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, apperror.E(apperror.CodeInternal, op, "failed to issue token", err)
	}

	return &models.TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}

func (s *authService) CurrentUser(ctx context.Context, tokenStr string) (*models.User, error) {
	const op = "AuthService.CurrentUser"

	username, err := s.tokens.Subject(tokenStr)
	if err != nil {
		return nil, apperror.E(apperror.CodeUnauthorized, op, "Could not validate token.", err)
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.E(apperror.CodeUnauthorized, op, "User not found.", nil)
		}
		return nil, apperror.E(apperror.CodeInternal, op, "failed to load user", err)
	}
	return user, nil
}
