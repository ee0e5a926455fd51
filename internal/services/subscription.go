package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"alfredoptarigan/resume-analyzer/internal/apperror"
	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/repositories"
)

const (
	msgAlreadySubscribed = "User is already subscribed."
	msgSubscribed        = "Subscription activated successfully."
	msgLimitReached      = "Free limit reached. Please subscribe."
	unlimitedAttempts    = "Unlimited"
)

type SubscriptionService interface {
	Subscribe(ctx context.Context, userID uint) (*models.MessageResponse, error)
	Status(ctx context.Context, userID uint) (*models.SubscriptionStatus, error)
	ConsumeAttempt(ctx context.Context, user *models.User) error
}

type subscriptionService struct {
	users repositories.UserRepository
	log   logrus.FieldLogger
}

func NewSubscriptionService(users repositories.UserRepository, log logrus.FieldLogger) SubscriptionService {
	return &subscriptionService{users: users, log: log.WithField("component", "subscription")}
}

func (s *subscriptionService) Subscribe(ctx context.Context, userID uint) (*models.MessageResponse, error) {
	const op = "SubscriptionService.Subscribe"

	user, err := s.findUser(ctx, op, userID)
	if err != nil {
		return nil, err
	}
	if user.IsSubscribed {
		return &models.MessageResponse{Message: msgAlreadySubscribed}, nil
	}

	if err := s.users.ActivateSubscription(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.E(apperror.CodeNotFound, op, "User not found", nil)
		}
		return nil, apperror.E(apperror.CodeInternal, op, "failed to activate subscription", err)
	}

	s.log.WithField("user_id", userID).Info("subscription activated")
	return &models.MessageResponse{Message: msgSubscribed}, nil
}

func (s *subscriptionService) Status(ctx context.Context, userID uint) (*models.SubscriptionStatus, error) {
	const op = "SubscriptionService.Status"

	user, err := s.findUser(ctx, op, userID)
	if err != nil {
		return nil, err
	}

	status := &models.SubscriptionStatus{IsSubscribed: user.IsSubscribed}
	switch {
	case user.HasUnlimitedAttempts():
		status.RemainingAttempts = unlimitedAttempts
	case user.RemainingAttempts != nil:
		status.RemainingAttempts = *user.RemainingAttempts
	}
	return status, nil
}

// ConsumeAttempt charges one free attempt to a non-subscribed user.
// The decrement is a conditional update, so two concurrent callers cannot
// both spend the last attempt.
func (s *subscriptionService) ConsumeAttempt(ctx context.Context, user *models.User) error {
	const op = "SubscriptionService.ConsumeAttempt"

	if user.IsSubscribed {
		return nil
	}
	if user.RemainingAttempts == nil || *user.RemainingAttempts <= 0 {
		return apperror.E(apperror.CodeForbidden, op, msgLimitReached, nil)
	}

	if err := s.users.DecrementAttempts(ctx, user.ID); err != nil {
		if errors.Is(err, repositories.ErrNoAttemptsLeft) {
			return apperror.E(apperror.CodeForbidden, op, msgLimitReached, err)
		}
		return apperror.E(apperror.CodeInternal, op, "failed to update attempts", err)
	}

	left := *user.RemainingAttempts - 1
	user.RemainingAttempts = &left
	return nil
}

func (s *subscriptionService) findUser(ctx context.Context, op string, userID uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.E(apperror.CodeNotFound, op, "User not found", nil)
		}
		return nil, apperror.E(apperror.CodeInternal, op, "failed to load user", err)
	}
	return user, nil
}
