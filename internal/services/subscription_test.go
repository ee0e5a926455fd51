package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-analyzer/internal/apperror"
	"alfredoptarigan/resume-analyzer/internal/logger"
	"alfredoptarigan/resume-analyzer/internal/repositories"
)

func TestSubscriptionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	user := registerUser(t, newTestAuth(t, store), "jane", "jane@example.com")
	subs := NewSubscriptionService(store.Users(), logger.Discard())

	status, err := subs.Status(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, status.IsSubscribed)
	assert.Equal(t, 2, status.RemainingAttempts)

	msg, err := subs.Subscribe(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Subscription activated successfully.", msg.Message)

	msg, err = subs.Subscribe(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "User is already subscribed.", msg.Message)

	status, err = subs.Status(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, status.IsSubscribed)
	assert.Equal(t, "Unlimited", status.RemainingAttempts)

	stored, err := store.Users().FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.RemainingAttempts)
}

func TestSubscriptionUnknownUser(t *testing.T) {
	subs := NewSubscriptionService(repositories.NewMemoryStore().Users(), logger.Discard())

	_, err := subs.Subscribe(context.Background(), 99)
	assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))

	_, err = subs.Status(context.Background(), 99)
	assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))
}

func TestConsumeAttempt(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	user := registerUser(t, newTestAuth(t, store), "jane", "jane@example.com")
	subs := NewSubscriptionService(store.Users(), logger.Discard())

	require.NoError(t, subs.ConsumeAttempt(ctx, user))
	require.NoError(t, subs.ConsumeAttempt(ctx, user))
	assert.Equal(t, 0, *user.RemainingAttempts)

	err := subs.ConsumeAttempt(ctx, user)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))
	assert.Equal(t, "Free limit reached. Please subscribe.", apperror.Message(err))

	stored, err := store.Users().FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, *stored.RemainingAttempts)
}

func TestConsumeAttemptStaleCopy(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	user := registerUser(t, newTestAuth(t, store), "jane", "jane@example.com")
	subs := NewSubscriptionService(store.Users(), logger.Discard())

	// two requests loaded the user while it still had attempts
	first, err := store.Users().FindByID(ctx, user.ID)
	require.NoError(t, err)
	second, err := store.Users().FindByID(ctx, user.ID)
	require.NoError(t, err)
	third, err := store.Users().FindByID(ctx, user.ID)
	require.NoError(t, err)

	require.NoError(t, subs.ConsumeAttempt(ctx, first))
	require.NoError(t, subs.ConsumeAttempt(ctx, second))
	err = subs.ConsumeAttempt(ctx, third)
	assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))
}

func TestConsumeAttemptSubscribedNeverDecrements(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	user := registerUser(t, newTestAuth(t, store), "jane", "jane@example.com")
	subs := NewSubscriptionService(store.Users(), logger.Discard())

	_, err := subs.Subscribe(ctx, user.ID)
	require.NoError(t, err)
	subscribed, err := store.Users().FindByID(ctx, user.ID)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, subs.ConsumeAttempt(ctx, subscribed))
	}
	assert.Nil(t, subscribed.RemainingAttempts)
}
