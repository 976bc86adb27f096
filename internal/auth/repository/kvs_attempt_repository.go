package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/bouncr/iam/internal/errors"
	"github.com/bouncr/iam/internal/kvs"
)

const (
	lockoutPrefix = "signin:failures:"
	otpUsedPrefix = "otp:used:"
)

// KVSAttemptRepository tracks failed sign-ins and accepted one-time passwords.
type KVSAttemptRepository struct {
	store *kvs.Store
}

// NewKVSAttemptRepository creates a new KVSAttemptRepository.
func NewKVSAttemptRepository(store *kvs.Store) *KVSAttemptRepository {
	return &KVSAttemptRepository{store: store}
}

// RecordFailure counts a failed sign-in for account. The window starts at the first failure.
func (r *KVSAttemptRepository) RecordFailure(ctx context.Context, account string, window time.Duration) (int64, error) {
	return r.store.Increment(ctx, lockoutPrefix+account, window)
}

// Failures returns the failures counted for account in the current window.
func (r *KVSAttemptRepository) Failures(ctx context.Context, account string) (int64, error) {
	raw, err := r.store.Get(ctx, lockoutPrefix+account)
	if errors.Is(err, kvs.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to decode failure counter")
	}
	return n, nil
}

// ResetFailures clears the counter of account.
func (r *KVSAttemptRepository) ResetFailures(ctx context.Context, account string) error {
	return r.store.Delete(ctx, lockoutPrefix+account)
}

// MarkOTPUsed records code as accepted for userID. It reports false when the code was already
// accepted within window.
func (r *KVSAttemptRepository) MarkOTPUsed(
	ctx context.Context,
	userID uuid.UUID,
	code string,
	window time.Duration,
) (bool, error) {
	return r.store.SetNX(ctx, otpUsedPrefix+userID.String()+":"+code, []byte("1"), window)
}
