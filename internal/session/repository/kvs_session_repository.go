// Package repository stores sessions, authorization codes and OIDC bindings in the key-value
// store. Keys are derived from token hashes so a dump of the store does not reveal tokens.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	apperrors "github.com/bouncr/iam/internal/errors"
	"github.com/bouncr/iam/internal/kvs"
	sessionDomain "github.com/bouncr/iam/internal/session/domain"
)

const (
	sessionPrefix     = "session:token:"
	codePrefix        = "session:code:"
	oidcSessionPrefix = "session:oidc:"
)

// KVSSessionRepository implements session persistence on kvs.Store.
type KVSSessionRepository struct {
	store *kvs.Store
}

// NewKVSSessionRepository creates a new KVSSessionRepository.
func NewKVSSessionRepository(store *kvs.Store) *KVSSessionRepository {
	return &KVSSessionRepository{store: store}
}

// SaveSession stores session under tokenHash for ttl.
func (r *KVSSessionRepository) SaveSession(
	ctx context.Context,
	tokenHash string,
	session *sessionDomain.Session,
	ttl time.Duration,
) error {
	return r.put(ctx, sessionPrefix+tokenHash, session, ttl, "failed to save session")
}

// GetSession returns ErrTokenExpired when nothing is stored under tokenHash.
func (r *KVSSessionRepository) GetSession(ctx context.Context, tokenHash string) (*sessionDomain.Session, error) {
	var session sessionDomain.Session
	if err := r.get(ctx, sessionPrefix+tokenHash, &session, sessionDomain.ErrTokenExpired); err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteSession removes the session. Deleting an absent session is not an error.
func (r *KVSSessionRepository) DeleteSession(ctx context.Context, tokenHash string) error {
	return r.store.Delete(ctx, sessionPrefix+tokenHash)
}

// SaveCode stores an authorization code under codeHash for ttl.
func (r *KVSSessionRepository) SaveCode(
	ctx context.Context,
	codeHash string,
	code *sessionDomain.AuthorizationCode,
	ttl time.Duration,
) error {
	return r.put(ctx, codePrefix+codeHash, code, ttl, "failed to save authorization code")
}

// ConsumeCode atomically reads and deletes the code. Concurrent losers get ErrAlreadyRedeemed
// while the tombstone lives; unknown and expired codes get ErrCodeExpired.
func (r *KVSSessionRepository) ConsumeCode(
	ctx context.Context,
	codeHash string,
	tombstoneTTL time.Duration,
) (*sessionDomain.AuthorizationCode, error) {
	raw, err := r.store.Consume(ctx, codePrefix+codeHash, tombstoneTTL)
	switch {
	case errors.Is(err, kvs.ErrAlreadyConsumed):
		return nil, sessionDomain.ErrAlreadyRedeemed
	case errors.Is(err, kvs.ErrKeyNotFound):
		return nil, sessionDomain.ErrCodeExpired
	case err != nil:
		return nil, err
	}

	var code sessionDomain.AuthorizationCode
	if err := json.Unmarshal(raw, &code); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode authorization code")
	}
	return &code, nil
}

// SaveOIDCSession stores the binding under idHash for ttl.
func (r *KVSSessionRepository) SaveOIDCSession(
	ctx context.Context,
	idHash string,
	session *sessionDomain.OIDCSession,
	ttl time.Duration,
) error {
	return r.put(ctx, oidcSessionPrefix+idHash, session, ttl, "failed to save oidc session")
}

// GetOIDCSession returns ErrOIDCSessionExpired when no binding exists under idHash.
func (r *KVSSessionRepository) GetOIDCSession(ctx context.Context, idHash string) (*sessionDomain.OIDCSession, error) {
	var session sessionDomain.OIDCSession
	if err := r.get(ctx, oidcSessionPrefix+idHash, &session, sessionDomain.ErrOIDCSessionExpired); err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteOIDCSession removes the binding.
func (r *KVSSessionRepository) DeleteOIDCSession(ctx context.Context, idHash string) error {
	return r.store.Delete(ctx, oidcSessionPrefix+idHash)
}

func (r *KVSSessionRepository) put(ctx context.Context, key string, v any, ttl time.Duration, msg string) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return apperrors.Wrap(err, msg)
	}
	if err := r.store.Set(ctx, key, raw, ttl); err != nil {
		return apperrors.Wrap(err, msg)
	}
	return nil
}

func (r *KVSSessionRepository) get(ctx context.Context, key string, v any, missing error) error {
	raw, err := r.store.Get(ctx, key)
	if errors.Is(err, kvs.ErrKeyNotFound) {
		return missing
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return apperrors.Wrap(err, "failed to decode session entry")
	}
	return nil
}
