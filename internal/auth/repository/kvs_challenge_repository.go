package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	authDomain "github.com/bouncr/iam/internal/auth/domain"
	apperrors "github.com/bouncr/iam/internal/errors"
	"github.com/bouncr/iam/internal/kvs"
)

const (
	challengePrefix      = "challenge:code:"
	challengeIndexPrefix = "challenge:index:"
)

// KVSChallengeRepository stores verification challenges under the hash of their code.
// Each (kind, subject) pair has at most one live challenge.
type KVSChallengeRepository struct {
	store *kvs.Store
}

// NewKVSChallengeRepository creates a new KVSChallengeRepository.
func NewKVSChallengeRepository(store *kvs.Store) *KVSChallengeRepository {
	return &KVSChallengeRepository{store: store}
}

func indexKey(challenge *authDomain.Challenge) string {
	subject := challenge.Email
	if challenge.Kind != authDomain.ChallengeInvitation {
		subject = challenge.UserID.String()
	}
	return challengeIndexPrefix + string(challenge.Kind) + ":" + subject
}

// Issue stores challenge under codeHash for ttl and invalidates the previous challenge of the
// same kind for the same subject.
func (r *KVSChallengeRepository) Issue(
	ctx context.Context,
	codeHash string,
	challenge *authDomain.Challenge,
	ttl time.Duration,
) error {
	raw, err := json.Marshal(challenge)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode challenge")
	}
	return r.store.Replace(ctx, indexKey(challenge), challengePrefix+codeHash, raw, ttl)
}

// Peek returns the challenge without consuming it.
func (r *KVSChallengeRepository) Peek(ctx context.Context, codeHash string) (*authDomain.Challenge, error) {
	key := challengePrefix + codeHash

	raw, err := r.store.Get(ctx, key)
	if errors.Is(err, kvs.ErrKeyNotFound) {
		consumed, cerr := r.store.WasConsumed(ctx, key)
		if cerr != nil {
			return nil, cerr
		}
		if consumed {
			return nil, authDomain.ErrChallengeConsumed
		}
		return nil, authDomain.ErrChallengeExpired
	}
	if err != nil {
		return nil, err
	}
	return decodeChallenge(raw)
}

// Consume atomically removes the challenge. Exactly one caller wins; the others observe
// ErrChallengeConsumed while the tombstone lives.
func (r *KVSChallengeRepository) Consume(
	ctx context.Context,
	codeHash string,
	tombstoneTTL time.Duration,
) (*authDomain.Challenge, error) {
	raw, err := r.store.Consume(ctx, challengePrefix+codeHash, tombstoneTTL)
	switch {
	case errors.Is(err, kvs.ErrAlreadyConsumed):
		return nil, authDomain.ErrChallengeConsumed
	case errors.Is(err, kvs.ErrKeyNotFound):
		return nil, authDomain.ErrChallengeExpired
	case err != nil:
		return nil, err
	}
	return decodeChallenge(raw)
}

func decodeChallenge(raw []byte) (*authDomain.Challenge, error) {
	var challenge authDomain.Challenge
	if err := json.Unmarshal(raw, &challenge); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode challenge")
	}
	return &challenge, nil
}
