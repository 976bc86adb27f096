package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	authDomain "github.com/bouncr/iam/internal/auth/domain"
	authService "github.com/bouncr/iam/internal/auth/service"
	"github.com/bouncr/iam/internal/database"
	apperrors "github.com/bouncr/iam/internal/errors"
	hookDomain "github.com/bouncr/iam/internal/hook/domain"
	hookUseCase "github.com/bouncr/iam/internal/hook/usecase"
	rbacDomain "github.com/bouncr/iam/internal/rbac/domain"
	"github.com/bouncr/iam/internal/validation"
)

// CredentialConfig holds the password policy and the reset challenge lifetime.
type CredentialConfig struct {
	PasswordEnabled bool
	PasswordPolicy  validation.PasswordStrength
	ResetTTL        time.Duration
}

type credentialUseCase struct {
	config      CredentialConfig
	txManager   database.TxManager
	users       UserDirectory
	credentials CredentialRepository
	challenges  ChallengeRepository
	attempts    AttemptRepository
	hasher      authService.PasswordHasher
	sealer      authService.SecretSealer
	otp         authService.OTPService
	tokens      TokenGenerator
	hooks       hookUseCase.Dispatcher
	clock       clock.Clock

	// dummyHash is verified when no credential exists so every rejection costs one hash.
	dummyHash func() string
}

const dummyPassword = "bouncr-unknown-account"

// CheckPolicy reports a password policy violation as ErrWeakPassword.
func (c CredentialConfig) CheckPolicy(password string) error {
	if err := c.PasswordPolicy.Validate(password); err != nil {
		return apperrors.Wrap(authDomain.ErrWeakPassword, err.Error())
	}
	return nil
}

func (c *credentialUseCase) SetPassword(ctx context.Context, userID uuid.UUID, password string, initial bool) error {
	if !c.config.PasswordEnabled {
		return authDomain.ErrPasswordDisabled
	}
	if err := c.config.CheckPolicy(password); err != nil {
		return err
	}

	user, err := c.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := c.storePassword(ctx, user.ID, password, initial); err != nil {
		return err
	}

	c.passwordChanged(ctx, user, "set")
	return nil
}

func (c *credentialUseCase) storePassword(ctx context.Context, userID uuid.UUID, password string, initial bool) error {
	hash, err := c.hasher.Hash(password)
	if err != nil {
		return err
	}
	return c.credentials.UpsertPassword(ctx, &authDomain.PasswordCredential{
		UserID:    userID,
		Hash:      hash,
		Initial:   initial,
		CreatedAt: c.clock.Now().UTC(),
	})
}

func (c *credentialUseCase) passwordChanged(ctx context.Context, user *rbacDomain.User, reason string) {
	c.hooks.Dispatch(ctx, hookDomain.NewEvent(hookDomain.EventPasswordChanged, user.Account, map[string]any{
		"user_id": user.ID.String(),
		"reason":  reason,
	}))
}

func (c *credentialUseCase) VerifyPassword(ctx context.Context, userID uuid.UUID, plaintext string) (bool, error) {
	credential, err := c.credentials.GetPassword(ctx, userID)
	if err != nil {
		if apperrors.Is(err, authDomain.ErrPasswordCredentialNotFound) {
			c.hasher.Verify(plaintext, c.dummyHash())
			return false, nil
		}
		return false, err
	}
	return c.hasher.Verify(plaintext, credential.Hash), nil
}

func (c *credentialUseCase) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	if !c.config.PasswordEnabled {
		return authDomain.ErrPasswordDisabled
	}

	ok, err := c.VerifyPassword(ctx, userID, current)
	if err != nil {
		return err
	}
	if !ok {
		return authDomain.ErrAuthenticationFailed
	}

	if err := c.config.CheckPolicy(next); err != nil {
		return err
	}
	user, err := c.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := c.storePassword(ctx, userID, next, false); err != nil {
		return err
	}

	c.passwordChanged(ctx, user, "change")
	return nil
}

func (c *credentialUseCase) IssueResetChallenge(
	ctx context.Context,
	account string,
) (*authDomain.IssuedChallenge, error) {
	if !c.config.PasswordEnabled {
		return nil, authDomain.ErrPasswordDisabled
	}

	user, err := c.users.GetByAccount(ctx, account)
	if err != nil {
		return nil, err
	}

	return issueChallenge(ctx, c.tokens, c.challenges, c.hooks, c.clock, c.config.ResetTTL, user.Account,
		&authDomain.Challenge{
			Kind:   authDomain.ChallengePasswordReset,
			UserID: user.ID,
			Email:  strings.ToLower(user.Email),
		})
}

// ConsumeResetChallenge stores the new password and consumes the challenge inside one
// transaction. Consumption is the last step; losing the race rolls the password back.
func (c *credentialUseCase) ConsumeResetChallenge(ctx context.Context, code, password string) error {
	if !c.config.PasswordEnabled {
		return authDomain.ErrPasswordDisabled
	}
	if err := c.config.CheckPolicy(password); err != nil {
		return err
	}

	codeHash := c.tokens.HashToken(code)
	var user *rbacDomain.User

	err := c.txManager.WithTx(ctx, func(ctx context.Context) error {
		challenge, err := c.challenges.Peek(ctx, codeHash)
		if err != nil {
			return err
		}
		if challenge.Kind != authDomain.ChallengePasswordReset {
			return authDomain.ErrChallengeExpired
		}

		user, err = c.users.Get(ctx, challenge.UserID)
		if err != nil {
			return err
		}
		if err := c.storePassword(ctx, user.ID, password, false); err != nil {
			return err
		}

		_, err = c.challenges.Consume(ctx, codeHash, c.config.ResetTTL)
		return err
	})
	if err != nil {
		return err
	}

	// A successful reset lifts a lockout.
	if err := c.attempts.ResetFailures(ctx, user.Account); err != nil {
		return err
	}
	c.passwordChanged(ctx, user, "reset")
	return nil
}

func (c *credentialUseCase) EnrollOTP(ctx context.Context, userID uuid.UUID) (*authDomain.OTPEnrollment, error) {
	user, err := c.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	enrollment, err := c.otp.Generate(user.Account)
	if err != nil {
		return nil, err
	}
	sealed, err := c.sealer.Seal(ctx, []byte(enrollment.Secret))
	if err != nil {
		return nil, err
	}

	key := &authDomain.OTPKey{UserID: user.ID, Secret: sealed, CreatedAt: c.clock.Now().UTC()}
	if err := c.credentials.UpsertOTPKey(ctx, key); err != nil {
		return nil, err
	}
	return enrollment, nil
}

func (c *credentialUseCase) VerifyOTP(ctx context.Context, userID uuid.UUID, code string) error {
	key, err := c.credentials.GetOTPKey(ctx, userID)
	if err != nil {
		if apperrors.Is(err, authDomain.ErrOTPKeyNotFound) {
			return authDomain.ErrAuthenticationFailed
		}
		return err
	}

	secret, err := c.sealer.Open(ctx, key.Secret)
	if err != nil {
		return err
	}
	if !c.otp.Validate(code, string(secret), c.clock.Now()) {
		return authDomain.ErrAuthenticationFailed
	}

	fresh, err := c.attempts.MarkOTPUsed(ctx, userID, code, c.otp.Window())
	if err != nil {
		return err
	}
	if !fresh {
		return authDomain.ErrAuthenticationFailed
	}
	return nil
}

func (c *credentialUseCase) DisableOTP(ctx context.Context, userID uuid.UUID) error {
	return c.credentials.DeleteOTPKey(ctx, userID)
}

func (c *credentialUseCase) HasOTP(ctx context.Context, userID uuid.UUID) (bool, error) {
	_, err := c.credentials.GetOTPKey(ctx, userID)
	if err != nil {
		if apperrors.Is(err, authDomain.ErrOTPKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// issueChallenge stores challenge under a fresh code and hands the code to the delivery hook.
func issueChallenge(
	ctx context.Context,
	tokens TokenGenerator,
	challenges ChallengeRepository,
	hooks hookUseCase.Dispatcher,
	clk clock.Clock,
	ttl time.Duration,
	subject string,
	challenge *authDomain.Challenge,
) (*authDomain.IssuedChallenge, error) {
	plainCode, codeHash, err := tokens.GenerateToken()
	if err != nil {
		return nil, err
	}

	now := clk.Now().UTC()
	challenge.IssuedAt = now
	if err := challenges.Issue(ctx, codeHash, challenge, ttl); err != nil {
		return nil, err
	}
	issued := &authDomain.IssuedChallenge{Code: plainCode, ExpiresAt: now.Add(ttl)}

	hooks.Dispatch(ctx, hookDomain.NewEvent(hookDomain.EventChallengeIssued, subject, map[string]any{
		"kind":       string(challenge.Kind),
		"email":      challenge.Email,
		"code":       issued.Code,
		"expires_at": issued.ExpiresAt,
	}))
	return issued, nil
}

// NewCredentialUseCase creates a new CredentialUseCase.
func NewCredentialUseCase(
	config CredentialConfig,
	txManager database.TxManager,
	users UserDirectory,
	credentials CredentialRepository,
	challenges ChallengeRepository,
	attempts AttemptRepository,
	hasher authService.PasswordHasher,
	sealer authService.SecretSealer,
	otp authService.OTPService,
	tokens TokenGenerator,
	hooks hookUseCase.Dispatcher,
	clk clock.Clock,
) CredentialUseCase {
	return &credentialUseCase{
		config:      config,
		txManager:   txManager,
		users:       users,
		credentials: credentials,
		challenges:  challenges,
		attempts:    attempts,
		hasher:      hasher,
		sealer:      sealer,
		otp:         otp,
		tokens:      tokens,
		hooks:       hooks,
		clock:       clk,
		dummyHash:   sync.OnceValue(func() string {
			hash, err := hasher.Hash(dummyPassword)
			if err != nil {
				return ""
			}
			return hash
		}),
	}
}
