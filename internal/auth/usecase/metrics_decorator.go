package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/bouncr/iam/internal/auth/domain"
	"github.com/bouncr/iam/internal/metrics"
)

func recordAuth(ctx context.Context, m metrics.BusinessMetrics, operation string, start time.Time, err error) {
	metrics.Observe(ctx, m, metrics.DomainAuth, operation, start, metrics.Outcome(err))
}

// authenticatorWithMetrics decorates Authenticator with metrics instrumentation.
type authenticatorWithMetrics struct {
	next    Authenticator
	metrics metrics.BusinessMetrics
}

// NewAuthenticatorWithMetrics wraps an Authenticator with metrics recording.
func NewAuthenticatorWithMetrics(authenticator Authenticator, m metrics.BusinessMetrics) Authenticator {
	return &authenticatorWithMetrics{next: authenticator, metrics: m}
}

// Authenticate records one operation per method, e.g. "sign_in_password". Credential failures
// are "rejected" and an unreachable identity source is "unavailable".
func (a *authenticatorWithMetrics) Authenticate(
	ctx context.Context,
	method authDomain.Method,
	claim *authDomain.CredentialClaim,
) (*authDomain.Principal, error) {
	start := time.Now()
	principal, err := a.next.Authenticate(ctx, method, claim)
	recordAuth(ctx, a.metrics, "sign_in_"+string(method), start, err)
	return principal, err
}

// credentialUseCaseWithMetrics decorates CredentialUseCase with metrics instrumentation.
type credentialUseCaseWithMetrics struct {
	next    CredentialUseCase
	metrics metrics.BusinessMetrics
}

// NewCredentialUseCaseWithMetrics wraps a CredentialUseCase with metrics recording.
func NewCredentialUseCaseWithMetrics(useCase CredentialUseCase, m metrics.BusinessMetrics) CredentialUseCase {
	return &credentialUseCaseWithMetrics{next: useCase, metrics: m}
}

func (c *credentialUseCaseWithMetrics) SetPassword(
	ctx context.Context,
	userID uuid.UUID,
	password string,
	initial bool,
) error {
	start := time.Now()
	err := c.next.SetPassword(ctx, userID, password, initial)
	recordAuth(ctx, c.metrics, "password_set", start, err)
	return err
}

func (c *credentialUseCaseWithMetrics) VerifyPassword(
	ctx context.Context,
	userID uuid.UUID,
	plaintext string,
) (bool, error) {
	start := time.Now()
	ok, err := c.next.VerifyPassword(ctx, userID, plaintext)
	recordAuth(ctx, c.metrics, "password_verify", start, err)
	return ok, err
}

func (c *credentialUseCaseWithMetrics) ChangePassword(
	ctx context.Context,
	userID uuid.UUID,
	current, next string,
) error {
	start := time.Now()
	err := c.next.ChangePassword(ctx, userID, current, next)
	recordAuth(ctx, c.metrics, "password_change", start, err)
	return err
}

func (c *credentialUseCaseWithMetrics) IssueResetChallenge(
	ctx context.Context,
	account string,
) (*authDomain.IssuedChallenge, error) {
	start := time.Now()
	issued, err := c.next.IssueResetChallenge(ctx, account)
	recordAuth(ctx, c.metrics, "password_reset_issue", start, err)
	return issued, err
}

func (c *credentialUseCaseWithMetrics) ConsumeResetChallenge(ctx context.Context, code, password string) error {
	start := time.Now()
	err := c.next.ConsumeResetChallenge(ctx, code, password)
	recordAuth(ctx, c.metrics, "password_reset_consume", start, err)
	return err
}

func (c *credentialUseCaseWithMetrics) EnrollOTP(
	ctx context.Context,
	userID uuid.UUID,
) (*authDomain.OTPEnrollment, error) {
	start := time.Now()
	enrollment, err := c.next.EnrollOTP(ctx, userID)
	recordAuth(ctx, c.metrics, "otp_enroll", start, err)
	return enrollment, err
}

func (c *credentialUseCaseWithMetrics) VerifyOTP(ctx context.Context, userID uuid.UUID, code string) error {
	start := time.Now()
	err := c.next.VerifyOTP(ctx, userID, code)
	recordAuth(ctx, c.metrics, "otp_verify", start, err)
	return err
}

func (c *credentialUseCaseWithMetrics) DisableOTP(ctx context.Context, userID uuid.UUID) error {
	start := time.Now()
	err := c.next.DisableOTP(ctx, userID)
	recordAuth(ctx, c.metrics, "otp_disable", start, err)
	return err
}

func (c *credentialUseCaseWithMetrics) HasOTP(ctx context.Context, userID uuid.UUID) (bool, error) {
	return c.next.HasOTP(ctx, userID)
}

// challengeUseCaseWithMetrics decorates ChallengeUseCase with metrics instrumentation.
type challengeUseCaseWithMetrics struct {
	next    ChallengeUseCase
	metrics metrics.BusinessMetrics
}

// NewChallengeUseCaseWithMetrics wraps a ChallengeUseCase with metrics recording.
func NewChallengeUseCaseWithMetrics(useCase ChallengeUseCase, m metrics.BusinessMetrics) ChallengeUseCase {
	return &challengeUseCaseWithMetrics{next: useCase, metrics: m}
}

func (c *challengeUseCaseWithMetrics) Invite(
	ctx context.Context,
	email string,
	groupIDs []uuid.UUID,
) (*authDomain.IssuedChallenge, error) {
	start := time.Now()
	issued, err := c.next.Invite(ctx, email, groupIDs)
	recordAuth(ctx, c.metrics, "invite", start, err)
	return issued, err
}

func (c *challengeUseCaseWithMetrics) SignUp(
	ctx context.Context,
	input *authDomain.SignUpInput,
) (*authDomain.SignUpOutput, error) {
	start := time.Now()
	output, err := c.next.SignUp(ctx, input)
	recordAuth(ctx, c.metrics, "sign_up", start, err)
	return output, err
}

func (c *challengeUseCaseWithMetrics) IssueProfileVerification(
	ctx context.Context,
	userID uuid.UUID,
) (*authDomain.IssuedChallenge, error) {
	start := time.Now()
	issued, err := c.next.IssueProfileVerification(ctx, userID)
	recordAuth(ctx, c.metrics, "profile_verification_issue", start, err)
	return issued, err
}

func (c *challengeUseCaseWithMetrics) VerifyProfile(ctx context.Context, code string) error {
	start := time.Now()
	err := c.next.VerifyProfile(ctx, code)
	recordAuth(ctx, c.metrics, "profile_verification_consume", start, err)
	return err
}
