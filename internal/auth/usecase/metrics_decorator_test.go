package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/bouncr/iam/internal/auth/domain"
	"github.com/bouncr/iam/internal/resilience"
)

type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func expectRecord(m *mockBusinessMetrics, ctx context.Context, operation, status string) {
	m.On("RecordOperation", ctx, "auth", operation, status).Return().Once()
	m.On("RecordDuration", ctx, "auth", operation, mock.AnythingOfType("time.Duration"), status).
		Return().
		Once()
}

func TestAuthenticatorWithMetrics(t *testing.T) {
	ctx := context.Background()
	alice := newUser("alice", "alice@example.com")
	e := newEnv(t, alice)
	mustSetPassword(t, e, alice, "Correct1horse")

	m := &mockBusinessMetrics{}
	expectRecord(m, ctx, "sign_in_password", "success")
	expectRecord(m, ctx, "sign_in_password", "rejected")
	expectRecord(m, ctx, "sign_in_directory", "unavailable")

	directory := &stubDirectory{err: resilience.ErrCircuitOpen}
	authn := NewAuthenticatorWithMetrics(e.authenticator(nil, directory, nil), m)

	_, err := authn.Authenticate(ctx, authDomain.MethodPassword,
		&authDomain.CredentialClaim{Account: "alice", Password: "Correct1horse"})
	require.NoError(t, err)
	_, err = authn.Authenticate(ctx, authDomain.MethodPassword,
		&authDomain.CredentialClaim{Account: "alice", Password: "wrong"})
	require.Error(t, err)
	_, err = authn.Authenticate(ctx, authDomain.MethodDirectory,
		&authDomain.CredentialClaim{Account: "alice", Password: "x"})
	require.Error(t, err)

	m.AssertExpectations(t)
}

func TestCredentialUseCaseWithMetrics(t *testing.T) {
	ctx := context.Background()
	alice := newUser("alice", "alice@example.com")
	e := newEnv(t, alice)

	m := &mockBusinessMetrics{}
	expectRecord(m, ctx, "password_set", "success")
	expectRecord(m, ctx, "password_set", "error")
	expectRecord(m, ctx, "password_verify", "success")

	uc := NewCredentialUseCaseWithMetrics(e.credentialUseCase(), m)

	require.NoError(t, uc.SetPassword(ctx, alice.ID, "Correct1horse", true))
	require.Error(t, uc.SetPassword(ctx, alice.ID, "weak", false))
	ok, err := uc.VerifyPassword(ctx, alice.ID, "Correct1horse")
	require.NoError(t, err)
	assert.True(t, ok)

	m.AssertExpectations(t)
}

func TestChallengeUseCaseWithMetrics(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	m := &mockBusinessMetrics{}
	expectRecord(m, ctx, "invite", "success")
	expectRecord(m, ctx, "sign_up", "denied")

	uc := NewChallengeUseCaseWithMetrics(e.challengeUseCase(false), m)

	_, err := uc.Invite(ctx, "dave@example.com", nil)
	require.NoError(t, err)
	_, err = uc.SignUp(ctx, &authDomain.SignUpInput{Account: "dave", Email: "dave@example.com"})
	assert.Error(t, err)

	m.AssertExpectations(t)
}
