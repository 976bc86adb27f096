package usecase

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/bouncr/iam/internal/auth/domain"
	authRepository "github.com/bouncr/iam/internal/auth/repository"
	authService "github.com/bouncr/iam/internal/auth/service"
	hookDomain "github.com/bouncr/iam/internal/hook/domain"
	hookMocks "github.com/bouncr/iam/internal/hook/usecase/mocks"
	"github.com/bouncr/iam/internal/kvs"
	rbacDomain "github.com/bouncr/iam/internal/rbac/domain"
	sessionService "github.com/bouncr/iam/internal/session/service"
	"github.com/bouncr/iam/internal/validation"
)

type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]*rbacDomain.User
}

func newFakeUsers(users ...*rbacDomain.User) *fakeUsers {
	f := &fakeUsers{users: map[uuid.UUID]*rbacDomain.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, user *rbacDomain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Account == user.Account {
			return rbacDomain.ErrAccountAlreadyExists
		}
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUsers) Get(_ context.Context, userID uuid.UUID) (*rbacDomain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[userID]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, rbacDomain.ErrUserNotFound
}

func (f *fakeUsers) find(match func(*rbacDomain.User) bool) (*rbacDomain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if match(u) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, rbacDomain.ErrUserNotFound
}

func (f *fakeUsers) GetByAccount(_ context.Context, account string) (*rbacDomain.User, error) {
	return f.find(func(u *rbacDomain.User) bool { return u.Account == account })
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*rbacDomain.User, error) {
	return f.find(func(u *rbacDomain.User) bool { return strings.EqualFold(u.Email, email) })
}

func (f *fakeUsers) SetProfileVerified(_ context.Context, userID uuid.UUID, verified bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return rbacDomain.ErrUserNotFound
	}
	u.ProfileVerified = verified
	return nil
}

type fakeGroups struct {
	members map[uuid.UUID][]uuid.UUID
}

func (f *fakeGroups) AddMember(_ context.Context, groupID, userID uuid.UUID) error {
	f.members[groupID] = append(f.members[groupID], userID)
	return nil
}

type fakeCredentials struct {
	mu        sync.Mutex
	passwords map[uuid.UUID]*authDomain.PasswordCredential
	otpKeys   map[uuid.UUID]*authDomain.OTPKey
}

func newFakeCredentials() *fakeCredentials {
	return &fakeCredentials{
		passwords: map[uuid.UUID]*authDomain.PasswordCredential{},
		otpKeys:   map[uuid.UUID]*authDomain.OTPKey{},
	}
}

func (f *fakeCredentials) UpsertPassword(_ context.Context, credential *authDomain.PasswordCredential) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.passwords[credential.UserID] = credential
	return nil
}

func (f *fakeCredentials) GetPassword(_ context.Context, userID uuid.UUID) (*authDomain.PasswordCredential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.passwords[userID]; ok {
		return c, nil
	}
	return nil, authDomain.ErrPasswordCredentialNotFound
}

func (f *fakeCredentials) DeletePassword(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.passwords, userID)
	return nil
}

func (f *fakeCredentials) UpsertOTPKey(_ context.Context, key *authDomain.OTPKey) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.otpKeys[key.UserID] = key
	return nil
}

func (f *fakeCredentials) GetOTPKey(_ context.Context, userID uuid.UUID) (*authDomain.OTPKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if k, ok := f.otpKeys[userID]; ok {
		return k, nil
	}
	return nil, authDomain.ErrOTPKeyNotFound
}

func (f *fakeCredentials) DeleteOTPKey(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.otpKeys[userID]; !ok {
		return authDomain.ErrOTPKeyNotFound
	}
	delete(f.otpKeys, userID)
	return nil
}

// plainHasher keeps tests fast; argon2id is covered by the service tests.
type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "plain$" + plain, nil }
func (plainHasher) Verify(plain, hash string) bool  { return hash == "plain$"+plain }

// countingHasher records how many verifications ran.
type countingHasher struct {
	plainHasher
	verifies atomic.Int64
}

func (h *countingHasher) Verify(plain, hash string) bool {
	h.verifies.Add(1)
	return h.plainHasher.Verify(plain, hash)
}

type reverseSealer struct{}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[len(b)-1-i] = b[i]
	}
	return out
}

func (reverseSealer) Seal(_ context.Context, p []byte) ([]byte, error) { return reverse(p), nil }
func (reverseSealer) Open(_ context.Context, c []byte) ([]byte, error) { return reverse(c), nil }
func (reverseSealer) Close() error                                     { return nil }

var testPolicy = validation.PasswordStrength{
	MinLength:     8,
	MaxLength:     128,
	RequireUpper:  true,
	RequireLower:  true,
	RequireNumber: true,
}

// env wires the use cases over in-memory fakes and a miniredis backed key-value store.
type env struct {
	users       *fakeUsers
	groups      *fakeGroups
	credentials *fakeCredentials
	challenges  *authRepository.KVSChallengeRepository
	attempts    *authRepository.KVSAttemptRepository
	otp         authService.OTPService
	hasher      authService.PasswordHasher
	tokens      sessionService.TokenService
	hooks       *hookMocks.MockDispatcher
	clock       *clock.Mock
	mr          *miniredis.Miniredis
	logger      *slog.Logger
	config      CredentialConfig
}

func newEnv(t *testing.T, users ...*rbacDomain.User) *env {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := kvs.NewStore(client)

	clk := clock.NewMock()
	clk.Set(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	hooks := &hookMocks.MockDispatcher{}
	hooks.On("Dispatch", mock.Anything, mock.Anything).Return().Maybe()

	return &env{
		users:       newFakeUsers(users...),
		groups:      &fakeGroups{members: map[uuid.UUID][]uuid.UUID{}},
		credentials: newFakeCredentials(),
		challenges:  authRepository.NewKVSChallengeRepository(store),
		attempts:    authRepository.NewKVSAttemptRepository(store),
		otp:         authService.NewOTPService(authService.OTPConfig{Issuer: "Bouncr", Period: 30 * time.Second, Skew: 1}),
		hasher:      plainHasher{},
		tokens:      sessionService.NewTokenService(),
		hooks:       hooks,
		clock:       clk,
		mr:          mr,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		config: CredentialConfig{
			PasswordEnabled: true,
			PasswordPolicy:  testPolicy,
			ResetTTL:        time.Hour,
		},
	}
}

func (e *env) advance(d time.Duration) {
	e.clock.Add(d)
	e.mr.FastForward(d)
}

func (e *env) credentialUseCase() CredentialUseCase {
	return NewCredentialUseCase(
		e.config,
		passthroughTx{},
		e.users,
		e.credentials,
		e.challenges,
		e.attempts,
		e.hasher,
		reverseSealer{},
		e.otp,
		e.tokens,
		e.hooks,
		e.clock,
	)
}

func (e *env) dispatched(kind hookDomain.EventKind) int {
	n := 0
	for _, call := range e.hooks.Calls {
		if call.Method != "Dispatch" {
			continue
		}
		if event, ok := call.Arguments.Get(1).(*hookDomain.Event); ok && event.Kind == kind {
			n++
		}
	}
	return n
}

func newUser(account, email string) *rbacDomain.User {
	return rbacDomain.NewUser(&rbacDomain.CreateUserInput{Account: account, Email: email, Name: account})
}

func mustSetPassword(t *testing.T, e *env, user *rbacDomain.User, password string) {
	t.Helper()
	require.NoError(t, e.credentials.UpsertPassword(context.Background(), &authDomain.PasswordCredential{
		UserID: user.ID,
		Hash:   "plain$" + password,
	}))
}
