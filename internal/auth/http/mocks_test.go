package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/bouncr/iam/internal/auth/domain"
	sessionDomain "github.com/bouncr/iam/internal/session/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createTestContext creates a test Gin context with the given JSON body.
func createTestContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	return c, w
}

// withPrincipal attaches an authenticated session for principal to the request.
func withPrincipal(c *gin.Context, principal authDomain.Principal) {
	session := &sessionDomain.Session{Principal: principal}
	c.Request = c.Request.WithContext(WithSession(c.Request.Context(), "session-token", session))
}

type mockAuthenticator struct {
	mock.Mock
}

func (m *mockAuthenticator) Authenticate(
	ctx context.Context,
	method authDomain.Method,
	claim *authDomain.CredentialClaim,
) (*authDomain.Principal, error) {
	args := m.Called(ctx, method, claim)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Principal), args.Error(1)
}

type mockTokenManager struct {
	mock.Mock
}

func (m *mockTokenManager) Issue(
	ctx context.Context,
	principal *authDomain.Principal,
) (*sessionDomain.IssuedToken, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sessionDomain.IssuedToken), args.Error(1)
}

func (m *mockTokenManager) Validate(ctx context.Context, token string) (*sessionDomain.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sessionDomain.Session), args.Error(1)
}

func (m *mockTokenManager) Revoke(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockTokenManager) IssueCode(
	ctx context.Context,
	principal *authDomain.Principal,
	client sessionDomain.ClientContext,
) (*sessionDomain.IssuedToken, error) {
	args := m.Called(ctx, principal, client)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sessionDomain.IssuedToken), args.Error(1)
}

func (m *mockTokenManager) Redeem(ctx context.Context, code string) (*sessionDomain.AuthorizationCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sessionDomain.AuthorizationCode), args.Error(1)
}

func (m *mockTokenManager) BindOIDCSession(
	ctx context.Context,
	principal *authDomain.Principal,
	externalID string,
) (*sessionDomain.OIDCSession, error) {
	args := m.Called(ctx, principal, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sessionDomain.OIDCSession), args.Error(1)
}

func (m *mockTokenManager) ValidateOIDCSession(ctx context.Context, id string) (*sessionDomain.OIDCSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sessionDomain.OIDCSession), args.Error(1)
}

func (m *mockTokenManager) RevokeOIDCSession(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockCredentialUseCase struct {
	mock.Mock
}

func (m *mockCredentialUseCase) SetPassword(ctx context.Context, userID uuid.UUID, password string, initial bool) error {
	return m.Called(ctx, userID, password, initial).Error(0)
}

func (m *mockCredentialUseCase) VerifyPassword(ctx context.Context, userID uuid.UUID, plaintext string) (bool, error) {
	args := m.Called(ctx, userID, plaintext)
	return args.Bool(0), args.Error(1)
}

func (m *mockCredentialUseCase) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	return m.Called(ctx, userID, current, next).Error(0)
}

func (m *mockCredentialUseCase) IssueResetChallenge(
	ctx context.Context,
	account string,
) (*authDomain.IssuedChallenge, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.IssuedChallenge), args.Error(1)
}

func (m *mockCredentialUseCase) ConsumeResetChallenge(ctx context.Context, code, password string) error {
	return m.Called(ctx, code, password).Error(0)
}

func (m *mockCredentialUseCase) EnrollOTP(ctx context.Context, userID uuid.UUID) (*authDomain.OTPEnrollment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.OTPEnrollment), args.Error(1)
}

func (m *mockCredentialUseCase) VerifyOTP(ctx context.Context, userID uuid.UUID, code string) error {
	return m.Called(ctx, userID, code).Error(0)
}

func (m *mockCredentialUseCase) DisableOTP(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockCredentialUseCase) HasOTP(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

type mockChallengeUseCase struct {
	mock.Mock
}

func (m *mockChallengeUseCase) Invite(
	ctx context.Context,
	email string,
	groupIDs []uuid.UUID,
) (*authDomain.IssuedChallenge, error) {
	args := m.Called(ctx, email, groupIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.IssuedChallenge), args.Error(1)
}

func (m *mockChallengeUseCase) SignUp(
	ctx context.Context,
	input *authDomain.SignUpInput,
) (*authDomain.SignUpOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.SignUpOutput), args.Error(1)
}

func (m *mockChallengeUseCase) IssueProfileVerification(
	ctx context.Context,
	userID uuid.UUID,
) (*authDomain.IssuedChallenge, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.IssuedChallenge), args.Error(1)
}

func (m *mockChallengeUseCase) VerifyProfile(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}

type mockOIDCProviderUseCase struct {
	mock.Mock
}

func (m *mockOIDCProviderUseCase) Create(
	ctx context.Context,
	input *authDomain.OIDCProviderInput,
) (*authDomain.OIDCProvider, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.OIDCProvider), args.Error(1)
}

func (m *mockOIDCProviderUseCase) Update(
	ctx context.Context,
	providerID uuid.UUID,
	input *authDomain.OIDCProviderInput,
) (*authDomain.OIDCProvider, error) {
	args := m.Called(ctx, providerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.OIDCProvider), args.Error(1)
}

func (m *mockOIDCProviderUseCase) Get(ctx context.Context, providerID uuid.UUID) (*authDomain.OIDCProvider, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.OIDCProvider), args.Error(1)
}

func (m *mockOIDCProviderUseCase) List(ctx context.Context, offset, limit int) ([]*authDomain.OIDCProvider, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.OIDCProvider), args.Error(1)
}

func (m *mockOIDCProviderUseCase) Delete(ctx context.Context, providerID uuid.UUID) error {
	return m.Called(ctx, providerID).Error(0)
}

func (m *mockOIDCProviderUseCase) AuthorizationURL(ctx context.Context, name, state string) (string, error) {
	args := m.Called(ctx, name, state)
	return args.String(0), args.Error(1)
}

type mockAuthorization struct {
	mock.Mock
}

func (m *mockAuthorization) CheckPermission(
	ctx context.Context,
	userID uuid.UUID,
	application, realm, permission string,
) (bool, error) {
	args := m.Called(ctx, userID, application, realm, permission)
	return args.Bool(0), args.Error(1)
}

func (m *mockAuthorization) EffectivePermissions(
	ctx context.Context,
	userID uuid.UUID,
	application, realm string,
) ([]string, error) {
	args := m.Called(ctx, userID, application, realm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockAuthorization) PermissionsByRealm(ctx context.Context, userID uuid.UUID) (map[string][]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]string), args.Error(1)
}
