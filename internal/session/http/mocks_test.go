package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/bouncr/iam/internal/auth/domain"
	authHTTP "github.com/bouncr/iam/internal/auth/http"
	sessionDomain "github.com/bouncr/iam/internal/session/domain"
)

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

func withSession(c *gin.Context, token string, session *sessionDomain.Session) {
	c.Request = c.Request.WithContext(authHTTP.WithSession(c.Request.Context(), token, session))
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
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

type mockBackendCredentialUseCase struct {
	mock.Mock
}

func (m *mockBackendCredentialUseCase) Issue(
	ctx context.Context,
	token string,
) (*sessionDomain.BackendCredential, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sessionDomain.BackendCredential), args.Error(1)
}
