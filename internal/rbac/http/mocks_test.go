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
	rbacDomain "github.com/bouncr/iam/internal/rbac/domain"
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

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockUserUseCase struct {
	mock.Mock
}

func (m *mockUserUseCase) Create(ctx context.Context, input *rbacDomain.CreateUserInput) (*rbacDomain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.User), args.Error(1)
}

func (m *mockUserUseCase) Update(
	ctx context.Context,
	userID uuid.UUID,
	input *rbacDomain.UpdateUserInput,
) (*rbacDomain.User, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.User), args.Error(1)
}

func (m *mockUserUseCase) Get(ctx context.Context, userID uuid.UUID) (*rbacDomain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.User), args.Error(1)
}

func (m *mockUserUseCase) GetByAccount(ctx context.Context, account string) (*rbacDomain.User, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.User), args.Error(1)
}

func (m *mockUserUseCase) List(ctx context.Context, offset, limit int) ([]*rbacDomain.User, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rbacDomain.User), args.Error(1)
}

func (m *mockUserUseCase) Delete(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

type mockGroupUseCase struct {
	mock.Mock
}

func (m *mockGroupUseCase) Create(ctx context.Context, name, description string) (*rbacDomain.Group, error) {
	args := m.Called(ctx, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.Group), args.Error(1)
}

func (m *mockGroupUseCase) Update(
	ctx context.Context,
	groupID uuid.UUID,
	name, description string,
) (*rbacDomain.Group, error) {
	args := m.Called(ctx, groupID, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.Group), args.Error(1)
}

func (m *mockGroupUseCase) Get(ctx context.Context, groupID uuid.UUID) (*rbacDomain.Group, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.Group), args.Error(1)
}

func (m *mockGroupUseCase) List(ctx context.Context, offset, limit int) ([]*rbacDomain.Group, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rbacDomain.Group), args.Error(1)
}

func (m *mockGroupUseCase) Delete(ctx context.Context, groupID uuid.UUID) error {
	return m.Called(ctx, groupID).Error(0)
}

func (m *mockGroupUseCase) AddMember(ctx context.Context, groupID, userID uuid.UUID) error {
	return m.Called(ctx, groupID, userID).Error(0)
}

func (m *mockGroupUseCase) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	return m.Called(ctx, groupID, userID).Error(0)
}

func (m *mockGroupUseCase) ListMembers(ctx context.Context, groupID uuid.UUID) ([]*rbacDomain.User, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rbacDomain.User), args.Error(1)
}

type mockApplicationUseCase struct {
	mock.Mock
}

func (m *mockApplicationUseCase) Create(
	ctx context.Context,
	name, description, passTo string,
) (*rbacDomain.Application, error) {
	args := m.Called(ctx, name, description, passTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.Application), args.Error(1)
}

func (m *mockApplicationUseCase) Update(
	ctx context.Context,
	applicationID uuid.UUID,
	name, description, passTo string,
) (*rbacDomain.Application, error) {
	args := m.Called(ctx, applicationID, name, description, passTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.Application), args.Error(1)
}

func (m *mockApplicationUseCase) Get(ctx context.Context, applicationID uuid.UUID) (*rbacDomain.Application, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.Application), args.Error(1)
}

func (m *mockApplicationUseCase) List(ctx context.Context, offset, limit int) ([]*rbacDomain.Application, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rbacDomain.Application), args.Error(1)
}

func (m *mockApplicationUseCase) Delete(ctx context.Context, applicationID uuid.UUID) error {
	return m.Called(ctx, applicationID).Error(0)
}

func (m *mockApplicationUseCase) CreateRealm(
	ctx context.Context,
	applicationID uuid.UUID,
	name, description, url string,
) (*rbacDomain.Realm, error) {
	args := m.Called(ctx, applicationID, name, description, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.Realm), args.Error(1)
}

func (m *mockApplicationUseCase) ListRealms(ctx context.Context, applicationID uuid.UUID) ([]*rbacDomain.Realm, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rbacDomain.Realm), args.Error(1)
}

func (m *mockApplicationUseCase) DeleteRealm(ctx context.Context, applicationID, realmID uuid.UUID) error {
	return m.Called(ctx, applicationID, realmID).Error(0)
}

type mockRoleUseCase struct {
	mock.Mock
}

func (m *mockRoleUseCase) Create(ctx context.Context, name, description string) (*rbacDomain.Role, error) {
	args := m.Called(ctx, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.Role), args.Error(1)
}

func (m *mockRoleUseCase) Update(
	ctx context.Context,
	roleID uuid.UUID,
	name, description string,
) (*rbacDomain.Role, error) {
	args := m.Called(ctx, roleID, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.Role), args.Error(1)
}

func (m *mockRoleUseCase) Get(ctx context.Context, roleID uuid.UUID) (*rbacDomain.Role, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.Role), args.Error(1)
}

func (m *mockRoleUseCase) List(ctx context.Context, offset, limit int) ([]*rbacDomain.Role, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rbacDomain.Role), args.Error(1)
}

func (m *mockRoleUseCase) Delete(ctx context.Context, roleID uuid.UUID) error {
	return m.Called(ctx, roleID).Error(0)
}

func (m *mockRoleUseCase) AddPermission(ctx context.Context, roleID, permissionID uuid.UUID) error {
	return m.Called(ctx, roleID, permissionID).Error(0)
}

func (m *mockRoleUseCase) RemovePermission(ctx context.Context, roleID, permissionID uuid.UUID) error {
	return m.Called(ctx, roleID, permissionID).Error(0)
}

func (m *mockRoleUseCase) ListPermissions(ctx context.Context, roleID uuid.UUID) ([]*rbacDomain.Permission, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rbacDomain.Permission), args.Error(1)
}

type mockPermissionUseCase struct {
	mock.Mock
}

func (m *mockPermissionUseCase) Create(ctx context.Context, name, description string) (*rbacDomain.Permission, error) {
	args := m.Called(ctx, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.Permission), args.Error(1)
}

func (m *mockPermissionUseCase) Update(
	ctx context.Context,
	permissionID uuid.UUID,
	name, description string,
) (*rbacDomain.Permission, error) {
	args := m.Called(ctx, permissionID, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.Permission), args.Error(1)
}

func (m *mockPermissionUseCase) Get(ctx context.Context, permissionID uuid.UUID) (*rbacDomain.Permission, error) {
	args := m.Called(ctx, permissionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.Permission), args.Error(1)
}

func (m *mockPermissionUseCase) List(ctx context.Context, offset, limit int) ([]*rbacDomain.Permission, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rbacDomain.Permission), args.Error(1)
}

func (m *mockPermissionUseCase) Delete(ctx context.Context, permissionID uuid.UUID) error {
	return m.Called(ctx, permissionID).Error(0)
}

type mockAssignmentUseCase struct {
	mock.Mock
}

func (m *mockAssignmentUseCase) Create(
	ctx context.Context,
	subjectType rbacDomain.SubjectType,
	subjectID, roleID, realmID uuid.UUID,
) (*rbacDomain.Assignment, error) {
	args := m.Called(ctx, subjectType, subjectID, roleID, realmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.Assignment), args.Error(1)
}

func (m *mockAssignmentUseCase) Delete(ctx context.Context, assignmentID uuid.UUID) error {
	return m.Called(ctx, assignmentID).Error(0)
}

func (m *mockAssignmentUseCase) ListByRealm(ctx context.Context, realmID uuid.UUID) ([]*rbacDomain.Assignment, error) {
	args := m.Called(ctx, realmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rbacDomain.Assignment), args.Error(1)
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

// mockCredentialUseCase only records SetPassword; the other operations are never reached from
// the administration API.
type mockCredentialUseCase struct {
	mock.Mock
}

func (m *mockCredentialUseCase) SetPassword(ctx context.Context, userID uuid.UUID, password string, initial bool) error {
	return m.Called(ctx, userID, password, initial).Error(0)
}

func (m *mockCredentialUseCase) VerifyPassword(context.Context, uuid.UUID, string) (bool, error) {
	panic("unexpected call to VerifyPassword")
}

func (m *mockCredentialUseCase) ChangePassword(context.Context, uuid.UUID, string, string) error {
	panic("unexpected call to ChangePassword")
}

func (m *mockCredentialUseCase) IssueResetChallenge(context.Context, string) (*authDomain.IssuedChallenge, error) {
	panic("unexpected call to IssueResetChallenge")
}

func (m *mockCredentialUseCase) ConsumeResetChallenge(context.Context, string, string) error {
	panic("unexpected call to ConsumeResetChallenge")
}

func (m *mockCredentialUseCase) EnrollOTP(context.Context, uuid.UUID) (*authDomain.OTPEnrollment, error) {
	panic("unexpected call to EnrollOTP")
}

func (m *mockCredentialUseCase) VerifyOTP(context.Context, uuid.UUID, string) error {
	panic("unexpected call to VerifyOTP")
}

func (m *mockCredentialUseCase) DisableOTP(context.Context, uuid.UUID) error {
	panic("unexpected call to DisableOTP")
}

func (m *mockCredentialUseCase) HasOTP(context.Context, uuid.UUID) (bool, error) {
	panic("unexpected call to HasOTP")
}
