package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	rbacDomain "github.com/bouncr/iam/internal/rbac/domain"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *rbacDomain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepository) Update(ctx context.Context, user *rbacDomain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepository) Get(ctx context.Context, userID uuid.UUID) (*rbacDomain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.User), args.Error(1)
}

func (m *mockUserRepository) GetByAccount(ctx context.Context, account string) (*rbacDomain.User, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*rbacDomain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.User), args.Error(1)
}

func (m *mockUserRepository) List(ctx context.Context, offset, limit int) ([]*rbacDomain.User, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rbacDomain.User), args.Error(1)
}

func (m *mockUserRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

type mockGroupRepository struct {
	mock.Mock
}

func (m *mockGroupRepository) Create(ctx context.Context, group *rbacDomain.Group) error {
	return m.Called(ctx, group).Error(0)
}

func (m *mockGroupRepository) Update(ctx context.Context, group *rbacDomain.Group) error {
	return m.Called(ctx, group).Error(0)
}

func (m *mockGroupRepository) Get(ctx context.Context, groupID uuid.UUID) (*rbacDomain.Group, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.Group), args.Error(1)
}

func (m *mockGroupRepository) GetByName(ctx context.Context, name string) (*rbacDomain.Group, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.Group), args.Error(1)
}

func (m *mockGroupRepository) List(ctx context.Context, offset, limit int) ([]*rbacDomain.Group, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rbacDomain.Group), args.Error(1)
}

func (m *mockGroupRepository) Delete(ctx context.Context, groupID uuid.UUID) error {
	return m.Called(ctx, groupID).Error(0)
}

func (m *mockGroupRepository) AddMember(ctx context.Context, groupID, userID uuid.UUID) error {
	return m.Called(ctx, groupID, userID).Error(0)
}

func (m *mockGroupRepository) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	return m.Called(ctx, groupID, userID).Error(0)
}

func (m *mockGroupRepository) ListMembers(ctx context.Context, groupID uuid.UUID) ([]*rbacDomain.User, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rbacDomain.User), args.Error(1)
}

func (m *mockGroupRepository) ListGroupIDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type mockRoleRepository struct {
	mock.Mock
}

func (m *mockRoleRepository) Create(ctx context.Context, role *rbacDomain.Role) error {
	return m.Called(ctx, role).Error(0)
}

func (m *mockRoleRepository) Update(ctx context.Context, role *rbacDomain.Role) error {
	return m.Called(ctx, role).Error(0)
}

func (m *mockRoleRepository) Get(ctx context.Context, roleID uuid.UUID) (*rbacDomain.Role, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.Role), args.Error(1)
}

func (m *mockRoleRepository) GetByName(ctx context.Context, name string) (*rbacDomain.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.Role), args.Error(1)
}

func (m *mockRoleRepository) List(ctx context.Context, offset, limit int) ([]*rbacDomain.Role, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rbacDomain.Role), args.Error(1)
}

func (m *mockRoleRepository) Delete(ctx context.Context, roleID uuid.UUID) error {
	return m.Called(ctx, roleID).Error(0)
}

func (m *mockRoleRepository) AddPermission(ctx context.Context, roleID, permissionID uuid.UUID) error {
	return m.Called(ctx, roleID, permissionID).Error(0)
}

func (m *mockRoleRepository) RemovePermission(ctx context.Context, roleID, permissionID uuid.UUID) error {
	return m.Called(ctx, roleID, permissionID).Error(0)
}

func (m *mockRoleRepository) ListPermissions(ctx context.Context, roleID uuid.UUID) ([]*rbacDomain.Permission, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rbacDomain.Permission), args.Error(1)
}

func (m *mockRoleRepository) ListPermissionNames(ctx context.Context, roleIDs []uuid.UUID) ([]string, error) {
	args := m.Called(ctx, roleIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type mockPermissionRepository struct {
	mock.Mock
}

func (m *mockPermissionRepository) Create(ctx context.Context, permission *rbacDomain.Permission) error {
	return m.Called(ctx, permission).Error(0)
}

func (m *mockPermissionRepository) Update(ctx context.Context, permission *rbacDomain.Permission) error {
	return m.Called(ctx, permission).Error(0)
}

func (m *mockPermissionRepository) Get(ctx context.Context, permissionID uuid.UUID) (*rbacDomain.Permission, error) {
	args := m.Called(ctx, permissionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.Permission), args.Error(1)
}

func (m *mockPermissionRepository) GetByName(ctx context.Context, name string) (*rbacDomain.Permission, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.Permission), args.Error(1)
}

func (m *mockPermissionRepository) List(ctx context.Context, offset, limit int) ([]*rbacDomain.Permission, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rbacDomain.Permission), args.Error(1)
}

func (m *mockPermissionRepository) Delete(ctx context.Context, permissionID uuid.UUID) error {
	return m.Called(ctx, permissionID).Error(0)
}

type mockApplicationRepository struct {
	mock.Mock
}

func (m *mockApplicationRepository) Create(ctx context.Context, application *rbacDomain.Application) error {
	return m.Called(ctx, application).Error(0)
}

func (m *mockApplicationRepository) Update(ctx context.Context, application *rbacDomain.Application) error {
	return m.Called(ctx, application).Error(0)
}

func (m *mockApplicationRepository) Get(
	ctx context.Context,
	applicationID uuid.UUID,
) (*rbacDomain.Application, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.Application), args.Error(1)
}

func (m *mockApplicationRepository) GetByName(ctx context.Context, name string) (*rbacDomain.Application, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.Application), args.Error(1)
}

func (m *mockApplicationRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*rbacDomain.Application, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rbacDomain.Application), args.Error(1)
}

func (m *mockApplicationRepository) Delete(ctx context.Context, applicationID uuid.UUID) error {
	return m.Called(ctx, applicationID).Error(0)
}

func (m *mockApplicationRepository) CreateRealm(ctx context.Context, realm *rbacDomain.Realm) error {
	return m.Called(ctx, realm).Error(0)
}

func (m *mockApplicationRepository) GetRealm(ctx context.Context, realmID uuid.UUID) (*rbacDomain.Realm, error) {
	args := m.Called(ctx, realmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.Realm), args.Error(1)
}

func (m *mockApplicationRepository) GetRealmByName(
	ctx context.Context,
	application, realm string,
) (*rbacDomain.Realm, error) {
	args := m.Called(ctx, application, realm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.Realm), args.Error(1)
}

func (m *mockApplicationRepository) ListRealms(
	ctx context.Context,
	applicationID uuid.UUID,
) ([]*rbacDomain.Realm, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rbacDomain.Realm), args.Error(1)
}

func (m *mockApplicationRepository) DeleteRealm(ctx context.Context, realmID uuid.UUID) error {
	return m.Called(ctx, realmID).Error(0)
}

type mockAssignmentRepository struct {
	mock.Mock
}

func (m *mockAssignmentRepository) Create(ctx context.Context, assignment *rbacDomain.Assignment) error {
	return m.Called(ctx, assignment).Error(0)
}

func (m *mockAssignmentRepository) Get(
	ctx context.Context,
	assignmentID uuid.UUID,
) (*rbacDomain.Assignment, error) {
	args := m.Called(ctx, assignmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rbacDomain.Assignment), args.Error(1)
}

func (m *mockAssignmentRepository) Delete(ctx context.Context, assignmentID uuid.UUID) error {
	return m.Called(ctx, assignmentID).Error(0)
}

func (m *mockAssignmentRepository) ListByRealm(
	ctx context.Context,
	realmID uuid.UUID,
) ([]*rbacDomain.Assignment, error) {
	args := m.Called(ctx, realmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rbacDomain.Assignment), args.Error(1)
}

func (m *mockAssignmentRepository) ListRoleIDs(
	ctx context.Context,
	realmID, userID uuid.UUID,
	groupIDs []uuid.UUID,
) ([]uuid.UUID, error) {
	args := m.Called(ctx, realmID, userID, groupIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *mockAssignmentRepository) ListGrants(
	ctx context.Context,
	userID uuid.UUID,
	groupIDs []uuid.UUID,
) ([]rbacDomain.Grant, error) {
	args := m.Called(ctx, userID, groupIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]rbacDomain.Grant), args.Error(1)
}
