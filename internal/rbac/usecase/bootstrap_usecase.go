package usecase

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/bouncr/iam/internal/database"
	"github.com/bouncr/iam/internal/errors"
	rbacDomain "github.com/bouncr/iam/internal/rbac/domain"
)

// BootstrapUseCase seeds the administration scope.
type BootstrapUseCase interface {
	// EnsureAdmin creates whatever is missing of the administration application, realm,
	// permissions, role and administrator account, and assigns the role to the account.
	// Running it again is harmless.
	EnsureAdmin(ctx context.Context, input *rbacDomain.AdminBootstrapInput) (*rbacDomain.AdminBootstrap, error)
}

type bootstrapUseCase struct {
	txManager       database.TxManager
	userRepo        UserRepository
	applicationRepo ApplicationRepository
	roleRepo        RoleRepository
	permissionRepo  PermissionRepository
	assignmentRepo  AssignmentRepository
}

// NewBootstrapUseCase creates a BootstrapUseCase.
func NewBootstrapUseCase(
	txManager database.TxManager,
	userRepo UserRepository,
	applicationRepo ApplicationRepository,
	roleRepo RoleRepository,
	permissionRepo PermissionRepository,
	assignmentRepo AssignmentRepository,
) BootstrapUseCase {
	return &bootstrapUseCase{
		txManager:       txManager,
		userRepo:        userRepo,
		applicationRepo: applicationRepo,
		roleRepo:        roleRepo,
		permissionRepo:  permissionRepo,
		assignmentRepo:  assignmentRepo,
	}
}

func (b *bootstrapUseCase) EnsureAdmin(
	ctx context.Context,
	input *rbacDomain.AdminBootstrapInput,
) (*rbacDomain.AdminBootstrap, error) {
	result := &rbacDomain.AdminBootstrap{}

	err := b.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		if result.Application, err = b.ensureApplication(ctx, input.Application); err != nil {
			return err
		}
		if result.Realm, err = b.ensureRealm(ctx, result.Application, input.Realm); err != nil {
			return err
		}
		if result.Role, err = b.ensureRole(ctx); err != nil {
			return err
		}
		if result.User, result.UserCreated, err = b.ensureUser(ctx, input); err != nil {
			return err
		}
		return b.ensureAssignment(ctx, result)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (b *bootstrapUseCase) ensureApplication(ctx context.Context, name string) (*rbacDomain.Application, error) {
	application, err := b.applicationRepo.GetByName(ctx, name)
	if err == nil {
		return application, nil
	}
	if !errors.Is(err, rbacDomain.ErrApplicationNotFound) {
		return nil, err
	}

	application = &rbacDomain.Application{
		ID:          uuid.Must(uuid.NewV7()),
		Name:        name,
		Description: "Identity and access management",
		CreatedAt:   time.Now().UTC(),
	}
	if err := b.applicationRepo.Create(ctx, application); err != nil {
		return nil, err
	}
	return application, nil
}

func (b *bootstrapUseCase) ensureRealm(
	ctx context.Context,
	application *rbacDomain.Application,
	name string,
) (*rbacDomain.Realm, error) {
	realm, err := b.applicationRepo.GetRealmByName(ctx, application.Name, name)
	if err == nil {
		return realm, nil
	}
	if !errors.Is(err, rbacDomain.ErrRealmNotFound) {
		return nil, err
	}

	realm = &rbacDomain.Realm{
		ID:            uuid.Must(uuid.NewV7()),
		ApplicationID: application.ID,
		Name:          name,
		Description:   "Administration",
		URL:           ".*",
		CreatedAt:     time.Now().UTC(),
	}
	if err := b.applicationRepo.CreateRealm(ctx, realm); err != nil {
		return nil, err
	}
	return realm, nil
}

func (b *bootstrapUseCase) ensureRole(ctx context.Context) (*rbacDomain.Role, error) {
	role, err := b.roleRepo.GetByName(ctx, rbacDomain.AdminRoleName)
	if err != nil {
		if !errors.Is(err, rbacDomain.ErrRoleNotFound) {
			return nil, err
		}
		role = &rbacDomain.Role{
			ID:          uuid.Must(uuid.NewV7()),
			Name:        rbacDomain.AdminRoleName,
			Description: "Full administration access",
			CreatedAt:   time.Now().UTC(),
		}
		if err := b.roleRepo.Create(ctx, role); err != nil {
			return nil, err
		}
	}

	for _, name := range rbacDomain.AdminPermissions() {
		permission, err := b.permissionRepo.GetByName(ctx, name)
		if err != nil {
			if !errors.Is(err, rbacDomain.ErrPermissionNotFound) {
				return nil, err
			}
			permission = &rbacDomain.Permission{
				ID:        uuid.Must(uuid.NewV7()),
				Name:      name,
				CreatedAt: time.Now().UTC(),
			}
			if err := b.permissionRepo.Create(ctx, permission); err != nil {
				return nil, err
			}
		}
		if err := b.roleRepo.AddPermission(ctx, role.ID, permission.ID); err != nil {
			return nil, err
		}
	}

	return role, nil
}

func (b *bootstrapUseCase) ensureUser(
	ctx context.Context,
	input *rbacDomain.AdminBootstrapInput,
) (*rbacDomain.User, bool, error) {
	user, err := b.userRepo.GetByAccount(ctx, input.Account)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, rbacDomain.ErrUserNotFound) {
		return nil, false, err
	}

	user = rbacDomain.NewUser(&rbacDomain.CreateUserInput{
		Account: input.Account,
		Email:   input.Email,
		Name:    input.Name,
	})
	user.WriteProtected = true
	if err := b.userRepo.Create(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func (b *bootstrapUseCase) ensureAssignment(ctx context.Context, result *rbacDomain.AdminBootstrap) error {
	roleIDs, err := b.assignmentRepo.ListRoleIDs(ctx, result.Realm.ID, result.User.ID, nil)
	if err != nil {
		return err
	}
	if slices.Contains(roleIDs, result.Role.ID) {
		return nil
	}

	assignment := rbacDomain.NewAssignment(rbacDomain.SubjectUser, result.User.ID, result.Role.ID, result.Realm.ID)
	return b.assignmentRepo.Create(ctx, assignment)
}
