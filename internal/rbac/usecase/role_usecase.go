package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bouncr/iam/internal/database"
	rbacDomain "github.com/bouncr/iam/internal/rbac/domain"
)

type roleUseCase struct {
	txManager      database.TxManager
	roleRepo       RoleRepository
	permissionRepo PermissionRepository
}

func (r *roleUseCase) Create(ctx context.Context, name, description string) (*rbacDomain.Role, error) {
	role := &rbacDomain.Role{
		ID:          uuid.Must(uuid.NewV7()),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := r.roleRepo.Create(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

func (r *roleUseCase) Update(
	ctx context.Context,
	roleID uuid.UUID,
	name, description string,
) (*rbacDomain.Role, error) {
	role, err := r.roleRepo.Get(ctx, roleID)
	if err != nil {
		return nil, err
	}

	role.Name = name
	role.Description = description

	if err := r.roleRepo.Update(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

func (r *roleUseCase) Get(ctx context.Context, roleID uuid.UUID) (*rbacDomain.Role, error) {
	return r.roleRepo.Get(ctx, roleID)
}

func (r *roleUseCase) List(ctx context.Context, offset, limit int) ([]*rbacDomain.Role, error) {
	return r.roleRepo.List(ctx, offset, limit)
}

func (r *roleUseCase) Delete(ctx context.Context, roleID uuid.UUID) error {
	if _, err := r.roleRepo.Get(ctx, roleID); err != nil {
		return err
	}
	return r.roleRepo.Delete(ctx, roleID)
}

// AddPermission grants permissionID to roleID. Both must exist.
func (r *roleUseCase) AddPermission(ctx context.Context, roleID, permissionID uuid.UUID) error {
	return r.txManager.WithTx(ctx, func(ctx context.Context) error {
		if _, err := r.roleRepo.Get(ctx, roleID); err != nil {
			return err
		}
		if _, err := r.permissionRepo.Get(ctx, permissionID); err != nil {
			return err
		}
		return r.roleRepo.AddPermission(ctx, roleID, permissionID)
	})
}

func (r *roleUseCase) RemovePermission(ctx context.Context, roleID, permissionID uuid.UUID) error {
	return r.roleRepo.RemovePermission(ctx, roleID, permissionID)
}

func (r *roleUseCase) ListPermissions(ctx context.Context, roleID uuid.UUID) ([]*rbacDomain.Permission, error) {
	if _, err := r.roleRepo.Get(ctx, roleID); err != nil {
		return nil, err
	}
	return r.roleRepo.ListPermissions(ctx, roleID)
}

// NewRoleUseCase creates a RoleUseCase.
func NewRoleUseCase(
	txManager database.TxManager,
	roleRepo RoleRepository,
	permissionRepo PermissionRepository,
) RoleUseCase {
	return &roleUseCase{txManager: txManager, roleRepo: roleRepo, permissionRepo: permissionRepo}
}

type permissionUseCase struct {
	permissionRepo PermissionRepository
}

func (p *permissionUseCase) Create(ctx context.Context, name, description string) (*rbacDomain.Permission, error) {
	permission := &rbacDomain.Permission{
		ID:          uuid.Must(uuid.NewV7()),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := p.permissionRepo.Create(ctx, permission); err != nil {
		return nil, err
	}
	return permission, nil
}

func (p *permissionUseCase) Update(
	ctx context.Context,
	permissionID uuid.UUID,
	name, description string,
) (*rbacDomain.Permission, error) {
	permission, err := p.permissionRepo.Get(ctx, permissionID)
	if err != nil {
		return nil, err
	}

	permission.Name = name
	permission.Description = description

	if err := p.permissionRepo.Update(ctx, permission); err != nil {
		return nil, err
	}
	return permission, nil
}

func (p *permissionUseCase) Get(ctx context.Context, permissionID uuid.UUID) (*rbacDomain.Permission, error) {
	return p.permissionRepo.Get(ctx, permissionID)
}

func (p *permissionUseCase) List(ctx context.Context, offset, limit int) ([]*rbacDomain.Permission, error) {
	return p.permissionRepo.List(ctx, offset, limit)
}

func (p *permissionUseCase) Delete(ctx context.Context, permissionID uuid.UUID) error {
	if _, err := p.permissionRepo.Get(ctx, permissionID); err != nil {
		return err
	}
	return p.permissionRepo.Delete(ctx, permissionID)
}

// NewPermissionUseCase creates a PermissionUseCase.
func NewPermissionUseCase(permissionRepo PermissionRepository) PermissionUseCase {
	return &permissionUseCase{permissionRepo: permissionRepo}
}
