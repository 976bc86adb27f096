package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bouncr/iam/internal/database"
	rbacDomain "github.com/bouncr/iam/internal/rbac/domain"
)

type groupUseCase struct {
	txManager database.TxManager
	groupRepo GroupRepository
	userRepo  UserRepository
}

func (g *groupUseCase) Create(ctx context.Context, name, description string) (*rbacDomain.Group, error) {
	group := &rbacDomain.Group{
		ID:          uuid.Must(uuid.NewV7()),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := g.groupRepo.Create(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

func (g *groupUseCase) Update(
	ctx context.Context,
	groupID uuid.UUID,
	name, description string,
) (*rbacDomain.Group, error) {
	group, err := g.groupRepo.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}

	group.Name = name
	group.Description = description

	if err := g.groupRepo.Update(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

func (g *groupUseCase) Get(ctx context.Context, groupID uuid.UUID) (*rbacDomain.Group, error) {
	return g.groupRepo.Get(ctx, groupID)
}

func (g *groupUseCase) List(ctx context.Context, offset, limit int) ([]*rbacDomain.Group, error) {
	return g.groupRepo.List(ctx, offset, limit)
}

func (g *groupUseCase) Delete(ctx context.Context, groupID uuid.UUID) error {
	if _, err := g.groupRepo.Get(ctx, groupID); err != nil {
		return err
	}
	return g.groupRepo.Delete(ctx, groupID)
}

// AddMember adds userID to groupID. Both must exist.
func (g *groupUseCase) AddMember(ctx context.Context, groupID, userID uuid.UUID) error {
	return g.txManager.WithTx(ctx, func(ctx context.Context) error {
		if _, err := g.groupRepo.Get(ctx, groupID); err != nil {
			return err
		}
		if _, err := g.userRepo.Get(ctx, userID); err != nil {
			return err
		}
		return g.groupRepo.AddMember(ctx, groupID, userID)
	})
}

func (g *groupUseCase) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	return g.groupRepo.RemoveMember(ctx, groupID, userID)
}

func (g *groupUseCase) ListMembers(ctx context.Context, groupID uuid.UUID) ([]*rbacDomain.User, error) {
	if _, err := g.groupRepo.Get(ctx, groupID); err != nil {
		return nil, err
	}
	return g.groupRepo.ListMembers(ctx, groupID)
}

// NewGroupUseCase creates a GroupUseCase.
func NewGroupUseCase(
	txManager database.TxManager,
	groupRepo GroupRepository,
	userRepo UserRepository,
) GroupUseCase {
	return &groupUseCase{txManager: txManager, groupRepo: groupRepo, userRepo: userRepo}
}
