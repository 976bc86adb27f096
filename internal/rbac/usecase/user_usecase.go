package usecase

import (
	"context"

	"github.com/google/uuid"

	hookDomain "github.com/bouncr/iam/internal/hook/domain"
	hookUseCase "github.com/bouncr/iam/internal/hook/usecase"
	rbacDomain "github.com/bouncr/iam/internal/rbac/domain"
)

type userUseCase struct {
	userRepo UserRepository
	hooks    hookUseCase.Dispatcher
}

// Create persists a new user and fires user_created.
func (u *userUseCase) Create(ctx context.Context, input *rbacDomain.CreateUserInput) (*rbacDomain.User, error) {
	user := rbacDomain.NewUser(input)
	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	u.hooks.Dispatch(ctx, hookDomain.NewEvent(hookDomain.EventUserCreated, user.Account, map[string]any{
		"user_id": user.ID.String(),
		"email":   user.Email,
	}))

	return user, nil
}

// Update changes the profile fields. A changed email clears the verified flag.
func (u *userUseCase) Update(
	ctx context.Context,
	userID uuid.UUID,
	input *rbacDomain.UpdateUserInput,
) (*rbacDomain.User, error) {
	user, err := u.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.WriteProtected {
		return nil, rbacDomain.ErrWriteProtected
	}

	if user.Email != input.Email {
		user.ProfileVerified = false
	}
	user.Email = input.Email
	user.Name = input.Name

	if err := u.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *userUseCase) Get(ctx context.Context, userID uuid.UUID) (*rbacDomain.User, error) {
	return u.userRepo.Get(ctx, userID)
}

func (u *userUseCase) GetByAccount(ctx context.Context, account string) (*rbacDomain.User, error) {
	return u.userRepo.GetByAccount(ctx, account)
}

func (u *userUseCase) List(ctx context.Context, offset, limit int) ([]*rbacDomain.User, error) {
	return u.userRepo.List(ctx, offset, limit)
}

// Delete removes a user. Write-protected users cannot be deleted.
func (u *userUseCase) Delete(ctx context.Context, userID uuid.UUID) error {
	user, err := u.userRepo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if user.WriteProtected {
		return rbacDomain.ErrWriteProtected
	}
	return u.userRepo.Delete(ctx, userID)
}

// NewUserUseCase creates a UserUseCase.
func NewUserUseCase(userRepo UserRepository, hooks hookUseCase.Dispatcher) UserUseCase {
	return &userUseCase{userRepo: userRepo, hooks: hooks}
}
