package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	rbacDomain "github.com/bouncr/iam/internal/rbac/domain"
)

type applicationUseCase struct {
	applicationRepo ApplicationRepository
}

func (a *applicationUseCase) Create(
	ctx context.Context,
	name, description, passTo string,
) (*rbacDomain.Application, error) {
	application := &rbacDomain.Application{
		ID:          uuid.Must(uuid.NewV7()),
		Name:        name,
		Description: description,
		PassTo:      passTo,
		CreatedAt:   time.Now().UTC(),
	}
	if err := a.applicationRepo.Create(ctx, application); err != nil {
		return nil, err
	}
	return application, nil
}

func (a *applicationUseCase) Update(
	ctx context.Context,
	applicationID uuid.UUID,
	name, description, passTo string,
) (*rbacDomain.Application, error) {
	application, err := a.applicationRepo.Get(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	application.Name = name
	application.Description = description
	application.PassTo = passTo

	if err := a.applicationRepo.Update(ctx, application); err != nil {
		return nil, err
	}
	return application, nil
}

func (a *applicationUseCase) Get(ctx context.Context, applicationID uuid.UUID) (*rbacDomain.Application, error) {
	return a.applicationRepo.Get(ctx, applicationID)
}

func (a *applicationUseCase) List(ctx context.Context, offset, limit int) ([]*rbacDomain.Application, error) {
	return a.applicationRepo.List(ctx, offset, limit)
}

// Delete removes the application. Its realms and their assignments cascade.
func (a *applicationUseCase) Delete(ctx context.Context, applicationID uuid.UUID) error {
	if _, err := a.applicationRepo.Get(ctx, applicationID); err != nil {
		return err
	}
	return a.applicationRepo.Delete(ctx, applicationID)
}

// CreateRealm adds a realm to an existing application.
func (a *applicationUseCase) CreateRealm(
	ctx context.Context,
	applicationID uuid.UUID,
	name, description, url string,
) (*rbacDomain.Realm, error) {
	if _, err := a.applicationRepo.Get(ctx, applicationID); err != nil {
		return nil, err
	}

	realm := &rbacDomain.Realm{
		ID:            uuid.Must(uuid.NewV7()),
		ApplicationID: applicationID,
		Name:          name,
		Description:   description,
		URL:           url,
		CreatedAt:     time.Now().UTC(),
	}
	if err := a.applicationRepo.CreateRealm(ctx, realm); err != nil {
		return nil, err
	}
	return realm, nil
}

func (a *applicationUseCase) ListRealms(ctx context.Context, applicationID uuid.UUID) ([]*rbacDomain.Realm, error) {
	if _, err := a.applicationRepo.Get(ctx, applicationID); err != nil {
		return nil, err
	}
	return a.applicationRepo.ListRealms(ctx, applicationID)
}

// DeleteRealm removes a realm that belongs to applicationID.
func (a *applicationUseCase) DeleteRealm(ctx context.Context, applicationID, realmID uuid.UUID) error {
	realm, err := a.applicationRepo.GetRealm(ctx, realmID)
	if err != nil {
		return err
	}
	if realm.ApplicationID != applicationID {
		return rbacDomain.ErrRealmNotFound
	}
	return a.applicationRepo.DeleteRealm(ctx, realmID)
}

// NewApplicationUseCase creates an ApplicationUseCase.
func NewApplicationUseCase(applicationRepo ApplicationRepository) ApplicationUseCase {
	return &applicationUseCase{applicationRepo: applicationRepo}
}
