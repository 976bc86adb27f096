package usecase

import (
	"context"

	"github.com/google/uuid"

	authDomain "github.com/bouncr/iam/internal/auth/domain"
	authService "github.com/bouncr/iam/internal/auth/service"
)

type oidcProviderUseCase struct {
	federation FederationRepository
	client     authService.FederationClient
}

func (o *oidcProviderUseCase) Create(
	ctx context.Context,
	input *authDomain.OIDCProviderInput,
) (*authDomain.OIDCProvider, error) {
	provider := authDomain.NewOIDCProvider(input)
	if err := o.federation.CreateProvider(ctx, provider); err != nil {
		return nil, err
	}
	return provider, nil
}

func (o *oidcProviderUseCase) Update(
	ctx context.Context,
	providerID uuid.UUID,
	input *authDomain.OIDCProviderInput,
) (*authDomain.OIDCProvider, error) {
	provider, err := o.federation.GetProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	// An empty secret keeps the stored one.
	if input.ClientSecret == "" {
		input.ClientSecret = provider.ClientSecret
	}
	provider.Apply(input)

	if err := o.federation.UpdateProvider(ctx, provider); err != nil {
		return nil, err
	}
	return provider, nil
}

func (o *oidcProviderUseCase) Get(ctx context.Context, providerID uuid.UUID) (*authDomain.OIDCProvider, error) {
	return o.federation.GetProvider(ctx, providerID)
}

func (o *oidcProviderUseCase) List(ctx context.Context, offset, limit int) ([]*authDomain.OIDCProvider, error) {
	return o.federation.ListProviders(ctx, offset, limit)
}

func (o *oidcProviderUseCase) Delete(ctx context.Context, providerID uuid.UUID) error {
	return o.federation.DeleteProvider(ctx, providerID)
}

func (o *oidcProviderUseCase) AuthorizationURL(ctx context.Context, name, state string) (string, error) {
	provider, err := o.federation.GetProviderByName(ctx, name)
	if err != nil {
		return "", err
	}
	return o.client.AuthCodeURL(provider, state), nil
}

// NewOIDCProviderUseCase creates a new OIDCProviderUseCase.
func NewOIDCProviderUseCase(
	federation FederationRepository,
	client authService.FederationClient,
) OIDCProviderUseCase {
	return &oidcProviderUseCase{federation: federation, client: client}
}
