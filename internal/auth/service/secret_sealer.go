package service

import (
	"context"
	"fmt"

	"gocloud.dev/secrets"

	// Register the keeper drivers accepted by OTP_KEEPER_URI
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// keeperSealer implements SecretSealer over a gocloud secrets.Keeper.
type keeperSealer struct {
	keeper *secrets.Keeper
}

// OpenSecretSealer opens the keeper at keyURI.
// Supports: base64key://, hashivault://, gcpkms://, awskms://, azurekeyvault://
func OpenSecretSealer(ctx context.Context, keyURI string) (SecretSealer, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open secrets keeper: %w", err)
	}
	return &keeperSealer{keeper: keeper}, nil
}

func (s *keeperSealer) Seal(ctx context.Context, plaintext []byte) ([]byte, error) {
	ciphertext, err := s.keeper.Encrypt(ctx, plaintext)
	if err != nil {
		return nil, fmt.Errorf("failed to seal secret: %w", err)
	}
	return ciphertext, nil
}

func (s *keeperSealer) Open(ctx context.Context, ciphertext []byte) ([]byte, error) {
	plaintext, err := s.keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to open secret: %w", err)
	}
	return plaintext, nil
}

func (s *keeperSealer) Close() error {
	return s.keeper.Close()
}
