package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	authDomain "github.com/bouncr/iam/internal/auth/domain"
	authService "github.com/bouncr/iam/internal/auth/service"
	"github.com/bouncr/iam/internal/database"
	hookDomain "github.com/bouncr/iam/internal/hook/domain"
	hookUseCase "github.com/bouncr/iam/internal/hook/usecase"
	rbacDomain "github.com/bouncr/iam/internal/rbac/domain"
)

// ChallengeConfig holds the sign-up switches and challenge lifetimes.
type ChallengeConfig struct {
	SignUpEnabled   bool
	Credential      CredentialConfig
	InvitationTTL   time.Duration
	VerificationTTL time.Duration
}

type challengeUseCase struct {
	config      ChallengeConfig
	txManager   database.TxManager
	users       UserDirectory
	groups      GroupMembership
	credentials CredentialRepository
	challenges  ChallengeRepository
	hasher      authService.PasswordHasher
	tokens      TokenGenerator
	hooks       hookUseCase.Dispatcher
	clock       clock.Clock
}

func (c *challengeUseCase) Invite(
	ctx context.Context,
	email string,
	groupIDs []uuid.UUID,
) (*authDomain.IssuedChallenge, error) {
	email = strings.ToLower(email)
	return issueChallenge(ctx, c.tokens, c.challenges, c.hooks, c.clock, c.config.InvitationTTL, email,
		&authDomain.Challenge{
			Kind:     authDomain.ChallengeInvitation,
			Email:    email,
			GroupIDs: groupIDs,
		})
}

// SignUp creates the account. With an invitation the user joins the invited groups, the
// invitation is consumed in the same transaction and the email counts as verified.
func (c *challengeUseCase) SignUp(
	ctx context.Context,
	input *authDomain.SignUpInput,
) (*authDomain.SignUpOutput, error) {
	invited := input.InvitationCode != ""
	if !invited && !c.config.SignUpEnabled {
		return nil, authDomain.ErrSignUpDisabled
	}

	withPassword := c.config.Credential.PasswordEnabled
	if withPassword {
		if err := c.config.Credential.CheckPolicy(input.Password); err != nil {
			return nil, err
		}
	}

	user := rbacDomain.NewUser(&rbacDomain.CreateUserInput{
		Account: input.Account,
		Email:   input.Email,
		Name:    input.Name,
	})
	user.CreatedAt = c.clock.Now().UTC()

	err := c.txManager.WithTx(ctx, func(ctx context.Context) error {
		var invitation *authDomain.Challenge
		codeHash := c.tokens.HashToken(input.InvitationCode)

		if invited {
			var err error
			invitation, err = c.challenges.Peek(ctx, codeHash)
			if err != nil {
				return err
			}
			if invitation.Kind != authDomain.ChallengeInvitation {
				return authDomain.ErrChallengeExpired
			}
			if !strings.EqualFold(invitation.Email, input.Email) {
				return authDomain.ErrInvitationMismatch
			}
			user.ProfileVerified = true
		}

		if err := c.users.Create(ctx, user); err != nil {
			return err
		}

		if withPassword {
			hash, err := c.hasher.Hash(input.Password)
			if err != nil {
				return err
			}
			credential := &authDomain.PasswordCredential{UserID: user.ID, Hash: hash, CreatedAt: user.CreatedAt}
			if err := c.credentials.UpsertPassword(ctx, credential); err != nil {
				return err
			}
		}

		if invitation == nil {
			return nil
		}
		for _, groupID := range invitation.GroupIDs {
			if err := c.groups.AddMember(ctx, groupID, user.ID); err != nil {
				return err
			}
		}
		_, err := c.challenges.Consume(ctx, codeHash, c.config.InvitationTTL)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.hooks.Dispatch(ctx, hookDomain.NewEvent(hookDomain.EventUserCreated, user.Account, map[string]any{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"invited": invited,
	}))

	output := &authDomain.SignUpOutput{UserID: user.ID, Account: user.Account}
	if !user.ProfileVerified {
		output.Verification, err = c.issueVerification(ctx, user)
		if err != nil {
			return nil, err
		}
	}
	return output, nil
}

func (c *challengeUseCase) IssueProfileVerification(
	ctx context.Context,
	userID uuid.UUID,
) (*authDomain.IssuedChallenge, error) {
	user, err := c.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return c.issueVerification(ctx, user)
}

func (c *challengeUseCase) issueVerification(
	ctx context.Context,
	user *rbacDomain.User,
) (*authDomain.IssuedChallenge, error) {
	return issueChallenge(ctx, c.tokens, c.challenges, c.hooks, c.clock, c.config.VerificationTTL, user.Account,
		&authDomain.Challenge{
			Kind:   authDomain.ChallengeProfileVerification,
			UserID: user.ID,
			Email:  strings.ToLower(user.Email),
		})
}

// VerifyProfile marks the profile verified. A challenge issued before the email changed no
// longer applies.
func (c *challengeUseCase) VerifyProfile(ctx context.Context, code string) error {
	codeHash := c.tokens.HashToken(code)

	return c.txManager.WithTx(ctx, func(ctx context.Context) error {
		challenge, err := c.challenges.Peek(ctx, codeHash)
		if err != nil {
			return err
		}
		if challenge.Kind != authDomain.ChallengeProfileVerification {
			return authDomain.ErrChallengeExpired
		}

		user, err := c.users.Get(ctx, challenge.UserID)
		if err != nil {
			return err
		}
		if !strings.EqualFold(user.Email, challenge.Email) {
			return authDomain.ErrChallengeExpired
		}
		if err := c.users.SetProfileVerified(ctx, user.ID, true); err != nil {
			return err
		}

		_, err = c.challenges.Consume(ctx, codeHash, c.config.VerificationTTL)
		return err
	})
}

// NewChallengeUseCase creates a new ChallengeUseCase.
func NewChallengeUseCase(
	config ChallengeConfig,
	txManager database.TxManager,
	users UserDirectory,
	groups GroupMembership,
	credentials CredentialRepository,
	challenges ChallengeRepository,
	hasher authService.PasswordHasher,
	tokens TokenGenerator,
	hooks hookUseCase.Dispatcher,
	clk clock.Clock,
) ChallengeUseCase {
	return &challengeUseCase{
		config:      config,
		txManager:   txManager,
		users:       users,
		groups:      groups,
		credentials: credentials,
		challenges:  challenges,
		hasher:      hasher,
		tokens:      tokens,
		hooks:       hooks,
		clock:       clk,
	}
}
