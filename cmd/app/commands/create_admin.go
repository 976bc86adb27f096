package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	authUseCase "github.com/bouncr/iam/internal/auth/usecase"
	rbacDomain "github.com/bouncr/iam/internal/rbac/domain"
	rbacDTO "github.com/bouncr/iam/internal/rbac/http/dto"
	rbacUseCase "github.com/bouncr/iam/internal/rbac/usecase"
)

// CreateAdminInput holds the command line arguments of create-admin.
type CreateAdminInput struct {
	Application string
	Realm       string
	Account     string
	Email       string
	Name        string
	Password    string //nolint:gosec // plaintext, hashed before storage
}

// RunCreateAdmin seeds the administration application, realm and role and grants the role to
// the given account, creating the account when it does not exist. The password is read from
// io.Reader when not given. Existing accounts keep their password unless one is given.
//
// Requirements: Database must be migrated and accessible.
func RunCreateAdmin(
	ctx context.Context,
	bootstrap rbacUseCase.BootstrapUseCase,
	credentials authUseCase.CredentialUseCase,
	logger *slog.Logger,
	input CreateAdminInput,
	format string,
	io IOTuple,
) error {
	request := rbacDTO.CreateUserRequest{Account: input.Account, Email: input.Email, Name: input.Name}
	if err := request.Validate(); err != nil {
		return fmt.Errorf("invalid administrator: %w", err)
	}

	logger.Info("bootstrapping administration scope",
		slog.String("application", input.Application),
		slog.String("realm", input.Realm),
		slog.String("account", input.Account),
	)

	result, err := bootstrap.EnsureAdmin(ctx, &rbacDomain.AdminBootstrapInput{
		Application: input.Application,
		Realm:       input.Realm,
		Account:     input.Account,
		Email:       input.Email,
		Name:        input.Name,
	})
	if err != nil {
		return fmt.Errorf("failed to bootstrap administration scope: %w", err)
	}

	password := input.Password
	if password == "" && result.UserCreated {
		password, err = promptForPassword(io)
		if err != nil {
			return err
		}
	}
	if password != "" {
		if err := credentials.SetPassword(ctx, result.User.ID, password, result.UserCreated); err != nil {
			return fmt.Errorf("failed to set administrator password: %w", err)
		}
	}

	if format == "json" {
		outputAdminJSON(result, io)
	} else {
		outputAdminText(result, io)
	}

	logger.Info("administration scope ready",
		slog.String("user_id", result.User.ID.String()),
		slog.Bool("user_created", result.UserCreated),
	)
	return nil
}

func promptForPassword(io IOTuple) (string, error) {
	if io.Reader == nil {
		return "", errors.New("password is required for a new administrator")
	}

	_, _ = fmt.Fprint(io.Writer, "Enter administrator password: ")
	line, err := bufio.NewReader(io.Reader).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	_, _ = fmt.Fprintln(io.Writer)

	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	return password, nil
}

func outputAdminText(result *rbacDomain.AdminBootstrap, io IOTuple) {
	_, _ = fmt.Fprintf(io.Writer, "Application: %s (%s)\n", result.Application.Name, result.Application.ID)
	_, _ = fmt.Fprintf(io.Writer, "Realm:       %s (%s)\n", result.Realm.Name, result.Realm.ID)
	_, _ = fmt.Fprintf(io.Writer, "Role:        %s (%s)\n", result.Role.Name, result.Role.ID)
	_, _ = fmt.Fprintf(io.Writer, "User:        %s (%s)\n", result.User.Account, result.User.ID)
	if !result.UserCreated {
		_, _ = fmt.Fprintln(io.Writer, "The account already existed and was granted the administration role.")
	}
}

func outputAdminJSON(result *rbacDomain.AdminBootstrap, io IOTuple) {
	payload := map[string]any{
		"application_id": result.Application.ID.String(),
		"realm_id":       result.Realm.ID.String(),
		"role_id":        result.Role.ID.String(),
		"user_id":        result.User.ID.String(),
		"account":        result.User.Account,
		"user_created":   result.UserCreated,
	}
	data, _ := json.MarshalIndent(payload, "", "  ")
	_, _ = fmt.Fprintln(io.Writer, string(data))
}
