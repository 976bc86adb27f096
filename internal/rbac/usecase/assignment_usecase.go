package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/bouncr/iam/internal/database"
	apperrors "github.com/bouncr/iam/internal/errors"
	hookDomain "github.com/bouncr/iam/internal/hook/domain"
	hookUseCase "github.com/bouncr/iam/internal/hook/usecase"
	rbacDomain "github.com/bouncr/iam/internal/rbac/domain"
)

type assignmentUseCase struct {
	txManager       database.TxManager
	assignmentRepo  AssignmentRepository
	userRepo        UserRepository
	groupRepo       GroupRepository
	roleRepo        RoleRepository
	applicationRepo ApplicationRepository
	hooks           hookUseCase.Dispatcher
}

// Create checks every reference inside one transaction and inserts the assignment.
// A missing reference fails with ErrReferenceNotFound and nothing is written.
func (a *assignmentUseCase) Create(
	ctx context.Context,
	subjectType rbacDomain.SubjectType,
	subjectID, roleID, realmID uuid.UUID,
) (*rbacDomain.Assignment, error) {
	assignment := rbacDomain.NewAssignment(subjectType, subjectID, roleID, realmID)
	var subject string

	err := a.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		subject, err = a.resolveSubject(ctx, subjectType, subjectID)
		if err != nil {
			return err
		}
		if _, err := a.roleRepo.Get(ctx, roleID); err != nil {
			return asReferenceError(err, "role")
		}
		if _, err := a.applicationRepo.GetRealm(ctx, realmID); err != nil {
			return asReferenceError(err, "realm")
		}
		return a.assignmentRepo.Create(ctx, assignment)
	})
	if err != nil {
		return nil, err
	}

	a.hooks.Dispatch(ctx, hookDomain.NewEvent(hookDomain.EventRoleAssigned, subject, map[string]any{
		"assignment_id": assignment.ID.String(),
		"subject_type":  string(subjectType),
		"role_id":       roleID.String(),
		"realm_id":      realmID.String(),
	}))

	return assignment, nil
}

func (a *assignmentUseCase) resolveSubject(
	ctx context.Context,
	subjectType rbacDomain.SubjectType,
	subjectID uuid.UUID,
) (string, error) {
	switch subjectType {
	case rbacDomain.SubjectUser:
		user, err := a.userRepo.Get(ctx, subjectID)
		if err != nil {
			return "", asReferenceError(err, "user")
		}
		return user.Account, nil
	case rbacDomain.SubjectGroup:
		group, err := a.groupRepo.Get(ctx, subjectID)
		if err != nil {
			return "", asReferenceError(err, "group")
		}
		return group.Name, nil
	default:
		return "", rbacDomain.ErrInvalidSubjectType
	}
}

func asReferenceError(err error, what string) error {
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return apperrors.Wrapf(rbacDomain.ErrReferenceNotFound, "%s", what)
	}
	return err
}

func (a *assignmentUseCase) Delete(ctx context.Context, assignmentID uuid.UUID) error {
	if _, err := a.assignmentRepo.Get(ctx, assignmentID); err != nil {
		return err
	}
	return a.assignmentRepo.Delete(ctx, assignmentID)
}

func (a *assignmentUseCase) ListByRealm(ctx context.Context, realmID uuid.UUID) ([]*rbacDomain.Assignment, error) {
	if _, err := a.applicationRepo.GetRealm(ctx, realmID); err != nil {
		return nil, err
	}
	return a.assignmentRepo.ListByRealm(ctx, realmID)
}

// NewAssignmentUseCase creates an AssignmentUseCase.
func NewAssignmentUseCase(
	txManager database.TxManager,
	assignmentRepo AssignmentRepository,
	userRepo UserRepository,
	groupRepo GroupRepository,
	roleRepo RoleRepository,
	applicationRepo ApplicationRepository,
	hooks hookUseCase.Dispatcher,
) AssignmentUseCase {
	return &assignmentUseCase{
		txManager:       txManager,
		assignmentRepo:  assignmentRepo,
		userRepo:        userRepo,
		groupRepo:       groupRepo,
		roleRepo:        roleRepo,
		applicationRepo: applicationRepo,
		hooks:           hooks,
	}
}
