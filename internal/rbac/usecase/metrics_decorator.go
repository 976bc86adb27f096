package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bouncr/iam/internal/metrics"
	rbacDomain "github.com/bouncr/iam/internal/rbac/domain"
)

// authorizationUseCaseWithMetrics decorates AuthorizationUseCase with metrics instrumentation.
type authorizationUseCaseWithMetrics struct {
	next    AuthorizationUseCase
	metrics metrics.BusinessMetrics
}

// NewAuthorizationUseCaseWithMetrics wraps an AuthorizationUseCase with metrics recording.
func NewAuthorizationUseCaseWithMetrics(useCase AuthorizationUseCase, m metrics.BusinessMetrics) AuthorizationUseCase {
	return &authorizationUseCaseWithMetrics{next: useCase, metrics: m}
}

func (a *authorizationUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	metrics.Observe(ctx, a.metrics, metrics.DomainRBAC, operation, start, metrics.Outcome(err))
}

// CheckPermission records a "denied" status for negative answers.
func (a *authorizationUseCaseWithMetrics) CheckPermission(
	ctx context.Context,
	userID uuid.UUID,
	application, realm, permission string,
) (bool, error) {
	start := time.Now()
	allowed, err := a.next.CheckPermission(ctx, userID, application, realm, permission)

	outcome := metrics.Outcome(err)
	if err == nil && !allowed {
		outcome = metrics.OutcomeDenied
	}
	metrics.Observe(ctx, a.metrics, metrics.DomainRBAC, "permission_check", start, outcome)

	return allowed, err
}

func (a *authorizationUseCaseWithMetrics) EffectivePermissions(
	ctx context.Context,
	userID uuid.UUID,
	application, realm string,
) ([]string, error) {
	start := time.Now()
	perms, err := a.next.EffectivePermissions(ctx, userID, application, realm)
	a.record(ctx, "effective_permissions", start, err)
	return perms, err
}

func (a *authorizationUseCaseWithMetrics) PermissionsByRealm(
	ctx context.Context,
	userID uuid.UUID,
) (map[string][]string, error) {
	start := time.Now()
	perms, err := a.next.PermissionsByRealm(ctx, userID)
	a.record(ctx, "permissions_by_realm", start, err)
	return perms, err
}

// assignmentUseCaseWithMetrics decorates AssignmentUseCase with metrics instrumentation.
type assignmentUseCaseWithMetrics struct {
	next    AssignmentUseCase
	metrics metrics.BusinessMetrics
}

// NewAssignmentUseCaseWithMetrics wraps an AssignmentUseCase with metrics recording.
func NewAssignmentUseCaseWithMetrics(useCase AssignmentUseCase, m metrics.BusinessMetrics) AssignmentUseCase {
	return &assignmentUseCaseWithMetrics{next: useCase, metrics: m}
}

func (a *assignmentUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	metrics.Observe(ctx, a.metrics, metrics.DomainRBAC, operation, start, metrics.Outcome(err))
}

func (a *assignmentUseCaseWithMetrics) Create(
	ctx context.Context,
	subjectType rbacDomain.SubjectType,
	subjectID, roleID, realmID uuid.UUID,
) (*rbacDomain.Assignment, error) {
	start := time.Now()
	assignment, err := a.next.Create(ctx, subjectType, subjectID, roleID, realmID)
	a.record(ctx, "assignment_create", start, err)
	return assignment, err
}

func (a *assignmentUseCaseWithMetrics) Delete(ctx context.Context, assignmentID uuid.UUID) error {
	start := time.Now()
	err := a.next.Delete(ctx, assignmentID)
	a.record(ctx, "assignment_delete", start, err)
	return err
}

func (a *assignmentUseCaseWithMetrics) ListByRealm(
	ctx context.Context,
	realmID uuid.UUID,
) ([]*rbacDomain.Assignment, error) {
	start := time.Now()
	assignments, err := a.next.ListByRealm(ctx, realmID)
	a.record(ctx, "assignment_list", start, err)
	return assignments, err
}
