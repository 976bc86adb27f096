package usecase

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	apperrors "github.com/bouncr/iam/internal/errors"
	rbacDomain "github.com/bouncr/iam/internal/rbac/domain"
)

type memoKey struct{}

// memo caches effective permission sets for the lifetime of one request.
type memo struct {
	mu    sync.Mutex
	perms map[string][]string
}

// WithMemo returns a context that memoizes permission resolution. Install it once per request;
// entries are never invalidated, so the context must not outlive the request.
func WithMemo(ctx context.Context) context.Context {
	if _, ok := ctx.Value(memoKey{}).(*memo); ok {
		return ctx
	}
	return context.WithValue(ctx, memoKey{}, &memo{perms: make(map[string][]string)})
}

func memoFrom(ctx context.Context) *memo {
	m, _ := ctx.Value(memoKey{}).(*memo)
	return m
}

func (m *memo) get(key string) ([]string, bool) {
	if m == nil {
		return nil, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	perms, ok := m.perms[key]
	return perms, ok
}

func (m *memo) put(key string, perms []string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.perms[key] = perms
}

type authorizationUseCase struct {
	applicationRepo ApplicationRepository
	groupRepo       GroupRepository
	assignmentRepo  AssignmentRepository
	roleRepo        RoleRepository
}

func (a *authorizationUseCase) CheckPermission(
	ctx context.Context,
	userID uuid.UUID,
	application, realm, permission string,
) (bool, error) {
	perms, err := a.EffectivePermissions(ctx, userID, application, realm)
	if err != nil {
		return false, err
	}
	_, found := slices.BinarySearch(perms, permission)
	return found, nil
}

// EffectivePermissions unions the permissions of every role assigned in the realm to the user
// directly or to any group containing the user.
func (a *authorizationUseCase) EffectivePermissions(
	ctx context.Context,
	userID uuid.UUID,
	application, realm string,
) ([]string, error) {
	key := userID.String() + "|" + rbacDomain.RealmKey(application, realm)
	m := memoFrom(ctx)
	if perms, ok := m.get(key); ok {
		return perms, nil
	}

	r, err := a.applicationRepo.GetRealmByName(ctx, application, realm)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			m.put(key, []string{})
			return []string{}, nil
		}
		return nil, err
	}

	groupIDs, err := a.groupRepo.ListGroupIDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	roleIDs, err := a.assignmentRepo.ListRoleIDs(ctx, r.ID, userID, groupIDs)
	if err != nil {
		return nil, err
	}

	perms, err := a.permissionNames(ctx, roleIDs)
	if err != nil {
		return nil, err
	}

	m.put(key, perms)
	return perms, nil
}

func (a *authorizationUseCase) PermissionsByRealm(ctx context.Context, userID uuid.UUID) (map[string][]string, error) {
	groupIDs, err := a.groupRepo.ListGroupIDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	grants, err := a.assignmentRepo.ListGrants(ctx, userID, groupIDs)
	if err != nil {
		return nil, err
	}

	rolesByRealm := make(map[string][]uuid.UUID)
	for _, g := range grants {
		key := rbacDomain.RealmKey(g.Application, g.Realm)
		if !slices.Contains(rolesByRealm[key], g.RoleID) {
			rolesByRealm[key] = append(rolesByRealm[key], g.RoleID)
		}
	}

	result := make(map[string][]string, len(rolesByRealm))
	for key, roleIDs := range rolesByRealm {
		perms, err := a.permissionNames(ctx, roleIDs)
		if err != nil {
			return nil, err
		}
		result[key] = perms
	}
	return result, nil
}

// permissionNames returns the sorted, distinct permission names of roleIDs.
func (a *authorizationUseCase) permissionNames(ctx context.Context, roleIDs []uuid.UUID) ([]string, error) {
	if len(roleIDs) == 0 {
		return []string{}, nil
	}

	names, err := a.roleRepo.ListPermissionNames(ctx, roleIDs)
	if err != nil {
		return nil, err
	}

	perms := slices.Clone(names)
	slices.Sort(perms)
	return slices.Compact(perms), nil
}

// NewAuthorizationUseCase creates an AuthorizationUseCase.
func NewAuthorizationUseCase(
	applicationRepo ApplicationRepository,
	groupRepo GroupRepository,
	assignmentRepo AssignmentRepository,
	roleRepo RoleRepository,
) AuthorizationUseCase {
	return &authorizationUseCase{
		applicationRepo: applicationRepo,
		groupRepo:       groupRepo,
		assignmentRepo:  assignmentRepo,
		roleRepo:        roleRepo,
	}
}
