package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/bouncr/iam/internal/errors"
	rbacDomain "github.com/bouncr/iam/internal/rbac/domain"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestPostgreSQLUserRepository_Create(t *testing.T) {
	ctx := context.Background()
	user := rbacDomain.NewUser(&rbacDomain.CreateUserInput{Account: "alice", Email: "alice@example.com", Name: "Alice"})

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("INSERT INTO users").
			WithArgs(user.ID, "alice", "alice@example.com", "Alice", false, false, user.CreatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := NewPostgreSQLUserRepository(db).Create(ctx, user)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_DuplicateAccount", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("INSERT INTO users").WillReturnError(&pq.Error{Code: "23505"})

		err := NewPostgreSQLUserRepository(db).Create(ctx, user)

		assert.ErrorIs(t, err, rbacDomain.ErrAccountAlreadyExists)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})
}

func TestPostgreSQLUserRepository_GetByAccount(t *testing.T) {
	ctx := context.Background()
	columns := []string{"id", "account", "email", "name", "profile_verified", "write_protected", "created_at"}

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		id := uuid.New()
		now := time.Now().UTC()
		mock.ExpectQuery("SELECT (.+) FROM users WHERE account = \\$1").
			WithArgs("alice").
			WillReturnRows(sqlmock.NewRows(columns).AddRow(id.String(), "alice", "alice@example.com", "Alice", true, false, now))

		user, err := NewPostgreSQLUserRepository(db).GetByAccount(ctx, "alice")

		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.True(t, user.ProfileVerified)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery("SELECT (.+) FROM users WHERE account").
			WithArgs("bob").
			WillReturnRows(sqlmock.NewRows(columns))

		_, err := NewPostgreSQLUserRepository(db).GetByAccount(ctx, "bob")

		assert.ErrorIs(t, err, rbacDomain.ErrUserNotFound)
	})
}

func TestPostgreSQLUserRepository_Delete(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("Success_RevokesAssignments", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("DELETE FROM assignments WHERE subject_type = 'user'(.+)DELETE FROM users").
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewPostgreSQLUserRepository(db).Delete(ctx, id))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("DELETE FROM users").WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewPostgreSQLUserRepository(db).Delete(ctx, id)

		assert.ErrorIs(t, err, rbacDomain.ErrUserNotFound)
	})
}

func TestPostgreSQLGroupRepository_ListGroupIDsByUser(t *testing.T) {
	db, mock := newMockDB(t)
	userID, g1, g2 := uuid.New(), uuid.New(), uuid.New()
	mock.ExpectQuery("SELECT group_id FROM group_users WHERE user_id = \\$1").
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"group_id"}).AddRow(g1.String()).AddRow(g2.String()))

	ids, err := NewPostgreSQLGroupRepository(db).ListGroupIDsByUser(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{g1, g2}, ids)
}

func TestPostgreSQLApplicationRepository_CreateRealm(t *testing.T) {
	ctx := context.Background()
	realm := &rbacDomain.Realm{ID: uuid.New(), ApplicationID: uuid.New(), Name: "prod", CreatedAt: time.Now()}

	t.Run("Error_DuplicateNameInApplication", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("INSERT INTO realms").WillReturnError(&pq.Error{Code: "23505"})

		err := NewPostgreSQLApplicationRepository(db).CreateRealm(ctx, realm)

		assert.ErrorIs(t, err, rbacDomain.ErrRealmAlreadyExists)
	})

	t.Run("Error_UnknownApplication", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("INSERT INTO realms").WillReturnError(&pq.Error{Code: "23503"})

		err := NewPostgreSQLApplicationRepository(db).CreateRealm(ctx, realm)

		assert.ErrorIs(t, err, rbacDomain.ErrReferenceNotFound)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestPostgreSQLApplicationRepository_GetRealmByName(t *testing.T) {
	db, mock := newMockDB(t)
	realmID, appID := uuid.New(), uuid.New()
	mock.ExpectQuery("FROM realms r(.+)JOIN applications a(.+)WHERE a.name = \\$1 AND r.name = \\$2").
		WithArgs("billing-app", "prod").
		WillReturnRows(sqlmock.NewRows([]string{"id", "application_id", "name", "description", "url", "created_at"}).
			AddRow(realmID.String(), appID.String(), "prod", "", "/.*", time.Now()))

	realm, err := NewPostgreSQLApplicationRepository(db).GetRealmByName(context.Background(), "billing-app", "prod")

	require.NoError(t, err)
	assert.Equal(t, realmID, realm.ID)
	assert.Equal(t, appID, realm.ApplicationID)
}

func TestPostgreSQLRoleRepository_ListPermissionNames(t *testing.T) {
	db, mock := newMockDB(t)
	r1, r2 := uuid.New(), uuid.New()
	mock.ExpectQuery("SELECT DISTINCT p.name(.+)rp.role_id = ANY\\(\\$1::uuid\\[\\]\\)").
		WithArgs(pq.Array([]string{r1.String(), r2.String()})).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("invoice:read").AddRow("invoice:list"))

	names, err := NewPostgreSQLRoleRepository(db).ListPermissionNames(context.Background(), []uuid.UUID{r1, r2})

	require.NoError(t, err)
	assert.Equal(t, []string{"invoice:read", "invoice:list"}, names)
}

func TestPostgreSQLAssignmentRepository_Create(t *testing.T) {
	ctx := context.Background()
	a := rbacDomain.NewAssignment(rbacDomain.SubjectGroup, uuid.New(), uuid.New(), uuid.New())

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("INSERT INTO assignments").
			WithArgs(a.ID, "group", a.SubjectID, a.RoleID, a.RealmID, a.CreatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewPostgreSQLAssignmentRepository(db).Create(ctx, a))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_Duplicate", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("INSERT INTO assignments").WillReturnError(&pq.Error{Code: "23505"})

		err := NewPostgreSQLAssignmentRepository(db).Create(ctx, a)

		assert.ErrorIs(t, err, rbacDomain.ErrAssignmentAlreadyExists)
	})
}

func TestPostgreSQLAssignmentRepository_ListRoleIDs(t *testing.T) {
	db, mock := newMockDB(t)
	realmID, userID, groupID, roleID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	mock.ExpectQuery("SELECT DISTINCT s.role_id FROM assignments s WHERE s.realm_id = \\$1").
		WithArgs(realmID, userID, pq.Array([]string{groupID.String()})).
		WillReturnRows(sqlmock.NewRows([]string{"role_id"}).AddRow(roleID.String()))

	ids, err := NewPostgreSQLAssignmentRepository(db).ListRoleIDs(context.Background(), realmID, userID, []uuid.UUID{groupID})

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{roleID}, ids)
}

func TestPostgreSQLAssignmentRepository_ListGrants(t *testing.T) {
	db, mock := newMockDB(t)
	userID, roleID := uuid.New(), uuid.New()
	mock.ExpectQuery("SELECT a.name, r.name, s.role_id").
		WithArgs(userID, pq.Array([]string{})).
		WillReturnRows(sqlmock.NewRows([]string{"a.name", "r.name", "role_id"}).AddRow("billing-app", "prod", roleID.String()))

	grants, err := NewPostgreSQLAssignmentRepository(db).ListGrants(context.Background(), userID, nil)

	require.NoError(t, err)
	assert.Equal(t, []rbacDomain.Grant{{Application: "billing-app", Realm: "prod", RoleID: roleID}}, grants)
}
