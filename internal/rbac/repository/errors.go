// Package repository implements PostgreSQL persistence for the directory.
//
// Uniqueness and referential integrity are enforced by the schema; constraint violations are
// translated to domain errors so a failed write never leaves partial state behind.
package repository

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/bouncr/iam/internal/database"
	apperrors "github.com/bouncr/iam/internal/errors"
	rbacDomain "github.com/bouncr/iam/internal/rbac/domain"
)

// writeError maps constraint violations to conflict and reference errors.
func writeError(err error, conflict error, message string) error {
	switch {
	case database.IsUniqueViolation(err):
		return conflict
	case database.IsForeignKeyViolation(err):
		return rbacDomain.ErrReferenceNotFound
	default:
		return apperrors.Wrap(err, message)
	}
}

// affected returns notFound when result touched no rows.
func affected(result sql.Result, notFound error, message string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, message)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func uuidArray(ids []uuid.UUID) any {
	values := make([]string, len(ids))
	for i, id := range ids {
		values[i] = id.String()
	}
	return pq.Array(values)
}
