// Package http exposes the administration API for users, groups, applications, realms, roles,
// permissions and assignments, together with the permission check endpoint.
package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bouncr/iam/internal/httputil"
)

// parseUUIDParam reads the named path parameter as a UUID and answers 400 when it is not one.
func parseUUIDParam(c *gin.Context, name string, logger *slog.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, logger)
		return uuid.Nil, false
	}
	return id, true
}
