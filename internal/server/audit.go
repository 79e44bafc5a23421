package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

const (
	defaultAuditPageSize = 50
	maxAuditPageSize     = 100
)

// listAuditLogs returns the most recent audit entries for an organization.
// Only owners may read the trail.
func (s *Server) listAuditLogs(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	orgID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	owner, err := s.organizationSvc.IsOwner(c.Request.Context(), orgID, caller.Sub)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !owner {
		AbortWithError(c, ErrForbidden)
		return
	}

	limit := defaultAuditPageSize
	if parsed, err := parseOptionalInt(c.Query("limit")); err == nil && parsed != nil && *parsed > 0 {
		limit = *parsed
	}
	if limit > maxAuditPageSize {
		limit = maxAuditPageSize
	}

	logs, err := s.auditSvc.List(c.Request.Context(), orgID, limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
