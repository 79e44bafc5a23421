package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/orgboard/orgboard/internal/identity"
	orgdomain "github.com/orgboard/orgboard/internal/organization/domain"
)

const principalContextKey = "auth_principal"

// AuthRequired validates the bearer token and stores the resolved principal
// on the request context. Token failures answer 401; a token that verifies
// but carries no usable subject or lacks the required scope answers 403.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		rawToken, ok := bearerToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		principal, err := s.verifier.Verify(rawToken)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(principalContextKey, principal)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

func callerFromContext(c *gin.Context) (orgdomain.Caller, bool) {
	value, ok := c.Get(principalContextKey)
	if !ok {
		return orgdomain.Caller{}, false
	}
	principal, ok := value.(identity.Principal)
	if !ok || principal.Subject == "" {
		return orgdomain.Caller{}, false
	}
	return orgdomain.Caller{Sub: principal.Subject, Name: principal.Name}, true
}
