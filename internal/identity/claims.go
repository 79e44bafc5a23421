// Package identity validates bearer tokens from the external identity
// provider and maps their claims onto a caller principal.
package identity

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// LegacySubjectClaim is the WS-Federation name-identifier claim URI emitted by
// older provider tenants in place of the plain "sub" claim.
const LegacySubjectClaim = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier"

// Claim URIs vary across identity-provider versions; each logical field is an
// ordered candidate list consulted first-match-wins.
var (
	subjectClaimKeys = []string{"sub", LegacySubjectClaim, "nameid"}
	nameClaimKeys    = []string{"name", "preferred_username"}
)

// Principal is the resolved caller identity.
type Principal struct {
	Subject string
	Name    string
}

// PrincipalFromClaims resolves the caller's subject and display name. The
// second return value is false when no candidate subject claim is present;
// such callers are rejected upstream.
func PrincipalFromClaims(claims jwt.MapClaims) (Principal, bool) {
	subject := firstStringClaim(claims, subjectClaimKeys)
	if subject == "" {
		return Principal{}, false
	}
	return Principal{
		Subject: subject,
		Name:    firstStringClaim(claims, nameClaimKeys),
	}, true
}

// ScopesFromClaims collects the caller's granted scopes from the
// space-separated "scp" claim and the "roles" array claim.
func ScopesFromClaims(claims jwt.MapClaims) []string {
	var scopes []string

	if raw, ok := claims["scp"].(string); ok {
		for _, scope := range strings.Fields(raw) {
			scopes = append(scopes, scope)
		}
	}

	if raw, ok := claims["roles"].([]any); ok {
		for _, entry := range raw {
			if scope, ok := entry.(string); ok && strings.TrimSpace(scope) != "" {
				scopes = append(scopes, strings.TrimSpace(scope))
			}
		}
	}

	return scopes
}

// HasScope reports whether the required scope was granted.
func HasScope(scopes []string, required string) bool {
	for _, scope := range scopes {
		if scope == required {
			return true
		}
	}
	return false
}

func firstStringClaim(claims jwt.MapClaims, keys []string) string {
	for _, key := range keys {
		if value, ok := claims[key].(string); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}
