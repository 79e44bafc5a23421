package identity

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/orgboard/orgboard/internal/config"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token has expired")
	ErrMissingSubject = errors.New("token has no resolvable subject")
	ErrMissingScope   = errors.New("token lacks the required scope")
)

// Verifier validates bearer tokens against the configured issuer, audience
// and signing secret, and gates access on a fixed required scope.
type Verifier struct {
	secret        []byte
	requiredScope string
	parseOptions  []jwt.ParserOption
}

func NewVerifier(cfg config.Config) *Verifier {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Auth.Issuer != "" {
		options = append(options, jwt.WithIssuer(cfg.Auth.Issuer))
	}
	if cfg.Auth.Audience != "" {
		options = append(options, jwt.WithAudience(cfg.Auth.Audience))
	}

	return &Verifier{
		secret:        []byte(cfg.Auth.Secret),
		requiredScope: cfg.Auth.RequiredScope,
		parseOptions:  options,
	}
}

// Verify parses and validates a raw bearer token and resolves the caller
// principal. Scope and subject failures are distinct from token failures so
// the transport can answer 403 rather than 401.
func (v *Verifier) Verify(rawToken string) (Principal, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(rawToken, claims, v.keyFunc, v.parseOptions...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, ErrExpiredToken
		}
		return Principal{}, ErrInvalidToken
	}
	if !token.Valid {
		return Principal{}, ErrInvalidToken
	}

	if v.requiredScope != "" && !HasScope(ScopesFromClaims(claims), v.requiredScope) {
		return Principal{}, ErrMissingScope
	}

	principal, ok := PrincipalFromClaims(claims)
	if !ok {
		return Principal{}, ErrMissingSubject
	}
	return principal, nil
}

func (v *Verifier) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, ErrInvalidToken
	}
	return v.secret, nil
}
