// Package auth models the bearer credential handed to the engine by the
// platform's auth provider. The engine never acquires or verifies tokens; it
// only checks that a usable credential is present before calling the
// dataplane, and inspects expiry to localize failures early.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credentials is a bearer-capable credential supplied by an external auth
// provider.
type Credentials struct {
	AccessToken string    `json:"accessToken" yaml:"accessToken"`
	TokenType   string    `json:"tokenType,omitempty" yaml:"tokenType,omitempty"`
	ExpiresAt   time.Time `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
}

var errNoToken = errors.New("credentials carry no access token")

// Bearer returns the access token, or an error when the credential cannot be
// used for bearer authentication.
func (c *Credentials) Bearer() (string, error) {
	if c == nil || c.AccessToken == "" {
		return "", errNoToken
	}
	return c.AccessToken, nil
}

// ExpiresBefore reports whether the credential is known to expire before t.
// When ExpiresAt is unset and the token parses as a JWT, the unverified exp
// claim is consulted; signature verification stays with the auth server.
// Tokens with no discoverable expiry report false.
func (c *Credentials) ExpiresBefore(t time.Time) bool {
	if c == nil || c.AccessToken == "" {
		return false
	}
	if !c.ExpiresAt.IsZero() {
		return c.ExpiresAt.Before(t)
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.AccessToken, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(t)
}
