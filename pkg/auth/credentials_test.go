package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestBearer(t *testing.T) {
	creds := &Credentials{AccessToken: "abc123"}
	token, err := creds.Bearer()
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)
}

func TestBearer_MissingToken(t *testing.T) {
	_, err := (&Credentials{}).Bearer()
	assert.Error(t, err)

	var nilCreds *Credentials
	_, err = nilCreds.Bearer()
	assert.Error(t, err)
}

func TestExpiresBefore_ExplicitExpiry(t *testing.T) {
	now := time.Now()

	past := &Credentials{AccessToken: "tok", ExpiresAt: now.Add(-time.Hour)}
	assert.True(t, past.ExpiresBefore(now))

	future := &Credentials{AccessToken: "tok", ExpiresAt: now.Add(time.Hour)}
	assert.False(t, future.ExpiresBefore(now))
}

func TestExpiresBefore_JWTExpClaim(t *testing.T) {
	now := time.Now()

	expired := &Credentials{AccessToken: signedToken(t, jwt.MapClaims{
		"sub": "integrator",
		"exp": now.Add(-time.Minute).Unix(),
	})}
	assert.True(t, expired.ExpiresBefore(now))

	live := &Credentials{AccessToken: signedToken(t, jwt.MapClaims{
		"sub": "integrator",
		"exp": now.Add(time.Hour).Unix(),
	})}
	assert.False(t, live.ExpiresBefore(now))
}

func TestExpiresBefore_NoDiscoverableExpiry(t *testing.T) {
	now := time.Now()

	// Opaque token: not a JWT at all.
	opaque := &Credentials{AccessToken: "opaque-api-key"}
	assert.False(t, opaque.ExpiresBefore(now))

	// JWT without an exp claim.
	noExp := &Credentials{AccessToken: signedToken(t, jwt.MapClaims{"sub": "integrator"})}
	assert.False(t, noExp.ExpiresBefore(now))
}
