package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"animeverse/pkg/models"
)

func testTokens() TokenService {
	return TokenService{Secret: []byte("test-secret"), Issuer: "animeverse-test", Duration: time.Hour}
}

func TestTokenRoundTrip(t *testing.T) {
	ts := testTokens()
	u := &models.User{ID: "1", Username: "admin", IsAdmin: true}

	signed, exp, err := ts.Sign(u)
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := ts.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "1", claims.UserID)
	assert.Equal(t, "admin", claims.Username)
	assert.True(t, claims.Admin())
}

func TestTokenStringAdminClaim(t *testing.T) {
	// tokens from older deployments carry is_admin as a string; parsing
	// still works and the accessor normalizes it
	ts := testTokens()
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  "2",
		"is_admin": "true",
		"iss":      ts.Issuer,
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	signed, err := raw.SignedString(ts.Secret)
	require.NoError(t, err)

	claims, err := ts.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "2", claims.UserID)
	assert.True(t, claims.Admin())
}

func TestTokenAbsentAdminClaim(t *testing.T) {
	ts := testTokens()
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "3",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := raw.SignedString(ts.Secret)
	require.NoError(t, err)

	claims, err := ts.Parse(signed)
	require.NoError(t, err)
	assert.Nil(t, claims.IsAdmin)
	assert.False(t, claims.Admin())
}

func TestTokenTampered(t *testing.T) {
	ts := testTokens()
	u := &models.User{ID: "1", Username: "admin"}

	signed, _, err := ts.Sign(u)
	require.NoError(t, err)

	_, err = ts.Parse(signed + "x")
	assert.Error(t, err)

	other := TokenService{Secret: []byte("different"), Issuer: ts.Issuer, Duration: ts.Duration}
	_, err = other.Parse(signed)
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	ts := TokenService{Secret: []byte("test-secret"), Issuer: "animeverse-test", Duration: -time.Minute}
	u := &models.User{ID: "1", Username: "admin"}

	signed, _, err := ts.Sign(u)
	require.NoError(t, err)

	_, err = ts.Parse(signed)
	assert.Error(t, err)
}
