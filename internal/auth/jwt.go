package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"animeverse/pkg/models"
	"animeverse/pkg/utils"
)

// TokenTTL matches the session lifetime so both credentials expire together.
const TokenTTL = 7 * 24 * time.Hour

type TokenService struct {
	Secret   []byte
	Issuer   string
	Duration time.Duration
}

// Claims is the token payload. IsAdmin is deliberately `any`: tokens minted
// by older deployments carry the flag as the string "true"/"false", and the
// accessor below normalizes whatever shows up.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  any    `json:"is_admin"`
	jwt.RegisteredClaims
}

// Admin reports the normalized privilege flag carried by the token.
func (c *Claims) Admin() bool {
	return utils.NormalizeBool(c.IsAdmin)
}

func (ts TokenService) Sign(u *models.User) (string, time.Time, error) {
	exp := time.Now().Add(ts.Duration)

	claims := Claims{
		UserID:   u.ID,
		Username: u.Username,
		IsAdmin:  u.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.Issuer,
			Subject:   u.ID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(ts.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return s, exp, nil
}

func (ts TokenService) Parse(tokenString string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		// enforce HS256
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ts.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
