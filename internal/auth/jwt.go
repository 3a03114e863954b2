package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"axis.io/contentops/internal/config"
)

const (
	tokenIssuer     = "contentops"
	defaultTokenTTL = 24 * time.Hour
)

var ErrNoSubject = errors.New("token has no subject")

// Claims identifies an API user. The subject is the user's external id.
type Claims struct {
	jwt.RegisteredClaims
}

func tokenTTL() time.Duration {
	if ttl := config.AppConfig.TokenTTL; ttl > 0 {
		return ttl
	}
	return defaultTokenTTL
}

// IssueToken signs an HS256 token for userID with the configured secret and
// lifetime.
func IssueToken(userID string) (string, error) {
	if userID == "" {
		return "", ErrNoSubject
	}
	now := time.Now()
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL())),
	}}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(config.AppConfig.JWTSecret))
}

// VerifyToken checks the signature, issuer and expiry of tokenString and
// returns the user id it was issued for.
func VerifyToken(tokenString string) (string, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(*jwt.Token) (any, error) {
			return []byte(config.AppConfig.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	if claims.Subject == "" {
		return "", ErrNoSubject
	}
	return claims.Subject, nil
}
