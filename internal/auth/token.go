package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ModeratorClaims are the JWT claims carried by a moderator token.
type ModeratorClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenConfig holds signing parameters for moderator tokens.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
}

// MintModeratorToken creates a signed token asserting moderator privilege
// for the given username. Used only when the server does not trust the
// client-asserted moderator flag.
func MintModeratorToken(cfg *TokenConfig, username string) (string, error) {
	now := time.Now()
	claims := ModeratorClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(cfg.Secret)
}

// ValidateModeratorToken parses and validates a moderator token, returning
// the username it was minted for.
func ValidateModeratorToken(cfg *TokenConfig, tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ModeratorClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return cfg.Secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*ModeratorClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}

	return claims.Username, nil
}
