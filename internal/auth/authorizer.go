package auth

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Authorizer decides whether a posting user holds moderator privilege.
// Exactly one moderator identity is recognized; any other username yields
// false regardless of the supplied secret.
type Authorizer struct {
	moderator string
	secret    string
}

// NewAuthorizer builds an authorizer for the configured moderator identity.
// The secret may be given either as plaintext or as a bcrypt hash (detected
// by the "$2" prefix).
func NewAuthorizer(moderator, secret string) *Authorizer {
	return &Authorizer{moderator: moderator, secret: secret}
}

// Authorize returns true iff claimedUser matches the moderator name
// case-insensitively and suppliedSecret matches the configured secret.
// Empty inputs and an unconfigured moderator always yield false.
func (a *Authorizer) Authorize(claimedUser, suppliedSecret string) bool {
	if a == nil || a.moderator == "" || a.secret == "" {
		return false
	}
	if claimedUser == "" || suppliedSecret == "" {
		return false
	}
	if !strings.EqualFold(claimedUser, a.moderator) {
		return false
	}

	if strings.HasPrefix(a.secret, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(a.secret), []byte(suppliedSecret)) == nil
	}
	return suppliedSecret == a.secret
}

// HashSecret generates a bcrypt hash suitable for the moderator_secret
// config value.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
