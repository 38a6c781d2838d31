// Package identity holds the collaborator boundaries the messaging core
// depends on: resolving a bearer token to a stable user identity, and
// looking up display names. Session issuance and user management live
// in the main platform, outside this service.
package identity

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MavisVermie/TBR3-sub000/pkg/apperrors"
)

// TokenVerifier resolves a bearer token to a user identifier.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

var ErrInvalidToken = apperrors.Unauthorized("invalid or expired token")

// JWTVerifier validates HS256 tokens minted by the platform's auth
// service and extracts the subject claim.
type JWTVerifier struct {
	secret []byte
}

var _ TokenVerifier = (*JWTVerifier)(nil)

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
