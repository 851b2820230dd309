package sessions

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers tampered, expired and malformed cookies.
var ErrInvalidToken = errors.New("sessions: invalid token")

const tokenIssuer = "clinic-portal"

// TokenSigner issues and verifies the HS256 session cookie. The token carries
// only the record id.
type TokenSigner struct {
	secret []byte
	now    func() time.Time
}

// NewTokenSigner requires a non-empty secret.
func NewTokenSigner(secret string) (*TokenSigner, error) {
	if secret == "" {
		return nil, errors.New("sessions: signing secret required")
	}
	return &TokenSigner{secret: []byte(secret), now: time.Now}, nil
}

// Sign returns a token referring to sessionID that expires at expiresAt.
func (s *TokenSigner) Sign(sessionID string, expiresAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(s.now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sessions: sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies a token and returns the session id it refers to.
func (s *TokenSigner) Parse(token string) (string, error) {
	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ID == "" {
		return "", fmt.Errorf("%w: missing session id", ErrInvalidToken)
	}
	return claims.ID, nil
}
