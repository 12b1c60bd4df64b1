package auth

import (
	"context"
	"errors"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for missing, expired, or unparseable tokens
// and for tokens that carry no email identity.
var ErrInvalidToken = errors.New("invalid token")

// Verifier checks externally-issued bearer tokens and yields the verified
// account email. Token issuance is not this service's concern.
type Verifier struct {
	secret []byte
}

func NewVerifier() *Verifier {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "supersecretmvp"
	}
	return &Verifier{secret: []byte(secret)}
}

type claims struct {
	jwt.RegisteredClaims
	PrimaryEmail string `json:"primary_email,omitempty"`
	Email        string `json:"email,omitempty"`
}

// VerifyToken validates the token signature and expiry and returns the
// verified email. The identity provider puts the email in primary_email or
// email; the subject is the fallback.
func (v *Verifier) VerifyToken(_ context.Context, token string) (string, error) {
	tok, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return "", errors.Join(ErrInvalidToken, err)
	}
	c, ok := tok.Claims.(*claims)
	if !ok || !tok.Valid {
		return "", ErrInvalidToken
	}
	switch {
	case c.PrimaryEmail != "":
		return c.PrimaryEmail, nil
	case c.Email != "":
		return c.Email, nil
	case c.Subject != "":
		return c.Subject, nil
	}
	return "", errors.Join(ErrInvalidToken, errors.New("email not found in token"))
}
