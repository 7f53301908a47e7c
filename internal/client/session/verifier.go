// Package session verifies HS256 session tokens issued by the front end's
// own auth service. It is the alternative to Firebase ID tokens.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/GregMSThompson/patient-payments/internal/dto"
)

const provider = "jwt"

// Claims is the payload of a session token. The subject is the uid.
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New("session secret is empty")
	}
	return &Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}, nil
}

func (v *Verifier) Verify(_ context.Context, token string) (dto.Identity, error) {
	claims := new(Claims)
	_, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return dto.Identity{}, fmt.Errorf("failed to parse token: %w", err)
	}
	if claims.Subject == "" {
		return dto.Identity{}, errors.New("token has no subject")
	}
	return dto.Identity{
		UID:         claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
		Provider:    provider,
	}, nil
}

// Sign issues a token for uid. The migrate command and tests use it.
func (v *Verifier) Sign(uid, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
