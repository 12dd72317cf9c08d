package exports

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const linkIssuer = "meal-planner/exports"

var ErrInvalidLink = errors.New("invalid or expired download link")

// LinkSigner issues short-lived HS256 tokens for local downloads.
type LinkSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewLinkSigner(secret string, ttlSeconds int) *LinkSigner {
	if ttlSeconds <= 0 {
		ttlSeconds = 900
	}
	return &LinkSigner{
		secret: []byte(secret),
		ttl:    time.Duration(ttlSeconds) * time.Second,
		now:    time.Now,
	}
}

// Sign returns a token granting access to one export.
func (s *LinkSigner) Sign(exportID uuid.UUID) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   exportID.String(),
		Issuer:    linkIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks that token is valid, unexpired and issued for exportID.
func (s *LinkSigner) Verify(token string, exportID uuid.UUID) error {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(linkIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return ErrInvalidLink
	}

	if claims.Subject != exportID.String() {
		return ErrInvalidLink
	}
	return nil
}
