package v1

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/duynhne/quizcards-service/internal/core/domain"
)

// sessionClaims is the signed token payload: the user id and role plus the
// token's own validity window.
type sessionClaims struct {
	UID  string      `json:"uid"`
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenProjector signs and verifies HS256 session tokens.
type TokenProjector struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption customizes a TokenProjector.
type TokenOption func(*TokenProjector)

// WithTokenClock overrides the clock used to check expiry.
func WithTokenClock(now func() time.Time) TokenOption {
	return func(p *TokenProjector) { p.now = now }
}

func NewTokenProjector(secret []byte, ttl time.Duration, opts ...TokenOption) *TokenProjector {
	p := &TokenProjector{secret: secret, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// TTL is the validity window of every token issued.
func (p *TokenProjector) TTL() time.Duration {
	return p.ttl
}

// Encode signs a token for userID and role issued at issuedAt. It returns the
// token and its expiry.
func (p *TokenProjector) Encode(userID string, role domain.Role, issuedAt time.Time) (string, time.Time, error) {
	if userID == "" || !role.Valid() {
		return "", time.Time{}, fmt.Errorf("encode token: %w", ErrValidation)
	}

	expiresAt := issuedAt.Add(p.ttl).Truncate(time.Second)
	claims := sessionClaims{
		UID:  userID,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Decode verifies signature and expiry and returns the identity the token
// proves. Every failure wraps ErrUnauthenticated.
func (p *TokenProjector) Decode(token string) (*domain.Identity, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return p.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("token expired: %w", ErrUnauthenticated)
		}
		return nil, fmt.Errorf("parse token: %v: %w", err, ErrUnauthenticated)
	}

	if claims.UID == "" || !claims.Role.Valid() {
		return nil, fmt.Errorf("token claims incomplete: %w", ErrUnauthenticated)
	}

	return &domain.Identity{
		UserID:    claims.UID,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
