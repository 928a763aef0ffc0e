// Package auth issues and verifies session tokens.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"creepycorners/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	Issuer   = "creepycorners-api"
	Audience = "creepycorners-client"

	DefaultTTL = 24 * time.Hour
)

// Identity is the caller a verified token speaks for.
type Identity struct {
	UserID    uint
	Email     string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Claims is the JWT payload of a session token.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 session tokens with a shared secret.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager returns a manager issuing tokens valid for ttl (24h when ttl <= 0).
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock replaces the time source; used by tests.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	m.now = now
	return m
}

// TTL is the validity window of issued tokens.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token for the given user.
func (m *TokenManager) Issue(userID uint, email string) (string, Identity, error) {
	if len(m.secret) == 0 {
		return "", Identity{}, errors.New("JWT secret not configured")
	}

	now := m.now()
	id := Identity{
		UserID:    userID,
		Email:     email,
		TokenID:   fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8]),
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(id.ExpiresAt),
			ID:        id.TokenID,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", Identity{}, err
	}
	return signed, id, nil
}

// Verify checks signature, algorithm, issuer, audience and expiry, then
// returns the identity the token asserts. It performs no I/O.
func (m *TokenManager) Verify(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, models.NewMissingTokenError()
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return Identity{}, models.NewInvalidTokenError(err)
	}
	if !token.Valid {
		return Identity{}, models.NewInvalidTokenError(errors.New("token is not valid"))
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || userID == 0 {
		return Identity{}, models.NewInvalidTokenError(fmt.Errorf("invalid subject %q", claims.Subject))
	}

	id := Identity{
		UserID:  uint(userID),
		Email:   claims.Email,
		TokenID: claims.ID,
	}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}
