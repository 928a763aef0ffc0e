package auth

import (
	"testing"
	"time"

	"creepycorners/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-with-enough-length-1234"

func TestIssueThenVerify(t *testing.T) {
	m := NewTokenManager(testSecret, 0)

	token, issued, err := m.Issue(42, "alice@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, DefaultTTL, issued.ExpiresAt.Sub(issued.IssuedAt))

	id, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id.UserID)
	assert.Equal(t, "alice@example.com", id.Email)
	assert.Equal(t, issued.TokenID, id.TokenID)
}

func TestVerifyFailures(t *testing.T) {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m := NewTokenManager(testSecret, time.Hour).WithClock(func() time.Time { return base })
	valid, _, err := m.Issue(7, "bob@example.com")
	require.NoError(t, err)

	forge := func(method jwt.SigningMethod, key any, claims jwt.Claims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	goodClaims := func() Claims {
		return Claims{
			Email: "x@example.com",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "7",
				Issuer:    Issuer,
				Audience:  jwt.ClaimStrings{Audience},
				IssuedAt:  jwt.NewNumericDate(base),
				ExpiresAt: jwt.NewNumericDate(base.Add(time.Hour)),
			},
		}
	}

	wrongIssuer := goodClaims()
	wrongIssuer.Issuer = "someone-else"
	badSubject := goodClaims()
	badSubject.Subject = "not-a-number"
	noExpiry := goodClaims()
	noExpiry.ExpiresAt = nil

	tests := []struct {
		name     string
		token    string
		verifier *TokenManager
		code     string
	}{
		{"missing", "", m, models.CodeMissingToken},
		{"garbage", "not.a.jwt", m, models.CodeInvalidToken},
		{"wrong secret", valid, NewTokenManager("another-secret", time.Hour).WithClock(func() time.Time { return base }), models.CodeInvalidToken},
		{"expired", valid, NewTokenManager(testSecret, time.Hour).WithClock(func() time.Time { return base.Add(2 * time.Hour) }), models.CodeInvalidToken},
		{"none algorithm", forge(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, goodClaims()), m, models.CodeInvalidToken},
		{"HS512 rejected", forge(jwt.SigningMethodHS512, []byte(testSecret), goodClaims()), m, models.CodeInvalidToken},
		{"wrong issuer", forge(jwt.SigningMethodHS256, []byte(testSecret), wrongIssuer), m, models.CodeInvalidToken},
		{"bad subject", forge(jwt.SigningMethodHS256, []byte(testSecret), badSubject), m, models.CodeInvalidToken},
		{"no expiry", forge(jwt.SigningMethodHS256, []byte(testSecret), noExpiry), m, models.CodeInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.verifier.Verify(tt.token)
			require.Error(t, err)
			assert.True(t, models.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestIssueRequiresSecret(t *testing.T) {
	_, _, err := NewTokenManager("", time.Hour).Issue(1, "a@example.com")
	assert.Error(t, err)
}
