package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "secret_key"

func signRaw(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager(testSecret, time.Hour)
	subject := uuid.New()

	token, err := m.GenerateToken(subject, RoleManager)
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, subject, claims.Subject)
	assert.Equal(t, RoleManager, claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, time.Minute)
}

func TestJWTManager_DecodeHeader(t *testing.T) {
	m := NewJWTManager(testSecret, 0)
	subject := uuid.New()
	token, err := m.GenerateToken(subject, RoleUser)
	require.NoError(t, err)

	t.Run("raw token", func(t *testing.T) {
		claims, ok := m.DecodeHeader(token)
		require.True(t, ok)
		assert.Equal(t, subject, claims.Subject)
		assert.True(t, claims.ExpiresAt.IsZero())
	})

	t.Run("bearer prefix", func(t *testing.T) {
		claims, ok := m.DecodeHeader("Bearer " + token)
		require.True(t, ok)
		assert.Equal(t, RoleUser, claims.Role)
	})

	t.Run("lowercase scheme", func(t *testing.T) {
		_, ok := m.DecodeHeader("bearer " + token)
		assert.True(t, ok)
	})

	t.Run("absent", func(t *testing.T) {
		claims, ok := m.DecodeHeader("")
		assert.False(t, ok)
		assert.Nil(t, claims)

		_, ok = m.DecodeHeader("Bearer ")
		assert.False(t, ok)
	})

	t.Run("garbage", func(t *testing.T) {
		_, ok := m.DecodeHeader("Bearer not.a.jwt")
		assert.False(t, ok)
	})
}

func TestJWTManager_RejectsForeignTokens(t *testing.T) {
	m := NewJWTManager(testSecret, 0)
	subject := uuid.New().String()

	tests := []struct {
		name  string
		token string
	}{
		{
			name: "wrong secret",
			token: signRaw(t, jwt.SigningMethodHS256, []byte("other"), tokenClaims{
				UserType:         "manager",
				RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
			}),
		},
		{
			name: "wrong algorithm",
			token: signRaw(t, jwt.SigningMethodHS384, []byte(testSecret), tokenClaims{
				UserType:         "manager",
				RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
			}),
		},
		{
			name: "unsigned",
			token: signRaw(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, tokenClaims{
				UserType:         "manager",
				RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
			}),
		},
		{
			name: "expired",
			token: signRaw(t, jwt.SigningMethodHS256, []byte(testSecret), tokenClaims{
				UserType: "manager",
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   subject,
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
				},
			}),
		},
		{
			name: "subject is not a uuid",
			token: signRaw(t, jwt.SigningMethodHS256, []byte(testSecret), tokenClaims{
				UserType:         "manager",
				RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"},
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, ok := m.DecodeHeader("Bearer " + tt.token)
			assert.False(t, ok)
			assert.Nil(t, claims)
		})
	}
}

func TestJWTManager_AcceptsTokensWithoutExpiry(t *testing.T) {
	// Tokens minted by the legacy issuer carry only sub and user_type.
	m := NewJWTManager(testSecret, 0)
	subject := uuid.New()
	token := signRaw(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub":       subject.String(),
		"user_type": "company",
	})

	claims, ok := m.DecodeHeader(token)
	require.True(t, ok)
	assert.Equal(t, RoleCompany, claims.Role)
	assert.Equal(t, subject, claims.Subject)
}

func TestParseRole(t *testing.T) {
	for _, r := range []string{"user", "manager", "company"} {
		got, err := ParseRole(r)
		require.NoError(t, err)
		assert.Equal(t, Role(r), got)
	}
	_, err := ParseRole("admin")
	assert.Error(t, err)
}
