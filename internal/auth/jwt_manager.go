package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Role is the caller type carried in the user_type claim.
type Role string

const (
	RoleUser    Role = "user"
	RoleManager Role = "manager"
	RoleCompany Role = "company"
)

// ParseRole validates a role tag.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleUser, RoleManager, RoleCompany:
		return r, nil
	}
	return "", fmt.Errorf("invalid role %q", s)
}

// Claims is the decoded identity of a caller. It is never persisted.
type Claims struct {
	Subject   uuid.UUID
	Role      Role
	ExpiresAt time.Time // zero when the token has no exp claim
}

type tokenClaims struct {
	UserType string `json:"user_type"`
	jwt.RegisteredClaims
}

// JWTManager signs and verifies HS256 bearer tokens with a shared secret.
type JWTManager struct {
	secret        []byte
	tokenDuration time.Duration
	parser        *jwt.Parser
	now           func() time.Time
}

// NewJWTManager returns a manager for secret. Tokens it generates expire
// after tokenDuration; zero means no exp claim.
func NewJWTManager(secret string, tokenDuration time.Duration) *JWTManager {
	return &JWTManager{
		secret:        []byte(secret),
		tokenDuration: tokenDuration,
		parser:        jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
		now:           time.Now,
	}
}

// GenerateToken signs a token for subject with the given role.
func (m *JWTManager) GenerateToken(subject uuid.UUID, role Role) (string, error) {
	now := m.now()
	claims := tokenClaims{
		UserType: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  subject.String(),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if m.tokenDuration > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.tokenDuration))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies a raw token and returns its claims.
func (m *JWTManager) ValidateToken(raw string) (*Claims, error) {
	var tc tokenClaims
	token, err := m.parser.ParseWithClaims(raw, &tc, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	subject, err := uuid.Parse(tc.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject: %w", err)
	}

	claims := &Claims{Subject: subject, Role: Role(tc.UserType)}
	if tc.ExpiresAt != nil {
		claims.ExpiresAt = tc.ExpiresAt.Time
	}
	return claims, nil
}

// DecodeHeader decodes an Authorization header value. A "Bearer " scheme
// prefix is optional. Missing or invalid credentials yield (nil, false).
func (m *JWTManager) DecodeHeader(header string) (*Claims, bool) {
	raw := strings.TrimSpace(header)
	if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
		raw = strings.TrimSpace(raw[7:])
	}
	if raw == "" {
		return nil, false
	}

	claims, err := m.ValidateToken(raw)
	if err != nil {
		return nil, false
	}
	return claims, true
}
