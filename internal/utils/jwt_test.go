package utils

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJWTManager_RejectsEmptySecret(t *testing.T) {
	_, err := NewJWTManager("", time.Hour)
	require.Error(t, err)
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m, err := NewJWTManager("secret", 24*time.Hour)
	require.NoError(t, err)

	token, err := m.Generate(7, "admin@toys.com", "ADMIN")
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
	assert.Equal(t, "admin@toys.com", claims.Email)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestJWTManager_Expired(t *testing.T) {
	m, err := NewJWTManager("secret", time.Hour)
	require.NoError(t, err)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := m.Generate(1, "a@b.c", "ADMIN")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Validate(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTManager_WrongSecret(t *testing.T) {
	signer, _ := NewJWTManager("secret-a", time.Hour)
	verifier, _ := NewJWTManager("secret-b", time.Hour)

	token, err := signer.Generate(1, "a@b.c", "ADMIN")
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestJWTManager_Tampered(t *testing.T) {
	m, _ := NewJWTManager("secret", time.Hour)
	token, err := m.Generate(1, "a@b.c", "CUSTOMER")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	escalated := strings.Replace(string(payload), `"role":"CUSTOMER"`, `"role":"ADMIN"`, 1)
	require.NotEqual(t, string(payload), escalated)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(escalated))

	_, err = m.Validate(strings.Join(parts, "."))
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestJWTManager_RejectsNoneAlgorithm(t *testing.T) {
	m, _ := NewJWTManager("secret", time.Hour)
	claims := AdminClaims{
		UserID: 1,
		Role:   "ADMIN",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.Validate(unsigned)
	assert.Error(t, err)
}
