package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	m := NewJWTManager("test-secret", "relocation-backend")

	token, err := m.Sign("u-1", true, time.Minute)
	require.NoError(t, err)

	claims, err := m.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.True(t, claims.Superuser)
}

func TestVerifyExpiredToken(t *testing.T) {
	m := NewJWTManager("test-secret", "relocation-backend")

	token, err := m.Sign("u-1", true, -time.Minute)
	require.NoError(t, err)

	_, err = m.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	m := NewJWTManager("test-secret", "relocation-backend")
	other := NewJWTManager("other-secret", "relocation-backend")

	token, err := m.Sign("u-1", true, time.Minute)
	require.NoError(t, err)

	_, err = other.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWrongIssuer(t *testing.T) {
	m := NewJWTManager("test-secret", "relocation-backend")
	other := NewJWTManager("test-secret", "someone-else")

	token, err := other.Sign("u-1", true, time.Minute)
	require.NoError(t, err)

	_, err = m.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractTokenFromHeader(t *testing.T) {
	token, err := ExtractTokenFromHeader("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	token, err = ExtractTokenFromHeader("bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	for _, header := range []string{"", "Bearer", "Bearer ", "Basic abc", "abc.def.ghi"} {
		_, err := ExtractTokenFromHeader(header)
		assert.ErrorIs(t, err, ErrInvalidAuthHeader, "header %q", header)
	}
}
