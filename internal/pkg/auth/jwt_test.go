package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/portfoliohub/internal/app/models"
	"github.com/yigit/portfoliohub/internal/pkg/apperrors"
)

func newTestService(secret string) *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:      secret,
		AccessTokenExp: time.Hour,
		TokenIssuer:    "portfoliohub-test",
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestService("secret")

	token, expiresAt, err := svc.GenerateToken("s1", models.RoleStudent)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "s1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.Equal(t, "portfoliohub-test", claims.Issuer)
}

func TestGenerateToken_RejectsUnknownRole(t *testing.T) {
	svc := newTestService("secret")

	_, _, err := svc.GenerateToken("s1", models.RoleType("JANITOR"))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, _, err = svc.GenerateToken("", models.RoleAdmin)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := newTestService("secret")
	issued := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issued }

	token, _, err := svc.GenerateToken("f1", models.RoleFaculty)
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestValidateToken_Invalid(t *testing.T) {
	token, _, err := newTestService("secret").GenerateToken("a1", models.RoleAdmin)
	require.NoError(t, err)

	_, err = newTestService("other").ValidateToken(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	_, err = newTestService("secret").ValidateToken("")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	_, err = newTestService("secret").ValidateToken("a.b.c")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc.def", "abc.def"},
		{`"Bearer abc.def"`, "abc.def"},
		{"abc.def", "abc.def"},
		{"  Bearer   abc  ", "abc"},
	}
	for _, tt := range tests {
		got, err := ExtractBearerToken(tt.header)
		require.NoError(t, err, tt.header)
		assert.Equal(t, tt.want, got, tt.header)
	}

	_, err := ExtractBearerToken("  ")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}
