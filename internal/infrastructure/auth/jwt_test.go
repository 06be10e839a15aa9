package auth

import (
	"testing"
	"time"

	"github.com/facultymis/backend/internal/domain/report"
	"github.com/facultymis/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "test-issuer",
	})
}

func TestGenerateAccessToken(t *testing.T) {
	svc := newTestJWTService()

	t.Run("hod token round-trips into a caller", func(t *testing.T) {
		tok, err := svc.GenerateAccessToken(GenerateTokenInput{UserID: "u-1", Username: "hod.cse", Role: "HOD", Department: " CSE "})
		require.NoError(t, err)
		assert.Equal(t, "Bearer", tok.TokenType)
		assert.True(t, tok.ExpiresAt.After(time.Now()))

		claims, err := svc.ValidateAccessToken(tok.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "hod", claims.Role)
		assert.Equal(t, "CSE", claims.Department)
		assert.Equal(t, report.Caller{UserID: "u-1", Role: report.RoleHOD, Department: "CSE"}, claims.Caller())
		assert.Greater(t, claims.GetRemainingTTL(), 14*time.Minute)
	})

	t.Run("principal needs no department and gets a generated user id", func(t *testing.T) {
		tok, err := svc.GenerateAccessToken(GenerateTokenInput{Role: "principal"})
		require.NoError(t, err)
		claims, err := svc.ValidateAccessToken(tok.AccessToken)
		require.NoError(t, err)
		assert.NotEmpty(t, claims.UserID)
		assert.True(t, claims.Caller().Role.CanChooseUnits())
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		_, err := svc.GenerateAccessToken(GenerateTokenInput{Role: "janitor"})
		assert.ErrorIs(t, err, ErrUnknownRole)
	})

	t.Run("faculty without department rejected", func(t *testing.T) {
		_, err := svc.GenerateAccessToken(GenerateTokenInput{Role: "faculty"})
		assert.ErrorIs(t, err, ErrMissingDept)
	})
}

func TestValidateAccessToken(t *testing.T) {
	svc := newTestJWTService()

	sign := func(t *testing.T, claims *Claims, secret string) string {
		t.Helper()
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}
	base := func() *Claims {
		now := time.Now()
		return &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "test-issuer",
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
				IssuedAt:  jwt.NewNumericDate(now),
			},
			UserID:    "u-1",
			Role:      "admin",
			TokenType: TokenTypeAccess,
		}
	}

	t.Run("expired", func(t *testing.T) {
		c := base()
		c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		_, err := svc.ValidateAccessToken(sign(t, c, "test-secret-key-at-least-32-chars"))
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("not yet valid", func(t *testing.T) {
		c := base()
		c.NotBefore = jwt.NewNumericDate(time.Now().Add(time.Hour))
		_, err := svc.ValidateAccessToken(sign(t, c, "test-secret-key-at-least-32-chars"))
		assert.ErrorIs(t, err, ErrTokenNotYetValid)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := svc.ValidateAccessToken(sign(t, base(), "another-secret-key-of-32-characters"))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		c := base()
		c.Issuer = "someone-else"
		_, err := svc.ValidateAccessToken(sign(t, c, "test-secret-key-at-least-32-chars"))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong token type", func(t *testing.T) {
		c := base()
		c.TokenType = "refresh"
		_, err := svc.ValidateAccessToken(sign(t, c, "test-secret-key-at-least-32-chars"))
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})

	t.Run("missing user id", func(t *testing.T) {
		c := base()
		c.UserID = ""
		_, err := svc.ValidateAccessToken(sign(t, c, "test-secret-key-at-least-32-chars"))
		assert.ErrorIs(t, err, ErrMissingUserID)
	})

	t.Run("unknown role", func(t *testing.T) {
		c := base()
		c.Role = "visitor"
		_, err := svc.ValidateAccessToken(sign(t, c, "test-secret-key-at-least-32-chars"))
		assert.ErrorIs(t, err, ErrUnknownRole)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
