package server

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/AHMED-techNOP/01BLOG/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, userID uint, issuer, audience string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": issuer,
		"aud": audience,
		"exp": time.Now().Add(ttl).Unix(),
		"jti": "test-jti-" + strconv.FormatUint(uint64(userID), 10),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	str, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return str
}

func TestServer_AuthRequired(t *testing.T) {
	s, db := newTestServer(t)
	user := createTestUser(t, db, "auth_user", models.RoleUser)

	app := fiber.New()
	app.Get("/protected", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userID": c.Locals("userID")})
	})

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{
			name:           "valid token",
			authHeader:     "Bearer " + signToken(t, user.ID, tokenIssuer, tokenAudience, time.Hour),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "malformed header",
			authHeader:     "Bearer",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "garbage token",
			authHeader:     "Bearer not-a-jwt",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrong issuer",
			authHeader:     "Bearer " + signToken(t, user.ID, "other-api", tokenAudience, time.Hour),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrong audience",
			authHeader:     "Bearer " + signToken(t, user.ID, tokenIssuer, "other-client", time.Hour),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "expired token",
			authHeader:     "Bearer " + signToken(t, user.ID, tokenIssuer, tokenAudience, -time.Hour),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "unknown account",
			authHeader:     "Bearer " + signToken(t, 9999, tokenIssuer, tokenAudience, time.Hour),
			expectedStatus: http.StatusUnauthorized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestServer_AuthRequired_BannedAccount(t *testing.T) {
	s, db := newTestServer(t)
	banned := createTestUser(t, db, "banned_user", models.RoleUser)
	require.NoError(t, db.Model(banned).Update("is_banned", true).Error)

	app := fiber.New()
	app.Get("/protected", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, banned.ID, tokenIssuer, tokenAudience, time.Hour))
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestServer_AdminRequired(t *testing.T) {
	s, db := newTestServer(t)
	admin := createTestUser(t, db, "admin_user", models.RoleAdmin)
	regular := createTestUser(t, db, "regular_user", models.RoleUser)

	app := fiber.New()
	app.Get("/admin-only", s.AuthRequired(), s.AdminRequired(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	t.Run("admin passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, admin.ID, tokenIssuer, tokenAudience, time.Hour))
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("regular user rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, regular.ID, tokenIssuer, tokenAudience, time.Hour))
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}
