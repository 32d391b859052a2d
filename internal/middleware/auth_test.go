package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurascan/receipt-scan/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour}
}

func signToken(t *testing.T, secret string, expiresAt time.Time) string {
	t.Helper()
	claims := &JWTClaims{
		UserID:   42,
		Username: "test",
		Email:    "test@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func protectedApp(cfg *config.Config) *fiber.App {
	app := fiber.New()
	app.Get("/protected", AuthRequired(cfg), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":  GetUserID(c),
			"username": GetUsername(c),
			"email":    GetUserEmail(c),
		})
	})
	return app
}

func TestAuthRequired(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"no bearer prefix", "Token abc", fiber.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", fiber.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, "other-secret", time.Now().Add(time.Hour)), fiber.StatusUnauthorized},
		{"expired token", "Bearer " + signToken(t, cfg.JWTSecret, time.Now().Add(-time.Hour)), fiber.StatusUnauthorized},
		{"valid token", "Bearer " + signToken(t, cfg.JWTSecret, time.Now().Add(time.Hour)), fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := protectedApp(cfg)
			req := httptest.NewRequest("GET", "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestContextHelpersWithoutAuth(t *testing.T) {
	app := fiber.New()
	app.Get("/open", func(c *fiber.Ctx) error {
		assert.Equal(t, 0, GetUserID(c))
		assert.Equal(t, "", GetUsername(c))
		assert.Equal(t, "", GetUserEmail(c))
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/open", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
