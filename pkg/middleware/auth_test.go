package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirasaad/accounts/pkg/config"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func protectedApp(cfg *config.Jwt) *fiber.App {
	app := fiber.New()
	app.Use(JwtProtected(cfg))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	return app
}

func signedToken(t *testing.T, secret string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "operator",
		"exp": exp.Unix(),
	})
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func do(t *testing.T, app *fiber.App, token string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	return resp.StatusCode
}

func TestJwtProtected_Disabled(t *testing.T) {
	assert.Equal(t, fiber.StatusOK, do(t, protectedApp(nil), ""))
	assert.Equal(t, fiber.StatusOK, do(t, protectedApp(&config.Jwt{}), ""))
}

func TestJwtProtected_MissingToken(t *testing.T) {
	app := protectedApp(&config.Jwt{Secret: testSecret})
	assert.Equal(t, fiber.StatusBadRequest, do(t, app, ""))
}

func TestJwtProtected_ValidToken(t *testing.T) {
	app := protectedApp(&config.Jwt{Secret: testSecret})
	token := signedToken(t, testSecret, time.Now().Add(time.Hour))
	assert.Equal(t, fiber.StatusOK, do(t, app, token))
}

func TestJwtProtected_WrongSecret(t *testing.T) {
	app := protectedApp(&config.Jwt{Secret: testSecret})
	token := signedToken(t, "other", time.Now().Add(time.Hour))
	assert.Equal(t, fiber.StatusUnauthorized, do(t, app, token))
}

func TestJwtProtected_Expired(t *testing.T) {
	app := protectedApp(&config.Jwt{Secret: testSecret})
	token := signedToken(t, testSecret, time.Now().Add(-time.Hour))
	assert.Equal(t, fiber.StatusUnauthorized, do(t, app, token))
}

func TestJwtError_Malformed(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		return jwtError(c, errors.New("Missing or malformed JWT"))
	})
	assert.Equal(t, fiber.StatusBadRequest, do(t, app, ""))
}

func TestJwtError_Invalid(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		return jwtError(c, errors.New("any other error"))
	})
	assert.Equal(t, fiber.StatusUnauthorized, do(t, app, ""))
}
