package middleware

import (
	"strings"

	"github.com/amirasaad/accounts/pkg/config"
	"github.com/amirasaad/accounts/webapi/common"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

// JwtProtected requires an HS256 bearer token signed with cfg.Secret.
// With no secret configured every request passes through.
func JwtProtected(cfg *config.Jwt) fiber.Handler {
	if cfg == nil || cfg.Secret == "" {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return jwtware.New(jwtware.Config{
		SigningKey:   jwtware.SigningKey{Key: []byte(cfg.Secret)},
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if strings.EqualFold(err.Error(), jwtware.ErrJWTMissingOrMalformed.Error()) {
		return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Bad Request", "Missing or malformed JWT")
	}
	return common.ErrorResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", "Invalid or expired JWT")
}
