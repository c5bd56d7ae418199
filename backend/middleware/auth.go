package middleware

import (
	"campus/backend/config"
	"campus/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware rejects requests without a valid principal token.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := utils.CurrentPrincipal(c, cfg); err != nil {
			return err
		}
		return c.Next()
	}
}
