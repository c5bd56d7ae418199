package utils

import (
	"campus/backend/config"
	"campus/backend/models"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// Principal is the verified identity behind a request.
type Principal struct {
	ID   uint
	Role models.Role
}

func GenerateJWTToken(userID uint, role models.Role, cfg *config.Config) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    string(role),
		"exp":     time.Now().Add(time.Hour * 72).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// CurrentPrincipal parses the Authorization token. Endpoints that allow
// anonymous viewers call OptionalPrincipal instead.
func CurrentPrincipal(c *fiber.Ctx, cfg *config.Config) (*Principal, error) {
	tokenString := c.Get("Authorization")
	if tokenString == "" {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Missing authorization token")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid user ID in token")
	}

	roleString, _ := claims["role"].(string)
	role, ok := models.ParseRole(roleString)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid role in token")
	}

	return &Principal{ID: uint(userIDFloat), Role: role}, nil
}

// OptionalPrincipal resolves the caller when a token is present and
// returns nil for anonymous requests. A malformed token is still an error.
func OptionalPrincipal(c *fiber.Ctx, cfg *config.Config) (*Principal, error) {
	if c.Get("Authorization") == "" {
		return nil, nil
	}
	return CurrentPrincipal(c, cfg)
}
