package controllers

import (
	"errors"
	"strings"
	"time"

	"campus/backend/config"
	"campus/backend/models"
	"campus/backend/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAuthController(db *gorm.DB, cfg *config.Config) *AuthController {
	return &AuthController{DB: db, Cfg: cfg}
}

func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}

	if input.Username == "" || input.Email == "" || input.Password == "" {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Username, email and password are required")
	}

	role := models.RoleStudent
	if input.Role != "" {
		parsed, ok := models.ParseRole(strings.ToLower(input.Role))
		if !ok {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "Unknown role")
		}
		// Platform admins are provisioned out of band.
		if parsed.Elevated() {
			return fiber.NewError(fiber.StatusForbidden, "Cannot self-register as admin")
		}
		role = parsed
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
	}

	user := models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}
	if err := ac.DB.Create(&user).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not create user")
	}

	token, err := utils.GenerateJWTToken(user.ID, user.Role, ac.Cfg)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not generate token")
	}

	return utils.Success(c, fiber.StatusOK, "Registered", fiber.Map{
		"token": token,
		"user":  user,
	})
}

func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}

	var user models.User
	if err := ac.DB.Where("username = ?", input.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid credentials")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Could not query database")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid credentials")
	}

	token, err := utils.GenerateJWTToken(user.ID, user.Role, ac.Cfg)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not generate token")
	}

	ac.DB.Create(&models.LoginHistory{
		UserID:    user.ID,
		LoginTime: time.Now(),
	})

	return utils.Success(c, fiber.StatusOK, "Logged in", fiber.Map{
		"token": token,
		"user":  user,
	})
}
