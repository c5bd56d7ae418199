package controllers

import (
	"errors"

	"campus/backend/config"
	"campus/backend/models"
	"campus/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UserController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewUserController(db *gorm.DB, cfg *config.Config) *UserController {
	return &UserController{DB: db, Cfg: cfg}
}

func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	p, err := utils.CurrentPrincipal(c, uc.Cfg)
	if err != nil {
		return err
	}

	var user models.User
	if err := uc.DB.First(&user, p.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, "", fiber.Map{
		"user": user,
	})
}

func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	p, err := utils.CurrentPrincipal(c, uc.Cfg)
	if err != nil {
		return err
	}

	var input struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
	}
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}

	var user models.User
	if err := uc.DB.First(&user, p.ID).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not query database")
	}

	if input.Username != nil && *input.Username != "" {
		user.Username = *input.Username
	}
	if input.Email != nil && *input.Email != "" {
		user.Email = *input.Email
	}

	if err := uc.DB.Save(&user).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not update user")
	}

	return utils.Success(c, fiber.StatusOK, "Profile updated", fiber.Map{
		"user": user,
	})
}
