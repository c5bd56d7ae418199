package controllers

import (
	"time"

	"campus/backend/config"
	"campus/backend/models"
	"campus/backend/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type MaterialsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewMaterialsController(db *gorm.DB, cfg *config.Config) *MaterialsController {
	return &MaterialsController{DB: db, Cfg: cfg}
}

func (mc *MaterialsController) CreateMaterial(c *fiber.Ctx) error {
	course, vc, err := requireManager(mc.DB, mc.Cfg, c)
	if err != nil {
		return err
	}

	var input struct {
		Title         string `json:"title" validate:"required,min=1"`
		Description   string `json:"description"`
		VisibleTo     string `json:"visible_to"`
		ContentURL    string `json:"content_url"`
		ContentType   string `json:"content_type"`
		AttachmentURL string `json:"attachment_url"`
	}
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if err := validator.New().Struct(input); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	visibleTo := models.Visibility(input.VisibleTo)
	if input.VisibleTo == "" {
		visibleTo = models.VisibilityPublic
	}
	if !visibleTo.Valid() {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Invalid visibility tier")
	}

	material := models.CourseMaterial{
		CourseID:      course.ID,
		Title:         input.Title,
		Description:   input.Description,
		VisibleTo:     visibleTo,
		ContentURL:    input.ContentURL,
		ContentType:   input.ContentType,
		AttachmentURL: input.AttachmentURL,
	}
	if err := mc.DB.Create(&material).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not create material")
	}

	workspace, err := BuildWorkspace(mc.DB, course, vc, time.Now())
	if err != nil {
		return err
	}

	return utils.Success(c, fiber.StatusCreated, "Material created", fiber.Map{
		"material":  material,
		"workspace": workspace,
	})
}

func (mc *MaterialsController) DeleteMaterial(c *fiber.Ctx) error {
	course, _, err := requireManager(mc.DB, mc.Cfg, c)
	if err != nil {
		return err
	}

	return deleteScoped(mc.DB, c, course.ID, "materialId", &models.CourseMaterial{}, "Material")
}
