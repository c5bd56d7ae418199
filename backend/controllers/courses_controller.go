package controllers

import (
	"errors"
	"strconv"
	"time"

	"campus/backend/config"
	"campus/backend/models"
	"campus/backend/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CoursesController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewCoursesController(db *gorm.DB, cfg *config.Config) *CoursesController {
	return &CoursesController{DB: db, Cfg: cfg}
}

// GetCourse returns the workspace payload. The viewer is optional;
// anonymous callers get the public-tier view.
func (cc *CoursesController) GetCourse(c *fiber.Ctx) error {
	p, err := utils.OptionalPrincipal(c, cc.Cfg)
	if err != nil {
		return err
	}

	course, err := loadCourse(cc.DB, c)
	if err != nil {
		return err
	}

	vc, err := EvaluateAccess(cc.DB, course, p)
	if err != nil {
		return err
	}

	// Unpublished courses exist only for their managers.
	if !course.IsPublished && !vc.CanManage {
		return fiber.NewError(fiber.StatusNotFound, "Course not found")
	}

	workspace, err := BuildWorkspace(cc.DB, course, vc, time.Now())
	if err != nil {
		return err
	}

	return utils.Success(c, fiber.StatusOK, "", workspace)
}

func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	p, err := utils.CurrentPrincipal(c, cc.Cfg)
	if err != nil {
		return err
	}
	if !p.Role.ManagerEligible() {
		return fiber.NewError(fiber.StatusForbidden, "Your role cannot create courses")
	}

	var input struct {
		Title       string   `json:"title" validate:"required,min=1"`
		Summary     string   `json:"summary"`
		Description string   `json:"description"`
		Tags        []string `json:"tags"`
	}
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if err := validator.New().Struct(input); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	course := models.Course{
		CreatorID:   p.ID,
		Title:       input.Title,
		Summary:     input.Summary,
		Description: input.Description,
		JoinCode:    utils.GenerateJoinCode(),
		Tags:        models.NormalizeTags(input.Tags).ToJSON(),
	}
	if err := cc.DB.Create(&course).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not create course")
	}

	return utils.Success(c, fiber.StatusCreated, "Course created", fiber.Map{
		"course":    course,
		"join_code": course.JoinCode,
	})
}

func (cc *CoursesController) UpdateCourse(c *fiber.Ctx) error {
	course, vc, err := requireManager(cc.DB, cc.Cfg, c)
	if err != nil {
		return err
	}

	var input struct {
		Title       *string   `json:"title"`
		Summary     *string   `json:"summary"`
		Description *string   `json:"description"`
		IsPublished *bool     `json:"is_published"`
		Tags        *[]string `json:"tags"`
	}
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}

	if input.Title != nil {
		if *input.Title == "" {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "Title cannot be empty")
		}
		course.Title = *input.Title
	}
	if input.Summary != nil {
		course.Summary = *input.Summary
	}
	if input.Description != nil {
		course.Description = *input.Description
	}
	if input.IsPublished != nil {
		course.IsPublished = *input.IsPublished
	}
	if input.Tags != nil {
		course.Tags = models.NormalizeTags(*input.Tags).ToJSON()
	}

	if err := cc.DB.Save(course).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not update course")
	}

	workspace, err := BuildWorkspace(cc.DB, course, vc, time.Now())
	if err != nil {
		return err
	}

	return utils.Success(c, fiber.StatusOK, "Course updated", fiber.Map{
		"workspace": workspace,
	})
}

// DeleteCourse removes the course and everything scoped to it.
func (cc *CoursesController) DeleteCourse(c *fiber.Ctx) error {
	course, _, err := requireManager(cc.DB, cc.Cfg, c)
	if err != nil {
		return err
	}

	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		scoped := []interface{}{
			&models.Lesson{},
			&models.EnrollmentQuestion{},
			&models.CourseSession{},
			&models.CourseMeetingLink{},
			&models.CourseMaterial{},
			&models.CourseAssignment{},
			&models.CourseSubmission{},
			&models.CourseMessage{},
			&models.Enrollment{},
		}
		for _, model := range scoped {
			if err := tx.Where("course_id = ?", course.ID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(course).Error
	})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not delete course")
	}

	return utils.Success(c, fiber.StatusOK, "Course deleted", nil)
}

func (cc *CoursesController) AddLesson(c *fiber.Ctx) error {
	course, vc, err := requireManager(cc.DB, cc.Cfg, c)
	if err != nil {
		return err
	}

	var input struct {
		Title       string `json:"title" validate:"required,min=1"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if err := validator.New().Struct(input); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	var count int64
	cc.DB.Model(&models.Lesson{}).Where("course_id = ?", course.ID).Count(&count)

	lesson := models.Lesson{
		CourseID:    course.ID,
		Title:       input.Title,
		Description: input.Description,
		Position:    int(count) + 1,
	}
	if err := cc.DB.Create(&lesson).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not create lesson")
	}

	workspace, err := BuildWorkspace(cc.DB, course, vc, time.Now())
	if err != nil {
		return err
	}

	return utils.Success(c, fiber.StatusCreated, "Lesson added", fiber.Map{
		"lesson":    lesson,
		"workspace": workspace,
	})
}

func (cc *CoursesController) DeleteLesson(c *fiber.Ctx) error {
	course, _, err := requireManager(cc.DB, cc.Cfg, c)
	if err != nil {
		return err
	}
	return deleteScoped(cc.DB, c, course.ID, "lessonId", &models.Lesson{}, "Lesson")
}

func (cc *CoursesController) AddQuestion(c *fiber.Ctx) error {
	course, vc, err := requireManager(cc.DB, cc.Cfg, c)
	if err != nil {
		return err
	}

	var input struct {
		Prompt string `json:"prompt" validate:"required,min=1"`
	}
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if err := validator.New().Struct(input); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	var count int64
	cc.DB.Model(&models.EnrollmentQuestion{}).Where("course_id = ?", course.ID).Count(&count)

	question := models.EnrollmentQuestion{
		CourseID: course.ID,
		Prompt:   input.Prompt,
		Position: int(count) + 1,
	}
	if err := cc.DB.Create(&question).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not create question")
	}

	workspace, err := BuildWorkspace(cc.DB, course, vc, time.Now())
	if err != nil {
		return err
	}

	return utils.Success(c, fiber.StatusCreated, "Question added", fiber.Map{
		"question":  question,
		"workspace": workspace,
	})
}

func (cc *CoursesController) DeleteQuestion(c *fiber.Ctx) error {
	course, _, err := requireManager(cc.DB, cc.Cfg, c)
	if err != nil {
		return err
	}
	return deleteScoped(cc.DB, c, course.ID, "questionId", &models.EnrollmentQuestion{}, "Question")
}

// deleteScoped removes one course-scoped record addressed by a route
// param, 404ing when it belongs to another course.
func deleteScoped(db *gorm.DB, c *fiber.Ctx, courseID uint, param string, model interface{}, label string) error {
	id, err := strconv.Atoi(c.Params(param))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid "+label+" ID")
	}

	result := db.Where("id = ? AND course_id = ?", id, courseID).Delete(model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, label+" not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Could not delete "+label)
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, label+" not found")
	}

	return utils.Success(c, fiber.StatusOK, label+" deleted", nil)
}
