package controllers

import (
	"errors"
	"strconv"

	"campus/backend/config"
	"campus/backend/models"
	"campus/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ViewerContext is the resolved access state used to gate every
// downstream decision for one request.
type ViewerContext struct {
	Principal          *utils.Principal
	CanManage          bool
	EnrollmentApproved bool
	Enrollment         *models.Enrollment
}

// IsManagerFor reports whether the principal has authority over the
// course: either globally elevated, or its creator holding a
// manager-eligible role.
func IsManagerFor(p *utils.Principal, course *models.Course) bool {
	if p == nil {
		return false
	}
	if p.Role.Elevated() {
		return true
	}
	return course.CreatorID == p.ID && p.Role.ManagerEligible()
}

// EvaluateAccess resolves the viewer context for a (course, principal)
// pair. A nil principal yields the anonymous context.
func EvaluateAccess(db *gorm.DB, course *models.Course, p *utils.Principal) (*ViewerContext, error) {
	vc := &ViewerContext{Principal: p}
	if p == nil {
		return vc, nil
	}

	vc.CanManage = IsManagerFor(p, course)

	var enrollment models.Enrollment
	err := db.Where("user_id = ? AND course_id = ?", p.ID, course.ID).First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return vc, nil
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Could not query database")
	}

	vc.Enrollment = &enrollment
	vc.EnrollmentApproved = enrollment.Status == models.EnrollmentApproved
	return vc, nil
}

// loadCourse parses the :id route param and loads the course.
func loadCourse(db *gorm.DB, c *fiber.Ctx) (*models.Course, error) {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid course ID")
	}

	var course models.Course
	if err := db.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Course not found")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Could not query database")
	}
	return &course, nil
}

// requireManager resolves the course from the route and rejects callers
// without manage rights.
func requireManager(db *gorm.DB, cfg *config.Config, c *fiber.Ctx) (*models.Course, *ViewerContext, error) {
	p, err := utils.CurrentPrincipal(c, cfg)
	if err != nil {
		return nil, nil, err
	}

	course, err := loadCourse(db, c)
	if err != nil {
		return nil, nil, err
	}

	vc, err := EvaluateAccess(db, course, p)
	if err != nil {
		return nil, nil, err
	}
	if !vc.CanManage {
		return nil, nil, fiber.NewError(fiber.StatusForbidden, "You don't have permission to manage this course")
	}
	return course, vc, nil
}

// requireParticipant admits managers and approved enrollees.
func requireParticipant(db *gorm.DB, cfg *config.Config, c *fiber.Ctx) (*models.Course, *ViewerContext, error) {
	p, err := utils.CurrentPrincipal(c, cfg)
	if err != nil {
		return nil, nil, err
	}

	course, err := loadCourse(db, c)
	if err != nil {
		return nil, nil, err
	}

	vc, err := EvaluateAccess(db, course, p)
	if err != nil {
		return nil, nil, err
	}
	if !vc.CanManage && !vc.EnrollmentApproved {
		return nil, nil, fiber.NewError(fiber.StatusForbidden, "You don't have access to this course")
	}
	return course, vc, nil
}
