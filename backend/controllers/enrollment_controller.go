package controllers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"campus/backend/config"
	"campus/backend/models"
	"campus/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type EnrollmentController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewEnrollmentController(db *gorm.DB, cfg *config.Config) *EnrollmentController {
	return &EnrollmentController{DB: db, Cfg: cfg}
}

// Join-code outcomes reported back to the frontend.
const (
	codeStatusApproved = "APPROVED"
	codeStatusInvalid  = "INVALID"
)

type enrollInput struct {
	Answers  map[string]string `json:"answers"`
	JoinCode string            `json:"join_code"`
}

// cleanAnswers trims answers and drops empty ones.
func cleanAnswers(raw map[string]string) models.FormAnswers {
	answers := models.FormAnswers{}
	for questionID, answer := range raw {
		answer = strings.TrimSpace(answer)
		if questionID == "" || answer == "" {
			continue
		}
		answers[questionID] = answer
	}
	return answers
}

// SubmitEnrollment handles POST /courses/:id/enroll. A matching join
// code forces APPROVED; otherwise an existing record keeps its status
// and a new one starts PENDING.
func (ec *EnrollmentController) SubmitEnrollment(c *fiber.Ctx) error {
	p, err := utils.CurrentPrincipal(c, ec.Cfg)
	if err != nil {
		return err
	}
	if !p.Role.CanLearn() {
		return fiber.NewError(fiber.StatusForbidden, "Only learners can enroll")
	}

	course, err := loadCourse(ec.DB, c)
	if err != nil {
		return err
	}
	if !course.IsPublished {
		return fiber.NewError(fiber.StatusNotFound, "Course not found")
	}

	var input enrollInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}

	matched := input.JoinCode != "" && utils.JoinCodeMatches(input.JoinCode, course.JoinCode)

	var codeStatus interface{}
	if input.JoinCode != "" {
		codeStatus = codeStatusInvalid
		if matched {
			codeStatus = codeStatusApproved
		}
	}

	enrollment, err := ec.upsertEnrollment(course, p, cleanAnswers(input.Answers), matched)
	if err != nil {
		return err
	}

	vc, err := EvaluateAccess(ec.DB, course, p)
	if err != nil {
		return err
	}
	workspace, err := BuildWorkspace(ec.DB, course, vc, time.Now())
	if err != nil {
		return err
	}

	return utils.Success(c, fiber.StatusOK, "Enrollment submitted", fiber.Map{
		"enrollment":  enrollment,
		"code_status": codeStatus,
		"workspace":   workspace,
	})
}

// SubmitByJoinCode handles POST /courses/join-code, where the course is
// discovered by the code alone and a match is required.
func (ec *EnrollmentController) SubmitByJoinCode(c *fiber.Ctx) error {
	p, err := utils.CurrentPrincipal(c, ec.Cfg)
	if err != nil {
		return err
	}
	if !p.Role.CanLearn() {
		return fiber.NewError(fiber.StatusForbidden, "Only learners can enroll")
	}

	var input struct {
		Code    string            `json:"code"`
		Answers map[string]string `json:"answers"`
	}
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}

	code := utils.NormalizeJoinCode(input.Code)
	if len(code) != utils.JoinCodeLength {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Invalid join code")
	}

	var course models.Course
	err = ec.DB.Where("join_code = ? AND is_published = ?", code, true).First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Course not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Could not query database")
	}

	enrollment, err := ec.upsertEnrollment(&course, p, cleanAnswers(input.Answers), true)
	if err != nil {
		return err
	}

	vc, err := EvaluateAccess(ec.DB, &course, p)
	if err != nil {
		return err
	}
	workspace, err := BuildWorkspace(ec.DB, &course, vc, time.Now())
	if err != nil {
		return err
	}

	return utils.Success(c, fiber.StatusOK, "Enrollment approved", fiber.Map{
		"enrollment":  enrollment,
		"code_status": codeStatusApproved,
		"workspace":   workspace,
	})
}

// upsertEnrollment creates or updates the single (user, course) record.
// Two concurrent attempts race on the unique index; the loser's create
// degrades to an update.
func (ec *EnrollmentController) upsertEnrollment(course *models.Course, p *utils.Principal, answers models.FormAnswers, viaCode bool) (*models.Enrollment, error) {
	if !viaCode && len(answers) == 0 {
		return nil, fiber.NewError(fiber.StatusUnprocessableEntity, "Enrollment needs answers or a valid join code")
	}
	if viaCode && len(answers) == 0 {
		answers = models.FormAnswers{"join_code": "joined via code"}
	}

	apply := func(e *models.Enrollment) {
		e.SetAnswers(answers)
		e.JoinedViaCode = viaCode
		if viaCode {
			e.Status = models.EnrollmentApproved
		}
	}

	var enrollment models.Enrollment
	err := ec.DB.Where("user_id = ? AND course_id = ?", p.ID, course.ID).First(&enrollment).Error
	if err == nil {
		apply(&enrollment)
		if err := ec.DB.Save(&enrollment).Error; err != nil {
			return nil, fiber.NewError(fiber.StatusInternalServerError, "Could not update enrollment")
		}
		return &enrollment, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Could not query database")
	}

	enrollment = models.Enrollment{
		UserID:   p.ID,
		CourseID: course.ID,
		Status:   models.EnrollmentPending,
	}
	apply(&enrollment)

	if err := ec.DB.Create(&enrollment).Error; err != nil {
		// Lost the race on the unique (user, course) index.
		var existing models.Enrollment
		if err2 := ec.DB.Where("user_id = ? AND course_id = ?", p.ID, course.ID).First(&existing).Error; err2 != nil {
			return nil, fiber.NewError(fiber.StatusInternalServerError, "Could not create enrollment")
		}
		apply(&existing)
		if err2 := ec.DB.Save(&existing).Error; err2 != nil {
			return nil, fiber.NewError(fiber.StatusInternalServerError, "Could not update enrollment")
		}
		return &existing, nil
	}
	return &enrollment, nil
}

// ListEnrollments returns the manager-only roster.
func (ec *EnrollmentController) ListEnrollments(c *fiber.Ctx) error {
	course, _, err := requireManager(ec.DB, ec.Cfg, c)
	if err != nil {
		return err
	}

	roster, err := courseRoster(ec.DB, course.ID)
	if err != nil {
		return err
	}

	return utils.Success(c, fiber.StatusOK, "", fiber.Map{
		"enrollments": roster,
	})
}

// Decide handles PATCH /courses/:id/enrollments/:enrollmentId. Managers
// may move an enrollment between any two states; each transition is
// recorded in the audit table. The admin note is sticky: it only changes
// when a new value is supplied.
func (ec *EnrollmentController) Decide(c *fiber.Ctx) error {
	course, vc, err := requireManager(ec.DB, ec.Cfg, c)
	if err != nil {
		return err
	}

	enrollmentID, err := strconv.Atoi(c.Params("enrollmentId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid enrollment ID")
	}

	var enrollment models.Enrollment
	err = ec.DB.Where("id = ? AND course_id = ?", enrollmentID, course.ID).First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Enrollment not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Could not query database")
	}

	var input struct {
		Status    *string `json:"status"`
		AdminNote *string `json:"admin_note"`
	}
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}

	var audit *models.EnrollmentAudit
	if input.Status != nil {
		status := models.EnrollmentStatus(strings.ToUpper(strings.TrimSpace(*input.Status)))
		if !status.Valid() {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "Invalid enrollment status")
		}
		if status != enrollment.Status {
			audit = &models.EnrollmentAudit{
				EnrollmentID: enrollment.ID,
				ActorID:      vc.Principal.ID,
				FromStatus:   enrollment.Status,
				ToStatus:     status,
			}
		}
		enrollment.Status = status
	}
	if input.AdminNote != nil {
		enrollment.AdminNote = *input.AdminNote
	}

	// The audit row and the status it records persist together or not
	// at all.
	err = ec.DB.Transaction(func(tx *gorm.DB) error {
		if audit != nil {
			if err := tx.Create(audit).Error; err != nil {
				return err
			}
		}
		return tx.Save(&enrollment).Error
	})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not update enrollment")
	}

	workspace, err := BuildWorkspace(ec.DB, course, vc, time.Now())
	if err != nil {
		return err
	}

	return utils.Success(c, fiber.StatusOK, "Enrollment updated", fiber.Map{
		"enrollment": enrollment,
		"workspace":  workspace,
	})
}

// RegenerateJoinCode replaces the course join code. Existing enrollments
// are untouched.
func (ec *EnrollmentController) RegenerateJoinCode(c *fiber.Ctx) error {
	course, vc, err := requireManager(ec.DB, ec.Cfg, c)
	if err != nil {
		return err
	}

	course.JoinCode = utils.GenerateJoinCode()
	if err := ec.DB.Save(course).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not update course")
	}

	workspace, err := BuildWorkspace(ec.DB, course, vc, time.Now())
	if err != nil {
		return err
	}

	return utils.Success(c, fiber.StatusOK, "Join code regenerated", fiber.Map{
		"join_code": course.JoinCode,
		"workspace": workspace,
	})
}
