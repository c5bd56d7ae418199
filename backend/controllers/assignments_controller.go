package controllers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"campus/backend/config"
	"campus/backend/models"
	"campus/backend/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AssignmentsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAssignmentsController(db *gorm.DB, cfg *config.Config) *AssignmentsController {
	return &AssignmentsController{DB: db, Cfg: cfg}
}

func (ac *AssignmentsController) CreateAssignment(c *fiber.Ctx) error {
	course, vc, err := requireManager(ac.DB, ac.Cfg, c)
	if err != nil {
		return err
	}

	var input struct {
		Title        string     `json:"title" validate:"required,min=1"`
		Instructions string     `json:"instructions"`
		DueAt        *time.Time `json:"due_at"`
		Resources    []string   `json:"resources"`
		Attachments  []string   `json:"attachments"`
	}
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if err := validator.New().Struct(input); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	assignment := models.CourseAssignment{
		CourseID:     course.ID,
		Title:        input.Title,
		Instructions: input.Instructions,
		DueAt:        input.DueAt,
		Resources:    models.StringList(input.Resources).ToJSON(),
		Attachments:  models.StringList(input.Attachments).ToJSON(),
	}
	if err := ac.DB.Create(&assignment).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not create assignment")
	}

	workspace, err := BuildWorkspace(ac.DB, course, vc, time.Now())
	if err != nil {
		return err
	}

	return utils.Success(c, fiber.StatusCreated, "Assignment created", fiber.Map{
		"assignment": assignment,
		"workspace":  workspace,
	})
}

func (ac *AssignmentsController) UpdateAssignment(c *fiber.Ctx) error {
	course, vc, err := requireManager(ac.DB, ac.Cfg, c)
	if err != nil {
		return err
	}

	assignment, err := ac.loadAssignment(c, course.ID)
	if err != nil {
		return err
	}

	var input struct {
		Title        *string    `json:"title"`
		Instructions *string    `json:"instructions"`
		DueAt        *time.Time `json:"due_at"`
		ClearDueAt   bool       `json:"clear_due_at"`
		Resources    *[]string  `json:"resources"`
		Attachments  *[]string  `json:"attachments"`
	}
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}

	if input.Title != nil {
		if *input.Title == "" {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "Title cannot be empty")
		}
		assignment.Title = *input.Title
	}
	if input.Instructions != nil {
		assignment.Instructions = *input.Instructions
	}
	if input.DueAt != nil {
		assignment.DueAt = input.DueAt
	}
	if input.ClearDueAt {
		assignment.DueAt = nil
	}
	if input.Resources != nil {
		assignment.Resources = models.StringList(*input.Resources).ToJSON()
	}
	if input.Attachments != nil {
		assignment.Attachments = models.StringList(*input.Attachments).ToJSON()
	}

	if err := ac.DB.Save(assignment).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not update assignment")
	}

	workspace, err := BuildWorkspace(ac.DB, course, vc, time.Now())
	if err != nil {
		return err
	}

	return utils.Success(c, fiber.StatusOK, "Assignment updated", fiber.Map{
		"assignment": assignment,
		"workspace":  workspace,
	})
}

func (ac *AssignmentsController) DeleteAssignment(c *fiber.Ctx) error {
	course, _, err := requireManager(ac.DB, ac.Cfg, c)
	if err != nil {
		return err
	}

	assignment, err := ac.loadAssignment(c, course.ID)
	if err != nil {
		return err
	}

	err = ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assignment_id = ?", assignment.ID).Delete(&models.CourseSubmission{}).Error; err != nil {
			return err
		}
		return tx.Delete(assignment).Error
	})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not delete assignment")
	}

	return utils.Success(c, fiber.StatusOK, "Assignment deleted", nil)
}

// SubmitWork handles the learner-only submission upsert. Resubmission
// replaces the work product but leaves status/grade/feedback to the
// manager.
func (ac *AssignmentsController) SubmitWork(c *fiber.Ctx) error {
	p, err := utils.CurrentPrincipal(c, ac.Cfg)
	if err != nil {
		return err
	}
	if !p.Role.CanLearn() {
		return fiber.NewError(fiber.StatusForbidden, "Only learners can submit work")
	}

	course, err := loadCourse(ac.DB, c)
	if err != nil {
		return err
	}

	vc, err := EvaluateAccess(ac.DB, course, p)
	if err != nil {
		return err
	}
	if !vc.EnrollmentApproved {
		return fiber.NewError(fiber.StatusForbidden, "You are not enrolled in this course")
	}

	assignment, err := ac.loadAssignment(c, course.ID)
	if err != nil {
		return err
	}

	var input struct {
		Body          string `json:"body"`
		AttachmentURL string `json:"attachment_url"`
	}
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}

	body := strings.TrimSpace(input.Body)
	if body == "" && input.AttachmentURL == "" {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Submission needs a body or an attachment")
	}

	submission, err := ac.upsertSubmission(assignment, p.ID, body, input.AttachmentURL)
	if err != nil {
		return err
	}

	workspace, err := BuildWorkspace(ac.DB, course, vc, time.Now())
	if err != nil {
		return err
	}

	return utils.Success(c, fiber.StatusOK, "Submission saved", fiber.Map{
		"submission": submission,
		"workspace":  workspace,
	})
}

// upsertSubmission keeps the single (assignment, student) row; a
// concurrent duplicate create degrades to an update.
func (ac *AssignmentsController) upsertSubmission(assignment *models.CourseAssignment, studentID uint, body, attachmentURL string) (*models.CourseSubmission, error) {
	apply := func(s *models.CourseSubmission) {
		s.Body = body
		s.AttachmentURL = attachmentURL
	}

	var submission models.CourseSubmission
	err := ac.DB.Where("assignment_id = ? AND student_id = ?", assignment.ID, studentID).First(&submission).Error
	if err == nil {
		apply(&submission)
		if err := ac.DB.Save(&submission).Error; err != nil {
			return nil, fiber.NewError(fiber.StatusInternalServerError, "Could not update submission")
		}
		return &submission, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Could not query database")
	}

	submission = models.CourseSubmission{
		AssignmentID: assignment.ID,
		StudentID:    studentID,
		CourseID:     assignment.CourseID,
		Status:       models.SubmissionSubmitted,
	}
	apply(&submission)

	if err := ac.DB.Create(&submission).Error; err != nil {
		var existing models.CourseSubmission
		if err2 := ac.DB.Where("assignment_id = ? AND student_id = ?", assignment.ID, studentID).First(&existing).Error; err2 != nil {
			return nil, fiber.NewError(fiber.StatusInternalServerError, "Could not create submission")
		}
		apply(&existing)
		if err2 := ac.DB.Save(&existing).Error; err2 != nil {
			return nil, fiber.NewError(fiber.StatusInternalServerError, "Could not update submission")
		}
		return &existing, nil
	}
	return &submission, nil
}

// GradeSubmission lets a manager set status, grade and feedback.
func (ac *AssignmentsController) GradeSubmission(c *fiber.Ctx) error {
	course, vc, err := requireManager(ac.DB, ac.Cfg, c)
	if err != nil {
		return err
	}

	submissionID, err := strconv.Atoi(c.Params("submissionId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid submission ID")
	}

	var submission models.CourseSubmission
	err = ac.DB.Where("id = ? AND course_id = ?", submissionID, course.ID).First(&submission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Submission not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Could not query database")
	}

	var input struct {
		Status   *string `json:"status"`
		Grade    *string `json:"grade"`
		Feedback *string `json:"feedback"`
	}
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}

	if input.Status != nil {
		status := strings.ToUpper(strings.TrimSpace(*input.Status))
		if status == "" {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "Status cannot be empty")
		}
		submission.Status = status
	}
	if input.Grade != nil {
		submission.Grade = *input.Grade
	}
	if input.Feedback != nil {
		submission.Feedback = *input.Feedback
	}

	if err := ac.DB.Save(&submission).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not update submission")
	}

	workspace, err := BuildWorkspace(ac.DB, course, vc, time.Now())
	if err != nil {
		return err
	}

	return utils.Success(c, fiber.StatusOK, "Submission updated", fiber.Map{
		"submission": submission,
		"workspace":  workspace,
	})
}

func (ac *AssignmentsController) loadAssignment(c *fiber.Ctx, courseID uint) (*models.CourseAssignment, error) {
	assignmentID, err := strconv.Atoi(c.Params("assignmentId"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid assignment ID")
	}

	var assignment models.CourseAssignment
	err = ac.DB.Where("id = ? AND course_id = ?", assignmentID, courseID).First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Assignment not found")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Could not query database")
	}
	return &assignment, nil
}
