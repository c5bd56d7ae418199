package controllers

import (
	"fmt"
	"time"

	"campus/backend/config"
	"campus/backend/models"
	"campus/backend/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SessionsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewSessionsController(db *gorm.DB, cfg *config.Config) *SessionsController {
	return &SessionsController{DB: db, Cfg: cfg}
}

func (sc *SessionsController) CreateSession(c *fiber.Ctx) error {
	course, vc, err := requireManager(sc.DB, sc.Cfg, c)
	if err != nil {
		return err
	}

	var input struct {
		Title    string     `json:"title"`
		StartsAt time.Time  `json:"starts_at" validate:"required"`
		EndsAt   *time.Time `json:"ends_at"`
		Location string     `json:"location"`
		Mode     string     `json:"mode"`
		Note     string     `json:"note"`
	}
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if err := validator.New().Struct(input); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	if input.EndsAt != nil && !input.EndsAt.After(input.StartsAt) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Session must end after it starts")
	}

	session := models.CourseSession{
		CourseID: course.ID,
		Title:    input.Title,
		StartsAt: input.StartsAt,
		EndsAt:   input.EndsAt,
		Location: input.Location,
		Mode:     input.Mode,
		Note:     input.Note,
	}
	if err := sc.DB.Create(&session).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not create session")
	}

	workspace, err := BuildWorkspace(sc.DB, course, vc, time.Now())
	if err != nil {
		return err
	}

	return utils.Success(c, fiber.StatusCreated, "Session created", fiber.Map{
		"session":   session,
		"workspace": workspace,
	})
}

func (sc *SessionsController) DeleteSession(c *fiber.Ctx) error {
	course, _, err := requireManager(sc.DB, sc.Cfg, c)
	if err != nil {
		return err
	}
	return deleteScoped(sc.DB, c, course.ID, "sessionId", &models.CourseSession{}, "Session")
}

func (sc *SessionsController) CreateMeetingLink(c *fiber.Ctx) error {
	course, vc, err := requireManager(sc.DB, sc.Cfg, c)
	if err != nil {
		return err
	}

	var input struct {
		Title string `json:"title"`
		URL   string `json:"url" validate:"required,min=1"`
		Note  string `json:"note"`
	}
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if err := validator.New().Struct(input); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	link := models.CourseMeetingLink{
		CourseID: course.ID,
		Title:    input.Title,
		URL:      models.NormalizeMeetingURL(input.URL),
		Note:     input.Note,
	}
	if err := sc.DB.Create(&link).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not create meeting link")
	}

	workspace, err := BuildWorkspace(sc.DB, course, vc, time.Now())
	if err != nil {
		return err
	}

	return utils.Success(c, fiber.StatusCreated, "Meeting link created", fiber.Map{
		"meeting_link": link,
		"workspace":    workspace,
	})
}

func (sc *SessionsController) DeleteMeetingLink(c *fiber.Ctx) error {
	course, _, err := requireManager(sc.DB, sc.Cfg, c)
	if err != nil {
		return err
	}
	return deleteScoped(sc.DB, c, course.ID, "linkId", &models.CourseMeetingLink{}, "Meeting link")
}

// ExportCalendar serves the course schedule as an ICS download for
// managers and approved enrollees.
func (sc *SessionsController) ExportCalendar(c *fiber.Ctx) error {
	course, _, err := requireParticipant(sc.DB, sc.Cfg, c)
	if err != nil {
		return err
	}

	var sessions []models.CourseSession
	if err := sc.DB.Where("course_id = ?", course.ID).Order("starts_at ASC").Find(&sessions).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not query database")
	}

	calendar := utils.BuildCourseCalendar(*course, sessions, time.Now())
	if calendar == "" {
		return fiber.NewError(fiber.StatusNotFound, "No schedule available")
	}

	c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="course-%d.ics"`, course.ID))
	return c.SendString(calendar)
}
