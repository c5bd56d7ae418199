package controllers

import (
	"strings"

	"campus/backend/config"
	"campus/backend/models"
	"campus/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type MessagesController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewMessagesController(db *gorm.DB, cfg *config.Config) *MessagesController {
	return &MessagesController{DB: db, Cfg: cfg}
}

// Listing bounds per kind.
const (
	channelPageSize = 50
	chatPageSize    = 90
)

// clampMessageVisibility applies the write-boundary downgrade rule:
// chat is always ENROLLED, and only managers may post STAFF-only channel
// messages. A non-manager asking for STAFF is silently downgraded.
func clampMessageVisibility(requested models.Visibility, kind models.MessageKind, canManage bool) models.Visibility {
	if kind == models.MessageChat {
		return models.VisibilityEnrolled
	}
	if requested == models.VisibilityStaff && canManage {
		return models.VisibilityStaff
	}
	return models.VisibilityEnrolled
}

// recentMessages loads the bounded recent window for one kind. Channel
// messages come newest-first; chat is fetched newest-first then reversed
// for chronological display. Non-managers never see STAFF-only posts.
func recentMessages(db *gorm.DB, courseID uint, kind models.MessageKind, vc *ViewerContext) ([]fiber.Map, error) {
	query := db.Where("course_id = ? AND kind = ?", courseID, kind)
	if !vc.CanManage {
		query = query.Where("visibility = ?", models.VisibilityEnrolled)
	}

	limit := channelPageSize
	if kind == models.MessageChat {
		limit = chatPageSize
	}

	var messages []models.CourseMessage
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Could not query database")
	}

	if kind == models.MessageChat {
		for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
			messages[i], messages[j] = messages[j], messages[i]
		}
	}

	authorNames := map[uint]string{}
	authorIDs := make([]uint, 0, len(messages))
	for _, m := range messages {
		if _, ok := authorNames[m.AuthorID]; !ok {
			authorNames[m.AuthorID] = ""
			authorIDs = append(authorIDs, m.AuthorID)
		}
	}
	if len(authorIDs) > 0 {
		var authors []models.User
		if err := db.Where("id IN ?", authorIDs).Find(&authors).Error; err != nil {
			return nil, fiber.NewError(fiber.StatusInternalServerError, "Could not query database")
		}
		for _, u := range authors {
			authorNames[u.ID] = u.Username
		}
	}

	views := make([]fiber.Map, 0, len(messages))
	for _, m := range messages {
		views = append(views, fiber.Map{
			"id":          m.ID,
			"author_id":   m.AuthorID,
			"author":      authorNames[m.AuthorID],
			"kind":        m.Kind,
			"visibility":  m.Visibility,
			"body":        m.Body,
			"attachments": models.ListFromJSON(m.Attachments),
			"created_at":  m.CreatedAt,
		})
	}
	return views, nil
}

func (mc *MessagesController) ListChannel(c *fiber.Ctx) error {
	return mc.list(c, models.MessageChannel)
}

func (mc *MessagesController) ListChat(c *fiber.Ctx) error {
	return mc.list(c, models.MessageChat)
}

func (mc *MessagesController) list(c *fiber.Ctx, kind models.MessageKind) error {
	course, vc, err := requireParticipant(mc.DB, mc.Cfg, c)
	if err != nil {
		return err
	}

	messages, err := recentMessages(mc.DB, course.ID, kind, vc)
	if err != nil {
		return err
	}

	return utils.Success(c, fiber.StatusOK, "", fiber.Map{
		"messages": messages,
	})
}

func (mc *MessagesController) PostChannel(c *fiber.Ctx) error {
	return mc.post(c, models.MessageChannel)
}

func (mc *MessagesController) PostChat(c *fiber.Ctx) error {
	return mc.post(c, models.MessageChat)
}

func (mc *MessagesController) post(c *fiber.Ctx, kind models.MessageKind) error {
	course, vc, err := requireParticipant(mc.DB, mc.Cfg, c)
	if err != nil {
		return err
	}

	var input struct {
		Body        string   `json:"body"`
		Visibility  string   `json:"visibility"`
		Attachments []string `json:"attachments"`
	}
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}

	body := strings.TrimSpace(input.Body)
	attachments := models.StringList(input.Attachments)
	if len(attachments) > models.MaxMessageAttachments {
		attachments = attachments[:models.MaxMessageAttachments]
	}
	if body == "" && len(attachments) == 0 {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Message needs a body or at least one attachment")
	}

	requested := models.Visibility(input.Visibility)
	if !requested.Valid() {
		requested = models.VisibilityEnrolled
	}

	message := models.CourseMessage{
		CourseID:    course.ID,
		AuthorID:    vc.Principal.ID,
		Kind:        kind,
		Visibility:  clampMessageVisibility(requested, kind, vc.CanManage),
		Body:        body,
		Attachments: attachments.ToJSON(),
	}
	if err := mc.DB.Create(&message).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not create message")
	}

	return utils.Success(c, fiber.StatusCreated, "Message posted", fiber.Map{
		"message": message,
	})
}
