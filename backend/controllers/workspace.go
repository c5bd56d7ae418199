package controllers

import (
	"time"

	"campus/backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// BuildWorkspace assembles the single authoritative course payload used
// by the get-course endpoint and re-rendered after every mutation.
func BuildWorkspace(db *gorm.DB, course *models.Course, vc *ViewerContext, now time.Time) (fiber.Map, error) {
	serverError := fiber.NewError(fiber.StatusInternalServerError, "Could not query database")

	var lessons []models.Lesson
	if err := db.Where("course_id = ?", course.ID).Order("position ASC, id ASC").Find(&lessons).Error; err != nil {
		return nil, serverError
	}

	var sessions []models.CourseSession
	if err := db.Where("course_id = ?", course.ID).Order("starts_at ASC").Find(&sessions).Error; err != nil {
		return nil, serverError
	}

	var links []models.CourseMeetingLink
	if err := db.Where("course_id = ?", course.ID).Order("id ASC").Find(&links).Error; err != nil {
		return nil, serverError
	}

	var questions []models.EnrollmentQuestion
	if err := db.Where("course_id = ?", course.ID).Order("position ASC, id ASC").Find(&questions).Error; err != nil {
		return nil, serverError
	}

	var materials []models.CourseMaterial
	if err := db.Where("course_id = ?", course.ID).Order("id ASC").Find(&materials).Error; err != nil {
		return nil, serverError
	}
	materialViews := make([]MaterialView, 0, len(materials))
	for _, m := range materials {
		materialViews = append(materialViews, ResolveMaterial(m, vc))
	}

	var assignments []models.CourseAssignment
	if err := db.Where("course_id = ?", course.ID).Order("id ASC").Find(&assignments).Error; err != nil {
		return nil, serverError
	}

	// The viewer's own submissions drive the derived due statuses.
	viewerSubmissions := map[uint]models.CourseSubmission{}
	if vc.Principal != nil {
		var own []models.CourseSubmission
		if err := db.Where("course_id = ? AND student_id = ?", course.ID, vc.Principal.ID).Find(&own).Error; err != nil {
			return nil, serverError
		}
		for _, s := range own {
			viewerSubmissions[s.AssignmentID] = s
		}
	}

	var allSubmissions []models.CourseSubmission
	submissionsByAssignment := map[uint][]models.CourseSubmission{}
	if vc.CanManage {
		if err := db.Where("course_id = ?", course.ID).Order("id ASC").Find(&allSubmissions).Error; err != nil {
			return nil, serverError
		}
		for _, s := range allSubmissions {
			submissionsByAssignment[s.AssignmentID] = append(submissionsByAssignment[s.AssignmentID], s)
		}
	}

	assignmentViews := make([]fiber.Map, 0, len(assignments))
	for _, a := range assignments {
		var own *models.CourseSubmission
		if s, ok := viewerSubmissions[a.ID]; ok {
			sub := s
			own = &sub
		}

		view := fiber.Map{
			"id":           a.ID,
			"title":        a.Title,
			"instructions": a.Instructions,
			"due_at":       a.DueAt,
			"resources":    models.ListFromJSON(a.Resources),
			"attachments":  models.ListFromJSON(a.Attachments),
			"due_status":   DeriveDueStatus(a, own, now),
		}
		if own != nil {
			view["submission"] = own
		}
		if vc.CanManage {
			view["submissions"] = submissionsByAssignment[a.ID]
		}
		assignmentViews = append(assignmentViews, view)
	}

	viewer := fiber.Map{
		"authenticated":       vc.Principal != nil,
		"can_manage":          vc.CanManage,
		"enrollment_approved": vc.EnrollmentApproved,
	}
	if vc.Principal != nil {
		viewer["role"] = vc.Principal.Role
	}
	if vc.Enrollment != nil {
		viewer["enrollment"] = fiber.Map{
			"id":              vc.Enrollment.ID,
			"status":          vc.Enrollment.Status,
			"joined_via_code": vc.Enrollment.JoinedViaCode,
			"form_answers":    vc.Enrollment.Answers(),
		}
	}

	workspace := fiber.Map{
		"course": fiber.Map{
			"id":           course.ID,
			"creator_id":   course.CreatorID,
			"title":        course.Title,
			"summary":      course.Summary,
			"description":  course.Description,
			"is_published": course.IsPublished,
			"tags":         models.TagsFromJSON(course.Tags),
		},
		"lessons":       lessons,
		"sessions":      sessions,
		"meeting_links": links,
		"questions":     questions,
		"materials":     materialViews,
		"assignments":   assignmentViews,
		"viewer":        viewer,
	}

	summary := fiber.Map{}
	if vc.CanManage {
		summary["past_due_course"] = PastDueForCourse(assignments, allSubmissions, now)
	} else if vc.EnrollmentApproved {
		summary["past_due_viewer"] = PastDueForViewer(assignments, viewerSubmissions, now)
	}
	workspace["assignment_summary"] = summary

	if vc.CanManage {
		workspace["join_code"] = course.JoinCode

		roster, err := courseRoster(db, course.ID)
		if err != nil {
			return nil, err
		}
		workspace["roster"] = roster
	}

	if vc.CanManage || vc.EnrollmentApproved {
		channel, err := recentMessages(db, course.ID, models.MessageChannel, vc)
		if err != nil {
			return nil, err
		}
		chat, err := recentMessages(db, course.ID, models.MessageChat, vc)
		if err != nil {
			return nil, err
		}
		workspace["messages"] = fiber.Map{
			"channel": channel,
			"chat":    chat,
		}
	}

	return workspace, nil
}

// courseRoster builds the manager-only enrollment list with usernames.
func courseRoster(db *gorm.DB, courseID uint) ([]fiber.Map, error) {
	var enrollments []models.Enrollment
	if err := db.Where("course_id = ?", courseID).Order("id ASC").Find(&enrollments).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Could not query database")
	}

	userIDs := make([]uint, 0, len(enrollments))
	for _, e := range enrollments {
		userIDs = append(userIDs, e.UserID)
	}
	usernames := map[uint]string{}
	if len(userIDs) > 0 {
		var users []models.User
		if err := db.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
			return nil, fiber.NewError(fiber.StatusInternalServerError, "Could not query database")
		}
		for _, u := range users {
			usernames[u.ID] = u.Username
		}
	}

	roster := make([]fiber.Map, 0, len(enrollments))
	for _, e := range enrollments {
		roster = append(roster, fiber.Map{
			"id":              e.ID,
			"user_id":         e.UserID,
			"username":        usernames[e.UserID],
			"status":          e.Status,
			"joined_via_code": e.JoinedViaCode,
			"form_answers":    e.Answers(),
			"admin_note":      e.AdminNote,
			"created_at":      e.CreatedAt,
		})
	}
	return roster, nil
}
