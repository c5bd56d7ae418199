package controllers_test

import (
	"fmt"
	"testing"

	"campus/backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAssignment(t *testing.T, managerToken string, courseID uint, title string) uint {
	t.Helper()

	resp := doRequest(t, "POST", coursePath(courseID, "/assignments"), managerToken, map[string]interface{}{
		"title": title,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assignment := dataOf(t, resp)["assignment"].(map[string]interface{})
	return uint(assignment["ID"].(float64))
}

func submitWork(t *testing.T, token string, courseID, assignmentID uint, body map[string]interface{}) *submissionView {
	t.Helper()

	resp := doRequest(t, "POST", coursePath(courseID, fmt.Sprintf("/assignments/%d/submissions", assignmentID)), token, body)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	raw := dataOf(t, resp)["submission"].(map[string]interface{})
	return &submissionView{
		ID:       uint(raw["ID"].(float64)),
		Body:     raw["body"].(string),
		Status:   raw["status"].(string),
		Grade:    raw["grade"].(string),
		Feedback: raw["feedback"].(string),
	}
}

type submissionView struct {
	ID       uint
	Body     string
	Status   string
	Grade    string
	Feedback string
}

func TestSubmitWorkUpsertsSingleRow(t *testing.T) {
	_, managerToken := newUser(t, models.RoleTutor)
	student, studentToken := newUser(t, models.RoleStudent)
	courseID, joinCode := newCourse(t, managerToken, "Homework Course")
	enrollApproved(t, studentToken, courseID, joinCode)
	assignmentID := newAssignment(t, managerToken, courseID, "Essay")

	first := submitWork(t, studentToken, courseID, assignmentID, map[string]interface{}{
		"body": "draft one",
	})
	second := submitWork(t, studentToken, courseID, assignmentID, map[string]interface{}{
		"body": "draft two",
	})

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "draft two", second.Body)

	var count int64
	require.NoError(t, db.Model(&models.CourseSubmission{}).
		Where("assignment_id = ? AND student_id = ?", assignmentID, student.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestResubmissionPreservesGrade(t *testing.T) {
	_, managerToken := newUser(t, models.RoleTutor)
	_, studentToken := newUser(t, models.RoleStudent)
	courseID, joinCode := newCourse(t, managerToken, "Graded Course")
	enrollApproved(t, studentToken, courseID, joinCode)
	assignmentID := newAssignment(t, managerToken, courseID, "Problem Set")

	submission := submitWork(t, studentToken, courseID, assignmentID, map[string]interface{}{
		"body": "my answers",
	})
	assert.Equal(t, models.SubmissionSubmitted, submission.Status)

	resp := doRequest(t, "PATCH", coursePath(courseID, fmt.Sprintf("/submissions/%d", submission.ID)), managerToken, map[string]interface{}{
		"status":   "GRADED",
		"grade":    "A-",
		"feedback": "solid work",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// The learner replacing the body does not touch the manager's verdict.
	resubmitted := submitWork(t, studentToken, courseID, assignmentID, map[string]interface{}{
		"body": "revised answers",
	})
	assert.Equal(t, "revised answers", resubmitted.Body)
	assert.Equal(t, models.SubmissionGraded, resubmitted.Status)
	assert.Equal(t, "A-", resubmitted.Grade)
	assert.Equal(t, "solid work", resubmitted.Feedback)
}

func TestSubmitWorkRequiresApprovedEnrollment(t *testing.T) {
	_, managerToken := newUser(t, models.RoleTutor)
	_, outsiderToken := newUser(t, models.RoleStudent)
	courseID, _ := newCourse(t, managerToken, "Closed Course")
	assignmentID := newAssignment(t, managerToken, courseID, "Quiz")

	resp := doRequest(t, "POST", coursePath(courseID, fmt.Sprintf("/assignments/%d/submissions", assignmentID)), outsiderToken, map[string]interface{}{
		"body": "sneaking in",
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Managers review work, they do not submit it.
	resp = doRequest(t, "POST", coursePath(courseID, fmt.Sprintf("/assignments/%d/submissions", assignmentID)), managerToken, map[string]interface{}{
		"body": "sample solution",
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestSubmitWorkNeedsContent(t *testing.T) {
	_, managerToken := newUser(t, models.RoleTutor)
	_, studentToken := newUser(t, models.RoleStudent)
	courseID, joinCode := newCourse(t, managerToken, "Content Course")
	enrollApproved(t, studentToken, courseID, joinCode)
	assignmentID := newAssignment(t, managerToken, courseID, "Reading Response")

	resp := doRequest(t, "POST", coursePath(courseID, fmt.Sprintf("/assignments/%d/submissions", assignmentID)), studentToken, map[string]interface{}{
		"body": "   ",
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	// An attachment alone counts as content.
	submission := submitWork(t, studentToken, courseID, assignmentID, map[string]interface{}{
		"attachment_url": "https://files.example.com/response.pdf",
	})
	assert.Equal(t, models.SubmissionSubmitted, submission.Status)
}

func TestGradeSubmissionManagerOnly(t *testing.T) {
	_, managerToken := newUser(t, models.RoleTutor)
	_, studentToken := newUser(t, models.RoleStudent)
	courseID, joinCode := newCourse(t, managerToken, "Grading Course")
	enrollApproved(t, studentToken, courseID, joinCode)
	assignmentID := newAssignment(t, managerToken, courseID, "Final Project")

	submission := submitWork(t, studentToken, courseID, assignmentID, map[string]interface{}{
		"body": "project writeup",
	})

	resp := doRequest(t, "PATCH", coursePath(courseID, fmt.Sprintf("/submissions/%d", submission.ID)), studentToken, map[string]interface{}{
		"status": "DONE",
		"grade":  "A+",
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = doRequest(t, "PATCH", coursePath(courseID, fmt.Sprintf("/submissions/%d", submission.ID)), managerToken, map[string]interface{}{
		"status": "done",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	graded := dataOf(t, resp)["submission"].(map[string]interface{})
	// Status input is normalized to upper case.
	assert.Equal(t, models.SubmissionDone, graded["status"])
}
