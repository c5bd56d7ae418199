package controllers_test

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"campus/backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitEnrollmentIdempotent(t *testing.T) {
	_, managerToken := newUser(t, models.RoleTutor)
	student, studentToken := newUser(t, models.RoleStudent)
	courseID, _ := newCourse(t, managerToken, "Idempotent Enrollment")

	answers := map[string]interface{}{"answers": map[string]string{"q1": "I want to learn"}}

	resp := doRequest(t, "POST", coursePath(courseID, "/enroll"), studentToken, answers)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := dataOf(t, resp)
	enrollment := data["enrollment"].(map[string]interface{})
	assert.Equal(t, string(models.EnrollmentPending), enrollment["status"])
	assert.Nil(t, data["code_status"])

	resp = doRequest(t, "POST", coursePath(courseID, "/enroll"), studentToken, answers)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data = dataOf(t, resp)
	enrollment = data["enrollment"].(map[string]interface{})
	assert.Equal(t, string(models.EnrollmentPending), enrollment["status"])

	var count int64
	db.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", student.ID, courseID).
		Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSubmitEnrollmentJoinCodeApproves(t *testing.T) {
	_, managerToken := newUser(t, models.RoleTutor)
	_, studentToken := newUser(t, models.RoleStudent)
	courseID, joinCode := newCourse(t, managerToken, "Join Code Course")

	// Case-insensitive match, no answers supplied.
	resp := doRequest(t, "POST", coursePath(courseID, "/enroll"), studentToken, map[string]interface{}{
		"join_code": strings.ToLower(joinCode),
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := dataOf(t, resp)

	assert.Equal(t, "APPROVED", data["code_status"])
	enrollment := data["enrollment"].(map[string]interface{})
	assert.Equal(t, string(models.EnrollmentApproved), enrollment["status"])
	assert.Equal(t, true, enrollment["joined_via_code"])
	// A default answer is synthesized when none were supplied.
	assert.NotEmpty(t, enrollment["form_answers"])
}

func TestSubmitEnrollmentJoinCodeOverridesStoredStatus(t *testing.T) {
	_, managerToken := newUser(t, models.RoleTutor)
	student, studentToken := newUser(t, models.RoleStudent)
	courseID, joinCode := newCourse(t, managerToken, "Code Overrides Status")

	resp := doRequest(t, "POST", coursePath(courseID, "/enroll"), studentToken, map[string]interface{}{
		"answers": map[string]string{"q1": "please"},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Reject the pending enrollment, then enroll again with the code.
	var enrollment models.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", student.ID, courseID).First(&enrollment).Error)
	enrollment.Status = models.EnrollmentRejected
	require.NoError(t, db.Save(&enrollment).Error)

	resp = doRequest(t, "POST", coursePath(courseID, "/enroll"), studentToken, map[string]interface{}{
		"join_code": joinCode,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := dataOf(t, resp)
	assert.Equal(t, "APPROVED", data["code_status"])

	require.NoError(t, db.Where("user_id = ? AND course_id = ?", student.ID, courseID).First(&enrollment).Error)
	assert.Equal(t, models.EnrollmentApproved, enrollment.Status)
	assert.True(t, enrollment.JoinedViaCode)
}

func TestSubmitEnrollmentInvalidCode(t *testing.T) {
	_, managerToken := newUser(t, models.RoleTutor)
	_, studentToken := newUser(t, models.RoleStudent)
	courseID, _ := newCourse(t, managerToken, "Invalid Code Course")

	resp := doRequest(t, "POST", coursePath(courseID, "/enroll"), studentToken, map[string]interface{}{
		"join_code": "WRONG2",
		"answers":   map[string]string{"q1": "still interested"},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := dataOf(t, resp)

	assert.Equal(t, "INVALID", data["code_status"])
	enrollment := data["enrollment"].(map[string]interface{})
	assert.Equal(t, string(models.EnrollmentPending), enrollment["status"])
}

func TestSubmitEnrollmentRequiresAnswersOrCode(t *testing.T) {
	_, managerToken := newUser(t, models.RoleTutor)
	_, studentToken := newUser(t, models.RoleStudent)
	courseID, _ := newCourse(t, managerToken, "Empty Enrollment")

	resp := doRequest(t, "POST", coursePath(courseID, "/enroll"), studentToken, map[string]interface{}{})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	// Whitespace-only answers do not count.
	resp = doRequest(t, "POST", coursePath(courseID, "/enroll"), studentToken, map[string]interface{}{
		"answers": map[string]string{"q1": "   "},
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestSubmitEnrollmentRoleAndPublicationChecks(t *testing.T) {
	_, managerToken := newUser(t, models.RoleTutor)
	_, tutorToken := newUser(t, models.RoleTutor)
	_, studentToken := newUser(t, models.RoleStudent)
	courseID, _ := newCourse(t, managerToken, "Gated Course")

	// Non-learner roles cannot enroll.
	resp := doRequest(t, "POST", coursePath(courseID, "/enroll"), tutorToken, map[string]interface{}{
		"answers": map[string]string{"q1": "hello"},
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Unpublished courses are invisible to enrollment.
	resp = doRequest(t, "POST", "/api/courses/", managerToken, map[string]interface{}{"title": "Draft"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	draft := dataOf(t, resp)["course"].(map[string]interface{})
	draftID := uint(draft["ID"].(float64))

	resp = doRequest(t, "POST", coursePath(draftID, "/enroll"), studentToken, map[string]interface{}{
		"answers": map[string]string{"q1": "hello"},
	})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSubmitByJoinCode(t *testing.T) {
	_, managerToken := newUser(t, models.RoleTutor)
	student, studentToken := newUser(t, models.RoleStudent)
	courseID, joinCode := newCourse(t, managerToken, "Course Behind Code")

	resp := doRequest(t, "POST", "/api/courses/join-code", studentToken, map[string]interface{}{
		"code": strings.ToLower(joinCode),
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := dataOf(t, resp)
	assert.Equal(t, "APPROVED", data["code_status"])

	// Repeat submission keeps the single row.
	resp = doRequest(t, "POST", "/api/courses/join-code", studentToken, map[string]interface{}{
		"code": joinCode,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	var count int64
	db.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", student.ID, courseID).
		Count(&count)
	assert.Equal(t, int64(1), count)

	var enrollment models.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", student.ID, courseID).First(&enrollment).Error)
	assert.True(t, enrollment.JoinedViaCode)
	assert.Equal(t, models.EnrollmentApproved, enrollment.Status)
}

func TestSubmitByJoinCodeUnknownCode(t *testing.T) {
	_, studentToken := newUser(t, models.RoleStudent)

	resp := doRequest(t, "POST", "/api/courses/join-code", studentToken, map[string]interface{}{
		"code": "ZZZZZZ",
	})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = doRequest(t, "POST", "/api/courses/join-code", studentToken, map[string]interface{}{
		"code": "abc",
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestDecideIsFreelyReversible(t *testing.T) {
	manager, managerToken := newUser(t, models.RoleTutor)
	student, studentToken := newUser(t, models.RoleStudent)
	courseID, joinCode := newCourse(t, managerToken, "Decisions Course")
	enrollApproved(t, studentToken, courseID, joinCode)

	var enrollment models.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", student.ID, courseID).First(&enrollment).Error)
	path := coursePath(courseID, fmt.Sprintf("/enrollments/%d", enrollment.ID))

	resp := doRequest(t, "PATCH", path, managerToken, map[string]interface{}{
		"status":     "REJECTED",
		"admin_note": "spam suspicion",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// The reversal back to APPROVED is allowed; the note is sticky.
	resp = doRequest(t, "PATCH", path, managerToken, map[string]interface{}{
		"status": "APPROVED",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	require.NoError(t, db.First(&enrollment, enrollment.ID).Error)
	assert.Equal(t, models.EnrollmentApproved, enrollment.Status)
	assert.Equal(t, "spam suspicion", enrollment.AdminNote)

	var audits []models.EnrollmentAudit
	require.NoError(t, db.Where("enrollment_id = ?", enrollment.ID).Order("id ASC").Find(&audits).Error)
	require.Len(t, audits, 2)
	assert.Equal(t, models.EnrollmentApproved, audits[0].FromStatus)
	assert.Equal(t, models.EnrollmentRejected, audits[0].ToStatus)
	assert.Equal(t, models.EnrollmentRejected, audits[1].FromStatus)
	assert.Equal(t, models.EnrollmentApproved, audits[1].ToStatus)
	assert.Equal(t, manager.ID, audits[0].ActorID)
}

func TestDecideValidation(t *testing.T) {
	_, managerToken := newUser(t, models.RoleTutor)
	_, studentToken := newUser(t, models.RoleStudent)
	courseID, joinCode := newCourse(t, managerToken, "Decide Validation")
	enrollApproved(t, studentToken, courseID, joinCode)

	var enrollment models.Enrollment
	require.NoError(t, db.Where("course_id = ?", courseID).First(&enrollment).Error)
	path := coursePath(courseID, fmt.Sprintf("/enrollments/%d", enrollment.ID))

	resp := doRequest(t, "PATCH", path, managerToken, map[string]interface{}{
		"status": "MAYBE",
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	// A rejected decision leaves no trace: status keeps its value and no
	// audit row is written.
	require.NoError(t, db.First(&enrollment, enrollment.ID).Error)
	assert.Equal(t, models.EnrollmentApproved, enrollment.Status)
	var auditCount int64
	db.Model(&models.EnrollmentAudit{}).Where("enrollment_id = ?", enrollment.ID).Count(&auditCount)
	assert.Equal(t, int64(0), auditCount)

	// Students cannot decide.
	resp = doRequest(t, "PATCH", path, studentToken, map[string]interface{}{
		"status": "APPROVED",
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRegenerateJoinCode(t *testing.T) {
	_, managerToken := newUser(t, models.RoleTutor)
	student, studentToken := newUser(t, models.RoleStudent)
	courseID, joinCode := newCourse(t, managerToken, "Regenerate Code")
	enrollApproved(t, studentToken, courseID, joinCode)

	resp := doRequest(t, "POST", coursePath(courseID, "/join-code/regenerate"), managerToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := dataOf(t, resp)

	newCode := data["join_code"].(string)
	assert.Len(t, newCode, 6)
	assert.NotEqual(t, joinCode, newCode)

	// Existing enrollments are untouched.
	var enrollment models.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", student.ID, courseID).First(&enrollment).Error)
	assert.Equal(t, models.EnrollmentApproved, enrollment.Status)

	// The old code no longer matches.
	_, otherToken := newUser(t, models.RoleStudent)
	resp = doRequest(t, "POST", coursePath(courseID, "/enroll"), otherToken, map[string]interface{}{
		"join_code": joinCode,
		"answers":   map[string]string{"q1": "late"},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "INVALID", dataOf(t, resp)["code_status"])
}

func TestSubmitEnrollmentConcurrentSingleRow(t *testing.T) {
	_, managerToken := newUser(t, models.RoleTutor)
	student, studentToken := newUser(t, models.RoleStudent)
	courseID, joinCode := newCourse(t, managerToken, "Contended Enrollment")

	// Two simultaneous submissions race on the unique (user, course)
	// index; the loser's create must degrade to an update.
	var wg sync.WaitGroup
	statuses := make([]int, 2)
	for i := range statuses {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp := doRequest(t, "POST", coursePath(courseID, "/enroll"), studentToken, map[string]interface{}{
				"join_code": joinCode,
			})
			statuses[i] = resp.StatusCode
			resp.Body.Close()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, []int{fiber.StatusOK, fiber.StatusOK}, statuses)

	var count int64
	db.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", student.ID, courseID).
		Count(&count)
	assert.Equal(t, int64(1), count)

	var enrollment models.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", student.ID, courseID).First(&enrollment).Error)
	assert.Equal(t, models.EnrollmentApproved, enrollment.Status)
	assert.True(t, enrollment.JoinedViaCode)
}
