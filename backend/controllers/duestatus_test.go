package controllers

import (
	"testing"
	"time"

	"campus/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDeriveDueStatus(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	soon := now.Add(24 * time.Hour)
	edge := now.Add(DueSoonWindow)
	far := now.Add(DueSoonWindow + time.Minute)

	assert.Equal(t, DueStatusOpen, DeriveDueStatus(models.CourseAssignment{}, nil, now))
	assert.Equal(t, DueStatusPastDue, DeriveDueStatus(models.CourseAssignment{DueAt: &past}, nil, now))
	assert.Equal(t, DueStatusDueSoon, DeriveDueStatus(models.CourseAssignment{DueAt: &soon}, nil, now))
	assert.Equal(t, DueStatusDueSoon, DeriveDueStatus(models.CourseAssignment{DueAt: &edge}, nil, now))
	assert.Equal(t, DueStatusOpen, DeriveDueStatus(models.CourseAssignment{DueAt: &far}, nil, now))
}

func TestDeriveDueStatusSubmissionWins(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)

	// The submission's own status replaces any date-derived label.
	sub := &models.CourseSubmission{Status: models.SubmissionGraded}
	assert.Equal(t, models.SubmissionGraded, DeriveDueStatus(models.CourseAssignment{DueAt: &past}, sub, now))

	sub = &models.CourseSubmission{Status: models.SubmissionSubmitted}
	assert.Equal(t, models.SubmissionSubmitted, DeriveDueStatus(models.CourseAssignment{}, sub, now))
}

func TestPastDueForCourse(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	assignments := []models.CourseAssignment{
		{Model: gorm.Model{ID: 1}, Title: "Essay", DueAt: &yesterday},
		{Model: gorm.Model{ID: 2}, Title: "Quiz", DueAt: &tomorrow},
		{Model: gorm.Model{ID: 3}, Title: "Reading"},
	}
	submissions := []models.CourseSubmission{
		{AssignmentID: 1, StudentID: 10, Status: models.SubmissionSubmitted},
		{AssignmentID: 1, StudentID: 11, Status: models.SubmissionGraded},
		{AssignmentID: 1, StudentID: 12, Status: models.SubmissionDone},
	}

	entries := PastDueForCourse(assignments, submissions, now)
	require.Len(t, entries, 1)
	assert.Equal(t, uint(1), entries[0].AssignmentID)
	assert.Equal(t, "Essay", entries[0].Title)
	// GRADED and DONE are settled; only the SUBMITTED one counts.
	assert.Equal(t, 1, entries[0].Outstanding)
}

func TestPastDueForCourseNoSubmissions(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)

	assignments := []models.CourseAssignment{
		{Model: gorm.Model{ID: 1}, Title: "Essay", DueAt: &yesterday},
	}

	entries := PastDueForCourse(assignments, nil, now)
	require.Len(t, entries, 1)
	assert.Equal(t, 0, entries[0].Outstanding)
}

func TestPastDueForViewer(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	lastWeek := now.Add(-7 * 24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	assignments := []models.CourseAssignment{
		{Model: gorm.Model{ID: 1}, Title: "Essay", DueAt: &yesterday},
		{Model: gorm.Model{ID: 2}, Title: "Lab", DueAt: &lastWeek},
		{Model: gorm.Model{ID: 3}, Title: "Quiz", DueAt: &tomorrow},
	}
	viewerSubmissions := map[uint]models.CourseSubmission{
		2: {AssignmentID: 2, Status: models.SubmissionSubmitted},
	}

	entries := PastDueForViewer(assignments, viewerSubmissions, now)
	require.Len(t, entries, 1)
	assert.Equal(t, uint(1), entries[0].AssignmentID)
}
