package controllers

import (
	"time"

	"campus/backend/models"
)

// Date-derived due statuses. A viewer's own submission status always
// replaces them.
const (
	DueStatusOpen    = "OPEN"
	DueStatusDueSoon = "DUE_SOON"
	DueStatusPastDue = "PAST_DUE"
)

// DueSoonWindow is how far ahead of the deadline DUE_SOON starts.
const DueSoonWindow = 72 * time.Hour

// DeriveDueStatus computes the per-viewer lifecycle label of an
// assignment at the given instant.
func DeriveDueStatus(a models.CourseAssignment, submission *models.CourseSubmission, now time.Time) string {
	if submission != nil {
		return submission.Status
	}
	if a.DueAt == nil {
		return DueStatusOpen
	}
	if a.DueAt.Before(now) {
		return DueStatusPastDue
	}
	if a.DueAt.Sub(now) <= DueSoonWindow {
		return DueStatusDueSoon
	}
	return DueStatusOpen
}

// PastDueEntry is one line of the staff-facing past-due digest.
type PastDueEntry struct {
	AssignmentID uint      `json:"assignment_id"`
	Title        string    `json:"title"`
	DueAt        time.Time `json:"due_at"`
	Outstanding  int       `json:"outstanding"`
}

// ViewerPastDue is one past-due assignment the viewer has not submitted.
type ViewerPastDue struct {
	AssignmentID uint      `json:"assignment_id"`
	Title        string    `json:"title"`
	DueAt        time.Time `json:"due_at"`
}

// PastDueForCourse collects, per assignment whose deadline has passed,
// the count of submissions that are neither graded nor done.
func PastDueForCourse(assignments []models.CourseAssignment, submissions []models.CourseSubmission, now time.Time) []PastDueEntry {
	outstanding := map[uint]int{}
	for _, s := range submissions {
		if s.Status == models.SubmissionGraded || s.Status == models.SubmissionDone {
			continue
		}
		outstanding[s.AssignmentID]++
	}

	entries := []PastDueEntry{}
	for _, a := range assignments {
		if a.DueAt == nil || !a.DueAt.Before(now) {
			continue
		}
		entries = append(entries, PastDueEntry{
			AssignmentID: a.ID,
			Title:        a.Title,
			DueAt:        *a.DueAt,
			Outstanding:  outstanding[a.ID],
		})
	}
	return entries
}

// PastDueForViewer collects past-due assignments with no submission from
// this viewer.
func PastDueForViewer(assignments []models.CourseAssignment, viewerSubmissions map[uint]models.CourseSubmission, now time.Time) []ViewerPastDue {
	entries := []ViewerPastDue{}
	for _, a := range assignments {
		if a.DueAt == nil || !a.DueAt.Before(now) {
			continue
		}
		if _, ok := viewerSubmissions[a.ID]; ok {
			continue
		}
		entries = append(entries, ViewerPastDue{
			AssignmentID: a.ID,
			Title:        a.Title,
			DueAt:        *a.DueAt,
		})
	}
	return entries
}
