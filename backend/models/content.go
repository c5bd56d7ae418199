package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Visibility is the access tier attached to materials and messages.
type Visibility string

const (
	VisibilityPublic   Visibility = "PUBLIC"
	VisibilityEnrolled Visibility = "ENROLLED"
	VisibilityStaff    Visibility = "STAFF"
)

// Valid reports whether v is a recognized tier.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityEnrolled, VisibilityStaff:
		return true
	}
	return false
}

// StringList is the typed value behind JSON list columns
// (assignment resources/attachments, message attachments).
type StringList []string

// ToJSON serializes the list for storage.
func (l StringList) ToJSON() datatypes.JSON {
	if len(l) == 0 {
		return datatypes.JSON([]byte("[]"))
	}
	b, err := json.Marshal(l)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(b)
}

// ListFromJSON deserializes a stored list column.
func ListFromJSON(raw datatypes.JSON) StringList {
	var l StringList
	if len(raw) == 0 {
		return l
	}
	_ = json.Unmarshal(raw, &l)
	return l
}

type CourseMaterial struct {
	gorm.Model
	CourseID      uint       `gorm:"index;not null" json:"course_id"`
	Title         string     `gorm:"not null" json:"title"`
	Description   string     `json:"description"`
	VisibleTo     Visibility `gorm:"default:PUBLIC" json:"visible_to"`
	ContentURL    string     `json:"content_url"`
	ContentType   string     `json:"content_type"`
	AttachmentURL string     `json:"attachment_url"`
}

type CourseAssignment struct {
	gorm.Model
	CourseID     uint           `gorm:"index;not null" json:"course_id"`
	Title        string         `gorm:"not null" json:"title"`
	Instructions string         `json:"instructions"`
	DueAt        *time.Time     `json:"due_at"`
	Resources    datatypes.JSON `json:"resources"`
	Attachments  datatypes.JSON `json:"attachments"`
}

// Submission statuses. SUBMITTED is set on upsert; managers may set any
// string, with GRADED and DONE treated as settled by the past-due digest.
const (
	SubmissionSubmitted = "SUBMITTED"
	SubmissionGraded    = "GRADED"
	SubmissionDone      = "DONE"
)

type CourseSubmission struct {
	gorm.Model
	AssignmentID  uint   `gorm:"uniqueIndex:idx_submissions_assignment_student;not null" json:"assignment_id"`
	StudentID     uint   `gorm:"uniqueIndex:idx_submissions_assignment_student;not null" json:"student_id"`
	CourseID      uint   `gorm:"index;not null" json:"course_id"`
	Body          string `json:"body"`
	AttachmentURL string `json:"attachment_url"`
	Status        string `gorm:"default:SUBMITTED" json:"status"`
	Grade         string `json:"grade"`
	Feedback      string `json:"feedback"`
}
