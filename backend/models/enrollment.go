package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EnrollmentStatus is the lifecycle state of an enrollment. Managers may
// move a record between any two states; none of them is terminal.
type EnrollmentStatus string

const (
	EnrollmentPending  EnrollmentStatus = "PENDING"
	EnrollmentApproved EnrollmentStatus = "APPROVED"
	EnrollmentRejected EnrollmentStatus = "REJECTED"
)

// Valid reports whether s is a recognized status value.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentPending, EnrollmentApproved, EnrollmentRejected:
		return true
	}
	return false
}

// FormAnswers maps question ids to the freeform answer text.
type FormAnswers map[string]string

// ToJSON serializes the answers for storage.
func (a FormAnswers) ToJSON() datatypes.JSON {
	if len(a) == 0 {
		return datatypes.JSON([]byte("{}"))
	}
	b, err := json.Marshal(a)
	if err != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(b)
}

// AnswersFromJSON deserializes a stored answers column.
func AnswersFromJSON(raw datatypes.JSON) FormAnswers {
	a := FormAnswers{}
	if len(raw) == 0 {
		return a
	}
	_ = json.Unmarshal(raw, &a)
	return a
}

type Enrollment struct {
	gorm.Model
	UserID        uint             `gorm:"uniqueIndex:idx_enrollments_user_course;not null" json:"user_id"`
	CourseID      uint             `gorm:"uniqueIndex:idx_enrollments_user_course;not null" json:"course_id"`
	Status        EnrollmentStatus `gorm:"default:PENDING" json:"status"`
	JoinedViaCode bool             `json:"joined_via_code"`
	FormAnswers   datatypes.JSON   `json:"form_answers"`
	AdminNote     string           `json:"admin_note"`
}

// Answers returns the typed view of the stored answers column.
func (e *Enrollment) Answers() FormAnswers {
	return AnswersFromJSON(e.FormAnswers)
}

// SetAnswers stores a typed answer map on the record.
func (e *Enrollment) SetAnswers(a FormAnswers) {
	e.FormAnswers = a.ToJSON()
}

// EnrollmentAudit records one manager decision; the status field itself is
// freely reversible, so the history lives here.
type EnrollmentAudit struct {
	gorm.Model
	EnrollmentID uint             `gorm:"index;not null" json:"enrollment_id"`
	ActorID      uint             `gorm:"not null" json:"actor_id"`
	FromStatus   EnrollmentStatus `json:"from_status"`
	ToStatus     EnrollmentStatus `json:"to_status"`
}
