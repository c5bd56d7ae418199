package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MessageKind separates the course channel from direct-style chat.
type MessageKind string

const (
	MessageChannel MessageKind = "CHANNEL"
	MessageChat    MessageKind = "CHAT"
)

// MaxMessageAttachments bounds the attachment list on one message.
const MaxMessageAttachments = 4

// CourseMessage is append-only: created and listed, never edited.
type CourseMessage struct {
	gorm.Model
	CourseID    uint           `gorm:"index;not null" json:"course_id"`
	AuthorID    uint           `gorm:"not null" json:"author_id"`
	Kind        MessageKind    `gorm:"index;not null" json:"kind"`
	Visibility  Visibility     `gorm:"default:ENROLLED" json:"visibility"`
	Body        string         `json:"body"`
	Attachments datatypes.JSON `json:"attachments"`
}
