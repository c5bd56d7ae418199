package models

import (
	"encoding/json"
	"strings"
	"time"
	"unicode"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MaxCourseTags bounds the tag set stored on a course.
const MaxCourseTags = 8

// CourseTag is one normalized label+slug pair.
type CourseTag struct {
	Label string `json:"label"`
	Slug  string `json:"slug"`
}

// CourseTags is the typed value behind the Course.Tags JSON column.
type CourseTags []CourseTag

// NormalizeTags trims, slugifies and de-duplicates raw labels, keeping
// at most MaxCourseTags entries in input order.
func NormalizeTags(labels []string) CourseTags {
	tags := make(CourseTags, 0, len(labels))
	seen := map[string]bool{}
	for _, label := range labels {
		label = strings.TrimSpace(label)
		slug := Slugify(label)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		tags = append(tags, CourseTag{Label: label, Slug: slug})
		if len(tags) == MaxCourseTags {
			break
		}
	}
	return tags
}

// Slugify lowercases and collapses a label to a-z0-9 with dashes.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		default:
			if b.Len() > 0 && !dash {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// ToJSON serializes the tag set for storage.
func (t CourseTags) ToJSON() datatypes.JSON {
	if len(t) == 0 {
		return datatypes.JSON([]byte("[]"))
	}
	b, err := json.Marshal(t)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(b)
}

// TagsFromJSON deserializes a stored tag column, tolerating empty columns.
func TagsFromJSON(raw datatypes.JSON) CourseTags {
	var t CourseTags
	if len(raw) == 0 {
		return t
	}
	_ = json.Unmarshal(raw, &t)
	return t
}

type Course struct {
	gorm.Model
	CreatorID   uint           `gorm:"index;not null" json:"creator_id"`
	Title       string         `gorm:"not null" json:"title"`
	Summary     string         `json:"summary"`
	Description string         `json:"description"`
	IsPublished bool           `gorm:"default:false" json:"is_published"`
	JoinCode    string         `gorm:"size:6;index" json:"-"`
	Tags        datatypes.JSON `json:"tags"`
}

// Lesson bodies are managed elsewhere; the course keeps the ordered list.
type Lesson struct {
	gorm.Model
	CourseID    uint   `gorm:"index;not null" json:"course_id"`
	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`
	Position    int    `json:"position"`
}

// EnrollmentQuestion is one manager-defined form question shown on enroll.
type EnrollmentQuestion struct {
	gorm.Model
	CourseID uint   `gorm:"index;not null" json:"course_id"`
	Prompt   string `gorm:"not null" json:"prompt"`
	Position int    `json:"position"`
}

type CourseSession struct {
	gorm.Model
	CourseID uint       `gorm:"index;not null" json:"course_id"`
	Title    string     `json:"title"`
	StartsAt time.Time  `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
	Location string     `json:"location"`
	Mode     string     `json:"mode"`
	Note     string     `json:"note"`
}

type CourseMeetingLink struct {
	gorm.Model
	CourseID uint   `gorm:"index;not null" json:"course_id"`
	Title    string `json:"title"`
	URL      string `gorm:"not null" json:"url"`
	Note     string `json:"note"`
}

// NormalizeMeetingURL prefixes a scheme when the stored link lacks one.
func NormalizeMeetingURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	if strings.Contains(raw, "://") {
		return raw
	}
	return "https://" + raw
}
