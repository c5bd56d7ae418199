package utils

import (
	"fmt"
	"strings"
	"time"

	"campus/backend/models"
)

const icsProdID = "-//Campus//Course Calendar//EN"

// BuildCourseCalendar renders the course schedule as ICS text. Sessions
// without a start time are skipped; when none remain the empty string is
// returned and the caller answers "no schedule available" instead of
// serving an empty calendar.
func BuildCourseCalendar(course models.Course, sessions []models.CourseSession, now time.Time) string {
	var events []string
	for _, s := range sessions {
		if s.StartsAt.IsZero() {
			continue
		}

		end := s.StartsAt.Add(time.Hour)
		if s.EndsAt != nil && s.EndsAt.After(s.StartsAt) {
			end = *s.EndsAt
		}

		summary := course.Title
		if s.Mode != "" {
			summary = fmt.Sprintf("%s (%s)", course.Title, s.Mode)
		}

		description := s.Note
		if description == "" {
			description = course.Summary
		}

		location := s.Location
		if location == "" {
			location = s.Mode
		}

		events = append(events, strings.Join([]string{
			"BEGIN:VEVENT",
			fmt.Sprintf("UID:session-%d@campus", s.ID),
			"DTSTAMP:" + icsTimestamp(now),
			"DTSTART:" + icsTimestamp(s.StartsAt),
			"DTEND:" + icsTimestamp(end),
			"SUMMARY:" + EscapeICSText(summary),
			"DESCRIPTION:" + EscapeICSText(description),
			"LOCATION:" + EscapeICSText(location),
			"END:VEVENT",
		}, "\r\n"))
	}

	if len(events) == 0 {
		return ""
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + icsProdID,
		"CALSCALE:GREGORIAN",
	}
	lines = append(lines, events...)
	lines = append(lines, "END:VCALENDAR")
	return strings.Join(lines, "\r\n") + "\r\n"
}

func icsTimestamp(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// EscapeICSText applies RFC 5545 text escaping: backslash, comma,
// semicolon and newline.
func EscapeICSText(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
