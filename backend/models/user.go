package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is the capability class of a user, checked with the predicates
// below instead of string comparisons in handlers.
type Role string

const (
	RoleStudent   Role = "student"
	RoleTutor     Role = "tutor"
	RoleCreator   Role = "creator"
	RoleRecruiter Role = "recruiter"
	RoleAdmin     Role = "admin"
)

// ParseRole maps a request string to a Role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleStudent, RoleTutor, RoleCreator, RoleRecruiter, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// Elevated reports whether the role has platform-wide authority.
func (r Role) Elevated() bool {
	return r == RoleAdmin
}

// ManagerEligible reports whether the role may own and manage courses.
func (r Role) ManagerEligible() bool {
	switch r {
	case RoleTutor, RoleCreator, RoleAdmin:
		return true
	}
	return false
}

// CanLearn reports whether the role may enroll and submit work.
func (r Role) CanLearn() bool {
	return r == RoleStudent
}

type User struct {
	gorm.Model
	Username     string `gorm:"unique;not null" json:"username"`
	Email        string `gorm:"unique;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         Role   `gorm:"default:student" json:"role"`
}

type LoginHistory struct {
	gorm.Model
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	LoginTime time.Time `json:"login_time"`
}
