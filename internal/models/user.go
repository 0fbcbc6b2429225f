package models

import (
	"time"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// User mirrors an identity-provider account: ID is the provider's account id.
// Every user owns exactly one Balance row, created alongside it.
type User struct {
	ID       string   `json:"id" gorm:"primaryKey;size:255"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	FullName string   `json:"full_name" gorm:"not null;size:100"`
	Role     UserRole `json:"role" gorm:"not null;size:20;default:student"`

	CourseID *uint   `json:"course_id" gorm:"index"`
	Course   *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`

	CreatedAt time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}
