package model

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// User represents a registered user in the system
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"` // Never expose password in JSON
	Name         string         `gorm:"not null" json:"name"`
	Role         string         `gorm:"type:varchar(20);default:'student'" json:"role"` // admin, teacher, student
	NISN         string         `gorm:"type:varchar(20);index" json:"nisn"`             // national student id (students only)
	NIP          string         `gorm:"type:varchar(30);index" json:"nip"`              // staff id (teachers only)
	TokenVersion int            `gorm:"default:0" json:"-"`                             // Increment to invalidate all user tokens

	// Relationships
	Grades            []Grade             `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	ReportCards       []ReportCard        `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	PersonalityResult *PersonalityResult  `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	TokenBlacklist    []JWTTokenBlacklist `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// IsTeacher reports whether the user has the teacher role
func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }

// IsStudent reports whether the user has the student role
func (u *User) IsStudent() bool { return u.Role == RoleStudent }
