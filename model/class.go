package model

import (
	"time"

	"gorm.io/gorm"
)

// Class represents a named section (e.g. "X-A") within a school year.
// The homeroom teacher ("wali kelas") is the only teacher allowed to
// write and export the class's report cards.
type Class struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
	Name              string         `gorm:"type:varchar(50);not null" json:"name"` // e.g. "X-A"
	GradeLevel        int            `gorm:"not null" json:"grade_level"`           // 10, 11, 12
	SchoolYearID      uint           `gorm:"not null;index" json:"school_year_id"`
	HomeroomTeacherID *uint          `gorm:"index" json:"homeroom_teacher_id"`

	// Relationships
	SchoolYear      SchoolYear    `gorm:"foreignKey:SchoolYearID" json:"school_year,omitempty"`
	HomeroomTeacher *User         `gorm:"foreignKey:HomeroomTeacherID" json:"homeroom_teacher,omitempty"`
	Members         []ClassMember `gorm:"foreignKey:ClassID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
}

// ClassMember enrolls a student into a class with an ordinal seat number.
type ClassMember struct {
	ClassID    uint  `gorm:"primaryKey" json:"class_id"`
	StudentID  uint  `gorm:"primaryKey" json:"student_id"`
	SeatNumber int   `gorm:"not null;default:0" json:"seat_number"`
	EnrolledAt int64 `gorm:"autoCreateTime" json:"enrolled_at"`

	// Relationships
	Class   Class `gorm:"foreignKey:ClassID;constraint:OnDelete:CASCADE" json:"-"`
	Student User  `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
}
