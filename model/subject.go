package model

import (
	"time"

	"gorm.io/gorm"
)

// Subject represents a curriculum subject ("mapel")
type Subject struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
	Name             string         `gorm:"not null" json:"name"`
	Code             string         `gorm:"type:varchar(20);uniqueIndex;not null" json:"code"`
	DefaultTeacherID *uint          `gorm:"index" json:"default_teacher_id"`

	// Relationships
	DefaultTeacher *User   `gorm:"foreignKey:DefaultTeacherID" json:"default_teacher,omitempty"`
	Grades         []Grade `gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE" json:"-"`
}

// TeachingAssignment ties a teacher to a subject within a class for a
// school year. It is the authorization unit for grade entry: a teacher may
// only grade a subject for students of classes they are assigned to.
type TeachingAssignment struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	TeacherID    uint           `gorm:"not null;index;uniqueIndex:idx_assignment" json:"teacher_id"`
	SubjectID    uint           `gorm:"not null;index;uniqueIndex:idx_assignment" json:"subject_id"`
	ClassID      uint           `gorm:"not null;index;uniqueIndex:idx_assignment" json:"class_id"`
	SchoolYearID uint           `gorm:"not null;index;uniqueIndex:idx_assignment" json:"school_year_id"`

	// Relationships
	Teacher    User       `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
	Subject    Subject    `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
	Class      Class      `gorm:"foreignKey:ClassID" json:"class,omitempty"`
	SchoolYear SchoolYear `gorm:"foreignKey:SchoolYearID" json:"school_year,omitempty"`
}
