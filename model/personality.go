package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PersonalityResult stores the outcome of the upstream personality test
// for a student: a 4-letter type code plus descriptive guidance. At most
// one row exists per student; submission is write-once and only an admin
// reset can clear it.
type PersonalityResult struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	StudentID       uint           `gorm:"not null;uniqueIndex" json:"student_id"`
	TypeCode        string         `gorm:"type:varchar(4);not null" json:"type_code"` // e.g. "INTJ"
	Description     string         `gorm:"type:text" json:"description"`
	Strengths       datatypes.JSON `gorm:"type:jsonb" json:"strengths"`       // up to 3 entries
	LearningStyle   string         `gorm:"type:varchar(50)" json:"learning_style"`
	Recommendations datatypes.JSON `gorm:"type:jsonb" json:"recommendations"` // up to 3 entries

	// Relationships
	Student User `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}
