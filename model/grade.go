package model

import (
	"time"

	"gorm.io/gorm"
)

// Grade stores one subject's scores for a student in a school year.
// UTS (midterm) and UAS (final exam) are nullable: a missing score stays
// NULL and is never coerced to zero. Final is derived from whichever
// scores are present and is NULL when neither is.
type Grade struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	StudentID    uint           `gorm:"not null;index;uniqueIndex:idx_grade_entry" json:"student_id"`
	SubjectID    uint           `gorm:"not null;index;uniqueIndex:idx_grade_entry" json:"subject_id"`
	SchoolYearID uint           `gorm:"not null;index;uniqueIndex:idx_grade_entry" json:"school_year_id"`
	TeacherID    uint           `gorm:"not null;index" json:"teacher_id"`
	UTS          *float64       `gorm:"column:uts" json:"uts"`
	UAS          *float64       `gorm:"column:uas" json:"uas"`
	Final        *float64       `gorm:"column:final" json:"final"`
	Comment      string         `gorm:"type:text" json:"comment"`
	Commendation string         `gorm:"type:text" json:"commendation"`

	// Relationships
	Student    User       `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Subject    Subject    `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
	SchoolYear SchoolYear `gorm:"foreignKey:SchoolYearID" json:"school_year,omitempty"`
	Teacher    User       `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
}

// ReportCard stores the per-student, per-school-year aggregate record
// ("rapor"): the overall average plus the homeroom teacher's comment and
// commendation. The average can go stale relative to later-entered grades;
// readers recompute it from grades when it is zero or missing.
type ReportCard struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
	StudentID            uint           `gorm:"not null;index;uniqueIndex:idx_report_card" json:"student_id"`
	SchoolYearID         uint           `gorm:"not null;index;uniqueIndex:idx_report_card" json:"school_year_id"`
	ClassID              uint           `gorm:"not null;index" json:"class_id"`
	Average              float64        `gorm:"default:0" json:"average"`
	HomeroomComment      string         `gorm:"type:text" json:"homeroom_comment"`
	HomeroomCommendation string         `gorm:"type:text" json:"homeroom_commendation"`

	// Relationships
	Student    User       `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	SchoolYear SchoolYear `gorm:"foreignKey:SchoolYearID" json:"school_year,omitempty"`
	Class      Class      `gorm:"foreignKey:ClassID" json:"class,omitempty"`
}
