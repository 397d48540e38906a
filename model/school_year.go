package model

import (
	"time"

	"gorm.io/gorm"
)

// Semester numbers map to the Indonesian academic calendar:
// 1 = "Ganjil" (odd), 2 = "Genap" (even).
const (
	SemesterGanjil = 1
	SemesterGenap  = 2
)

// SchoolYear represents an academic period ("tahun ajaran"), e.g. 2024/2025
// semester 1. At most one school year is active at a time; activation is a
// single transactional operation that deactivates the rest.
type SchoolYear struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Label     string         `gorm:"type:varchar(20);not null" json:"label"` // e.g. "2024/2025"
	Semester  int            `gorm:"not null;default:1" json:"semester"`     // 1 or 2
	StartDate time.Time      `json:"start_date"`
	EndDate   time.Time      `json:"end_date"`
	Active    bool           `gorm:"default:false;index" json:"active"`

	// Relationships
	Classes []Class `gorm:"foreignKey:SchoolYearID;constraint:OnDelete:CASCADE" json:"classes,omitempty"`
}

// SemesterLabel returns the locale name for the semester number.
func (sy *SchoolYear) SemesterLabel() string {
	if sy.Semester == SemesterGenap {
		return "Genap"
	}
	return "Ganjil"
}
