package services

import (
	"context"
	"fmt"

	"github.com/gapindang/rapor-api/model"
	"gorm.io/gorm"
)

// SchoolYearService owns school-year lookups and the single-active-year
// invariant. Every caller that needs "the current year" goes through
// ActiveSchoolYear so freshness semantics live in exactly one place.
type SchoolYearService struct {
	db *gorm.DB
}

// NewSchoolYearService creates a new school year service
func NewSchoolYearService(db *gorm.DB) *SchoolYearService {
	return &SchoolYearService{db: db}
}

// ActiveSchoolYear returns the currently active school year.
func (s *SchoolYearService) ActiveSchoolYear(ctx context.Context) (*model.SchoolYear, error) {
	var year model.SchoolYear
	err := s.db.WithContext(ctx).Where("active = ?", true).First(&year).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrSchoolYearNotFound
		}
		return nil, fmt.Errorf("failed to fetch active school year: %w", err)
	}
	return &year, nil
}

// Activate marks the given school year active and deactivates every other
// year in one transaction, so at most one year is ever active.
func (s *SchoolYearService) Activate(ctx context.Context, yearID uint) (*model.SchoolYear, error) {
	var year model.SchoolYear

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&year, yearID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrSchoolYearNotFound
			}
			return fmt.Errorf("failed to fetch school year: %w", err)
		}

		if err := tx.Model(&model.SchoolYear{}).
			Where("id != ?", yearID).
			Update("active", false).Error; err != nil {
			return fmt.Errorf("failed to deactivate other school years: %w", err)
		}

		if err := tx.Model(&year).Update("active", true).Error; err != nil {
			return fmt.Errorf("failed to activate school year: %w", err)
		}

		year.Active = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &year, nil
}
