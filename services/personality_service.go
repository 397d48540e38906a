package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gapindang/rapor-api/model"
	"gorm.io/gorm"
)

// MaxPersonalityItems caps the strengths and recommendations lists
const MaxPersonalityItems = 3

// PersonalityService handles personality-test result storage. The test
// itself is an opaque upstream classifier; this service only stores its
// outcome, enforcing the write-once rule.
type PersonalityService struct {
	db *gorm.DB
}

// NewPersonalityService creates a new personality service
func NewPersonalityService(db *gorm.DB) *PersonalityService {
	return &PersonalityService{db: db}
}

// SubmitRequest carries a student's personality-test outcome
type SubmitRequest struct {
	StudentID       uint
	TypeCode        string
	Description     string
	Strengths       []string
	LearningStyle   string
	Recommendations []string
}

// Submit stores the result for a student. A second submission is rejected
// with ErrAlreadySubmitted; only the admin Reset override clears the row.
func (s *PersonalityService) Submit(ctx context.Context, req SubmitRequest) (*model.PersonalityResult, error) {
	db := s.db.WithContext(ctx)

	var count int64
	err := db.Model(&model.PersonalityResult{}).
		Where("student_id = ?", req.StudentID).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check existing result: %w", err)
	}
	if count > 0 {
		return nil, ErrAlreadySubmitted
	}

	if len(req.Strengths) > MaxPersonalityItems {
		req.Strengths = req.Strengths[:MaxPersonalityItems]
	}
	if len(req.Recommendations) > MaxPersonalityItems {
		req.Recommendations = req.Recommendations[:MaxPersonalityItems]
	}

	strengths, err := json.Marshal(req.Strengths)
	if err != nil {
		return nil, fmt.Errorf("failed to encode strengths: %w", err)
	}
	recommendations, err := json.Marshal(req.Recommendations)
	if err != nil {
		return nil, fmt.Errorf("failed to encode recommendations: %w", err)
	}

	result := model.PersonalityResult{
		StudentID:       req.StudentID,
		TypeCode:        req.TypeCode,
		Description:     req.Description,
		Strengths:       strengths,
		LearningStyle:   req.LearningStyle,
		Recommendations: recommendations,
	}

	if err := db.Create(&result).Error; err != nil {
		return nil, fmt.Errorf("failed to store personality result: %w", err)
	}

	return &result, nil
}

// Get returns the student's result, or ErrResultNotFound when the student
// has not taken the test.
func (s *PersonalityService) Get(ctx context.Context, studentID uint) (*model.PersonalityResult, error) {
	var result model.PersonalityResult
	err := s.db.WithContext(ctx).Where("student_id = ?", studentID).First(&result).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to fetch personality result: %w", err)
	}
	return &result, nil
}

// Reset removes a student's result so the test can be retaken. Admin-only
// override; handlers enforce the role.
func (s *PersonalityService) Reset(ctx context.Context, studentID uint) error {
	result := s.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Delete(&model.PersonalityResult{})
	if result.Error != nil {
		return fmt.Errorf("failed to reset personality result: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrResultNotFound
	}
	return nil
}
