package services

import (
	"context"
	"fmt"
	"math"

	"github.com/gapindang/rapor-api/model"
	"gorm.io/gorm"
)

// GradeService handles grade entry and the final-score derivation
type GradeService struct {
	db *gorm.DB
}

// NewGradeService creates a new grade service
func NewGradeService(db *gorm.DB) *GradeService {
	return &GradeService{db: db}
}

// ComputeFinalScore derives the final score from the midterm (UTS) and
// final-exam (UAS) scores. Both present: their average. One present: that
// value unchanged. Neither: nil. Missing scores are never treated as zero.
// The result is stored unrounded; rounding happens at render time only.
func ComputeFinalScore(uts, uas *float64) *float64 {
	switch {
	case uts != nil && uas != nil:
		v := (*uts + *uas) / 2
		return &v
	case uts != nil:
		v := *uts
		return &v
	case uas != nil:
		v := *uas
		return &v
	default:
		return nil
	}
}

// Round2 rounds a score to 2 decimal places for display
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MeanFinalScore returns the arithmetic mean of the non-nil final scores,
// rounded to 2 decimal places. Entries without a final score are ignored.
// With no usable scores it returns 0 and false.
func MeanFinalScore(grades []model.Grade) (float64, bool) {
	var sum float64
	var n int
	for _, g := range grades {
		if g.Final != nil {
			sum += *g.Final
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return Round2(sum / float64(n)), true
}

// UpsertGradeRequest carries one grade entry from a teacher
type UpsertGradeRequest struct {
	TeacherID    uint
	StudentID    uint
	SubjectID    uint
	ClassID      uint
	SchoolYearID uint
	UTS          *float64
	UAS          *float64
	Comment      string
	Commendation string
}

// UpsertGrade creates or updates the grade row for (student, subject,
// school year). The teacher must hold a TeachingAssignment for the
// subject+class+year and the student must be enrolled in the class.
func (s *GradeService) UpsertGrade(ctx context.Context, req UpsertGradeRequest) (*model.Grade, error) {
	db := s.db.WithContext(ctx)

	// Authorization: assignment ties teacher to subject within class for year
	var assignmentCount int64
	err := db.Model(&model.TeachingAssignment{}).
		Where("teacher_id = ? AND subject_id = ? AND class_id = ? AND school_year_id = ?",
			req.TeacherID, req.SubjectID, req.ClassID, req.SchoolYearID).
		Count(&assignmentCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check teaching assignment: %w", err)
	}
	if assignmentCount == 0 {
		return nil, ErrNotAssigned
	}

	// The student must be enrolled in the class
	var memberCount int64
	err = db.Model(&model.ClassMember{}).
		Where("class_id = ? AND student_id = ?", req.ClassID, req.StudentID).
		Count(&memberCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check class membership: %w", err)
	}
	if memberCount == 0 {
		return nil, ErrStudentNotFound
	}

	var grade model.Grade
	err = db.Where("student_id = ? AND subject_id = ? AND school_year_id = ?",
		req.StudentID, req.SubjectID, req.SchoolYearID).
		First(&grade).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to fetch grade: %w", err)
	}

	grade.StudentID = req.StudentID
	grade.SubjectID = req.SubjectID
	grade.SchoolYearID = req.SchoolYearID
	grade.TeacherID = req.TeacherID
	grade.UTS = req.UTS
	grade.UAS = req.UAS
	grade.Final = ComputeFinalScore(req.UTS, req.UAS)
	grade.Comment = req.Comment
	grade.Commendation = req.Commendation

	if err := db.Save(&grade).Error; err != nil {
		return nil, fmt.Errorf("failed to save grade: %w", err)
	}

	return &grade, nil
}

// ListClassGrades returns the grades of one subject for every student of a
// class in a school year, ordered by the students' seat numbers.
func (s *GradeService) ListClassGrades(ctx context.Context, classID, subjectID, schoolYearID uint) ([]model.Grade, error) {
	var grades []model.Grade
	err := s.db.WithContext(ctx).
		Joins("JOIN class_members ON class_members.student_id = grades.student_id AND class_members.class_id = ?", classID).
		Where("grades.subject_id = ? AND grades.school_year_id = ?", subjectID, schoolYearID).
		Preload("Student").
		Preload("Subject").
		Order("class_members.seat_number ASC").
		Find(&grades).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list class grades: %w", err)
	}
	return grades, nil
}

// ListStudentGrades returns a student's grades for a school year joined
// with subject and grading-teacher info, ordered by subject name ascending
// (stable, locale-naive string order).
func (s *GradeService) ListStudentGrades(ctx context.Context, studentID, schoolYearID uint) ([]model.Grade, error) {
	var grades []model.Grade
	err := s.db.WithContext(ctx).
		Joins("JOIN subjects ON subjects.id = grades.subject_id").
		Where("grades.student_id = ? AND grades.school_year_id = ?", studentID, schoolYearID).
		Preload("Subject").
		Preload("Teacher").
		Order("subjects.name ASC").
		Find(&grades).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list student grades: %w", err)
	}
	return grades, nil
}
