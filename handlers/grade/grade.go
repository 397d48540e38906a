package grade

import (
	"errors"
	"strconv"

	"github.com/gapindang/rapor-api/model"
	"github.com/gapindang/rapor-api/services"
	"github.com/gapindang/rapor-api/utils/middleware"
	"github.com/gapindang/rapor-api/utils/response"
	"github.com/gapindang/rapor-api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GradeHandler handles grade entry and listing
type GradeHandler struct {
	db        *gorm.DB
	grades    *services.GradeService
	years     *services.SchoolYearService
	validator *validation.Validator
}

// NewGradeHandler creates a new grade handler
func NewGradeHandler(db *gorm.DB, grades *services.GradeService, years *services.SchoolYearService, validator *validation.Validator) *GradeHandler {
	return &GradeHandler{db: db, grades: grades, years: years, validator: validator}
}

// UpsertGradeRequest represents a teacher's grade entry. UTS and UAS are
// pointers so an omitted component stays unrecorded instead of becoming 0.
type UpsertGradeRequest struct {
	StudentID    uint     `json:"student_id" validate:"required"`
	SubjectID    uint     `json:"subject_id" validate:"required"`
	ClassID      uint     `json:"class_id" validate:"required"`
	SchoolYearID uint     `json:"school_year_id"` // defaults to the active year
	UTS          *float64 `json:"uts" validate:"omitempty,min=0,max=100"`
	UAS          *float64 `json:"uas" validate:"omitempty,min=0,max=100"`
	Comment      string   `json:"comment"`
	Commendation string   `json:"commendation"`
}

// Upsert creates or updates a grade entry for the calling teacher
// PUT /grades
func (h *GradeHandler) Upsert(c *fiber.Ctx) error {
	caller, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req UpsertGradeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	schoolYearID := req.SchoolYearID
	if schoolYearID == 0 {
		year, err := h.years.ActiveSchoolYear(c.Context())
		if err != nil {
			return response.ServiceUnavailable(c, "No active school year configured")
		}
		schoolYearID = year.ID
	}

	grade, err := h.grades.UpsertGrade(c.Context(), services.UpsertGradeRequest{
		TeacherID:    caller.ID,
		StudentID:    req.StudentID,
		SubjectID:    req.SubjectID,
		ClassID:      req.ClassID,
		SchoolYearID: schoolYearID,
		UTS:          req.UTS,
		UAS:          req.UAS,
		Comment:      req.Comment,
		Commendation: req.Commendation,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotAssigned):
			return response.Forbidden(c, "You are not assigned to teach this subject for this class")
		case errors.Is(err, services.ErrStudentNotFound):
			return response.NotFound(c, "Student is not enrolled in this class")
		default:
			return response.InternalServerError(c, "Failed to save grade")
		}
	}

	return response.Success(c, grade)
}

// ListClassGrades lists all grades for a subject within a class
// GET /classes/:id/grades?subject_id=&school_year_id=
func (h *GradeHandler) ListClassGrades(c *fiber.Ctx) error {
	classID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid class ID")
	}

	subjectID, err := strconv.ParseUint(c.Query("subject_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "subject_id query parameter is required")
	}

	schoolYearID, err := h.resolveSchoolYear(c)
	if err != nil {
		return response.ServiceUnavailable(c, "No active school year configured")
	}

	// Teachers may only read subjects they are assigned to
	caller, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	if caller.IsTeacher() {
		var count int64
		h.db.Model(&model.TeachingAssignment{}).
			Where("teacher_id = ? AND subject_id = ? AND class_id = ? AND school_year_id = ?",
				caller.ID, subjectID, classID, schoolYearID).
			Count(&count)
		if count == 0 && !isHomeroom(h.db, caller.ID, uint(classID)) {
			return response.Forbidden(c, "You are not assigned to this subject or class")
		}
	}

	grades, err := h.grades.ListClassGrades(c.Context(), uint(classID), uint(subjectID), schoolYearID)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch grades")
	}

	return response.Success(c, grades)
}

// ListMyGrades lists the calling student's grades for the active year
// GET /grades/me
func (h *GradeHandler) ListMyGrades(c *fiber.Ctx) error {
	caller, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	schoolYearID, err := h.resolveSchoolYear(c)
	if err != nil {
		return response.ServiceUnavailable(c, "No active school year configured")
	}

	grades, err := h.grades.ListStudentGrades(c.Context(), caller.ID, schoolYearID)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch grades")
	}

	return response.Success(c, grades)
}

// resolveSchoolYear reads school_year_id from the query string, falling
// back to the active year
func (h *GradeHandler) resolveSchoolYear(c *fiber.Ctx) (uint, error) {
	if v := c.Query("school_year_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err == nil {
			return uint(id), nil
		}
	}
	year, err := h.years.ActiveSchoolYear(c.Context())
	if err != nil {
		return 0, err
	}
	return year.ID, nil
}

func isHomeroom(db *gorm.DB, teacherID, classID uint) bool {
	var count int64
	db.Model(&model.Class{}).
		Where("id = ? AND homeroom_teacher_id = ?", classID, teacherID).
		Count(&count)
	return count > 0
}
