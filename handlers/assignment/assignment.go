package assignment

import (
	"strconv"

	"github.com/gapindang/rapor-api/model"
	"github.com/gapindang/rapor-api/utils/response"
	"github.com/gapindang/rapor-api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AssignmentHandler handles teaching-assignment administration
type AssignmentHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(db *gorm.DB, validator *validation.Validator) *AssignmentHandler {
	return &AssignmentHandler{db: db, validator: validator}
}

// CreateAssignmentRequest binds a teacher to a subject within a class
type CreateAssignmentRequest struct {
	TeacherID    uint `json:"teacher_id" validate:"required"`
	SubjectID    uint `json:"subject_id" validate:"required"`
	ClassID      uint `json:"class_id" validate:"required"`
	SchoolYearID uint `json:"school_year_id" validate:"required"`
}

// Create registers a teaching assignment
// POST /assignments
func (h *AssignmentHandler) Create(c *fiber.Ctx) error {
	var req CreateAssignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	var teacher model.User
	if err := h.db.First(&teacher, req.TeacherID).Error; err != nil {
		return response.NotFound(c, "Teacher not found")
	}
	if !teacher.IsTeacher() {
		return response.BadRequest(c, "Assignments require a teacher account")
	}

	var subject model.Subject
	if err := h.db.First(&subject, req.SubjectID).Error; err != nil {
		return response.NotFound(c, "Subject not found")
	}

	var class model.Class
	if err := h.db.First(&class, req.ClassID).Error; err != nil {
		return response.NotFound(c, "Class not found")
	}
	if class.SchoolYearID != req.SchoolYearID {
		return response.BadRequest(c, "Class does not belong to the given school year")
	}

	var count int64
	h.db.Model(&model.TeachingAssignment{}).
		Where("teacher_id = ? AND subject_id = ? AND class_id = ? AND school_year_id = ?",
			req.TeacherID, req.SubjectID, req.ClassID, req.SchoolYearID).
		Count(&count)
	if count > 0 {
		return response.Conflict(c, "Assignment already exists")
	}

	assignment := model.TeachingAssignment{
		TeacherID:    req.TeacherID,
		SubjectID:    req.SubjectID,
		ClassID:      req.ClassID,
		SchoolYearID: req.SchoolYearID,
	}
	if err := h.db.Create(&assignment).Error; err != nil {
		return response.InternalServerError(c, "Failed to create assignment")
	}

	return response.Created(c, assignment)
}

// List returns assignments filtered by teacher, class, or school year
// GET /assignments?teacher_id=&class_id=&school_year_id=
func (h *AssignmentHandler) List(c *fiber.Ctx) error {
	query := h.db.Model(&model.TeachingAssignment{}).
		Preload("Teacher").Preload("Subject").Preload("Class")

	for param, column := range map[string]string{
		"teacher_id":     "teacher_id",
		"class_id":       "class_id",
		"school_year_id": "school_year_id",
	} {
		if v := c.Query(param); v != "" {
			id, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return response.BadRequest(c, "Invalid "+param)
			}
			query = query.Where(column+" = ?", id)
		}
	}

	var assignments []model.TeachingAssignment
	if err := query.Find(&assignments).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch assignments")
	}
	return response.Success(c, assignments)
}

// Delete removes a teaching assignment
// DELETE /assignments/:id
func (h *AssignmentHandler) Delete(c *fiber.Ctx) error {
	assignmentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid assignment ID")
	}

	result := h.db.Delete(&model.TeachingAssignment{}, assignmentID)
	if result.Error != nil {
		return response.InternalServerError(c, "Failed to delete assignment")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Assignment not found")
	}

	return response.Success(c, fiber.Map{
		"message": "Assignment deleted successfully",
	})
}
