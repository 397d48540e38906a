package subject

import (
	"strconv"

	"github.com/gapindang/rapor-api/model"
	"github.com/gapindang/rapor-api/utils/response"
	"github.com/gapindang/rapor-api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SubjectHandler handles subject administration
type SubjectHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewSubjectHandler creates a new subject handler
func NewSubjectHandler(db *gorm.DB, validator *validation.Validator) *SubjectHandler {
	return &SubjectHandler{db: db, validator: validator}
}

// CreateSubjectRequest represents a new subject
type CreateSubjectRequest struct {
	Name string `json:"name" validate:"required"`
	Code string `json:"code" validate:"required,min=2,max=10"`
}

// UpdateSubjectRequest represents subject field updates
type UpdateSubjectRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// Create registers a new subject
// POST /subjects
func (h *SubjectHandler) Create(c *fiber.Ctx) error {
	var req CreateSubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	var existing model.Subject
	if err := h.db.Where("code = ?", req.Code).First(&existing).Error; err == nil {
		return response.Conflict(c, "Subject with this code already exists")
	}

	subject := model.Subject{
		Name: validation.SanitizeString(req.Name),
		Code: req.Code,
	}
	if err := h.db.Create(&subject).Error; err != nil {
		return response.InternalServerError(c, "Failed to create subject")
	}

	return response.Created(c, subject)
}

// List returns all subjects ordered by name
// GET /subjects
func (h *SubjectHandler) List(c *fiber.Ctx) error {
	var subjects []model.Subject
	if err := h.db.Order("name asc").Find(&subjects).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch subjects")
	}
	return response.Success(c, subjects)
}

// Update changes subject fields
// PUT /subjects/:id
func (h *SubjectHandler) Update(c *fiber.Ctx) error {
	subjectID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid subject ID")
	}

	var req UpdateSubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	var subject model.Subject
	if err := h.db.First(&subject, subjectID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Subject not found")
		}
		return response.InternalServerError(c, "Failed to fetch subject")
	}

	if req.Name != "" {
		subject.Name = validation.SanitizeString(req.Name)
	}
	if req.Code != "" && req.Code != subject.Code {
		var existing model.Subject
		if err := h.db.Where("code = ? AND id <> ?", req.Code, subject.ID).First(&existing).Error; err == nil {
			return response.Conflict(c, "Subject with this code already exists")
		}
		subject.Code = req.Code
	}

	if err := h.db.Save(&subject).Error; err != nil {
		return response.InternalServerError(c, "Failed to update subject")
	}
	return response.Success(c, subject)
}

// Delete removes a subject that has no recorded grades
// DELETE /subjects/:id
func (h *SubjectHandler) Delete(c *fiber.Ctx) error {
	subjectID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid subject ID")
	}

	var gradeCount int64
	h.db.Model(&model.Grade{}).Where("subject_id = ?", subjectID).Count(&gradeCount)
	if gradeCount > 0 {
		return response.Conflict(c, "Subject has recorded grades and cannot be deleted")
	}

	result := h.db.Delete(&model.Subject{}, subjectID)
	if result.Error != nil {
		return response.InternalServerError(c, "Failed to delete subject")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Subject not found")
	}

	return response.Success(c, fiber.Map{
		"message": "Subject deleted successfully",
	})
}
