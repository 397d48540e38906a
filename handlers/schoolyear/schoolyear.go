package schoolyear

import (
	"errors"
	"strconv"
	"time"

	"github.com/gapindang/rapor-api/model"
	"github.com/gapindang/rapor-api/services"
	"github.com/gapindang/rapor-api/utils/response"
	"github.com/gapindang/rapor-api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SchoolYearHandler handles academic-year administration
type SchoolYearHandler struct {
	db        *gorm.DB
	years     *services.SchoolYearService
	validator *validation.Validator
}

// NewSchoolYearHandler creates a new school year handler
func NewSchoolYearHandler(db *gorm.DB, years *services.SchoolYearService, validator *validation.Validator) *SchoolYearHandler {
	return &SchoolYearHandler{db: db, years: years, validator: validator}
}

// CreateSchoolYearRequest represents a new academic period
type CreateSchoolYearRequest struct {
	Label     string `json:"label" validate:"required"` // e.g. "2024/2025"
	Semester  int    `json:"semester" validate:"required,oneof=1 2"`
	StartDate string `json:"start_date" validate:"required"` // YYYY-MM-DD
	EndDate   string `json:"end_date" validate:"required"`
}

// Create registers a new school year; it starts inactive
// POST /school-years
func (h *SchoolYearHandler) Create(c *fiber.Ctx) error {
	var req CreateSchoolYearRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return response.BadRequest(c, "start_date must be YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return response.BadRequest(c, "end_date must be YYYY-MM-DD")
	}
	if !end.After(start) {
		return response.BadRequest(c, "end_date must be after start_date")
	}

	var existing model.SchoolYear
	if err := h.db.Where("label = ? AND semester = ?", req.Label, req.Semester).First(&existing).Error; err == nil {
		return response.Conflict(c, "School year with this label and semester already exists")
	}

	year := model.SchoolYear{
		Label:     req.Label,
		Semester:  req.Semester,
		StartDate: start,
		EndDate:   end,
		Active:    false,
	}
	if err := h.db.Create(&year).Error; err != nil {
		return response.InternalServerError(c, "Failed to create school year")
	}

	return response.Created(c, year)
}

// List returns all school years, newest first
// GET /school-years
func (h *SchoolYearHandler) List(c *fiber.Ctx) error {
	var years []model.SchoolYear
	if err := h.db.Order("start_date desc").Find(&years).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch school years")
	}
	return response.Success(c, years)
}

// GetActive returns the single active school year
// GET /school-years/active
func (h *SchoolYearHandler) GetActive(c *fiber.Ctx) error {
	year, err := h.years.ActiveSchoolYear(c.Context())
	if err != nil {
		if errors.Is(err, services.ErrSchoolYearNotFound) {
			return response.NotFound(c, "No active school year")
		}
		return response.InternalServerError(c, "Failed to fetch active school year")
	}
	return response.Success(c, year)
}

// Activate makes one school year active and deactivates all others
// POST /school-years/:id/activate
func (h *SchoolYearHandler) Activate(c *fiber.Ctx) error {
	yearID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid school year ID")
	}

	year, err := h.years.Activate(c.Context(), uint(yearID))
	if err != nil {
		if errors.Is(err, services.ErrSchoolYearNotFound) {
			return response.NotFound(c, "School year not found")
		}
		return response.InternalServerError(c, "Failed to activate school year")
	}

	return response.Success(c, year)
}
