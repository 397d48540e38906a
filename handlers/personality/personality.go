package personality

import (
	"errors"
	"strconv"

	"github.com/gapindang/rapor-api/services"
	"github.com/gapindang/rapor-api/utils/middleware"
	"github.com/gapindang/rapor-api/utils/response"
	"github.com/gapindang/rapor-api/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// PersonalityHandler handles personality-test results
type PersonalityHandler struct {
	results   *services.PersonalityService
	validator *validation.Validator
}

// NewPersonalityHandler creates a new personality handler
func NewPersonalityHandler(results *services.PersonalityService, validator *validation.Validator) *PersonalityHandler {
	return &PersonalityHandler{results: results, validator: validator}
}

// SubmitRequest represents a student's personality-test outcome
type SubmitRequest struct {
	TypeCode        string   `json:"type_code" validate:"required,len=4,alpha"`
	Description     string   `json:"description" validate:"required"`
	Strengths       []string `json:"strengths"`
	LearningStyle   string   `json:"learning_style"`
	Recommendations []string `json:"recommendations"`
}

// Submit stores the calling student's test result; results are
// write-once and a second submission is rejected
// POST /personality
func (h *PersonalityHandler) Submit(c *fiber.Ctx) error {
	caller, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	result, err := h.results.Submit(c.Context(), services.SubmitRequest{
		StudentID:       caller.ID,
		TypeCode:        req.TypeCode,
		Description:     req.Description,
		Strengths:       req.Strengths,
		LearningStyle:   req.LearningStyle,
		Recommendations: req.Recommendations,
	})
	if err != nil {
		if errors.Is(err, services.ErrAlreadySubmitted) {
			return response.Conflict(c, "Personality test already submitted")
		}
		return response.InternalServerError(c, "Failed to save personality result")
	}

	return response.Created(c, result)
}

// GetMine returns the calling student's result
// GET /personality/me
func (h *PersonalityHandler) GetMine(c *fiber.Ctx) error {
	caller, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	result, err := h.results.Get(c.Context(), caller.ID)
	if err != nil {
		if errors.Is(err, services.ErrResultNotFound) {
			return response.NotFound(c, "Personality test not taken yet")
		}
		return response.InternalServerError(c, "Failed to fetch personality result")
	}

	return response.Success(c, result)
}

// Get returns a student's result by ID (admin only)
// GET /personality/:studentID
func (h *PersonalityHandler) Get(c *fiber.Ctx) error {
	studentID, err := strconv.ParseUint(c.Params("studentID"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid student ID")
	}

	result, err := h.results.Get(c.Context(), uint(studentID))
	if err != nil {
		if errors.Is(err, services.ErrResultNotFound) {
			return response.NotFound(c, "Personality result not found")
		}
		return response.InternalServerError(c, "Failed to fetch personality result")
	}

	return response.Success(c, result)
}

// Reset deletes a student's result so they can retake the test. This is
// the admin-only override of the write-once rule.
// DELETE /personality/:studentID
func (h *PersonalityHandler) Reset(c *fiber.Ctx) error {
	studentID, err := strconv.ParseUint(c.Params("studentID"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid student ID")
	}

	if err := h.results.Reset(c.Context(), uint(studentID)); err != nil {
		if errors.Is(err, services.ErrResultNotFound) {
			return response.NotFound(c, "Personality result not found")
		}
		return response.InternalServerError(c, "Failed to reset personality result")
	}

	return response.Success(c, fiber.Map{
		"message": "Personality result cleared",
	})
}
