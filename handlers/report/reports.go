package report

import (
	"errors"
	"strconv"

	"github.com/gapindang/rapor-api/services"
	"github.com/gapindang/rapor-api/utils/middleware"
	"github.com/gapindang/rapor-api/utils/response"
	"github.com/gapindang/rapor-api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ReportHandler handles report-card reads and homeroom writes
type ReportHandler struct {
	db        *gorm.DB
	reports   *services.ReportService
	years     *services.SchoolYearService
	validator *validation.Validator
}

// NewReportHandler creates a new report handler
func NewReportHandler(db *gorm.DB, reports *services.ReportService, years *services.SchoolYearService, validator *validation.Validator) *ReportHandler {
	return &ReportHandler{db: db, reports: reports, years: years, validator: validator}
}

// UpsertReportCardRequest represents the homeroom teacher's write
type UpsertReportCardRequest struct {
	StudentID            uint   `json:"student_id" validate:"required"`
	ClassID              uint   `json:"class_id" validate:"required"`
	SchoolYearID         uint   `json:"school_year_id"` // defaults to the active year
	HomeroomComment      string `json:"homeroom_comment"`
	HomeroomCommendation string `json:"homeroom_commendation"`
}

// Upsert creates or updates a student's report card
// PUT /reports
func (h *ReportHandler) Upsert(c *fiber.Ctx) error {
	caller, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req UpsertReportCardRequest
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

	rc, err := h.reports.UpsertReportCard(c.Context(), caller, services.UpsertReportCardRequest{
		StudentID:            req.StudentID,
		SchoolYearID:         schoolYearID,
		ClassID:              req.ClassID,
		HomeroomComment:      req.HomeroomComment,
		HomeroomCommendation: req.HomeroomCommendation,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotAssigned):
			return response.Forbidden(c, "Only the homeroom teacher or an admin may write this report card")
		case errors.Is(err, services.ErrClassNotFound):
			return response.NotFound(c, "Class not found")
		case errors.Is(err, services.ErrStudentNotFound):
			return response.NotFound(c, "Student is not enrolled in this class")
		default:
			return response.InternalServerError(c, "Failed to save report card")
		}
	}

	return response.Success(c, rc)
}

// Get returns the assembled report-card view for one report card
// GET /reports/:reportID
func (h *ReportHandler) Get(c *fiber.Ctx) error {
	caller, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	reportID, err := strconv.ParseUint(c.Params("reportID"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid report card ID")
	}

	allowed, _, err := h.reports.CanAccessReportCard(c.Context(), caller, uint(reportID))
	if err != nil {
		if errors.Is(err, services.ErrReportCardNotFound) {
			return response.NotFound(c, "Report card not found")
		}
		return response.InternalServerError(c, "Failed to check report card access")
	}
	if !allowed {
		return response.Forbidden(c, "You do not have access to this report card")
	}

	view, err := h.reports.BuildViewByReportID(c.Context(), uint(reportID))
	if err != nil {
		return viewError(c, err)
	}

	return response.Success(c, view)
}

// GetMine returns the calling student's report card for the active year.
// The view is assembled even when no report card row exists yet, so a
// student can always see their recorded grades.
// GET /reports/me
func (h *ReportHandler) GetMine(c *fiber.Ctx) error {
	caller, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	view, err := h.reports.BuildViewForStudent(c.Context(), caller.ID)
	if err != nil {
		return viewError(c, err)
	}

	return response.Success(c, view)
}

// viewError maps view-assembly errors onto HTTP responses. Shared by the
// read and export handlers so both paths report the same statuses.
func viewError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrStudentNotFound):
		return response.NotFound(c, "Student not found")
	case errors.Is(err, services.ErrClassNotFound):
		return response.NotFound(c, "Student is not enrolled in any class this year")
	case errors.Is(err, services.ErrSchoolYearNotFound):
		return response.ServiceUnavailable(c, "No active school year configured")
	case errors.Is(err, services.ErrReportCardNotFound):
		return response.NotFound(c, "Report card not found")
	default:
		return response.InternalServerError(c, "Failed to build report card")
	}
}
