package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gapindang/rapor-api/services"
	"github.com/gapindang/rapor-api/services/export"
	"github.com/gapindang/rapor-api/services/storage"
	"github.com/gapindang/rapor-api/utils/middleware"
	"github.com/gapindang/rapor-api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// ExportHandler orchestrates report-card downloads and archival. Every
// format renders from the same assembled views, so CSV, JSON, XLSX, and
// PDF always agree on content.
type ExportHandler struct {
	reports *services.ReportService
	spaces  *storage.SpacesClient // nil when archival is not configured
}

// NewExportHandler creates a new export handler
func NewExportHandler(reports *services.ReportService, spaces *storage.SpacesClient) *ExportHandler {
	return &ExportHandler{reports: reports, spaces: spaces}
}

var exportContentTypes = map[string]string{
	"csv":  export.ContentTypeCSV,
	"json": export.ContentTypeJSON,
	"xlsx": export.ContentTypeXLSX,
	"pdf":  export.ContentTypePDF,
}

// ExportAll downloads every student's report card in one file
// GET /reports/export/:format?detail=1
func (h *ExportHandler) ExportAll(c *fiber.Ctx) error {
	format := c.Params("format")
	if _, ok := exportContentTypes[format]; !ok {
		return response.BadRequest(c, "Unsupported export format")
	}

	views, err := h.reports.BuildAllViews(c.Context())
	if err != nil {
		if errors.Is(err, services.ErrSchoolYearNotFound) {
			return response.ServiceUnavailable(c, "No active school year configured")
		}
		return response.InternalServerError(c, "Failed to assemble report cards")
	}

	data, err := renderViews(views, format, c.QueryBool("detail"), true)
	if err != nil {
		return response.InternalServerError(c, "Failed to render export")
	}

	return sendAttachment(c, data, exportContentTypes[format], export.BulkFilename(format))
}

// ExportOne downloads a single report card by ID, subject to the same
// access rules as reading it
// GET /reports/:reportID/export/:format?detail=1
func (h *ExportHandler) ExportOne(c *fiber.Ctx) error {
	caller, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	format := c.Params("format")
	if _, ok := exportContentTypes[format]; !ok {
		return response.BadRequest(c, "Unsupported export format")
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

	return h.sendSingle(c, view, format, c.QueryBool("detail"))
}

// ExportMine downloads the calling student's own report card
// GET /reports/me/export/:format?detail=1
func (h *ExportHandler) ExportMine(c *fiber.Ctx) error {
	caller, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	format := c.Params("format")
	if _, ok := exportContentTypes[format]; !ok {
		return response.BadRequest(c, "Unsupported export format")
	}

	view, err := h.reports.BuildViewForStudent(c.Context(), caller.ID)
	if err != nil {
		return viewError(c, err)
	}

	return h.sendSingle(c, view, format, c.QueryBool("detail"))
}

// Archive renders the bulk PDF and stores it in object storage
// POST /reports/archive
func (h *ExportHandler) Archive(c *fiber.Ctx) error {
	if h.spaces == nil {
		return response.ServiceUnavailable(c, "Archive storage is not configured")
	}

	views, err := h.reports.BuildAllViews(c.Context())
	if err != nil {
		if errors.Is(err, services.ErrSchoolYearNotFound) {
			return response.ServiceUnavailable(c, "No active school year configured")
		}
		return response.InternalServerError(c, "Failed to assemble report cards")
	}

	data, err := export.RenderPDF(views, export.PDFOptions{Bulk: true})
	if err != nil {
		return response.InternalServerError(c, "Failed to render archive")
	}

	key := export.ArchiveKey(time.Now())
	url, err := h.spaces.UploadBytes(c.Context(), key, data, export.ContentTypePDF)
	if err != nil {
		return response.InternalServerError(c, "Failed to upload archive")
	}

	return response.Created(c, fiber.Map{
		"key":      key,
		"url":      url,
		"students": len(views),
	})
}

// ListArchives lists previously stored archives with time-limited
// download links
// GET /reports/archive
func (h *ExportHandler) ListArchives(c *fiber.Ctx) error {
	if h.spaces == nil {
		return response.ServiceUnavailable(c, "Archive storage is not configured")
	}

	keys, err := h.spaces.ListArchives(c.Context(), "archives/")
	if err != nil {
		return response.InternalServerError(c, "Failed to list archives")
	}

	archives := make([]fiber.Map, 0, len(keys))
	for _, key := range keys {
		url, err := h.spaces.GetPresignedURL(key, time.Hour)
		if err != nil {
			return response.InternalServerError(c, "Failed to sign archive URL")
		}
		archives = append(archives, fiber.Map{"key": key, "url": url})
	}

	return response.Success(c, fiber.Map{"archives": archives})
}

// sendSingle renders one view in the requested format. JSON emits the
// object itself rather than a one-element array.
func (h *ExportHandler) sendSingle(c *fiber.Ctx, view *services.ReportCardView, format string, detail bool) error {
	var data []byte
	var err error

	if format == "json" {
		data, err = json.MarshalIndent(view, "", "  ")
	} else {
		data, err = renderViews([]services.ReportCardView{*view}, format, detail, false)
	}
	if err != nil {
		return response.InternalServerError(c, "Failed to render export")
	}

	return sendAttachment(c, data, exportContentTypes[format], export.StudentFilename(view, format))
}

// renderViews dispatches to the per-format renderer. The detail flag
// switches CSV and XLSX to the per-subject layout; JSON always carries
// full detail and PDF is inherently detailed.
func renderViews(views []services.ReportCardView, format string, detail, bulk bool) ([]byte, error) {
	switch format {
	case "csv":
		var buf bytes.Buffer
		var err error
		if detail {
			err = export.WriteCSVDetail(&buf, views)
		} else {
			err = export.WriteCSV(&buf, views)
		}
		if err != nil {
			return nil, err
		}
		return buf.Bytes(), nil

	case "json":
		return json.MarshalIndent(views, "", "  ")

	case "xlsx":
		var buf *bytes.Buffer
		var err error
		if detail {
			buf, err = export.WriteXLSXDetail(views)
		} else {
			buf, err = export.WriteXLSX(views)
		}
		if err != nil {
			return nil, err
		}
		return buf.Bytes(), nil

	case "pdf":
		return export.RenderPDF(views, export.PDFOptions{Bulk: bulk})

	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// sendAttachment writes the download headers and body. The payload is
// fully rendered before any header is set, so a render failure can still
// produce a clean error response.
func sendAttachment(c *fiber.Ctx, data []byte, contentType, filename string) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(data)
}
