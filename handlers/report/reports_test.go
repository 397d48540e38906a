package report

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gapindang/rapor-api/services"
	"github.com/gofiber/fiber/v2"
)

// Both the read and the export handlers report view-assembly failures
// through the same mapping, so a report card that disappears between the
// access check and the build yields a 404, never a 500.
func TestViewErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"report card missing", services.ErrReportCardNotFound, fiber.StatusNotFound},
		{"student missing", services.ErrStudentNotFound, fiber.StatusNotFound},
		{"no class enrollment", services.ErrClassNotFound, fiber.StatusNotFound},
		{"no active year", services.ErrSchoolYearNotFound, fiber.StatusServiceUnavailable},
		{"unclassified", errors.New("connection reset"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return viewError(c, tt.err)
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}
