package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/gapindang/rapor-api/services"
)

// Content types for the export formats
const (
	ContentTypeCSV  = "text/csv"
	ContentTypeJSON = "application/json"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
)

// SanitizeFilename lower-cases a display name and reduces it to
// alphanumerics and underscores so it is safe inside a filename. Runs of
// other characters (slashes, spaces, punctuation) collapse into a single
// underscore.
func SanitizeFilename(name string) string {
	var b strings.Builder
	lastUnderscore := true // trim leading separators
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// StudentFilename builds the single-student download filename,
// e.g. Rapor_ani_2024_2025.pdf
func StudentFilename(view *services.ReportCardView, ext string) string {
	name := SanitizeFilename(view.StudentName)
	if name == "" {
		name = "siswa"
	}
	year := SanitizeFilename(view.SchoolYear)
	return fmt.Sprintf("Rapor_%s_%s.%s", name, year, ext)
}

// BulkFilename builds the all-students download filename
func BulkFilename(ext string) string {
	return fmt.Sprintf("rapor_all.%s", ext)
}

// ArchiveKey builds the object-storage key for an archived bulk export
func ArchiveKey(now time.Time) string {
	return fmt.Sprintf("archives/rapor_all_%s.pdf", now.Format("2006-01-02"))
}
