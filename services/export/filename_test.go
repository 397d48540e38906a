package export

import (
	"testing"
	"time"

	"github.com/gapindang/rapor-api/services"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Ani Yudhoyono", "ani_yudhoyono"},
		{"Budi/Santoso", "budi_santoso"},
		{"  spaced  out  ", "spaced_out"},
		{"O'Brien-Jr.", "o_brien_jr"},
		{"2024/2025", "2024_2025"},
		{"ALL CAPS", "all_caps"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStudentFilename(t *testing.T) {
	view := services.ReportCardView{
		StudentName: "Ani Yudhoyono",
		SchoolYear:  "2024/2025",
	}
	got := StudentFilename(&view, "pdf")
	want := "Rapor_ani_yudhoyono_2024_2025.pdf"
	if got != want {
		t.Errorf("StudentFilename = %q, want %q", got, want)
	}
}

func TestBulkFilename(t *testing.T) {
	if got := BulkFilename("csv"); got != "rapor_all.csv" {
		t.Errorf("BulkFilename = %q", got)
	}
}

func TestArchiveKey(t *testing.T) {
	now := time.Date(2025, 6, 20, 15, 4, 5, 0, time.UTC)
	got := ArchiveKey(now)
	want := "archives/rapor_all_2025-06-20.pdf"
	if got != want {
		t.Errorf("ArchiveKey = %q, want %q", got, want)
	}
}
