package export

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/gapindang/rapor-api/services"
	"github.com/ledongthuc/pdf"
)

func parsePDF(t *testing.T, data []byte) *pdf.Reader {
	t.Helper()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("output is not a parseable PDF: %v", err)
	}
	return r
}

func pageText(t *testing.T, r *pdf.Reader, page int) string {
	t.Helper()
	text, err := r.Page(page).GetPlainText(nil)
	if err != nil {
		t.Fatalf("failed to extract text from page %d: %v", page, err)
	}
	return text
}

func TestRenderPDFSingleStudent(t *testing.T) {
	data, err := RenderPDF([]services.ReportCardView{sampleView()}, PDFOptions{})
	if err != nil {
		t.Fatalf("RenderPDF: %v", err)
	}

	r := parsePDF(t, data)
	if r.NumPage() != 1 {
		t.Fatalf("got %d pages, want 1", r.NumPage())
	}

	text := pageText(t, r, 1)
	for _, want := range []string{"RAPOR SISWA", "Ani", "Matematika", "77.50", "Lulus", "Siti"} {
		if !strings.Contains(text, want) {
			t.Errorf("page text missing %q", want)
		}
	}
}

func TestRenderPDFNoGrades(t *testing.T) {
	view := sampleView()
	view.Grades = nil
	view.HasGrades = false
	view.Average = 0
	view.Status = services.StatusTidakLulus

	data, err := RenderPDF([]services.ReportCardView{view}, PDFOptions{})
	if err != nil {
		t.Fatalf("RenderPDF: %v", err)
	}

	text := pageText(t, parsePDF(t, data), 1)
	if !strings.Contains(text, "Belum ada nilai") {
		t.Error("missing no-grades placeholder")
	}
	if !strings.Contains(text, "Belum mengikuti tes kepribadian") {
		t.Error("missing personality placeholder")
	}
}

// A long subject table must flow onto a second page with the table
// header drawn again.
func TestRenderPDFPagination(t *testing.T) {
	view := sampleView()
	view.Grades = nil
	for i := 0; i < 30; i++ {
		view.Grades = append(view.Grades, services.SubjectGradeView{
			SubjectName: fmt.Sprintf("Mapel %02d", i+1),
			TeacherName: "Budi",
			UTS:         fp(80),
			UAS:         fp(80),
			Final:       fp(80),
		})
	}

	// A row height chosen so roughly twenty rows fit per page
	data, err := RenderPDF([]services.ReportCardView{view}, PDFOptions{RowHeight: 30})
	if err != nil {
		t.Fatalf("RenderPDF: %v", err)
	}

	r := parsePDF(t, data)
	if r.NumPage() != 2 {
		t.Fatalf("got %d pages, want 2", r.NumPage())
	}

	for page := 1; page <= 2; page++ {
		if !strings.Contains(pageText(t, r, page), "Mata Pelajaran") {
			t.Errorf("table header missing on page %d", page)
		}
	}

	// No row may be lost across the page break
	all := pageText(t, r, 1) + pageText(t, r, 2)
	for _, name := range []string{"Mapel 01", "Mapel 21", "Mapel 22", "Mapel 30"} {
		if !strings.Contains(all, name) {
			t.Errorf("row %q missing from paginated output", name)
		}
	}
}

// Bulk mode gives every student their own page
func TestRenderPDFBulk(t *testing.T) {
	views := make([]services.ReportCardView, 0, 3)
	for _, name := range []string{"Ani", "Budi", "Citra"} {
		v := sampleView()
		v.StudentName = name
		views = append(views, v)
	}

	data, err := RenderPDF(views, PDFOptions{Bulk: true})
	if err != nil {
		t.Fatalf("RenderPDF: %v", err)
	}

	r := parsePDF(t, data)
	if r.NumPage() != 3 {
		t.Fatalf("got %d pages, want 3", r.NumPage())
	}
	for i, name := range []string{"Ani", "Budi", "Citra"} {
		if !strings.Contains(pageText(t, r, i+1), name) {
			t.Errorf("page %d missing student %q", i+1, name)
		}
	}
}
