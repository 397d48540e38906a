package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gapindang/rapor-api/services"
	"github.com/go-pdf/fpdf"
)

// Layout constants, in points on an A4 page
const (
	pdfMarginSingle = 40.0
	pdfMarginBulk   = 30.0

	pdfDefaultRowHeight = 18.0
	pdfLineHeight       = 14.0

	// Space required before starting these blocks on the current page.
	// Empirically chosen with headroom for varying description lengths;
	// not derived from measured content height.
	personalityMinSpace = 150.0
	signatureMinSpace   = 100.0

	commentMaxChars     = 55  // table comment cells
	descriptionMaxChars = 400 // personality description prose
)

// Base column-width ratios of the subject-grade table. Actual widths are
// distributed proportionally across the printable width, so the layout
// adapts to other page sizes without reflowing.
var (
	gradeColRatios = []float64{0.05, 0.22, 0.18, 0.08, 0.08, 0.11, 0.28}
	gradeColTitles = []string{"No", "Mata Pelajaran", "Guru", "UTS", "UAS", "Akhir", "Komentar"}
	gradeColAligns = []string{"C", "L", "L", "C", "C", "C", "L"}
)

// PDFOptions selects the document mode
type PDFOptions struct {
	// Bulk switches to the tighter all-students margin
	Bulk bool
	// RowHeight overrides the grade-table row height; zero keeps the
	// default. Mainly a seam for pagination tests.
	RowHeight float64
}

// pdfWriter renders report cards into one fpdf document. It is built per
// request and must not be shared across goroutines.
type pdfWriter struct {
	doc       *fpdf.Fpdf
	margin    float64
	pageW     float64
	pageH     float64
	rowHeight float64
	colWidths []float64
}

// RenderPDF produces the paginated report-card document: one multi-section
// report per view, each starting on a fresh page. The whole document is
// buffered in memory; callers stream the returned bytes.
func RenderPDF(views []services.ReportCardView, opts PDFOptions) ([]byte, error) {
	margin := pdfMarginSingle
	if opts.Bulk {
		margin = pdfMarginBulk
	}
	rowHeight := pdfDefaultRowHeight
	if opts.RowHeight > 0 {
		rowHeight = opts.RowHeight
	}

	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetMargins(margin, margin, margin)
	// Page breaks are decided row by row below, never by fpdf itself
	doc.SetAutoPageBreak(false, margin)

	w := &pdfWriter{
		doc:       doc,
		margin:    margin,
		rowHeight: rowHeight,
	}
	w.pageW, w.pageH = doc.GetPageSize()
	w.colWidths = distributeWidths(gradeColRatios, w.pageW-2*margin)

	for i := range views {
		w.renderStudent(&views[i])
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// distributeWidths spreads the printable width across the base ratios
func distributeWidths(ratios []float64, printable float64) []float64 {
	var sum float64
	for _, r := range ratios {
		sum += r
	}
	widths := make([]float64, len(ratios))
	for i, r := range ratios {
		widths[i] = r / sum * printable
	}
	return widths
}

// bottomY is the lowest usable vertical cursor position
func (w *pdfWriter) bottomY() float64 {
	return w.pageH - w.margin
}

// ensureSpace starts a new page when fewer than need points remain
func (w *pdfWriter) ensureSpace(need float64) {
	if w.doc.GetY()+need > w.bottomY() {
		w.doc.AddPage()
	}
}

func (w *pdfWriter) renderStudent(v *services.ReportCardView) {
	w.doc.AddPage()

	w.renderTitle(v)
	w.renderIdentity(v)

	if v.HasGrades {
		w.renderGradeTable(v)
	} else {
		w.doc.SetFont("Helvetica", "I", 10)
		w.doc.CellFormat(0, pdfLineHeight, "Belum ada nilai yang tercatat.", "", 1, "L", false, 0, "")
	}

	w.renderAverage(v)
	w.renderPersonality(v)
	w.renderHomeroomNotes(v)
	w.renderSignature(v)
}

func (w *pdfWriter) renderTitle(v *services.ReportCardView) {
	w.doc.SetFont("Helvetica", "B", 16)
	w.doc.CellFormat(0, 22, "RAPOR SISWA", "", 1, "C", false, 0, "")
	w.doc.SetFont("Helvetica", "", 11)
	subtitle := fmt.Sprintf("Tahun Ajaran %s - Semester %s", v.SchoolYear, v.Semester)
	w.doc.CellFormat(0, pdfLineHeight, subtitle, "", 1, "C", false, 0, "")
	w.doc.Ln(8)
}

func (w *pdfWriter) renderIdentity(v *services.ReportCardView) {
	const labelWidth = 110.0
	rows := [][2]string{
		{"Nama Siswa", v.StudentName},
		{"NISN", v.NISN},
		{"Kelas", v.ClassName},
	}
	w.doc.SetFont("Helvetica", "", 11)
	for _, row := range rows {
		w.doc.CellFormat(labelWidth, pdfLineHeight, row[0], "", 0, "L", false, 0, "")
		w.doc.CellFormat(0, pdfLineHeight, ": "+row[1], "", 1, "L", false, 0, "")
	}
	w.doc.Ln(10)
}

// renderGradeTable draws the subject table with a running vertical
// cursor. Before each row, a row that would cross the printable area
// forces a new page and the table header is drawn again.
func (w *pdfWriter) renderGradeTable(v *services.ReportCardView) {
	w.renderGradeHeader()

	w.doc.SetFont("Helvetica", "", 9)
	for i, g := range v.Grades {
		if w.doc.GetY()+w.rowHeight > w.bottomY() {
			w.doc.AddPage()
			w.renderGradeHeader()
			w.doc.SetFont("Helvetica", "", 9)
		}

		cells := []string{
			fmt.Sprintf("%d", i+1),
			truncate(g.SubjectName, 28),
			truncate(g.TeacherName, 24),
			formatScore(g.UTS),
			formatScore(g.UAS),
			formatScore(g.Final),
			truncate(g.Comment, commentMaxChars),
		}
		for c, text := range cells {
			w.doc.CellFormat(w.colWidths[c], w.rowHeight, text, "1", 0, gradeColAligns[c], false, 0, "")
		}
		w.doc.Ln(w.rowHeight)
	}
	w.doc.Ln(6)
}

func (w *pdfWriter) renderGradeHeader() {
	w.doc.SetFont("Helvetica", "B", 9)
	for c, title := range gradeColTitles {
		w.doc.CellFormat(w.colWidths[c], w.rowHeight, title, "1", 0, "C", false, 0, "")
	}
	w.doc.Ln(w.rowHeight)
}

func (w *pdfWriter) renderAverage(v *services.ReportCardView) {
	w.doc.SetFont("Helvetica", "B", 11)
	line := fmt.Sprintf("Rata-rata Nilai: %.2f (%s)", v.Average, v.Status)
	w.doc.CellFormat(0, pdfLineHeight, line, "", 1, "L", false, 0, "")
	w.doc.Ln(8)
}

func (w *pdfWriter) renderPersonality(v *services.ReportCardView) {
	w.ensureSpace(personalityMinSpace)

	w.doc.SetFont("Helvetica", "B", 12)
	w.doc.CellFormat(0, pdfLineHeight, "Hasil Tes Kepribadian", "", 1, "L", false, 0, "")

	if v.Personality == nil {
		w.doc.SetFont("Helvetica", "I", 10)
		w.doc.CellFormat(0, pdfLineHeight, "Belum mengikuti tes kepribadian.", "", 1, "L", false, 0, "")
		w.doc.Ln(8)
		return
	}

	p := v.Personality
	w.doc.SetFont("Helvetica", "B", 11)
	w.doc.CellFormat(0, pdfLineHeight, "Tipe: "+p.TypeCode, "", 1, "L", false, 0, "")

	w.doc.SetFont("Helvetica", "", 10)
	w.doc.MultiCell(0, pdfLineHeight, truncate(p.Description, descriptionMaxChars), "", "L", false)

	if len(p.Strengths) > 0 {
		w.doc.CellFormat(0, pdfLineHeight, "Kekuatan: "+strings.Join(p.Strengths, ", "), "", 1, "L", false, 0, "")
	}
	if p.LearningStyle != "" {
		w.doc.CellFormat(0, pdfLineHeight, "Gaya Belajar: "+p.LearningStyle, "", 1, "L", false, 0, "")
	}
	if len(p.Recommendations) > 0 {
		w.doc.CellFormat(0, pdfLineHeight, "Saran Belajar: "+strings.Join(p.Recommendations, ", "), "", 1, "L", false, 0, "")
	}
	w.doc.Ln(8)
}

// renderHomeroomNotes draws the homeroom comment/commendation block, or
// nothing at all when both are empty
func (w *pdfWriter) renderHomeroomNotes(v *services.ReportCardView) {
	if v.HomeroomComment == "" && v.HomeroomCommendation == "" {
		return
	}

	w.ensureSpace(4 * pdfLineHeight)

	w.doc.SetFont("Helvetica", "B", 12)
	w.doc.CellFormat(0, pdfLineHeight, "Catatan Wali Kelas", "", 1, "L", false, 0, "")
	w.doc.SetFont("Helvetica", "", 10)
	if v.HomeroomComment != "" {
		w.doc.MultiCell(0, pdfLineHeight, "Komentar: "+truncate(v.HomeroomComment, descriptionMaxChars), "", "L", false)
	}
	if v.HomeroomCommendation != "" {
		w.doc.MultiCell(0, pdfLineHeight, "Apresiasi: "+truncate(v.HomeroomCommendation, descriptionMaxChars), "", "L", false)
	}
	w.doc.Ln(8)
}

// renderSignature places the homeroom teacher's signature block
// right-aligned near the bottom of the final page
func (w *pdfWriter) renderSignature(v *services.ReportCardView) {
	w.ensureSpace(signatureMinSpace)

	y := w.bottomY() - 4.5*pdfLineHeight
	if w.doc.GetY() < y {
		w.doc.SetY(y)
	}

	w.doc.SetFont("Helvetica", "", 10)
	w.doc.CellFormat(0, pdfLineHeight, "Wali Kelas,", "", 1, "R", false, 0, "")
	w.doc.Ln(2 * pdfLineHeight)
	w.doc.SetFont("Helvetica", "BU", 10)
	w.doc.CellFormat(0, pdfLineHeight, v.HomeroomTeacherName, "", 1, "R", false, 0, "")
	w.doc.SetFont("Helvetica", "", 9)
	w.doc.CellFormat(0, pdfLineHeight, "NIP. "+v.HomeroomTeacherNIP, "", 1, "R", false, 0, "")
}
