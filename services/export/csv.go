package export

import (
	"io"
	"strconv"
	"strings"

	"github.com/gapindang/rapor-api/services"
)

// Column headers for the simple (one row per student) CSV export
var csvHeader = []string{
	"Nama Siswa", "NISN", "Kelas", "Tahun Ajaran",
	"Rata-rata Nilai", "Komentar", "Apresiasi", "Tanggal",
}

// Column headers for the detail (one row per student+subject) CSV export
var csvDetailHeader = []string{
	"Nama Siswa", "NISN", "Kelas", "Tahun Ajaran", "Mata Pelajaran",
	"Guru", "UTS", "UAS", "Nilai Akhir", "Komentar", "Apresiasi",
}

// quoteField wraps a text field in double quotes, doubling any embedded
// quotes per RFC 4180. Text columns are quoted even when empty so the row
// shape stays stable; numeric columns are emitted bare.
func quoteField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func writeRow(w io.Writer, fields []string) error {
	_, err := io.WriteString(w, strings.Join(fields, ",")+"\n")
	return err
}

// WriteCSV writes the simple bulk export: a header line and one row per
// student. Absent fields render as empty strings, never the word "null".
func WriteCSV(w io.Writer, views []services.ReportCardView) error {
	if err := writeRow(w, csvHeader); err != nil {
		return err
	}

	for i := range views {
		v := &views[i]
		record := []string{
			quoteField(v.StudentName),
			quoteField(v.NISN),
			quoteField(v.ClassName),
			quoteField(v.SchoolYear),
			formatAverage(v.Average),
			quoteField(v.HomeroomComment),
			quoteField(v.HomeroomCommendation),
			quoteField(formatDate(v.IssuedAt)),
		}
		if err := writeRow(w, record); err != nil {
			return err
		}
	}

	return nil
}

// WriteCSVDetail writes the detail export with per-subject columns: one
// row per student+subject pair. Students without grades still get a
// single placeholder row so nobody disappears from the export.
func WriteCSVDetail(w io.Writer, views []services.ReportCardView) error {
	if err := writeRow(w, csvDetailHeader); err != nil {
		return err
	}

	for i := range views {
		v := &views[i]
		if len(v.Grades) == 0 {
			record := []string{
				quoteField(v.StudentName), quoteField(v.NISN),
				quoteField(v.ClassName), quoteField(v.SchoolYear),
				quoteField(""), quoteField(""), "", "", "",
				quoteField(""), quoteField(""),
			}
			if err := writeRow(w, record); err != nil {
				return err
			}
			continue
		}
		for _, g := range v.Grades {
			record := []string{
				quoteField(v.StudentName),
				quoteField(v.NISN),
				quoteField(v.ClassName),
				quoteField(v.SchoolYear),
				quoteField(g.SubjectName),
				quoteField(g.TeacherName),
				formatScoreEmpty(g.UTS),
				formatScoreEmpty(g.UAS),
				formatScoreEmpty(g.Final),
				quoteField(g.Comment),
				quoteField(g.Commendation),
			}
			if err := writeRow(w, record); err != nil {
				return err
			}
		}
	}

	return nil
}

// formatAverage keeps the average compact: trailing zeros are trimmed so
// 77.5 stays "77.5" and 80 stays "80"
func formatAverage(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatScoreEmpty renders a nullable score, empty string when absent
func formatScoreEmpty(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
