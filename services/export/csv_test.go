package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/gapindang/rapor-api/services"
)

func fp(v float64) *float64 { return &v }

func sampleView() services.ReportCardView {
	issued := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	return services.ReportCardView{
		StudentName: "Ani",
		NISN:        "1001",
		ClassName:   "X-A",
		SchoolYear:  "2024/2025",
		Semester:    "Ganjil",
		Grades: []services.SubjectGradeView{
			{SubjectName: "Matematika", TeacherName: "Budi", UTS: fp(80), UAS: fp(75), Final: fp(77.5), Comment: "Baik"},
			{SubjectName: "Fisika", TeacherName: "Budi", UAS: fp(90), Final: fp(90)},
		},
		Average:             77.5,
		HasGrades:           true,
		Status:              services.StatusLulus,
		HomeroomTeacherName: "Siti",
		HomeroomTeacherNIP:  "197001011995032001",
		IssuedAt:            &issued,
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, []services.ReportCardView{sampleView()}); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want header + 1 row", len(records))
	}
	if records[0][0] != "Nama Siswa" || records[0][4] != "Rata-rata Nilai" {
		t.Errorf("unexpected header: %v", records[0])
	}

	row := records[1]
	want := []string{"Ani", "1001", "X-A", "2024/2025", "77.5"}
	for i, w := range want {
		if row[i] != w {
			t.Errorf("column %d = %q, want %q", i, row[i], w)
		}
	}
	if row[7] != "2025-06-20" {
		t.Errorf("date column = %q, want 2025-06-20", row[7])
	}
}

// Text columns are wrapped in quotes even when plain, numeric columns
// stay bare. Asserted on the raw line because parsing the CSV back
// strips the quoting.
func TestWriteCSVRawRow(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, []services.ReportCardView{sampleView()}); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want header + 1 row", len(lines))
	}

	want := `"Ani","1001","X-A","2024/2025",77.5,"","","2025-06-20"`
	if lines[1] != want {
		t.Errorf("row = %s, want %s", lines[1], want)
	}
}

func TestWriteCSVDetailRawRow(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSVDetail(&buf, []services.ReportCardView{sampleView()}); err != nil {
		t.Fatalf("WriteCSVDetail: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows", len(lines))
	}

	want := `"Ani","1001","X-A","2024/2025","Matematika","Budi",80,75,77.5,"Baik",""`
	if lines[1] != want {
		t.Errorf("row = %s, want %s", lines[1], want)
	}
	// Fisika has no UTS: the numeric cell is empty, not quoted or "0"
	want = `"Ani","1001","X-A","2024/2025","Fisika","Budi",,90,90,"",""`
	if lines[2] != want {
		t.Errorf("row = %s, want %s", lines[2], want)
	}
}

// Embedded quotes must survive via RFC 4180 doubling, not escaping
func TestWriteCSVQuoting(t *testing.T) {
	view := sampleView()
	view.HomeroomComment = `Dia bilang "hebat", lalu pergi`

	var buf bytes.Buffer
	if err := WriteCSV(&buf, []services.ReportCardView{view}); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	raw := buf.String()
	if !strings.Contains(raw, `"Dia bilang ""hebat"", lalu pergi"`) {
		t.Errorf("quotes not doubled in output:\n%s", raw)
	}

	records, err := csv.NewReader(strings.NewReader(raw)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if got := records[1][5]; got != view.HomeroomComment {
		t.Errorf("comment round trip = %q, want %q", got, view.HomeroomComment)
	}
}

func TestWriteCSVDetail(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSVDetail(&buf, []services.ReportCardView{sampleView()}); err != nil {
		t.Fatalf("WriteCSVDetail: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	// header + one row per subject
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}

	math := records[1]
	if math[4] != "Matematika" || math[6] != "80" || math[7] != "75" || math[8] != "77.5" {
		t.Errorf("unexpected subject row: %v", math)
	}

	// An unrecorded UTS stays empty, never "0" or "null"
	fisika := records[2]
	if fisika[6] != "" {
		t.Errorf("missing UTS rendered as %q, want empty", fisika[6])
	}
	if fisika[7] != "90" {
		t.Errorf("UAS = %q, want 90", fisika[7])
	}
}

// A student without any grades still appears in the detail export
func TestWriteCSVDetailPlaceholderRow(t *testing.T) {
	view := sampleView()
	view.Grades = nil
	view.HasGrades = false

	var buf bytes.Buffer
	if err := WriteCSVDetail(&buf, []services.ReportCardView{view}); err != nil {
		t.Fatalf("WriteCSVDetail: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want header + placeholder row", len(records))
	}
	if records[1][0] != "Ani" || records[1][4] != "" {
		t.Errorf("unexpected placeholder row: %v", records[1])
	}
}

func TestFormatAverage(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{77.5, "77.5"},
		{80, "80"},
		{72.25, "72.25"},
		{0, "0"},
	}
	for _, tt := range tests {
		if got := formatAverage(tt.in); got != tt.want {
			t.Errorf("formatAverage(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
