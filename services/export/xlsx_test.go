package export

import (
	"bytes"
	"testing"

	"github.com/gapindang/rapor-api/services"
	"github.com/xuri/excelize/v2"
)

func TestWriteXLSX(t *testing.T) {
	buf, err := WriteXLSX([]services.ReportCardView{sampleView()})
	if err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("output is not a readable workbook: %v", err)
	}
	defer f.Close()

	if f.GetSheetName(0) != SheetRapor {
		t.Errorf("sheet name = %q, want %q", f.GetSheetName(0), SheetRapor)
	}

	rows, err := f.GetRows(SheetRapor)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want header + 1 student", len(rows))
	}
	if rows[0][0] != "Nama Siswa" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "Ani" || rows[1][4] != "77.5" {
		t.Errorf("student row = %v", rows[1])
	}
}

func TestWriteXLSXDetail(t *testing.T) {
	buf, err := WriteXLSXDetail([]services.ReportCardView{sampleView()})
	if err != nil {
		t.Fatalf("WriteXLSXDetail: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("output is not a readable workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetRaporDetail)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	// header + one row per subject
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[1][4] != "Matematika" {
		t.Errorf("subject row = %v", rows[1])
	}

	// GetRows trims trailing empty cells; a missing UTS must either be
	// absent or an empty string, never "0"
	if len(rows[2]) > 6 && rows[2][6] == "0" {
		t.Errorf("missing UTS rendered as 0: %v", rows[2])
	}
}
