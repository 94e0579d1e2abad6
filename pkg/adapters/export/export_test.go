package export

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/wadjakorntonsri/paylinks/pkg/core/domain"
	"github.com/xuri/excelize/v2"
)

func sampleSummary() *domain.LinkSummary {
	return &domain.LinkSummary{
		Title: "March Batch",
		Rows: []domain.EmployeeTotal{
			{EmployeeID: "EMP0001", Name: "Asha", EntryCount: 2, EmployeeTotal: decimal.RequireFromString("350.50")},
			{EmployeeID: "EMP0002", Name: "Ravi", EntryCount: 1, EmployeeTotal: decimal.RequireFromString("100")},
		},
		GrandTotal: decimal.RequireFromString("450.50"),
	}
}

func TestXLSXExport(t *testing.T) {
	var buf bytes.Buffer
	if err := NewXLSXExporter().Export(&buf, sampleSummary()); err != nil {
		t.Fatalf("Export: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatal(err)
	}
	if rows[0][0] != "March Batch" {
		t.Errorf("title cell = %q", rows[0][0])
	}
	if rows[3][1] != "Asha" || rows[4][1] != "Ravi" {
		t.Errorf("employee rows = %v", rows[3:5])
	}
	if rows[5][1] != "Grand total" {
		t.Errorf("total row = %v", rows[5])
	}
}

func TestPDFExport(t *testing.T) {
	var buf bytes.Buffer
	if err := NewPDFExporter().Export(&buf, sampleSummary()); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Error("output is not a PDF")
	}

	buf.Reset()
	empty := &domain.LinkSummary{Title: "Empty", GrandTotal: decimal.Zero}
	if err := NewPDFExporter().Export(&buf, empty); err != nil {
		t.Fatalf("Export empty: %v", err)
	}
}
