package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/wadjakorntonsri/paylinks/pkg/core/domain"
	"github.com/wadjakorntonsri/paylinks/pkg/ports"
)

type PDFExporter struct{}

func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

func (PDFExporter) ContentType() string { return "application/pdf" }

func (PDFExporter) Extension() string { return "pdf" }

// Export writes a single table with one row per employee and a grand total footer
func (PDFExporter) Export(w io.Writer, summary *domain.LinkSummary) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 18)
	pdf.AliasNbPages("{nb}")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	marginL, _, marginR, _ := pdf.GetMargins()
	contentW := pageW - marginL - marginR

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 9, summary.Title, "", 1, "L", false, 0, "")
	pdf.Ln(3)

	cols := []float64{contentW * 0.22, contentW * 0.43, contentW * 0.15, contentW * 0.20}
	headers := []string{"Employee ID", "Name", "Entries", "Total"}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 9)
	for i, h := range headers {
		align := "L"
		if i >= 2 {
			align = "R"
		}
		pdf.CellFormat(cols[i], 7, h, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, r := range summary.Rows {
		pdf.CellFormat(cols[0], 6.5, r.EmployeeID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(cols[1], 6.5, r.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(cols[2], 6.5, fmt.Sprint(r.EntryCount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(cols[3], 6.5, r.EmployeeTotal.StringFixed(2), "1", 1, "R", false, 0, "")
	}
	if len(summary.Rows) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(contentW, 6.5, "No submissions yet.", "1", 1, "C", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(cols[0]+cols[1]+cols[2], 7, "Grand total", "1", 0, "R", true, 0, "")
	pdf.CellFormat(cols[3], 7, summary.GrandTotal.StringFixed(2), "1", 1, "R", true, 0, "")

	return pdf.Output(w)
}

var _ ports.SummaryExporter = PDFExporter{}
