// Package export renders link summaries as downloadable spreadsheets and PDFs.
package export

import (
	"fmt"
	"io"

	"github.com/wadjakorntonsri/paylinks/pkg/core/domain"
	"github.com/wadjakorntonsri/paylinks/pkg/ports"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Summary"

type XLSXExporter struct{}

func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

func (XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (XLSXExporter) Extension() string { return "xlsx" }

func (XLSXExporter) Export(w io.Writer, summary *domain.LinkSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := f.SetCellValue(sheetName, "A1", summary.Title); err != nil {
		return err
	}
	header := []interface{}{"Employee ID", "Name", "Entries", "Total"}
	if err := f.SetSheetRow(sheetName, "A3", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", "D3", bold); err != nil {
		return err
	}

	row := 4
	for _, r := range summary.Rows {
		values := []interface{}{r.EmployeeID, r.Name, r.EntryCount, r.EmployeeTotal.InexactFloat64()}
		if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", row), &values); err != nil {
			return err
		}
		row++
	}

	totalRow := []interface{}{"", "Grand total", "", summary.GrandTotal.InexactFloat64()}
	if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", row), &totalRow); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("D%d", row), bold); err != nil {
		return err
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "D4", fmt.Sprintf("D%d", row-1), money); err != nil {
		return err
	}
	_ = f.SetColWidth(sheetName, "A", "B", 24)

	return f.Write(w)
}

var _ ports.SummaryExporter = XLSXExporter{}
