package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"Attendly/internal/model/dto"
)

// 横向 A4 可用宽度约 269mm
var pdfColumnWidths = []float64{80, 45, 52, 52, 40}

// BuildPDF 生成横向日报表格
func BuildPDF(date string, rows []dto.DailyReportRow) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(Title(date), true)
	pdf.SetMargins(14, 15, 14)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, tr(Title(date)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// 表头
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(33, 37, 41)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range headers {
		pdf.CellFormat(pdfColumnWidths[i], 8, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	for n, row := range rows {
		fill := n%2 == 1
		pdf.SetFillColor(245, 245, 245)
		for i, value := range cells(row) {
			pdf.CellFormat(pdfColumnWidths[i], 7, tr(value), "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf report: %w", err)
	}
	return buf.Bytes(), nil
}
