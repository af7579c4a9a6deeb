package report

import (
	"fmt"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"Attendly/internal/model/dto"
)

const (
	SheetName = "Daily Attendance"

	minColumnWidth = 12
	headerRow      = 2
)

// BuildExcel 第一行为合并标题，第二行表头，数据从第三行开始
func BuildExcel(date string, rows []dto.DailyReportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	widths := make([]int, len(headers))
	track := func(col int, value string) {
		if n := utf8.RuneCountInString(value); n > widths[col] {
			widths[col] = n
		}
	}

	if err := f.SetCellValue(SheetName, "A1", Title(date)); err != nil {
		return nil, err
	}
	if err := f.MergeCell(SheetName, "A1", "E1"); err != nil {
		return nil, fmt.Errorf("failed to merge title cells: %w", err)
	}

	for i, h := range headers {
		if err := setCell(f, i+1, headerRow, h); err != nil {
			return nil, err
		}
		track(i, h)
	}

	for r, row := range rows {
		for i, value := range cells(row) {
			if err := setCell(f, i+1, headerRow+1+r, value); err != nil {
				return nil, err
			}
			track(i, value)
		}
	}

	if err := applyStyles(f); err != nil {
		return nil, err
	}

	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetName, col, col, float64(max(minColumnWidth, w+2))); err != nil {
			return nil, fmt.Errorf("failed to size column %s: %w", col, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render excel report: %w", err)
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, col, row int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(SheetName, cell, value)
}

func applyStyles(f *excelize.File) error {
	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	if err != nil {
		return fmt.Errorf("failed to create title style: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "E1", titleStyle); err != nil {
		return err
	}

	headStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1F4E78"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	return f.SetCellStyle(SheetName, "A2", "E2", headStyle)
}
