// Package report 生成考勤日报的 PDF 和 Excel 文件
package report

import (
	"time"

	"Attendly/internal/model/dto"
)

const (
	timeLayout = "2006-01-02 15:04:05"

	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var headers = []string{"Employee", "Identifier", "Check In", "Check Out", "Status"}

// Title 报表标题
func Title(date string) string {
	return "Daily Attendance Report - " + date
}

// Filename 下载文件名，ext 不带点
func Filename(date, ext string) string {
	return "attendance-daily-" + date + "." + ext
}

// formatTime 统一输出 UTC，空值显示 "-"
func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(timeLayout)
}

func cells(row dto.DailyReportRow) []string {
	return []string{
		row.EmployeeName,
		row.EmployeeIdentifier,
		formatTime(row.CheckInAt),
		formatTime(row.CheckOutAt),
		row.Status,
	}
}
