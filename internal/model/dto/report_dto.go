package dto

import "time"

// ========== Report 相关 DTO ==========

// 日报中的出勤状态
const (
	ReportStatusAbsent  = "Absent"
	ReportStatusPresent = "Present"
	ReportStatusLeft    = "Left"
)

type DailyReportQuery struct {
	Date string `query:"date"`
}

// DailyReportRow 日报中每个员工一行
type DailyReportRow struct {
	CheckInAt          *time.Time
	CheckOutAt         *time.Time
	EmployeeName       string
	EmployeeIdentifier string
	Status             string
}

// ReportStatus 根据签到/签退情况得出状态
func ReportStatus(checkInAt, checkOutAt *time.Time) string {
	switch {
	case checkInAt == nil:
		return ReportStatusAbsent
	case checkOutAt == nil:
		return ReportStatusPresent
	default:
		return ReportStatusLeft
	}
}
