package model

import (
	"time"

	"gorm.io/datatypes"
)

// AttendanceStatus 通知中的考勤动作
type AttendanceStatus string

const (
	AttendanceCheckIn  AttendanceStatus = "check-in"
	AttendanceCheckOut AttendanceStatus = "check-out"
)

// Attendance 员工某一日历日的签到/签退记录，(employee_id, date) 唯一
type Attendance struct {
	BaseModel
	EmployeeID string         `gorm:"type:uuid;not null;uniqueIndex:uq_attendance_employee_date,priority:1" json:"employeeId"`
	Date       datatypes.Date `gorm:"type:date;not null;uniqueIndex:uq_attendance_employee_date,priority:2" json:"date"`
	CheckInAt  time.Time      `gorm:"type:timestamptz;not null" json:"checkInAt"`
	CheckOutAt *time.Time     `gorm:"type:timestamptz" json:"checkOutAt"`
}

// TableName 指定表名
func (Attendance) TableName() string {
	return "attendances"
}

// Day 返回日历日期（UTC 零点）
func (a *Attendance) Day() time.Time {
	return time.Time(a.Date)
}

// DateString YYYY-MM-DD
func (a *Attendance) DateString() string {
	return time.Time(a.Date).Format("2006-01-02")
}

func (a *Attendance) CheckedOut() bool {
	return a.CheckOutAt != nil
}
