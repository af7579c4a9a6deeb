package dto

import (
	"time"

	"Attendly/internal/model"
)

// ========== Attendance 相关 DTO ==========

// AttendanceEventRequest 签到/签退请求，occurredAt 缺省为服务器当前时间
type AttendanceEventRequest struct {
	EmployeeID string `json:"employeeId" validate:"required,uuid"`
	OccurredAt string `json:"occurredAt,omitempty" validate:"omitempty,max=64"`
}

// AttendanceListQuery 考勤列表查询参数，三个条件都可选
type AttendanceListQuery struct {
	EmployeeID string `query:"employeeId" validate:"omitempty,uuid"`
	DateFrom   string `query:"dateFrom" validate:"omitempty,datetime=2006-01-02"`
	DateTo     string `query:"dateTo" validate:"omitempty,datetime=2006-01-02"`
}

type AttendanceResponse struct {
	CheckInAt  time.Time  `json:"checkInAt"`
	CheckOutAt *time.Time `json:"checkOutAt"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	ID         string     `json:"id"`
	EmployeeID string     `json:"employeeId"`
	Date       string     `json:"date"`
}

func NewAttendanceResponse(a *model.Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:         a.ID,
		EmployeeID: a.EmployeeID,
		Date:       a.DateString(),
		CheckInAt:  a.CheckInAt.UTC(),
		CreatedAt:  a.CreatedAt.UTC(),
		UpdatedAt:  a.UpdatedAt.UTC(),
	}
	if a.CheckOutAt != nil {
		out := a.CheckOutAt.UTC()
		resp.CheckOutAt = &out
	}
	return resp
}

func NewAttendanceList(items []model.Attendance) []AttendanceResponse {
	list := make([]AttendanceResponse, 0, len(items))
	for i := range items {
		list = append(list, NewAttendanceResponse(&items[i]))
	}
	return list
}
