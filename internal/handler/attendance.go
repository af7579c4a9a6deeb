package handler

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"

	"Attendly/config"
	"Attendly/internal/model/dto"
	"Attendly/internal/service"
	"Attendly/pkg/errors"
	"Attendly/pkg/response"
	"Attendly/utils"
)

var errOccurredAt = errors.InvalidRequest.WithMessage("occurredAt must be a valid ISO 8601 date string")

// occurredAt 解析可选的事件时间，未带偏移量时按业务时区解释
func occurredAt(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	loc, err := config.Cfg.Location()
	if err != nil {
		loc = time.Local
	}
	t, err := utils.ParseOccurredAt(value, loc)
	if err != nil {
		return nil, errOccurredAt
	}
	return &t, nil
}

// CheckIn 签到
// POST /api/v1/attendance/check-in
func CheckIn(ctx context.Context, c *app.RequestContext) {
	var req dto.AttendanceEventRequest
	if !bindAndValidate(ctx, c, &req) {
		return
	}
	at, err := occurredAt(req.OccurredAt)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	a, err := service.Attendance().CheckIn(ctx, req.EmployeeID, at)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Created(ctx, c, dto.NewAttendanceResponse(a))
}

// CheckOut 签退
// POST /api/v1/attendance/check-out
func CheckOut(ctx context.Context, c *app.RequestContext) {
	var req dto.AttendanceEventRequest
	if !bindAndValidate(ctx, c, &req) {
		return
	}
	at, err := occurredAt(req.OccurredAt)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	a, err := service.Attendance().CheckOut(ctx, req.EmployeeID, at)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, dto.NewAttendanceResponse(a))
}

// ListAttendance GET /api/v1/attendance?employeeId=&dateFrom=&dateTo=
func ListAttendance(ctx context.Context, c *app.RequestContext) {
	var q dto.AttendanceListQuery
	if !bindAndValidate(ctx, c, &q) {
		return
	}

	items, err := service.Attendance().FindAll(ctx, q)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, dto.NewAttendanceList(items))
}
