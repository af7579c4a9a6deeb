package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"Attendly/internal/model/dto"
	"Attendly/internal/report"
	"Attendly/internal/service"
	"Attendly/pkg/response"
)

// DailyReportPDF GET /api/v1/reports/attendance/daily.pdf?date=YYYY-MM-DD
func DailyReportPDF(ctx context.Context, c *app.RequestContext) {
	var q dto.DailyReportQuery
	if err := c.Bind(&q); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	body, err := service.Report().DailyPDF(ctx, q.Date)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.File(ctx, c, report.Filename(q.Date, "pdf"), report.ContentTypePDF, body)
}

// DailyReportExcel GET /api/v1/reports/attendance/daily.xlsx?date=YYYY-MM-DD
func DailyReportExcel(ctx context.Context, c *app.RequestContext) {
	var q dto.DailyReportQuery
	if err := c.Bind(&q); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	body, err := service.Report().DailyExcel(ctx, q.Date)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.File(ctx, c, report.Filename(q.Date, "xlsx"), report.ContentTypeXLSX, body)
}
