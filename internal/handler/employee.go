package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"Attendly/internal/model/dto"
	"Attendly/internal/service"
	"Attendly/pkg/response"
)

// CreateEmployee 新建员工
// POST /api/v1/employees
func CreateEmployee(ctx context.Context, c *app.RequestContext) {
	var req dto.CreateEmployeeRequest
	if !bindAndValidate(ctx, c, &req) {
		return
	}

	e, err := service.Employee().Create(ctx, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Created(ctx, c, dto.NewEmployeeResponse(e))
}

// ListEmployees 分页列表，分页信息放在 meta
// GET /api/v1/employees?page=&limit=
func ListEmployees(ctx context.Context, c *app.RequestContext) {
	var q dto.ListEmployeesQuery
	if !bindAndValidate(ctx, c, &q) {
		return
	}

	page, err := service.Employee().List(ctx, q)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.SuccessWithMeta(ctx, c, page.Items, page.Meta())
}

// GetEmployee GET /api/v1/employees/:id
func GetEmployee(ctx context.Context, c *app.RequestContext) {
	id, ok := employeeID(ctx, c)
	if !ok {
		return
	}

	e, err := service.Employee().Get(ctx, id)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, dto.NewEmployeeResponse(e))
}

// UpdateEmployee 部分更新
// PATCH /api/v1/employees/:id
func UpdateEmployee(ctx context.Context, c *app.RequestContext) {
	id, ok := employeeID(ctx, c)
	if !ok {
		return
	}
	var req dto.UpdateEmployeeRequest
	if !bindAndValidate(ctx, c, &req) {
		return
	}

	e, err := service.Employee().Update(ctx, id, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, dto.NewEmployeeResponse(e))
}

// DeleteEmployee DELETE /api/v1/employees/:id
func DeleteEmployee(ctx context.Context, c *app.RequestContext) {
	id, ok := employeeID(ctx, c)
	if !ok {
		return
	}

	if err := service.Employee().Delete(ctx, id); err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, dto.MessageResponse{Message: "Employee deleted successfully"})
}
