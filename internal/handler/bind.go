package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"Attendly/internal/model/dto"
	"Attendly/pkg/response"
	"Attendly/pkg/validate"
)

// bindAndValidate 绑定并校验请求，失败时已写入 400 响应
func bindAndValidate(ctx context.Context, c *app.RequestContext, req interface{}) bool {
	if err := c.Bind(req); err != nil {
		response.BindError(ctx, c, err)
		return false
	}
	if err := validate.Struct(req); err != nil {
		response.ValidationError(ctx, c, err)
		return false
	}
	return true
}

// employeeID 取路径中的员工 id，必须是 uuid
func employeeID(ctx context.Context, c *app.RequestContext) (string, bool) {
	p := dto.EmployeeIDParam{ID: c.Param("id")}
	if err := validate.Struct(p); err != nil {
		response.ValidationError(ctx, c, err)
		return "", false
	}
	return p.ID, true
}
