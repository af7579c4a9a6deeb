package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"Attendly/internal/model/dto"
	"Attendly/internal/service"
	"Attendly/pkg/errors"
	"Attendly/pkg/response"
)

var errDependencyDown = errors.ServiceDegraded.WithMessage("Dependency health check failed")

// Health 探测数据库与 Redis，不需要鉴权
// GET /health
func Health(ctx context.Context, c *app.RequestContext) {
	writeHealth(ctx, c, service.Health().Check(ctx))
}

func writeHealth(ctx context.Context, c *app.RequestContext, resp dto.HealthResponse) {
	if resp.Status == dto.HealthStatusOK {
		response.Success(ctx, c, resp)
		return
	}
	response.ErrorWithDetails(ctx, c, errDependencyDown, map[string]interface{}{
		"checks": resp.Checks,
	})
}
