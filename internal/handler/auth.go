package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"Attendly/internal/middleware"
	"Attendly/internal/model/dto"
	"Attendly/internal/service"
	"Attendly/pkg/errors"
	"Attendly/pkg/response"
)

// Register 注册账号并直接签发 token
// POST /api/v1/auth/register
func Register(ctx context.Context, c *app.RequestContext) {
	var req dto.RegisterRequest
	if !bindAndValidate(ctx, c, &req) {
		return
	}

	resp, err := service.Auth().Register(ctx, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Created(ctx, c, resp)
}

// Login 邮箱密码登录
// POST /api/v1/auth/login
func Login(ctx context.Context, c *app.RequestContext) {
	var req dto.LoginRequest
	if !bindAndValidate(ctx, c, &req) {
		return
	}

	resp, err := service.Auth().Login(ctx, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, resp)
}

// RefreshToken 轮换 token 对
// POST /api/v1/auth/refresh
func RefreshToken(ctx context.Context, c *app.RequestContext) {
	var req dto.RefreshTokenRequest
	if !bindAndValidate(ctx, c, &req) {
		return
	}

	resp, err := service.Auth().Refresh(ctx, req.RefreshToken)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, resp)
}

// Logout 作废 refresh token
// POST /api/v1/auth/logout
func Logout(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthorized)
		return
	}

	if err := service.Auth().Logout(ctx, userID); err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, dto.MessageResponse{Message: "Logged out successfully"})
}

// Profile 当前登录用户
// GET /api/v1/auth/profile
func Profile(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthorized)
		return
	}

	u, err := service.Auth().Profile(ctx, userID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, dto.NewUserResponse(u))
}

// ForgotPassword 申请重置密码邮件
// POST /api/v1/auth/forgot-password
func ForgotPassword(ctx context.Context, c *app.RequestContext) {
	var req dto.ForgotPasswordRequest
	if !bindAndValidate(ctx, c, &req) {
		return
	}

	if err := service.Auth().ForgotPassword(ctx, req.Email); err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, dto.MessageResponse{Message: "If the email exists, a reset link will be sent"})
}

// ResetPassword 使用邮件中的 token 重置密码
// POST /api/v1/auth/reset-password
func ResetPassword(ctx context.Context, c *app.RequestContext) {
	var req dto.ResetPasswordRequest
	if !bindAndValidate(ctx, c, &req) {
		return
	}

	if err := service.Auth().ResetPassword(ctx, req); err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, dto.MessageResponse{Message: "Password reset successfully"})
}
