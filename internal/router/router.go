package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"Attendly/internal/handler"
	"Attendly/internal/middleware"
)

func Register(h *server.Hertz) {
	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())

	// 探活不带版本号，也不需要鉴权
	h.GET("/health", handler.Health)

	v1 := h.Group("/api/v1")

	// 认证相关路由
	auth := v1.Group("/auth")
	{
		public := auth.Group("", middleware.AuthRateLimitMiddleware())
		{
			public.POST("/register", handler.Register)
			public.POST("/login", handler.Login)
			public.POST("/refresh", handler.RefreshToken)
			public.POST("/forgot-password", handler.ForgotPassword)
			public.POST("/reset-password", handler.ResetPassword)
		}

		session := auth.Group("", middleware.AuthMiddleware())
		{
			session.POST("/logout", handler.Logout)
			session.GET("/profile", handler.Profile)
		}
	}

	// 以下路由都需要鉴权
	protected := v1.Group("", middleware.AuthMiddleware(), middleware.GeneralRateLimitMiddleware())

	employees := protected.Group("/employees")
	{
		employees.POST("", handler.CreateEmployee)
		employees.GET("", handler.ListEmployees)
		employees.GET("/:id", handler.GetEmployee)
		employees.PATCH("/:id", handler.UpdateEmployee)
		employees.DELETE("/:id", handler.DeleteEmployee)
	}

	attendance := protected.Group("/attendance")
	{
		attendance.POST("/check-in", handler.CheckIn)
		attendance.POST("/check-out", handler.CheckOut)
		attendance.GET("", handler.ListAttendance)
	}

	reports := protected.Group("/reports/attendance")
	{
		reports.GET("/daily.pdf", handler.DailyReportPDF)
		reports.GET("/daily.xlsx", handler.DailyReportExcel)
	}
}
