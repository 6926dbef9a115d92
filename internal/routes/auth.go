package routes

import (
	"github.com/labstack/echo/v4"

	"equiptrack/internal/controllers"
)

// The auth endpoints are the only unauthenticated surface.
func runAuthRouter(public *echo.Group, ctrl *controllers.AuthController) {
	public.GET("/auth/users", ctrl.LoginUsers)
	public.POST("/auth/login", ctrl.Login)
	public.POST("/auth/refresh", ctrl.Refresh)
}
