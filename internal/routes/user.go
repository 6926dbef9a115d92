package routes

import (
	"github.com/labstack/echo/v4"

	"equiptrack/internal/controllers"
	"equiptrack/pkg/constants"
	"equiptrack/pkg/middleware"
)

func runUserRouter(g *echo.Group, ctrl *controllers.UserController, authMW *middleware.AuthMiddleware) {
	adminOnly := authMW.RequireRoles(constants.RoleAdmin)

	g.GET("/users", ctrl.GetUsers, adminOnly)
	g.GET("/users/:id", ctrl.FindUser, adminOnly)
	g.POST("/users", ctrl.CreateUser, adminOnly)
}
