package routes

import (
	"github.com/labstack/echo/v4"

	"equiptrack/internal/controllers"
	"equiptrack/pkg/constants"
	"equiptrack/pkg/middleware"
)

func runRequestRouter(g *echo.Group, ctrl *controllers.RequestController, authMW *middleware.AuthMiddleware) {
	g.GET("/requests", ctrl.GetRequests)
	g.GET("/requests/queue", ctrl.GetQueue,
		authMW.RequireRoles(constants.ApproverRoles...))
	g.GET("/requests/:id", ctrl.FindRequest)
	g.GET("/requests/:id/movement-form", ctrl.GetMovementForm)

	g.POST("/requests", ctrl.SubmitRequest,
		authMW.RequireRoles(constants.RoleStaff, constants.RoleAdmin))
	g.POST("/requests/:id/decision", ctrl.DecideRequest,
		authMW.RequireRoles(constants.ApproverRoles...))

	g.GET("/requests-audit", ctrl.AuditRequests, authMW.RequireRoles(constants.RoleAdmin))
}
