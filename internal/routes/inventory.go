package routes

import (
	"github.com/labstack/echo/v4"

	"equiptrack/internal/controllers"
	"equiptrack/pkg/constants"
	"equiptrack/pkg/middleware"
)

func runInventoryRouter(g *echo.Group, ctrl *controllers.InventoryController, authMW *middleware.AuthMiddleware) {
	g.GET("/inventory", ctrl.GetItems)
	g.GET("/inventory/export", ctrl.ExportItems)
	g.GET("/inventory/:id", ctrl.FindItem)

	g.PATCH("/inventory/:id", ctrl.UpdateItem,
		authMW.RequireRoles(constants.RoleAdmin, constants.RoleStorekeeper))
	g.POST("/inventory/import", ctrl.ImportItems,
		authMW.RequireRoles(constants.RoleAdmin, constants.RoleStorekeeper))

	g.GET("/inventory-audit", ctrl.AuditItems, authMW.RequireRoles(constants.RoleAdmin))
}
