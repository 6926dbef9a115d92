package routes

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equiptrack/internal/controllers"
	"equiptrack/internal/repositories"
	"equiptrack/internal/services"
	"equiptrack/pkg/config"
	"equiptrack/pkg/filestorage"
	"equiptrack/pkg/middleware"
	"equiptrack/pkg/service"
)

// InitRouter wires repositories, services and controllers and registers
// every route. The session views are warmed here, before the server
// starts taking traffic.
func InitRouter(e *echo.Echo, dbConn *pgxpool.Pool, redisClient *redis.Client, jwtSvc service.JWTService, cfg *config.Config, logger *zap.Logger) error {
	apiGroup := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, logger)

	fileStorage, err := filestorage.NewLocalFileStorage(cfg.Upload.Dir)
	if err != nil {
		return err
	}

	txManager := repositories.NewTxManager(dbConn)
	userRepo := repositories.NewUserRepository(dbConn, logger)
	inventoryRepo := repositories.NewInventoryRepository(dbConn, logger)
	requestRepo := repositories.NewRequestRepository(dbConn, logger)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	inventoryService := services.NewInventoryService(inventoryRepo, txManager, logger)
	requestService := services.NewRequestService(requestRepo, userRepo, inventoryService, logger)
	authService := services.NewAuthService(userRepo, jwtSvc, logger)
	userService := services.NewUserService(userRepo, logger)
	dashboardService := services.NewDashboardService(
		requestService, inventoryService, userService, cacheRepo, cfg.Dashboard.CacheTTL, logger)

	ctx := context.Background()
	if err := inventoryService.LoadView(ctx); err != nil {
		return err
	}
	if err := requestService.LoadView(ctx); err != nil {
		return err
	}

	authController := controllers.NewAuthController(authService, logger)
	userController := controllers.NewUserController(userService, logger)
	inventoryController := controllers.NewInventoryController(inventoryService, fileStorage, logger)
	requestController := controllers.NewRequestController(requestService, logger)
	dashboardController := controllers.NewDashboardController(dashboardService, logger)

	secureGroup := apiGroup.Group("", authMW.Auth)

	runAuthRouter(apiGroup, authController)
	runUserRouter(secureGroup, userController, authMW)
	runInventoryRouter(secureGroup, inventoryController, authMW)
	runRequestRouter(secureGroup, requestController, authMW)
	runDashboardRouter(secureGroup, dashboardController)

	logger.Info("routes registered")
	return nil
}
