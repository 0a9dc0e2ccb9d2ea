package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"booking-system/internal/controllers"
	"booking-system/internal/listeners"
	"booking-system/internal/repositories"
	"booking-system/internal/scheduler"
	"booking-system/internal/services"
	"booking-system/pkg/clock"
	"booking-system/pkg/config"
	"booking-system/pkg/eventbus"
	"booking-system/pkg/middleware"
	"booking-system/pkg/service"
)

// InitRouter собирает весь граф зависимостей и вешает маршруты.
// Возвращает процесс сверки: его запускает main в своей горутине.
func InitRouter(e *echo.Echo, dbConn *pgxpool.Pool, redisClient *redis.Client, jwtSvc service.JWTService, logger *zap.Logger, cfg *config.Config) *scheduler.Scheduler {
	logger.Info("InitRouter: начало создания маршрутов")

	api := e.Group("/api")
	txManager := repositories.NewTxManager(dbConn)
	bus := eventbus.New(logger)
	systemClock := clock.NewSystemClock()

	// --- РЕПОЗИТОРИИ ---
	userRepo := repositories.NewUserRepository(dbConn, logger)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)
	shiftRepo := repositories.NewShiftRepository(dbConn)
	kindRepo := repositories.NewResourceKindRepository(dbConn)
	instanceRepo := repositories.NewResourceInstanceRepository(dbConn)
	requestRepo := repositories.NewRequestRepository(dbConn)
	reportRepo := repositories.NewReportRepository(dbConn)

	// --- СЕРВИСЫ ---
	authService := services.NewAuthService(userRepo, cacheRepo, jwtSvc, cfg.Booking, logger)
	authMW := middleware.NewAuthMiddleware(jwtSvc, authService, logger)
	shiftService := services.NewShiftService(shiftRepo, logger)
	catalogService := services.NewCatalogService(kindRepo, instanceRepo, logger)
	bookingService := services.NewBookingService(
		txManager, requestRepo, instanceRepo, kindRepo, shiftRepo, userRepo,
		bus, systemClock, cfg.Booking, logger,
	)
	reportService := services.NewReportService(reportRepo, logger)
	notificationService := services.NewMockNotificationService(logger)

	// --- СЛУШАТЕЛИ ---
	listeners.NewNotificationListener(notificationService, logger).Register(bus)

	// --- КОНТРОЛЛЕРЫ И МАРШРУТЫ ---
	secureGroup := api.Group("", authMW.Auth)

	runAuthRouter(api, secureGroup, authService, authMW, jwtSvc, logger)
	runShiftRouter(secureGroup, shiftService, authMW, logger)
	runResourceRouter(secureGroup, catalogService, authMW, logger)
	runBookingRouter(secureGroup, bookingService, authMW, logger)
	runReportRouter(secureGroup, reportService, authMW, logger)

	logger.Info("InitRouter: маршруты созданы")

	return scheduler.New(bookingService, cfg.Reconciler.Interval, logger)
}

func runAuthRouter(api *echo.Group, secureGroup *echo.Group, authService services.AuthServiceInterface, authMW *middleware.AuthMiddleware, jwtSvc service.JWTService, logger *zap.Logger) {
	authCtrl := controllers.NewAuthController(authService, logger)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", authCtrl.Login)
		authGroup.POST("/refresh_token", authCtrl.Refresh)
		authGroup.GET("/me", authCtrl.Me, authMW.Auth)
	}
	// Регистрация пользователей - только для админов.
	secureGroup.POST("/users", authCtrl.Register, authMW.AdminOnly)
}

func runShiftRouter(secureGroup *echo.Group, shiftService services.ShiftServiceInterface, authMW *middleware.AuthMiddleware, logger *zap.Logger) {
	shiftCtrl := controllers.NewShiftController(shiftService, logger)
	{
		secureGroup.GET("/shifts", shiftCtrl.GetShifts)
		secureGroup.GET("/shifts/:id", shiftCtrl.FindShift)
		secureGroup.POST("/shifts", shiftCtrl.CreateShift, authMW.AdminOnly)
		secureGroup.DELETE("/shifts/:id", shiftCtrl.DeleteShift, authMW.AdminOnly)
	}
}

func runResourceRouter(secureGroup *echo.Group, catalogService services.CatalogServiceInterface, authMW *middleware.AuthMiddleware, logger *zap.Logger) {
	resourceCtrl := controllers.NewResourceController(catalogService, logger)
	{
		secureGroup.GET("/kinds", resourceCtrl.GetKinds)
		secureGroup.GET("/kinds/:id", resourceCtrl.FindKind)
		secureGroup.GET("/kinds/:id/availability", resourceCtrl.GetAvailability)
		secureGroup.GET("/kinds/:id/available", resourceCtrl.ListAvailable)
		secureGroup.POST("/kinds", resourceCtrl.CreateKind, authMW.AdminOnly)
		secureGroup.PUT("/kinds/:id", resourceCtrl.UpdateKind, authMW.AdminOnly)

		secureGroup.GET("/instances", resourceCtrl.GetInstances, authMW.AdminOnly)
		secureGroup.POST("/instances", resourceCtrl.CreateInstance, authMW.AdminOnly)
		secureGroup.POST("/instances/:id/enable", resourceCtrl.EnableInstance, authMW.AdminOnly)
		secureGroup.POST("/instances/:id/disable", resourceCtrl.DisableInstance, authMW.AdminOnly)
		secureGroup.DELETE("/instances/:id", resourceCtrl.DeleteInstance, authMW.AdminOnly)
	}
}

func runBookingRouter(secureGroup *echo.Group, bookingService services.BookingServiceInterface, authMW *middleware.AuthMiddleware, logger *zap.Logger) {
	bookingCtrl := controllers.NewBookingController(bookingService, logger)
	{
		secureGroup.GET("/requests", bookingCtrl.GetRequests)
		secureGroup.GET("/requests/:id", bookingCtrl.FindRequest)
		secureGroup.POST("/requests/equipment", bookingCtrl.CreateEquipmentRequest)
		secureGroup.POST("/requests/room", bookingCtrl.CreateRoomRequest)
		secureGroup.POST("/requests/:id/cancel", bookingCtrl.CancelRequest)

		secureGroup.POST("/requests/:id/confirm", bookingCtrl.ConfirmRequest, authMW.AdminOnly)
		secureGroup.POST("/requests/:id/deliver", bookingCtrl.DeliverRequest, authMW.AdminOnly)
		secureGroup.POST("/requests/:id/return", bookingCtrl.ReturnRequest, authMW.AdminOnly)
		secureGroup.DELETE("/requests/:id", bookingCtrl.DeleteRequest, authMW.AdminOnly)
	}
}

func runReportRouter(secureGroup *echo.Group, reportService services.ReportServiceInterface, authMW *middleware.AuthMiddleware, logger *zap.Logger) {
	reportCtrl := controllers.NewReportController(reportService, logger)
	secureGroup.GET("/reports/requests", reportCtrl.GetReport, authMW.AdminOnly)
}
