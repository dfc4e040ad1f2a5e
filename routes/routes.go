package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Krish-Depani/mold-tracker/controllers"
	"github.com/Krish-Depani/mold-tracker/middleware"
)

type Controllers struct {
	Auth        *controllers.AuthController
	User        *controllers.UserController
	ScanSession *controllers.ScanSessionController
	Inspection  *controllers.InspectionController
}

type Options struct {
	CORSOrigin string
	Debug      bool
	DB         *gorm.DB
}

// SetupRoutes builds the engine and mounts every API group under /api.
func SetupRoutes(ctrl Controllers, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{opts.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(controllers.ErrorHandler(opts.Debug))

	router.GET("/health", controllers.Health(opts.DB))
	router.NoRoute(controllers.NoRoute)

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/login", ctrl.Auth.Login)
		auth.POST("/refresh", ctrl.Auth.Refresh)
		auth.POST("/logout", ctrl.Auth.AuthMiddleware(), ctrl.Auth.Logout)
		auth.GET("/me", ctrl.Auth.AuthMiddleware(), ctrl.Auth.Me)
		auth.GET("/sessions", ctrl.Auth.AuthMiddleware(), ctrl.User.GetLoginSessions)
		auth.PUT("/password", ctrl.Auth.AuthMiddleware(), ctrl.Auth.ChangePassword)
	}

	qr := api.Group("/qr-sessions", ctrl.Auth.AuthMiddleware())
	{
		qr.POST("/scan", ctrl.ScanSession.Scan)
		qr.PATCH("/:id/end", ctrl.ScanSession.EndSession)
		qr.GET("", ctrl.ScanSession.List)
		qr.GET("/active", ctrl.ScanSession.Active)
		qr.GET("/stats", ctrl.ScanSession.Stats)
		qr.GET("/mold/:moldId", ctrl.ScanSession.MoldHistory)
		qr.GET("/:id", ctrl.ScanSession.Get)
	}

	inspections := api.Group("/inspections", ctrl.Auth.AuthMiddleware())
	{
		inspections.POST("/daily", ctrl.Inspection.CreateDailyCheck)
		inspections.POST("/regular", ctrl.Inspection.CreateRegularInspection)
		inspections.PUT("/:kind/:id", ctrl.Inspection.Update)
		inspections.PATCH("/:kind/:id/review", ctrl.Inspection.Review)
		inspections.GET("/stats", ctrl.Inspection.Stats)
	}

	return router
}
