package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"appointment-booking-client/internal/config"
	"appointment-booking-client/internal/handlers"
	"appointment-booking-client/internal/middleware"
	"appointment-booking-client/internal/models"
)

// NewRouter builds the stub backend engine with CORS and every route.
func NewRouter(db *gorm.DB, cfg *config.StubConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}
	router.Use(cors.New(corsConfig))

	SetupRoutes(router, db, cfg)
	return router
}

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.StubConfig) {
	authHandler := handlers.NewAuthHandler(db, cfg)
	catalogHandler := handlers.NewCatalogHandler(db)
	slotHandler := handlers.NewSlotHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(db)

	public := router.Group("/api")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
		}
		public.GET("/services", catalogHandler.ListServices)
		public.GET("/doctors", catalogHandler.ListDoctors)
		public.GET("/doctors/by-service/:serviceId", catalogHandler.DoctorsByService)
		public.GET("/slots/available", slotHandler.Available)
		public.GET("/slots/by-date", slotHandler.ByDate)
	}

	private := router.Group("/api")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("/book", appointmentHandler.Book)
			appointmentRoutes.GET("/my", appointmentHandler.Mine)
			appointmentRoutes.PUT("/cancel/:id", appointmentHandler.Cancel)
			appointmentRoutes.PUT("/reschedule/:id", appointmentHandler.Reschedule)
		}

		adminRoutes := private.Group("/admin")
		adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			adminRoutes.POST("/slots", slotHandler.Create)
			adminRoutes.GET("/appointments", appointmentHandler.All)
			adminRoutes.PUT("/appointments/:id/status", appointmentHandler.UpdateStatus)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
}
