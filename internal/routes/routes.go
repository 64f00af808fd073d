package routes

import (
	"net/http"

	"healthcare-dashboard/internal/config"
	"healthcare-dashboard/internal/domain"
	"healthcare-dashboard/internal/handlers"
	"healthcare-dashboard/internal/logger"
	"healthcare-dashboard/internal/middleware"
	"healthcare-dashboard/internal/repository"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the engine with the global middleware chain and every route.
func NewRouter(store *repository.Store, cfg *config.Config, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))

	metrics := middleware.NewMetrics()
	router.Use(metrics.Middleware())
	router.GET("/metrics", metrics.Handler())

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	SetupRoutes(router, store, cfg, log)
	return router
}

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, store *repository.Store, cfg *config.Config, log *logger.Logger) {
	// Initialize handlers
	userHandler := handlers.NewUserHandler(store.Users, cfg, log)
	doctorHandler := handlers.NewDoctorHandler(store.Doctors, log)
	appointmentHandler := handlers.NewAppointmentHandler(store.Users, store.Appointments, log)

	limiter := middleware.NewIPRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	auth := middleware.AuthMiddleware(cfg, store.Users)

	api := router.Group("/api")

	// Public routes (no authentication required)
	public := api.Group("/user")
	public.Use(limiter.Middleware())
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
	}

	userRoutes := api.Group("/user")
	userRoutes.Use(auth)
	{
		userRoutes.GET("/getUserInfo", userHandler.GetUserInfo)
		userRoutes.GET("/doctorList", userHandler.DoctorList)
		userRoutes.GET("/getAllUsers", middleware.RoleAuthMiddleware(domain.RoleAdmin), userHandler.GetAllUsers)
		userRoutes.PATCH("/updateProfile", userHandler.UpdateProfile)
		userRoutes.POST("/upload-profile", userHandler.UploadProfile)
	}

	doctorRoutes := api.Group("/doctor")
	doctorRoutes.Use(auth)
	{
		// Permission for apply depends on the existing application, so it is decided in the handler.
		doctorRoutes.POST("/apply", doctorHandler.Apply)
		doctorRoutes.GET("/application-status", doctorHandler.ApplicationStatus)
		doctorRoutes.GET("/getAllDoctors", doctorHandler.GetAllDoctors)

		doctorRoutes.GET("/getDoctorInfo", middleware.RoleAuthMiddleware(domain.RoleDoctor), doctorHandler.GetDoctorInfo)
		doctorRoutes.PATCH("/updateDoctor", middleware.RoleAuthMiddleware(domain.RoleDoctor), doctorHandler.UpdateDoctor)

		adminRoutes := doctorRoutes.Group("")
		adminRoutes.Use(middleware.RoleAuthMiddleware(domain.RoleAdmin))
		{
			adminRoutes.PATCH("/docStatus/:id", doctorHandler.DocStatus)
			adminRoutes.DELETE("/deleteDoctor/:id", doctorHandler.DeleteDoctor)
		}
	}

	appointmentRoutes := api.Group("/appointment")
	appointmentRoutes.Use(auth)
	{
		appointmentRoutes.POST("/create", appointmentHandler.CreateAppointment)
		appointmentRoutes.GET("/getAppointmentsByUser", appointmentHandler.GetAppointmentsByUser)
		appointmentRoutes.GET("/showAppointmentsOfDoctor", middleware.RoleAuthMiddleware(domain.RoleDoctor), appointmentHandler.ShowAppointmentsOfDoctor)
		appointmentRoutes.PATCH("/statusUpdateByDoctor/:id", appointmentHandler.StatusUpdateByDoctor)
		appointmentRoutes.PUT("/update/:id", appointmentHandler.UpdateAppointment)
		appointmentRoutes.DELETE("/deleteAppointment/:id", appointmentHandler.DeleteAppointment)
	}

	router.Static(handlers.UploadsURLPrefix, cfg.UploadDir)

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
}
