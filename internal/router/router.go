// Package router assembles the HTTP engine: middleware, services and routes.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"cashflow/internal/cache"
	"cashflow/internal/config"
	_ "cashflow/internal/docs" // registers the swagger spec
	"cashflow/internal/handlers"
	"cashflow/internal/lifecycle"
	"cashflow/internal/metrics"
	"cashflow/internal/middleware"
	"cashflow/internal/services"
	"cashflow/internal/validator"
)

// Services bundles every service the routes depend on.
type Services struct {
	Users        services.UserServicer
	Roles        services.RoleServicer
	Permissions  services.PermissionServicer
	Categories   services.CategoryServicer
	Wallets      services.WalletServicer
	Transactions services.TransactionServicer
	Dashboard    services.DashboardServicer
	Appearance   services.AppearanceServicer
	Audit        services.AuditServicer
}

// NewServices builds the gorm-backed services. Lifecycle operations report
// to the Prometheus registry.
func NewServices(db *gorm.DB, c cache.Cache, storageDir string) *Services {
	rec := lifecycle.WithRecorder(metrics.LifecycleRecorder{})
	return &Services{
		Users:        services.NewUserService(db, rec),
		Roles:        services.NewRoleService(db, rec),
		Permissions:  services.NewPermissionService(db, rec),
		Categories:   services.NewCategoryService(db, rec),
		Wallets:      services.NewWalletService(db, rec),
		Transactions: services.NewTransactionService(db, rec),
		Dashboard:    services.NewDashboardService(db),
		Appearance:   services.NewAppearanceService(db, c, storageDir),
		Audit:        services.NewAuditService(db),
	}
}

// New returns the configured gin engine.
func New(cfg *config.Config, svc *Services) *gin.Engine {
	validator.Register()

	authHandler := handlers.NewAuthHandler(svc.Users, svc.Audit)
	userHandler := handlers.NewUserHandler(svc.Users, svc.Audit)
	roleHandler := handlers.NewRoleHandler(svc.Roles, svc.Audit)
	permissionHandler := handlers.NewPermissionHandler(svc.Permissions, svc.Audit)
	categoryHandler := handlers.NewCategoryHandler(svc.Categories, svc.Audit)
	walletHandler := handlers.NewWalletHandler(svc.Wallets, svc.Audit)
	transactionHandler := handlers.NewTransactionHandler(svc.Transactions, svc.Audit)
	dashboardHandler := handlers.NewDashboardHandler(svc.Dashboard)
	appearanceHandler := handlers.NewAppearanceHandler(svc.Appearance, svc.Audit)

	router := gin.New()
	router.MaxMultipartMemory = 8 << 20
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(metrics.Instrument())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/metrics", middleware.APIKeyMiddleware(cfg.MetricsAPIKey), gin.WrapH(metrics.Handler()))

	// Uploaded icons and logos
	router.Static("/storage", cfg.StorageDir)

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	loginLimiter := middleware.NewRateLimiter(cfg.LoginRatePerMinute)
	v1.POST("/auth/login", loginLimiter.Handler(), authHandler.Login)
	v1.GET("/appearance", appearanceHandler.GetAppearance)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.GET("/dashboard", dashboardHandler.GetSummary)

	users := protected.Group("/users")
	users.POST("", userHandler.CreateUser)
	users.GET("", userHandler.ListUsers)
	users.GET("/:id", userHandler.GetUser)
	users.PUT("/:id", userHandler.UpdateUser)
	users.DELETE("/:id", userHandler.DeleteUser)

	roles := protected.Group("/roles")
	roles.POST("", roleHandler.CreateRole)
	roles.GET("", roleHandler.ListRoles)
	roles.GET("/:id", roleHandler.GetRole)
	roles.PUT("/:id", roleHandler.UpdateRole)
	roles.DELETE("/:id", roleHandler.DeleteRole)

	permissions := protected.Group("/permissions")
	permissions.POST("", permissionHandler.CreatePermission)
	permissions.GET("", permissionHandler.ListPermissions)
	permissions.GET("/:id", permissionHandler.GetPermission)
	permissions.PUT("/:id", permissionHandler.UpdatePermission)
	permissions.DELETE("/:id", permissionHandler.DeletePermission)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	wallets := protected.Group("/wallets")
	wallets.POST("", walletHandler.CreateWallet)
	wallets.GET("", walletHandler.GetUserWallets)
	wallets.GET("/:id", walletHandler.GetWalletByID)
	wallets.PUT("/:id", walletHandler.UpdateWallet)
	wallets.DELETE("/:id", walletHandler.DeleteWallet)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	settings := protected.Group("/settings")
	settings.POST("/appearance", appearanceHandler.UpdateAppearance)
	settings.GET("/appearance/history", appearanceHandler.GetAppearanceHistory)

	return router
}
