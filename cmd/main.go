package main

import (
	"github.com/GustaavooC/mooda-sub000/internal/credstore"
	"github.com/GustaavooC/mooda-sub000/internal/handler"
	"github.com/GustaavooC/mooda-sub000/internal/jobs"
	"github.com/GustaavooC/mooda-sub000/internal/middleware"
	"github.com/GustaavooC/mooda-sub000/internal/model"
	"github.com/GustaavooC/mooda-sub000/internal/provision"
	"github.com/GustaavooC/mooda-sub000/internal/repository"
	"github.com/GustaavooC/mooda-sub000/pkg/config"
	"github.com/GustaavooC/mooda-sub000/pkg/database"
	"github.com/GustaavooC/mooda-sub000/pkg/jwtutil"
	"github.com/GustaavooC/mooda-sub000/pkg/logger"
	"github.com/GustaavooC/mooda-sub000/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load("mooda")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting mooda platform service...", cfg.LogFields()...)

	// Initialize database
	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	if err := database.MigrateModels(
		&model.User{},
		&model.Tenant{},
		&model.TenantUser{},
		&model.StoreCustomization{},
		&model.Product{},
		&model.Category{},
		&model.Customer{},
		&model.Order{},
		&model.OrderItem{},
	); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize JWT utility
	jwtUtil := jwtutil.NewJWTUtil(&cfg.JWT)

	// Open the local credential store
	var seeds []credstore.Entry
	if cfg.CredStore.SeedDemo {
		seeds = credstore.DefaultSeeds()
	}
	credentials, err := credstore.Open(cfg.CredStore.Path, seeds, log)
	if err != nil {
		log.Fatal("Failed to open credential store", zap.Error(err))
	}
	defer credentials.Close()
	log.Info("Credential store opened", zap.String("path", cfg.CredStore.Path))

	// Repositories
	tenantRepo := repository.NewTenantRepository(db)
	userRepo := repository.NewUserRepository(db)
	customizationRepo := repository.NewCustomizationRepository(db)

	// Provisioning workflow
	workflow := provision.New(
		tenantRepo,
		userRepo,
		customizationRepo,
		credentials,
		log,
		cfg.Contract.DefaultDurationDays,
		cfg.CredStore.SigninURL,
	)

	// Handlers
	authHandler := handler.NewAuthHandler(userRepo, tenantRepo, credentials, jwtUtil)
	adminHandler := handler.NewAdminHandler(workflow, tenantRepo, credentials, cfg.Contract.ExpiringSoonDays)
	productHandler := handler.NewProductHandler(db)
	categoryHandler := handler.NewCategoryHandler(db)
	customerHandler := handler.NewCustomerHandler(db)
	orderHandler := handler.NewOrderHandler(db)
	customizationHandler := handler.NewCustomizationHandler(db)
	reportHandler := handler.NewReportHandler(db)
	storefrontHandler := handler.NewStorefrontHandler(db, tenantRepo)

	// Contract status scheduler
	scheduler, err := jobs.StartContractScheduler(tenantRepo, cfg.Contract.RefreshSchedule, log)
	if err != nil {
		log.Fatal("Failed to start contract scheduler", zap.Error(err))
	}
	defer scheduler.Stop()

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Authentication routes
	auth := e.Group("/auth")
	auth.POST("/signin", authHandler.SignIn)
	auth.GET("/signin", authHandler.SignIn) // pre-filled deep link support
	auth.POST("/register", authHandler.Register)

	// Public storefront, looked up by slug
	store := e.Group("/store/:slug")
	store.GET("", storefrontHandler.GetStore)
	store.GET("/products", storefrontHandler.ListProducts)
	store.GET("/categories", storefrontHandler.ListCategories)
	store.POST("/orders", storefrontHandler.Checkout)

	// Platform admin console
	admin := e.Group("/admin")
	admin.Use(middleware.JWTAuthMiddleware(jwtUtil))
	admin.Use(middleware.RequirePlatformAdmin)
	admin.POST("/tenants", adminHandler.ProvisionTenant)
	admin.GET("/tenants", adminHandler.ListTenants)
	admin.GET("/tenants/:id", adminHandler.GetTenant)
	admin.GET("/tenants/:id/contract", adminHandler.GetContract)
	admin.POST("/tenants/:id/contract/extend", adminHandler.ExtendContract)
	admin.GET("/credentials", adminHandler.ListCredentials)
	admin.DELETE("/credentials", adminHandler.ClearCredentials)

	// Merchant dashboard - requires authentication and tenant scope
	api := e.Group("/api")
	api.Use(middleware.JWTAuthMiddleware(jwtUtil))
	api.GET("/profile", authHandler.Profile)

	tenantAPI := api.Group("")
	tenantAPI.Use(middleware.RequireTenantContext)

	products := tenantAPI.Group("/products")
	products.GET("", productHandler.ListProducts)
	products.GET("/:id", productHandler.GetProduct)
	products.POST("", productHandler.CreateProduct)
	products.PUT("/:id", productHandler.UpdateProduct)
	products.DELETE("/:id", productHandler.DeleteProduct)

	categories := tenantAPI.Group("/categories")
	categories.GET("", categoryHandler.ListCategories)
	categories.POST("", categoryHandler.CreateCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	customers := tenantAPI.Group("/customers")
	customers.GET("", customerHandler.ListCustomers)
	customers.GET("/:id", customerHandler.GetCustomer)
	customers.POST("", customerHandler.CreateCustomer)
	customers.PUT("/:id", customerHandler.UpdateCustomer)
	customers.DELETE("/:id", customerHandler.DeleteCustomer)

	orders := tenantAPI.Group("/orders")
	orders.GET("", orderHandler.ListOrders)
	orders.GET("/:id", orderHandler.GetOrder)
	orders.POST("", orderHandler.CreateOrder)
	orders.PATCH("/:id/status", orderHandler.UpdateOrderStatus)

	customization := tenantAPI.Group("/customization")
	customization.GET("", customizationHandler.GetCustomization)
	customization.PUT("", customizationHandler.UpsertCustomization)

	tenantAPI.GET("/reports/summary", reportHandler.Summary)

	// Refresh tenant gauges once at startup
	jobs.RefreshContractStatuses(tenantRepo, log)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
