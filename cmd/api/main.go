package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/sjperalta/modular-erp-api/docs" // Swagger docs
	"github.com/sjperalta/modular-erp-api/internal/config"
	"github.com/sjperalta/modular-erp-api/internal/database"
	"github.com/sjperalta/modular-erp-api/internal/handlers"
	"github.com/sjperalta/modular-erp-api/internal/jobs"
	"github.com/sjperalta/modular-erp-api/internal/middleware"
	"github.com/sjperalta/modular-erp-api/internal/models"
	"github.com/sjperalta/modular-erp-api/internal/repository"
	"github.com/sjperalta/modular-erp-api/internal/services"
	"github.com/sjperalta/modular-erp-api/internal/storage"
	"github.com/sjperalta/modular-erp-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

//go:generate swag init -g main.go -d ./,../../internal/handlers -o ../../docs

// @title Modular ERP API
// @version 1.0
// @description REST API for the modular ERP: module catalog, users, invitations, mix designs and a double-entry ledger

// @contact.name API Support

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Setup(cfg.Environment)
	if cfg.LogLevel != "" {
		if err := logger.SetLevel(cfg.LogLevel); err != nil {
			logger.Warn("Ignoring LOG_LEVEL", "error", err)
		}
	}

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	if cfg.ResendAPIKey == "" || cfg.FromEmail == "" {
		logger.Warn("Resend email disabled: RESEND_API_KEY or FROM_EMAIL not set; invitation e-mails will not be delivered")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.AutoMigrate {
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			logger.Error("Failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	db, err := database.Connect(cfg.DatabaseURL, database.Options{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
		Verbose:      !cfg.IsProduction(),
	})
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized local storage")

	repos := repository.NewRepositories(db)

	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	svcs := services.NewServices(repos, worker, store, cfg)
	svcs.ScheduleJobs(cfg)

	h := handlers.NewHandlers(svcs)
	router := setupRouter(h, svcs, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	worker.Shutdown()
	logger.Info("Background worker stopped")

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	}

	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, svcs *services.Services, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))
	router.Use(middleware.Actor())

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", h.Health.Index)

		// Authentication (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
			auth.POST("/forgot-password", h.Auth.ForgotPassword)
			auth.POST("/reset-password", h.Auth.ResetPassword)
		}

		// Module catalog (public)
		catalog := v1.Group("/modules")
		{
			catalog.GET("", h.Module.Index)
			catalog.GET("/statistics", h.Module.Statistics)
			catalog.GET("/categories/list", h.Module.Categories)
			catalog.GET("/category/:category", h.Module.ByCategory)
			catalog.GET("/business-type/:slug", h.Module.ForBusinessType)
			catalog.GET("/:slug", h.Module.Show)
		}
		businessTypes := v1.Group("/business-types")
		{
			businessTypes.GET("", h.Module.BusinessTypes)
			businessTypes.GET("/:slug", h.Module.BusinessType)
			businessTypes.GET("/:slug/module-recommendations", h.Module.Recommendations)
		}

		// Invitation acceptance (public, token in body)
		v1.POST("/invitations/accept", h.Invitation.Accept)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret, svcs.Auth))
		{
			// Own sessions and credentials
			protected.GET("/auth/sessions", h.Auth.Sessions)
			protected.DELETE("/auth/sessions/:session_id", h.Auth.RevokeSession)
			protected.POST("/auth/sessions/revoke-others", h.Auth.RevokeOtherSessions)
			protected.POST("/auth/change-password", h.Auth.ChangePassword)

			protected.GET("/profile", h.User.Profile)
			protected.PUT("/profile", h.User.UpdateProfile)
			protected.GET("/users/:user_id", middleware.RequireAdminOrOwner(), h.User.Show)

			userModules := protected.Group("/user-modules")
			{
				userModules.GET("", h.UserModule.Index)
				userModules.GET("/active", h.UserModule.Active)
				userModules.POST("/activate", h.UserModule.Activate)
				userModules.POST("/bulk-activate", h.UserModule.BulkActivate)
				userModules.DELETE("/:slug/deactivate", h.UserModule.Deactivate)
				userModules.PUT("/:slug/configuration", h.UserModule.UpdateConfiguration)
			}

			setupMixDesignRoutes(protected, h)
			setupLedgerRoutes(protected, h)

			admin := protected.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				admin.GET("/users", h.User.Index)
				admin.PUT("/users/:user_id", h.User.Update)
				admin.POST("/users/:user_id/activate", h.User.Activate)
				admin.POST("/users/:user_id/deactivate", h.User.Deactivate)
				admin.GET("/users/:user_id/activity", h.User.Activity)

				admin.GET("/invitations", h.Invitation.Index)
				admin.POST("/invitations", h.Invitation.Create)
				admin.GET("/invitations/:invitation_id", h.Invitation.Show)
				admin.POST("/invitations/:invitation_id/resend", h.Invitation.Resend)
				admin.POST("/invitations/:invitation_id/cancel", h.Invitation.Cancel)

				admin.GET("/audits", h.Audit.Index)
				admin.GET("/audits/:model_type/:model_id", h.Audit.History)
				admin.GET("/security-events", h.Audit.SecurityEvents)
				admin.POST("/security-events/:event_id/resolve", h.Audit.ResolveSecurityEvent)

				admin.GET("/jobs/status", h.Job.Status)
				admin.GET("/jobs/tasks", h.Job.Tasks)
				admin.POST("/jobs/tasks/:name/run", h.Job.Trigger)
			}
		}
	}

	return router
}

func setupMixDesignRoutes(protected *gin.RouterGroup, h *handlers.Handlers) {
	mix := protected.Group("/mix-designs")
	{
		mix.GET("", h.MixDesign.Index)
		mix.GET("/classes", h.MixDesign.Classes)
		mix.GET("/statistics", h.MixDesign.Statistics)
		mix.GET("/:mix_design_id", h.MixDesign.Show)
		mix.GET("/:mix_design_id/cost", h.MixDesign.Cost)
		mix.POST("", h.MixDesign.Create)
		mix.PUT("/:mix_design_id", h.MixDesign.Update)
		mix.PUT("/:mix_design_id/compositions", h.MixDesign.ReplaceCompositions)
		mix.DELETE("/:mix_design_id", h.MixDesign.Delete)
		mix.POST("/:mix_design_id/approve", middleware.RequireRole(models.RoleAdmin, models.RoleManager), h.MixDesign.Approve)
	}
}

func setupLedgerRoutes(protected *gin.RouterGroup, h *handlers.Handlers) {
	ledger := protected.Group("/ledger")

	// Reads are open to every authenticated user
	ledger.GET("/accounts", h.Account.Index)
	ledger.GET("/accounts/tree", h.Account.Tree)
	ledger.GET("/accounts/code/:code", h.Account.ShowByCode)
	ledger.GET("/accounts/:account_id", h.Account.Show)
	ledger.GET("/accounts/:account_id/balance", h.Account.Balance)
	ledger.GET("/accounts/:account_id/path", h.Account.Path)
	ledger.GET("/accounts/:account_id/general-ledger", h.Account.GeneralLedger)
	ledger.GET("/accounts/:account_id/general-ledger.csv", h.Report.GeneralLedgerCSV)
	ledger.GET("/accounts/:account_id/statement.pdf", h.Report.StatementPDF)
	ledger.GET("/trial-balance", h.Account.TrialBalance)
	ledger.GET("/journal-entries", h.Journal.Index)
	ledger.GET("/journal-entries/:entry_id", h.Journal.Show)
	ledger.GET("/journal-entries/:entry_id/voucher.pdf", h.Report.VoucherPDF)
	ledger.GET("/reports/trial-balance.xlsx", h.Report.TrialBalanceXLSX)
	ledger.GET("/reports/snapshots", h.Report.Snapshots)
	ledger.GET("/reports/snapshots/*path", h.Report.DownloadSnapshot)

	writers := ledger.Group("")
	writers.Use(middleware.RequireRole(models.RoleAdmin, models.RoleManager))
	{
		writers.POST("/accounts", h.Account.Create)
		writers.PUT("/accounts/:account_id", h.Account.Update)
		writers.DELETE("/accounts/:account_id", h.Account.Delete)

		writers.POST("/journal-entries", h.Journal.Create)
		writers.PUT("/journal-entries/:entry_id", h.Journal.Update)
		writers.DELETE("/journal-entries/:entry_id", h.Journal.Delete)
		writers.POST("/journal-entries/:entry_id/lines", h.Journal.AddLine)
		writers.PUT("/journal-entries/:entry_id/lines/:line_id", h.Journal.UpdateLine)
		writers.DELETE("/journal-entries/:entry_id/lines/:line_id", h.Journal.RemoveLine)
		writers.POST("/journal-entries/:entry_id/post", h.Journal.Post)
		writers.POST("/journal-entries/:entry_id/reverse", h.Journal.Reverse)
		writers.POST("/journal-entries/:entry_id/recalculate", h.Journal.Recalculate)
	}
}
