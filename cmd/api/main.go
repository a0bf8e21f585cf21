package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"keyskeeper-backend/config"
	_ "keyskeeper-backend/docs" // Important for Swagger
	v1 "keyskeeper-backend/internal/delivery/http/v1"
	"keyskeeper-backend/internal/repository/postgres"
	"keyskeeper-backend/internal/usecase"
	"keyskeeper-backend/internal/wizard"
	"keyskeeper-backend/pkg/auth"
	"keyskeeper-backend/pkg/database"
	"keyskeeper-backend/pkg/email"
	"keyskeeper-backend/pkg/geo"
	"keyskeeper-backend/pkg/logger"
	"keyskeeper-backend/pkg/redis"
	"keyskeeper-backend/pkg/storage"
	"keyskeeper-backend/pkg/validation"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// @title           Keyskeeper API
// @version         1.0
// @description     Backend for the Keyskeeper property management platform.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init()
	logger.Log.Info("Starting keyskeeper backend", "port", cfg.Port)

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis (rate limiting; falls back to in-memory when absent)
	if err := redis.Initialize(redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword}); err != nil {
		logger.Log.Warn("Redis unavailable, rate limiting falls back to in-memory", "error", err)
	}
	defer redis.Close()

	// 5. Setup Repositories
	profileRepo := postgres.NewProfileRepository(dbPool)
	listingRepo := postgres.NewListingRepository(dbPool)
	maintenanceRepo := postgres.NewMaintenanceRepository(dbPool)
	viewingRepo := postgres.NewViewingRepository(dbPool)

	// 6. Setup Email Service
	emailService := email.NewEmailService(email.Config{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		FromEmail: cfg.SMTPFromEmail,
	})
	if !emailService.IsConfigured() {
		logger.Log.Warn("Email service not fully configured - notifications will be skipped")
	}

	// 7. Setup Storage and Geocoder
	fileStore := storage.NewSupabaseStore(cfg.SupabaseUrl, cfg.SupabaseServiceKey, cfg.ListingImageBucket)
	if !fileStore.IsConfigured() {
		logger.Log.Warn("Supabase storage not configured - image uploads will fail")
	}

	geocoder, err := geo.NewGoogleGeocoder(cfg.GoogleMapsAPIKey, cfg.GeocodeRegion)
	if err != nil {
		logger.Log.Error("Failed to create geocoder", "error", err)
		os.Exit(1)
	}

	// 8. Setup Wizard Store
	wizardStore := wizard.NewStore(wizard.Flows())
	wizardStore.MaxAge = time.Duration(cfg.WizardSessionMaxAgeHours) * time.Hour

	// 9. Register custom validators on gin's binding engine
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.RegisterValidators(v)
	}

	// 10. Setup UseCases
	authUC := usecase.NewAuthUsecase(profileRepo, emailService)
	listingUC := usecase.NewListingUsecase(listingRepo, profileRepo, fileStore, geocoder)
	wizardUC := usecase.NewWizardUsecase(wizardStore, profileRepo, listingUC)
	maintenanceUC := usecase.NewMaintenanceUsecase(maintenanceRepo, listingRepo, profileRepo, emailService)
	viewingUC := usecase.NewViewingUsecase(viewingRepo, listingRepo, profileRepo, emailService)
	adminUC := usecase.NewAdminUsecase(profileRepo, listingRepo)

	// 11. Setup Auth Provider (JWKS)
	jwksURL := cfg.SupabaseUrl + "/auth/v1/.well-known/jwks.json"
	jwksProvider := auth.NewProvider(jwksURL)

	// 12. Setup Background Jobs
	scheduler := cron.New()
	// Drop abandoned wizard sessions hourly
	scheduler.AddFunc("@hourly", func() {
		if n := wizardStore.Sweep(time.Now()); n > 0 {
			logger.Log.Info("Swept stale wizard sessions", "count", n)
		}
	})
	// Flip listings whose available_from date has arrived
	scheduler.AddFunc("@daily", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		n, err := listingRepo.RefreshAvailability(ctx, time.Now())
		if err != nil {
			logger.Log.Error("Availability refresh failed", "error", err)
			return
		}
		if n > 0 {
			logger.Log.Info("Marked listings available", "count", n)
		}
	})
	scheduler.Start()
	defer scheduler.Stop()

	// 13. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:        authUC,
		ListingUC:     listingUC,
		WizardUC:      wizardUC,
		MaintenanceUC: maintenanceUC,
		ViewingUC:     viewingUC,
		AdminUC:       adminUC,
		JWKSProvider:  jwksProvider,
		Config:        cfg,
	})

	// 14. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
