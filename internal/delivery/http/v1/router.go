package v1

import (
	"net/http"

	"keyskeeper-backend/config"
	"keyskeeper-backend/internal/delivery/http/middleware"
	"keyskeeper-backend/internal/delivery/http/response"
	"keyskeeper-backend/internal/domain"
	"keyskeeper-backend/pkg/auth"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AuthUC        domain.AuthUsecase
	ListingUC     domain.ListingUsecase
	WizardUC      domain.WizardUsecase
	MaintenanceUC domain.MaintenanceUsecase
	ViewingUC     domain.ViewingUsecase
	AdminUC       domain.AdminUsecase
	JWKSProvider  *auth.Provider
	Config        *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware()) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.RateLimitMiddleware(middleware.GlobalRateLimitConfig(
		deps.Config.RateLimitGlobalThreshold, deps.Config.RateLimitWindowSeconds)))
	r.Use(middleware.ErrorHandler())

	uploadLimiter := middleware.RateLimitMiddleware(middleware.UploadRateLimitConfig(
		deps.Config.RateLimitUploadThreshold, deps.Config.RateLimitWindowSeconds))

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, "System operational", nil)
	})

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Token-only routes: valid token required, profile row optional
	tokenOnly := v1.Group("")
	tokenOnly.Use(middleware.TokenOnlyMiddleware(deps.JWKSProvider, deps.Config))

	// Protected routes: token plus resolved profile
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.JWKSProvider, deps.Config, deps.AuthUC))
	{
		NewAuthHandler(tokenOnly, protected, deps.AuthUC)
		NewNavigationHandler(protected)
		NewListingHandler(v1, protected, deps.ListingUC, uploadLimiter)
		NewWizardHandler(protected, deps.WizardUC, uploadLimiter)
		NewMaintenanceHandler(protected, deps.MaintenanceUC)
		NewViewingHandler(protected, deps.ViewingUC)
		NewAdminHandler(protected, deps.AdminUC)
	}

	return r
}
