package v1

import (
	"strings"
	"time"

	"go-resume-matcher/config"
	"go-resume-matcher/internal/delivery/http/middleware"
	"go-resume-matcher/internal/domain"
	"go-resume-matcher/pkg/security"
	"go-resume-matcher/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AnalysisUC     domain.AnalysisUsecase
	DocumentUC     domain.DocumentUsecase
	HealthUC       domain.HealthUsecase
	SecurityLogger *security.SecurityLogger
	UploadLimiter  *security.UploadLimiter
	Config         *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.RegisterValidators(v)
	}

	cfg := deps.Config
	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second

	r := gin.New()
	if !cfg.TrustProxy {
		_ = r.SetTrustedProxies(nil)
	}

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins)) // CORS must be first!
	r.Use(middleware.Recovery(deps.SecurityLogger, panicMessage))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	global := middleware.GlobalRateLimitConfig(cfg.RateLimitGlobalThreshold, window)
	global.SecurityLogger = deps.SecurityLogger
	v1 := r.Group("/v1")
	v1.Use(middleware.RateLimitMiddleware(global))

	NewHealthHandler(v1, deps.HealthUC)

	strict := middleware.AnalyzeRateLimitConfig(cfg.RateLimitAnalyzeThreshold, window)
	strict.SecurityLogger = deps.SecurityLogger
	analyze := v1.Group("")
	analyze.Use(middleware.RateLimitMiddleware(strict))

	NewAnalysisHandler(v1, analyze, deps.AnalysisUC, deps.DocumentUC, deps.SecurityLogger, deps.UploadLimiter, cfg.MaxUploadBytes)

	return r
}

// panicMessage keeps the analyze contract for panics on analyze routes
func panicMessage(c *gin.Context) string {
	if strings.HasPrefix(c.Request.URL.Path, "/v1/resume/analyze") {
		return msgAnalysisFailed
	}
	return ""
}
