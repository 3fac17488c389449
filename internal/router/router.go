package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dyscover/dyscover-backend/internal/config"
	"github.com/dyscover/dyscover-backend/internal/handler"
	"github.com/dyscover/dyscover-backend/internal/middleware"
	"github.com/dyscover/dyscover-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Screening *handler.ScreeningHandler
	Dashboard *handler.DashboardHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for screening routes (60 requests per minute per IP:
	// a session issues and grades five questions plus start/finish).
	screeningLimiter := middleware.NewRateLimiter(60, time.Minute)

	// ─── 1. Screening Group (Test-Taker Facing) ────────────────────────
	screening := router.Group("/api/v1/screening")
	screening.Use(screeningLimiter.Middleware())
	{
		screening.POST("/sessions", handlers.Screening.StartSession)
		screening.GET("/sessions/:session_id/questions/:number", handlers.Screening.IssuePrompt)
		screening.POST("/sessions/:session_id/questions/:number", handlers.Screening.GradeQuestion)
		screening.POST("/sessions/:session_id/finish", handlers.Screening.Finish)
		screening.GET("/history", handlers.Screening.History)
	}

	// ─── 2. Dashboard Group (Teacher Facing) ───────────────────────────
	dashboard := router.Group("/api/v1/dashboard")
	{
		dashboard.GET("/classes/:class_name/students", handlers.Dashboard.ListClassStudents)
		dashboard.GET("/students/:username", handlers.Dashboard.GetStudent)
		dashboard.PUT("/students/:username/difficulty", handlers.Dashboard.UpdateDifficulty)
	}

	return router
}
