package router

import (
	"github.com/gin-gonic/gin"

	"bidrecon/internal/config"
	"bidrecon/internal/handler"
	"bidrecon/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	documentH *handler.DocumentHandler,
	analysisH *handler.AnalysisHandler,
	exportH *handler.ExportHandler,
	sessionH *handler.SessionHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Session(&cfg.Session))

	// Document intake
	documents := v1.Group("/documents")
	documents.POST("/:kind", documentH.Upload)

	// Session lifecycle
	session := v1.Group("/session")
	session.GET("/status", sessionH.Status)
	session.POST("/clear", sessionH.Clear)
	session.GET("/documents/:id/url", documentH.GetDownloadURL)

	// Reconciliation
	v1.POST("/analyze", analysisH.Run)
	v1.POST("/compare", analysisH.Compare)
	v1.GET("/history", analysisH.History)
	v1.GET("/history/:id", analysisH.GetRecord)

	// Downloads
	export := v1.Group("/export")
	export.GET("/excel", exportH.Excel)
	export.GET("/csv", exportH.CSV)
	export.GET("/report", exportH.Report)

	return r
}
