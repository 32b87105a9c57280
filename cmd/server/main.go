package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"bidrecon/internal/config"
	"bidrecon/internal/extractor"
	"bidrecon/internal/extractor/claude"
	"bidrecon/internal/extractor/gemini"
	"bidrecon/internal/extractor/openai"
	"bidrecon/internal/extractor/spreadsheet"
	"bidrecon/internal/handler"
	"bidrecon/internal/port"
	"bidrecon/internal/repository/postgres"
	"bidrecon/internal/router"
	"bidrecon/internal/service"
	"bidrecon/internal/session"
	s3storage "bidrecon/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func registerExtractorProviders() {
	extractor.RegisterProvider("openai", func(cfg *config.ExtractorProviderConfig) (port.DocumentExtractor, error) {
		return openai.NewExtractor(cfg), nil
	})
	extractor.RegisterProvider("claude", func(cfg *config.ExtractorProviderConfig) (port.DocumentExtractor, error) {
		return claude.NewExtractor(cfg), nil
	})
	extractor.RegisterProvider("gemini", func(cfg *config.ExtractorProviderConfig) (port.DocumentExtractor, error) {
		return gemini.NewExtractor(cfg), nil
	})
}

// buildLLMExtractor wires the configured providers into a fallback chain.
func buildLLMExtractor(cfg *config.ExtractorConfig) (port.DocumentExtractor, error) {
	providerCfgs := cfg.Providers()
	if len(providerCfgs) == 0 {
		return nil, fmt.Errorf("no extractor providers configured")
	}

	var extractors []port.DocumentExtractor
	var names []string
	for i := range providerCfgs {
		e, err := extractor.NewExtractor(&providerCfgs[i])
		if err != nil {
			return nil, fmt.Errorf("building %s extractor: %w", providerCfgs[i].Provider, err)
		}
		extractors = append(extractors, e)
		names = append(names, providerCfgs[i].Provider)
	}
	if len(extractors) == 1 {
		return extractors[0], nil
	}
	return extractor.NewFallbackExtractor(extractors, names), nil
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	registerExtractorProviders()
	llmExtractor, err := buildLLMExtractor(&cfg.Extractor)
	if err != nil {
		return fmt.Errorf("failed to build extractor chain: %w", err)
	}

	sessions := session.NewMemoryStore(cfg.Session.TTL, cfg.Session.SweepInterval)
	defer sessions.Close()

	analysisRepo := postgres.NewAnalysisRepo(db)

	documentSvc := service.NewDocumentService(sessions, s3Client, llmExtractor, spreadsheet.NewExtractor(), &cfg.S3)
	analysisSvc := service.NewAnalysisService(sessions, analysisRepo, &cfg.Analysis)
	exportSvc := service.NewExportService(sessions)

	documentH := handler.NewDocumentHandler(documentSvc)
	analysisH := handler.NewAnalysisHandler(analysisSvc)
	exportH := handler.NewExportHandler(exportSvc)
	sessionH := handler.NewSessionHandler(sessions)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(cfg, documentH, analysisH, exportH, sessionH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
