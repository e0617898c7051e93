package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/zaintech991/ReguLens/internal/ingestion"
	"github.com/zaintech991/ReguLens/internal/metrics"
	"github.com/zaintech991/ReguLens/internal/middleware/validation"
	"github.com/zaintech991/ReguLens/internal/storage"
)

type RouteConfig struct {
	TrendWindowDays  int
	RecentLimit      int
	DefaultDocuments int
	DefaultLogs      int
	Upload           validation.Config
}

// Register mounts the API under /api/v1 plus the health, readiness and
// metrics endpoints.
func Register(app *fiber.App, repo storage.Repository, processor *ingestion.Processor, cfg RouteConfig) {
	documentHandler := NewDocumentHandler(repo, processor)
	alertHandler := NewAlertHandler(repo, processor)
	analyticsHandler := NewAnalyticsHandler(repo, processor, cfg.TrendWindowDays, cfg.RecentLimit)
	processingHandler := NewProcessingHandler(processor, cfg.DefaultDocuments, cfg.DefaultLogs)

	api := app.Group("/api/v1")

	api.Get("/documents", documentHandler.ListDocuments)
	api.Get("/documents/:id", documentHandler.GetDocument)
	api.Post("/documents/upload", validation.UploadMiddleware(cfg.Upload), documentHandler.UploadDocument)
	api.Post("/documents/analyze", documentHandler.AnalyzeDocument)

	api.Get("/alerts", alertHandler.ListAlerts)
	api.Post("/alerts/generate", alertHandler.GenerateAlerts)
	api.Post("/alerts/:id/resolve", alertHandler.ResolveAlert)

	api.Get("/analytics/trends", analyticsHandler.GetTrends)
	api.Get("/analytics/facility-risks", analyticsHandler.GetFacilityRisks)
	api.Get("/analytics/recent-activity", analyticsHandler.GetRecentActivity)

	api.Post("/processing/generate-data", processingHandler.GenerateData)
	api.Post("/processing/analyze-documents", processingHandler.AnalyzeDocuments)
	api.Post("/processing/generate-alerts", processingHandler.GenerateAlerts)
	api.Post("/processing/run-pipeline", processingHandler.RunPipeline)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		if _, err := repo.ListAlerts(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unavailable",
			})
		}
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())
}
