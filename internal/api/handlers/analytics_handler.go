package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/zaintech991/ReguLens/internal/analytics"
	"github.com/zaintech991/ReguLens/internal/ingestion"
	"github.com/zaintech991/ReguLens/internal/storage"
)

type AnalyticsHandler struct {
	repo        storage.Repository
	processor   *ingestion.Processor
	windowDays  int
	recentLimit int
	now         func() time.Time
}

func NewAnalyticsHandler(repo storage.Repository, processor *ingestion.Processor, windowDays, recentLimit int) *AnalyticsHandler {
	if windowDays <= 0 {
		windowDays = 30
	}
	if recentLimit <= 0 {
		recentLimit = analytics.DefaultRecentLimit
	}
	return &AnalyticsHandler{
		repo:        repo,
		processor:   processor,
		windowDays:  windowDays,
		recentLimit: recentLimit,
		now:         time.Now,
	}
}

func (h *AnalyticsHandler) GetTrends(c *fiber.Ctx) error {
	days, err := boundedInt(c, "days", h.windowDays, 1, 365)
	if err != nil {
		return badRequest(c, err)
	}

	summaries, err := h.processor.Summaries(c.Context())
	if err != nil {
		return respondError(c, err, "Failed to analyze documents")
	}

	logs, err := h.repo.LoadLogs(c.Context())
	if err != nil {
		return respondError(c, err, "Failed to load operational logs")
	}

	report := analytics.ComputeTrends(summaries, days, h.now())

	return c.JSON(fiber.Map{
		"trends":                 report.Trends,
		"violations_by_category": report.ViolationsByCategory,
		"total_violations":       report.TotalViolations,
		"average_compliance":     report.AverageCompliance,
		"safety_metrics":         analytics.SafetyMetrics(logs),
		"deviations":             analytics.DetectDeviations(logs),
	})
}

func (h *AnalyticsHandler) GetFacilityRisks(c *fiber.Ctx) error {
	summaries, err := h.processor.Summaries(c.Context())
	if err != nil {
		return respondError(c, err, "Failed to analyze documents")
	}

	logs, err := h.repo.LoadLogs(c.Context())
	if err != nil {
		return respondError(c, err, "Failed to load operational logs")
	}

	return c.JSON(fiber.Map{
		"facilities": analytics.FacilityRisks(summaries, logs),
	})
}

func (h *AnalyticsHandler) GetRecentActivity(c *fiber.Ctx) error {
	limit, err := boundedInt(c, "limit", h.recentLimit, 1, 100)
	if err != nil {
		return badRequest(c, err)
	}

	docs, err := h.repo.LoadDocuments(c.Context())
	if err != nil {
		return respondError(c, err, "Failed to load documents")
	}

	alerts, err := h.repo.ListAlerts(c.Context())
	if err != nil {
		return respondError(c, err, "Failed to load alerts")
	}

	return c.JSON(fiber.Map{
		"activities": analytics.RecentActivity(docs, alerts, limit),
	})
}
