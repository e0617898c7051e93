package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zaintech991/ReguLens/internal/ingestion"
	"github.com/zaintech991/ReguLens/internal/storage"
)

type AlertHandler struct {
	repo      storage.Repository
	processor *ingestion.Processor
}

func NewAlertHandler(repo storage.Repository, processor *ingestion.Processor) *AlertHandler {
	return &AlertHandler{
		repo:      repo,
		processor: processor,
	}
}

func (h *AlertHandler) ListAlerts(c *fiber.Ctx) error {
	alerts, err := h.repo.ListAlerts(c.Context())
	if err != nil {
		return respondError(c, err, "Failed to load alerts")
	}
	return c.JSON(alerts)
}

// GenerateAlerts returns only the alerts that were newly stored.
func (h *AlertHandler) GenerateAlerts(c *fiber.Ctx) error {
	added, err := h.processor.GenerateAlerts(c.Context(), ingestion.AlertRequest{
		FromLogs:          c.QueryBool("analyze_operational_logs", true),
		IncludeHistorical: c.QueryBool("include_historical", true),
	})
	if err != nil {
		return respondError(c, err, "Failed to generate alerts")
	}
	return c.JSON(added)
}

func (h *AlertHandler) ResolveAlert(c *fiber.Ctx) error {
	alert, err := h.processor.ResolveAlert(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Failed to resolve alert")
	}
	return c.JSON(alert)
}
