package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/zaintech991/ReguLens/internal/ingestion"
)

const maxGenerated = 1000

type ProcessingHandler struct {
	processor   *ingestion.Processor
	defaultDocs int
	defaultLogs int
}

func NewProcessingHandler(processor *ingestion.Processor, defaultDocs, defaultLogs int) *ProcessingHandler {
	if defaultDocs <= 0 {
		defaultDocs = 10
	}
	if defaultLogs <= 0 {
		defaultLogs = 50
	}
	return &ProcessingHandler{
		processor:   processor,
		defaultDocs: defaultDocs,
		defaultLogs: defaultLogs,
	}
}

func (h *ProcessingHandler) counts(c *fiber.Ctx) (int, int, error) {
	docs, err := boundedInt(c, "document_count", h.defaultDocs, 0, maxGenerated)
	if err != nil {
		return 0, 0, err
	}
	logs, err := boundedInt(c, "log_count", h.defaultLogs, 0, maxGenerated)
	if err != nil {
		return 0, 0, err
	}
	return docs, logs, nil
}

func (h *ProcessingHandler) GenerateData(c *fiber.Ctx) error {
	docs, logs, err := h.counts(c)
	if err != nil {
		return badRequest(c, err)
	}

	result, err := h.processor.GenerateData(c.Context(), ingestion.GenerateRequest{
		DocumentCount:   docs,
		LogCount:        logs,
		ReplaceExisting: c.QueryBool("replace_existing", false),
	})
	if err != nil {
		return respondError(c, err, "Error generating data")
	}

	return c.JSON(fiber.Map{
		"success":             true,
		"message":             result.Message,
		"documents_generated": result.DocumentsGenerated,
		"logs_generated":      result.LogsGenerated,
		"timestamp":           result.Timestamp,
	})
}

func (h *ProcessingHandler) AnalyzeDocuments(c *fiber.Ctx) error {
	analyses, err := h.processor.AnalyzeAll(c.Context())
	if err != nil {
		return respondError(c, err, "Error analyzing documents")
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"message":  fmt.Sprintf("Analyzed %d documents", len(analyses)),
		"count":    len(analyses),
		"analyses": analyses,
	})
}

func (h *ProcessingHandler) GenerateAlerts(c *fiber.Ctx) error {
	alerts, err := h.processor.GenerateAlerts(c.Context(), ingestion.AlertRequest{FromLogs: true})
	if err != nil {
		return respondError(c, err, "Error generating alerts")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Generated %d alerts", len(alerts)),
		"count":   len(alerts),
		"alerts":  alerts,
	})
}

func (h *ProcessingHandler) RunPipeline(c *fiber.Ctx) error {
	docs, logs, err := h.counts(c)
	if err != nil {
		return badRequest(c, err)
	}

	result, err := h.processor.RunPipeline(c.Context(), ingestion.PipelineRequest{
		GenerateNewData: c.QueryBool("generate_new_data", false),
		DocumentCount:   docs,
		LogCount:        logs,
	})
	if err != nil {
		return respondError(c, err, "Error running pipeline")
	}

	return c.JSON(fiber.Map{
		"success":            true,
		"message":            "Pipeline completed successfully",
		"timestamp":          result.Timestamp,
		"data_generation":    result.DataGeneration,
		"documents_analyzed": result.DocumentsAnalyzed,
		"alerts_generated":   result.AlertsGenerated,
		"analyses":           result.Analyses,
		"alerts":             result.Alerts,
	})
}
