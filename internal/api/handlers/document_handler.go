package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/zaintech991/ReguLens/internal/ingestion"
	"github.com/zaintech991/ReguLens/internal/middleware/validation"
	"github.com/zaintech991/ReguLens/internal/storage"
	"github.com/zaintech991/ReguLens/pkg/logger"
)

type DocumentHandler struct {
	repo      storage.Repository
	processor *ingestion.Processor
}

func NewDocumentHandler(repo storage.Repository, processor *ingestion.Processor) *DocumentHandler {
	return &DocumentHandler{
		repo:      repo,
		processor: processor,
	}
}

func (h *DocumentHandler) ListDocuments(c *fiber.Ctx) error {
	docs, err := h.repo.LoadDocuments(c.Context())
	if err != nil {
		return respondError(c, err, "Failed to load documents")
	}
	return c.JSON(docs)
}

func (h *DocumentHandler) GetDocument(c *fiber.Ctx) error {
	doc, err := h.repo.GetDocument(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Failed to load document")
	}
	return c.JSON(doc)
}

func (h *DocumentHandler) UploadDocument(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "file is required",
		})
	}

	file, err := header.Open()
	if err != nil {
		return respondError(c, err, "Failed to read upload")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return respondError(c, err, "Failed to read upload")
	}

	result, err := h.processor.Upload(c.Context(), ingestion.UploadInput{
		Filename:    header.Filename,
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Title:       validation.Title(c),
		Category:    validation.Category(c),
		Content:     content,
	})
	if err != nil {
		return respondError(c, err, "Error uploading document")
	}

	logger.Debug("Upload handled", zap.String("document_id", result.Document.ID))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"document": result.Document,
		"analysis": result.Analysis,
	})
}

func (h *DocumentHandler) AnalyzeDocument(c *fiber.Ctx) error {
	id := c.Query("document_id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "document_id parameter is required",
		})
	}

	result, err := h.processor.AnalyzeDocument(c.Context(), id)
	if err != nil {
		return respondError(c, err, "Failed to analyze document")
	}
	return c.JSON(result)
}
