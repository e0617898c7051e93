package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/zaintech991/ReguLens/internal/ingestion"
	"github.com/zaintech991/ReguLens/internal/storage"
	"github.com/zaintech991/ReguLens/pkg/logger"
)

// respondError maps domain errors onto HTTP statuses. Anything unrecognized
// is logged and reported as a 500 with msg.
func respondError(c *fiber.Ctx, err error, msg string) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	case errors.Is(err, storage.ErrAlreadyResolved):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Alert already resolved"})
	case errors.Is(err, ingestion.ErrEmptyDocument), errors.Is(err, ingestion.ErrInvalidEncoding):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	logger.Error(msg, zap.Error(err), zap.String("path", c.Path()))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msg})
}

// boundedInt reads an integer query parameter, rejecting values outside
// [lo, hi].
func boundedInt(c *fiber.Ctx, key string, def, lo, hi int) (int, error) {
	if c.Query(key) == "" {
		return def, nil
	}

	v := c.QueryInt(key, lo-1)
	if v < lo || v > hi {
		return 0, fmt.Errorf("%s must be an integer between %d and %d", key, lo, hi)
	}
	return v, nil
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}
