package validation

import (
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Config struct {
	MaxUploadBytes      int
	AllowedExtensions   []string
	AllowedContentTypes []string
	Categories          []string
	Logger              *zap.Logger
}

func (cfg Config) withDefaults() Config {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 * 1024 * 1024
	}
	if len(cfg.AllowedExtensions) == 0 {
		cfg.AllowedExtensions = []string{".txt", ".md", ".html", ".htm"}
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{"application/json", "multipart/form-data", "application/x-www-form-urlencoded"}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return cfg
}

// Middleware rejects write requests whose body is not JSON or a form.
// Bodiless requests pass.
func Middleware(cfg Config) fiber.Handler {
	cfg = cfg.withDefaults()

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost && c.Method() != fiber.MethodPut {
			return c.Next()
		}

		contentType := c.Get(fiber.HeaderContentType)
		if contentType == "" {
			return c.Next()
		}

		for _, allowed := range cfg.AllowedContentTypes {
			if strings.Contains(contentType, allowed) {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
			"error": "Unsupported content type",
		})
	}
}

// UploadMiddleware checks a document upload before it reaches the handler:
// a multipart "file" part within the size limit, an accepted extension, and
// a known category when one is given.
func UploadMiddleware(cfg Config) fiber.Handler {
	cfg = cfg.withDefaults()

	return func(c *fiber.Ctx) error {
		if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
				"error": "Upload must be multipart/form-data",
			})
		}

		file, err := c.FormFile("file")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "file is required",
			})
		}

		if file.Size > int64(cfg.MaxUploadBytes) {
			cfg.Logger.Warn("Upload too large",
				zap.String("ip", c.IP()),
				zap.String("filename", file.Filename),
				zap.Int64("size", file.Size),
			)
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
				"error": "Document exceeds maximum size",
			})
		}

		ext := strings.ToLower(filepath.Ext(file.Filename))
		if ext != "" && !contains(cfg.AllowedExtensions, ext) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
				"error": "Unsupported file type " + ext,
			})
		}

		category := Category(c)
		if category != "" && len(cfg.Categories) > 0 && !contains(cfg.Categories, category) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unknown category " + category,
			})
		}

		return c.Next()
	}
}

// Category reads the upload category from the form, then the query string.
// The result is copied out of the request buffer, so it is safe to store.
func Category(c *fiber.Ctx) string {
	if v := SanitizeString(c.FormValue("category")); v != "" {
		return v
	}
	return SanitizeString(c.Query("category"))
}

// Title reads the upload title from the form, then the query string.
func Title(c *fiber.Ctx) string {
	if v := SanitizeString(c.FormValue("title")); v != "" {
		return v
	}
	return SanitizeString(c.Query("title"))
}

// SanitizeString strips NUL bytes and surrounding space and returns a copy
// that does not alias fiber's reusable request memory.
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	return strings.Clone(strings.TrimSpace(input))
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
