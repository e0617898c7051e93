package validation_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/m-mizutani/gt"

	"github.com/zaintech991/ReguLens/internal/middleware/validation"
)

func uploadRequest(t *testing.T, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		gt.NoError(t, w.WriteField(k, v)).Required()
	}
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		gt.NoError(t, err).Required()
		_, err = part.Write([]byte(content))
		gt.NoError(t, err).Required()
	}
	gt.NoError(t, w.Close()).Required()

	req := httptest.NewRequest("POST", "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUploadMiddleware(t *testing.T) {
	app := fiber.New()
	app.Post("/upload", validation.UploadMiddleware(validation.Config{
		MaxUploadBytes: 64,
		Categories:     []string{"Safety", "Environmental"},
	}), func(c *fiber.Ctx) error {
		return c.SendString(validation.Category(c) + "|" + validation.Title(c))
	})

	testCases := map[string]struct {
		req  *http.Request
		want int
	}{
		"accepted":      {req: uploadRequest(t, "policy.txt", "must log", map[string]string{"category": "Safety"}), want: fiber.StatusOK},
		"no category":   {req: uploadRequest(t, "policy.md", "must log", nil), want: fiber.StatusOK},
		"missing file":  {req: uploadRequest(t, "", "", map[string]string{"category": "Safety"}), want: fiber.StatusBadRequest},
		"too large":     {req: uploadRequest(t, "big.txt", strings.Repeat("x", 65), nil), want: fiber.StatusRequestEntityTooLarge},
		"bad extension": {req: uploadRequest(t, "tool.exe", "MZ", nil), want: fiber.StatusUnsupportedMediaType},
		"bad category":  {req: uploadRequest(t, "policy.txt", "x", map[string]string{"category": "Astrology"}), want: fiber.StatusBadRequest},
		"not multipart": {req: jsonRequest("/upload"), want: fiber.StatusUnsupportedMediaType},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			resp, err := app.Test(tc.req)
			gt.NoError(t, err).Required()
			gt.Value(t, resp.StatusCode).Equal(tc.want)
		})
	}
}

func TestUploadMiddleware_QueryFallback(t *testing.T) {
	app := fiber.New()
	app.Post("/upload", validation.UploadMiddleware(validation.Config{}), func(c *fiber.Ctx) error {
		return c.SendString(validation.Category(c) + "|" + validation.Title(c))
	})

	req := uploadRequest(t, "policy.txt", "must log", nil)
	req.URL.RawQuery = "category=Quality&title=Plant+Rules"
	req.RequestURI = "/upload?" + req.URL.RawQuery

	resp, err := app.Test(req)
	gt.NoError(t, err).Required()
	gt.Value(t, resp.StatusCode).Equal(fiber.StatusOK)

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	gt.NoError(t, err).Required()
	gt.Value(t, buf.String()).Equal("Quality|Plant Rules")
}

func jsonRequest(path string) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestMiddleware_ContentType(t *testing.T) {
	app := fiber.New()
	app.Use(validation.Middleware(validation.Config{}))
	app.All("/x", func(c *fiber.Ctx) error { return c.SendString("ok") })

	testCases := map[string]struct {
		method      string
		contentType string
		want        int
	}{
		"json post":      {method: "POST", contentType: "application/json", want: fiber.StatusOK},
		"bodiless post":  {method: "POST", contentType: "", want: fiber.StatusOK},
		"xml post":       {method: "POST", contentType: "application/xml", want: fiber.StatusUnsupportedMediaType},
		"get ignores ct": {method: "GET", contentType: "application/xml", want: fiber.StatusOK},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/x", nil)
			if tc.contentType != "" {
				req.Header.Set("Content-Type", tc.contentType)
			}
			resp, err := app.Test(req)
			gt.NoError(t, err).Required()
			gt.Value(t, resp.StatusCode).Equal(tc.want)
		})
	}
}

func TestSanitizeString(t *testing.T) {
	gt.Value(t, validation.SanitizeString("  Plant\x00 A  ")).Equal("Plant A")
}
