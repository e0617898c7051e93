package security_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/m-mizutani/gt"

	"github.com/zaintech991/ReguLens/internal/middleware/security"
)

func TestHeadersMiddleware(t *testing.T) {
	testCases := map[string]struct {
		dev       bool
		path      string
		wantHSTS  bool
		wantCache string
	}{
		"production api":  {dev: false, path: "/api/v1/alerts", wantHSTS: true, wantCache: "no-store"},
		"development api": {dev: true, path: "/api/v1/alerts", wantHSTS: false, wantCache: "no-store"},
		"metrics":         {dev: false, path: "/metrics", wantHSTS: true, wantCache: ""},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			app := fiber.New()
			app.Use(security.HeadersMiddleware(security.HeadersConfig{
				AllowedOrigins: []string{"http://localhost:3000"},
				IsDevelopment:  tc.dev,
			}))
			app.Get("/*", func(c *fiber.Ctx) error { return c.SendString("ok") })

			resp, err := app.Test(httptest.NewRequest("GET", tc.path, nil))
			gt.NoError(t, err).Required()

			gt.Value(t, resp.Header.Get("X-Frame-Options")).Equal("DENY")
			gt.Value(t, resp.Header.Get("X-Content-Type-Options")).Equal("nosniff")
			gt.String(t, resp.Header.Get("Content-Security-Policy")).Contains("connect-src 'self' http://localhost:3000;")
			gt.Value(t, resp.Header.Get("Strict-Transport-Security") != "").Equal(tc.wantHSTS)
			gt.Value(t, resp.Header.Get("Cache-Control")).Equal(tc.wantCache)
		})
	}
}
