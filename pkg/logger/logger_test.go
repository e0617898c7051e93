package logger_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"go.uber.org/zap"

	"github.com/zaintech991/ReguLens/pkg/logger"
)

func TestInit_FileOutput(t *testing.T) {
	prev := logger.Log
	t.Cleanup(func() { logger.Log = prev })

	path := filepath.Join(t.TempDir(), "regulens.log")
	gt.NoError(t, logger.Init("info", "json", path)).Required()

	logger.Debug("hidden")
	logger.Info("Document uploaded", zap.String("document_id", "DOC-1000"))
	logger.Sync()

	raw, err := os.ReadFile(path)
	gt.NoError(t, err).Required()
	out := string(raw)

	gt.String(t, out).Contains(`"message":"Document uploaded"`)
	gt.String(t, out).Contains(`"document_id":"DOC-1000"`)
	gt.String(t, out).Contains(`"service":"regulens"`)
	gt.Bool(t, strings.Contains(out, "hidden")).False()
}

func TestInit_Invalid(t *testing.T) {
	prev := logger.Log
	t.Cleanup(func() { logger.Log = prev })

	gt.Value(t, logger.Init("loud", "json", "stdout")).NotNil()
	gt.Value(t, logger.Init("info", "xml", "stdout")).NotNil()
}

