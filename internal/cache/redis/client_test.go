package redis_test

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/zaintech991/ReguLens/internal/cache/redis"
	"github.com/zaintech991/ReguLens/internal/storage/models"
)

func TestEncodeAlert(t *testing.T) {
	facility := "Plant A"
	alert := models.Alert{
		AlertID:   "ALERT-1",
		Type:      models.AlertThresholdExceeded,
		Message:   "Air Emissions exceeded threshold at Plant A. Value: 27 ppm, Threshold: 20 ppm.",
		Severity:  models.SeverityHigh,
		Timestamp: time.Date(2024, 4, 12, 13, 22, 0, 0, time.UTC),
		Facility:  &facility,
	}

	data, err := redis.EncodeAlert(alert)
	gt.NoError(t, err).Required()

	var payload map[string]any
	gt.NoError(t, json.Unmarshal(data, &payload)).Required()
	gt.Value(t, payload["alert_id"]).Equal("ALERT-1")
	gt.Value(t, payload["timestamp"]).Equal("2024-04-12T13:22:00Z")
	gt.Value(t, payload["facility"]).Equal("Plant A")
	gt.Bool(t, payload["metric"] == nil).True()
}

// TestClient_PublishSubscribe needs a live server: set TEST_REDIS_HOST (and
// optionally TEST_REDIS_PORT) to run it.
func TestClient_PublishSubscribe(t *testing.T) {
	host := os.Getenv("TEST_REDIS_HOST")
	if host == "" {
		t.Skip("TEST_REDIS_HOST is not set")
	}
	port := 6379
	if v := os.Getenv("TEST_REDIS_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		gt.NoError(t, err).Required()
		port = p
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := redis.NewClient(ctx, host, port, "", 0, "regulens:test:"+strconv.FormatInt(time.Now().UnixNano(), 10))
	gt.NoError(t, err).Required()
	defer client.Close()

	feed, err := client.Subscribe(ctx)
	gt.NoError(t, err).Required()

	gt.NoError(t, client.PublishAlerts(ctx, []models.Alert{{AlertID: "ALERT-7", Severity: models.SeverityLow}})).Required()

	select {
	case got := <-feed:
		gt.Value(t, got.AlertID).Equal("ALERT-7")
	case <-ctx.Done():
		t.Fatal("no alert received")
	}

	before, err := client.GetMetric(ctx, "test_counter")
	gt.NoError(t, err).Required()
	gt.NoError(t, client.IncrementMetric(ctx, "test_counter")).Required()
	after, err := client.GetMetric(ctx, "test_counter")
	gt.NoError(t, err).Required()
	gt.Value(t, after).Equal(before + 1)
}
