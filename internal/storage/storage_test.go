package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/zaintech991/ReguLens/internal/storage"
	"github.com/zaintech991/ReguLens/internal/storage/memory"
	"github.com/zaintech991/ReguLens/internal/storage/models"
	"github.com/zaintech991/ReguLens/internal/storage/sqlite"
)

func repositories(t *testing.T) map[string]storage.Repository {
	t.Helper()

	client, err := sqlite.NewClient(filepath.Join(t.TempDir(), "regulens.db"))
	gt.NoError(t, err).Required()
	gt.NoError(t, client.InitSchema(context.Background())).Required()
	t.Cleanup(func() { client.Close() })

	return map[string]storage.Repository{
		"memory": memory.New(),
		"sqlite": client,
	}
}

func TestRepository_Documents(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			created := time.Date(2024, 4, 1, 8, 0, 0, 123456789, time.UTC)

			docs := []models.Document{
				{ID: "DOC-1001", Title: "Air Quality", Body: "must maintain logs", Category: "Environmental", PublishedAt: "2024-04-01", CreatedAt: created},
				{ID: "DOC-1002", Title: "PPE", Body: "shall wear gloves", Category: "Safety", PublishedAt: "2024-04-02", CreatedAt: created},
			}
			gt.NoError(t, repo.SaveDocuments(ctx, docs)).Required()

			got, err := repo.GetDocument(ctx, "DOC-1002")
			gt.NoError(t, err).Required()
			gt.Value(t, got.Title).Equal("PPE")
			gt.Bool(t, got.CreatedAt.Equal(created)).True()

			updated := docs[0]
			updated.Title = "Air Quality v2"
			gt.NoError(t, repo.SaveDocuments(ctx, []models.Document{updated})).Required()

			all, err := repo.LoadDocuments(ctx)
			gt.NoError(t, err).Required()
			gt.Array(t, all).Length(2)
			gt.Value(t, all[0].ID).Equal("DOC-1001")
			gt.Value(t, all[0].Title).Equal("Air Quality v2")

			_, err = repo.GetDocument(ctx, "DOC-9999")
			gt.Bool(t, errors.Is(err, storage.ErrNotFound)).True()

			gt.NoError(t, repo.ReplaceDocuments(ctx, docs[1:])).Required()
			all, err = repo.LoadDocuments(ctx)
			gt.NoError(t, err).Required()
			gt.Array(t, all).Length(1)
			gt.Value(t, all[0].ID).Equal("DOC-1002")
		})
	}
}

func TestRepository_Logs(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			ts := time.Date(2024, 4, 12, 13, 22, 0, 987654321, time.UTC)

			logs := []models.OperationalLog{
				{ID: "LOG-1", Facility: "Plant A", Metric: "Air Emissions", Value: 27, Unit: "ppm", Threshold: 20, Timestamp: ts},
				{ID: "LOG-2", Facility: "Plant B", Metric: "Pressure", Value: 50, Unit: "psi", Threshold: 65, Timestamp: ts, Status: models.StatusNormal},
			}
			gt.NoError(t, repo.SaveLogs(ctx, logs)).Required()

			got, err := repo.LoadLogs(ctx)
			gt.NoError(t, err).Required()
			gt.Array(t, got).Length(2)
			gt.Value(t, got[0].Metric).Equal("Air Emissions")
			gt.Value(t, got[1].Status).Equal(models.StatusNormal)
			gt.Bool(t, got[0].Timestamp.Equal(ts)).True()

			gt.NoError(t, repo.ReplaceLogs(ctx, logs[:1])).Required()
			got, err = repo.LoadLogs(ctx)
			gt.NoError(t, err).Required()
			gt.Array(t, got).Length(1)
		})
	}
}

func TestRepository_Alerts(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			facility := "Plant A"
			alerts := []models.Alert{
				{AlertID: "ALERT-1", Type: models.AlertThresholdExceeded, Message: "Air Emissions exceeded threshold at Plant A.", Severity: models.SeverityHigh, Timestamp: time.Date(2024, 4, 12, 13, 22, 0, 250000000, time.UTC), Facility: &facility},
				{AlertID: "ALERT-2", Type: models.AlertComplianceViolation, Message: "Missing weekly inspection report for Plant A", Severity: models.SeverityLow, Timestamp: time.Date(2024, 4, 14, 9, 15, 0, 0, time.UTC)},
			}
			gt.NoError(t, repo.AppendAlerts(ctx, alerts)).Required()

			listed, err := repo.ListAlerts(ctx)
			gt.NoError(t, err).Required()
			gt.Array(t, listed).Length(2)
			gt.Value(t, *listed[0].Facility).Equal("Plant A")
			gt.Bool(t, listed[0].Timestamp.Equal(alerts[0].Timestamp)).True()
			gt.Bool(t, listed[1].Facility == nil).True()
			gt.Bool(t, listed[1].ResolvedAt == nil).True()

			at := time.Date(2024, 4, 15, 10, 0, 0, 500000001, time.UTC)
			resolved, err := repo.ResolveAlert(ctx, "ALERT-1", at)
			gt.NoError(t, err).Required()
			gt.Bool(t, resolved.Resolved).True()
			gt.Bool(t, resolved.ResolvedAt.Equal(at)).True()

			_, err = repo.ResolveAlert(ctx, "ALERT-1", at.Add(time.Hour))
			gt.Bool(t, errors.Is(err, storage.ErrAlreadyResolved)).True()

			_, err = repo.ResolveAlert(ctx, "ALERT-404", at)
			gt.Bool(t, errors.Is(err, storage.ErrNotFound)).True()

			gt.Value(t, repo.AppendAlerts(ctx, alerts[:1])).NotNil()
		})
	}
}
