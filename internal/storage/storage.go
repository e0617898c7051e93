package storage

import (
	"context"
	"errors"
	"time"

	"github.com/zaintech991/ReguLens/internal/storage/models"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyResolved = errors.New("alert already resolved")
)

// Repository is the persisted state of the service: documents, operational
// logs and the append-only alert list. Every aggregate is recomputed from it.
type Repository interface {
	LoadDocuments(ctx context.Context) ([]models.Document, error)
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	SaveDocuments(ctx context.Context, docs []models.Document) error
	ReplaceDocuments(ctx context.Context, docs []models.Document) error

	LoadLogs(ctx context.Context) ([]models.OperationalLog, error)
	SaveLogs(ctx context.Context, logs []models.OperationalLog) error
	ReplaceLogs(ctx context.Context, logs []models.OperationalLog) error

	ListAlerts(ctx context.Context) ([]models.Alert, error)
	AppendAlerts(ctx context.Context, alerts []models.Alert) error
	ResolveAlert(ctx context.Context, id string, at time.Time) (*models.Alert, error)

	Close() error
}
