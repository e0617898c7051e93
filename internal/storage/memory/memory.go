package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/zaintech991/ReguLens/internal/storage"
	"github.com/zaintech991/ReguLens/internal/storage/models"
)

// Store is an in-process Repository. It keeps insertion order for every
// collection and returns copies so callers cannot mutate stored state.
type Store struct {
	mu        sync.RWMutex
	documents []models.Document
	logs      []models.OperationalLog
	alerts    []models.Alert
}

var _ storage.Repository = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func (s *Store) LoadDocuments(_ context.Context) ([]models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]models.Document{}, s.documents...), nil
}

func (s *Store) GetDocument(_ context.Context, id string) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, doc := range s.documents {
		if doc.ID == id {
			found := doc
			return &found, nil
		}
	}
	return nil, goerr.Wrap(storage.ErrNotFound, "document not found", goerr.V("id", id))
}

func (s *Store) SaveDocuments(_ context.Context, docs []models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.upsertDocuments(docs)
	return nil
}

// ReplaceDocuments swaps the whole collection under one lock so readers see
// either the old set or the new one.
func (s *Store) ReplaceDocuments(_ context.Context, docs []models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.documents = nil
	s.upsertDocuments(docs)
	return nil
}

func (s *Store) upsertDocuments(docs []models.Document) {
	for _, doc := range docs {
		if doc.CreatedAt.IsZero() {
			doc.CreatedAt = time.Now()
		}
		replaced := false
		for i := range s.documents {
			if s.documents[i].ID == doc.ID {
				doc.CreatedAt = s.documents[i].CreatedAt
				s.documents[i] = doc
				replaced = true
				break
			}
		}
		if !replaced {
			s.documents = append(s.documents, doc)
		}
	}
}

func (s *Store) LoadLogs(_ context.Context) ([]models.OperationalLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]models.OperationalLog{}, s.logs...), nil
}

func (s *Store) SaveLogs(_ context.Context, logs []models.OperationalLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logs = append(s.logs, logs...)
	return nil
}

func (s *Store) ReplaceLogs(_ context.Context, logs []models.OperationalLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logs = append([]models.OperationalLog(nil), logs...)
	return nil
}

func (s *Store) ListAlerts(_ context.Context) ([]models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]models.Alert{}, s.alerts...), nil
}

func (s *Store) AppendAlerts(_ context.Context, alerts []models.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make(map[string]struct{}, len(s.alerts)+len(alerts))
	for _, existing := range s.alerts {
		ids[existing.AlertID] = struct{}{}
	}
	for _, alert := range alerts {
		if _, ok := ids[alert.AlertID]; ok {
			return goerr.New("duplicate alert id", goerr.V("alert_id", alert.AlertID))
		}
		ids[alert.AlertID] = struct{}{}
	}

	s.alerts = append(s.alerts, alerts...)
	return nil
}

func (s *Store) ResolveAlert(_ context.Context, id string, at time.Time) (*models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.alerts {
		if s.alerts[i].AlertID != id {
			continue
		}
		if !s.alerts[i].Resolve(at) {
			return nil, goerr.Wrap(storage.ErrAlreadyResolved, "cannot resolve alert", goerr.V("alert_id", id))
		}
		resolved := s.alerts[i]
		return &resolved, nil
	}
	return nil, goerr.Wrap(storage.ErrNotFound, "alert not found", goerr.V("alert_id", id))
}

func (s *Store) Close() error {
	return nil
}
