package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/zaintech991/ReguLens/internal/storage"
	"github.com/zaintech991/ReguLens/internal/storage/models"
	"github.com/zaintech991/ReguLens/pkg/logger"
)

type Client struct {
	db *sql.DB
}

var _ storage.Repository = (*Client)(nil)

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT UNIQUE NOT NULL,
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		category TEXT NOT NULL,
		published_at TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_documents_category ON documents(category);
	CREATE INDEX IF NOT EXISTS idx_documents_published ON documents(published_at);

	CREATE TABLE IF NOT EXISTS operational_logs (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		facility TEXT NOT NULL,
		metric TEXT NOT NULL,
		value REAL NOT NULL,
		unit TEXT NOT NULL,
		threshold REAL NOT NULL,
		timestamp INTEGER NOT NULL,
		status TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_logs_facility ON operational_logs(facility);
	CREATE INDEX IF NOT EXISTS idx_logs_metric ON operational_logs(metric);

	CREATE TABLE IF NOT EXISTS alerts (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		alert_id TEXT UNIQUE NOT NULL,
		type TEXT NOT NULL,
		message TEXT NOT NULL,
		severity TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		resolved INTEGER NOT NULL DEFAULT 0,
		resolved_at INTEGER,
		facility TEXT,
		metric TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_alerts_resolved ON alerts(resolved);
	`

	if _, err := c.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) LoadDocuments(ctx context.Context) ([]models.Document, error) {
	query := `SELECT id, title, body, category, published_at, created_at FROM documents ORDER BY seq`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load documents")
	}
	defer rows.Close()

	docs := []models.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate documents")
	}
	return docs, nil
}

func (c *Client) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	query := `SELECT id, title, body, category, published_at, created_at FROM documents WHERE id = ?`

	doc, err := scanDocument(c.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(storage.ErrNotFound, "document not found", goerr.V("id", id))
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *Client) SaveDocuments(ctx context.Context, docs []models.Document) error {
	return c.withTx(ctx, func(tx *sql.Tx) error {
		return insertDocuments(ctx, tx, docs)
	})
}

func (c *Client) ReplaceDocuments(ctx context.Context, docs []models.Document) error {
	return c.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM documents`); err != nil {
			return goerr.Wrap(err, "failed to clear documents")
		}
		return insertDocuments(ctx, tx, docs)
	})
}

func insertDocuments(ctx context.Context, tx *sql.Tx, docs []models.Document) error {
	query := `
		INSERT INTO documents (id, title, body, category, published_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			body = excluded.body,
			category = excluded.category,
			published_at = excluded.published_at
	`

	for _, doc := range docs {
		createdAt := doc.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}

		_, err := tx.ExecContext(ctx, query,
			doc.ID,
			doc.Title,
			doc.Body,
			doc.Category,
			doc.PublishedAt,
			createdAt.UnixNano(),
		)
		if err != nil {
			return goerr.Wrap(err, "failed to save document", goerr.V("id", doc.ID))
		}
	}

	logger.Debug("Documents saved", zap.Int("count", len(docs)))
	return nil
}

func (c *Client) LoadLogs(ctx context.Context) ([]models.OperationalLog, error) {
	query := `SELECT id, facility, metric, value, unit, threshold, timestamp, status FROM operational_logs ORDER BY seq`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load logs")
	}
	defer rows.Close()

	logs := []models.OperationalLog{}
	for rows.Next() {
		var l models.OperationalLog
		var ts int64
		var status string

		if err := rows.Scan(&l.ID, &l.Facility, &l.Metric, &l.Value, &l.Unit, &l.Threshold, &ts, &status); err != nil {
			return nil, goerr.Wrap(err, "failed to scan log")
		}

		l.Timestamp = time.Unix(0, ts).UTC()
		l.Status = models.LogStatus(status)
		logs = append(logs, l)
	}

	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate logs")
	}
	return logs, nil
}

func (c *Client) SaveLogs(ctx context.Context, logs []models.OperationalLog) error {
	return c.withTx(ctx, func(tx *sql.Tx) error {
		return insertLogs(ctx, tx, logs)
	})
}

func (c *Client) ReplaceLogs(ctx context.Context, logs []models.OperationalLog) error {
	return c.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM operational_logs`); err != nil {
			return goerr.Wrap(err, "failed to clear logs")
		}
		return insertLogs(ctx, tx, logs)
	})
}

func insertLogs(ctx context.Context, tx *sql.Tx, logs []models.OperationalLog) error {
	query := `
		INSERT INTO operational_logs (id, facility, metric, value, unit, threshold, timestamp, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	for _, l := range logs {
		status := l.Status
		if status == "" {
			status = l.DeriveStatus()
		}

		_, err := tx.ExecContext(ctx, query,
			l.ID,
			l.Facility,
			l.Metric,
			l.Value,
			l.Unit,
			l.Threshold,
			l.Timestamp.UnixNano(),
			string(status),
		)
		if err != nil {
			return goerr.Wrap(err, "failed to save log", goerr.V("id", l.ID))
		}
	}

	logger.Debug("Operational logs saved", zap.Int("count", len(logs)))
	return nil
}

func (c *Client) ListAlerts(ctx context.Context) ([]models.Alert, error) {
	query := `
		SELECT alert_id, type, message, severity, timestamp, resolved, resolved_at, facility, metric
		FROM alerts ORDER BY seq
	`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list alerts")
	}
	defer rows.Close()

	alerts := []models.Alert{}
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *alert)
	}

	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate alerts")
	}
	return alerts, nil
}

func (c *Client) AppendAlerts(ctx context.Context, alerts []models.Alert) error {
	query := `
		INSERT INTO alerts (alert_id, type, message, severity, timestamp, resolved, resolved_at, facility, metric)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	return c.withTx(ctx, func(tx *sql.Tx) error {
		for _, a := range alerts {
			var resolvedAt sql.NullInt64
			if a.ResolvedAt != nil {
				resolvedAt = sql.NullInt64{Int64: a.ResolvedAt.UnixNano(), Valid: true}
			}

			_, err := tx.ExecContext(ctx, query,
				a.AlertID,
				string(a.Type),
				a.Message,
				string(a.Severity),
				a.Timestamp.UnixNano(),
				boolToInt(a.Resolved),
				resolvedAt,
				nullString(a.Facility),
				nullString(a.Metric),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to append alert", goerr.V("alert_id", a.AlertID))
			}
		}
		return nil
	})
}

func (c *Client) ResolveAlert(ctx context.Context, id string, at time.Time) (*models.Alert, error) {
	res, err := c.db.ExecContext(ctx,
		`UPDATE alerts SET resolved = 1, resolved_at = ? WHERE alert_id = ? AND resolved = 0`,
		at.UnixNano(), id,
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve alert", goerr.V("alert_id", id))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read affected rows")
	}

	alert, err := c.getAlert(ctx, id)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, goerr.Wrap(storage.ErrAlreadyResolved, "cannot resolve alert", goerr.V("alert_id", id))
	}

	logger.Info("Alert resolved", zap.String("alert_id", id))
	return alert, nil
}

func (c *Client) getAlert(ctx context.Context, id string) (*models.Alert, error) {
	query := `
		SELECT alert_id, type, message, severity, timestamp, resolved, resolved_at, facility, metric
		FROM alerts WHERE alert_id = ?
	`

	alert, err := scanAlert(c.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(storage.ErrNotFound, "alert not found", goerr.V("alert_id", id))
	}
	return alert, err
}

func (c *Client) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction")
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit transaction")
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (*models.Document, error) {
	var doc models.Document
	var createdAt int64

	err := s.Scan(&doc.ID, &doc.Title, &doc.Body, &doc.Category, &doc.PublishedAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to scan document")
	}

	doc.CreatedAt = time.Unix(0, createdAt).UTC()
	return &doc, nil
}

func scanAlert(s scanner) (*models.Alert, error) {
	var a models.Alert
	var alertType, severity string
	var ts int64
	var resolved int
	var resolvedAt sql.NullInt64
	var facility, metric sql.NullString

	err := s.Scan(&a.AlertID, &alertType, &a.Message, &severity, &ts, &resolved, &resolvedAt, &facility, &metric)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to scan alert")
	}

	a.Type = models.AlertType(alertType)
	a.Severity = models.Severity(severity)
	a.Timestamp = time.Unix(0, ts).UTC()
	a.Resolved = resolved == 1
	if resolvedAt.Valid {
		at := time.Unix(0, resolvedAt.Int64).UTC()
		a.ResolvedAt = &at
	}
	if facility.Valid {
		a.Facility = &facility.String
	}
	if metric.Valid {
		a.Metric = &metric.String
	}
	return &a, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
