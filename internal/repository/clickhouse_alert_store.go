package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"MarketPulse/internal/domain/models"
	"MarketPulse/internal/domain/repository"
)

// ClickHouseAlertStore archives emitted alerts into ClickHouse. The sweep
// evaluator never touches this store; it is fed by the Kafka consumer.
type ClickHouseAlertStore struct {
	db    *sql.DB
	table string
}

// NewClickHouseAlertStore creates a ClickHouse-backed alert archive.
func NewClickHouseAlertStore(db *sql.DB, table string) repository.AlertStore {
	return &ClickHouseAlertStore{db: db, table: table}
}

func (s *ClickHouseAlertStore) Store(ctx context.Context, a *models.Alert) error {
	q := fmt.Sprintf("INSERT INTO %s (id, kind, severity, title, description, symbol, change_percent, sentiment, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, q,
		a.ID,
		string(a.Kind),
		string(a.Severity),
		a.Title,
		a.Description,
		a.Symbol,
		a.ChangePercent,
		a.Sentiment,
		a.CreatedAt,
	)
	return err
}

func (s *ClickHouseAlertStore) StoreBatch(ctx context.Context, alerts []models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	// Multi-row VALUES insert to reduce round-trips. Sweeps over a small
	// universe never come close to the chunk size, but the consumer may
	// replay a backlog.
	const chunkSize = 1000
	for start := 0; start < len(alerts); start += chunkSize {
		end := start + chunkSize
		if end > len(alerts) {
			end = len(alerts)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*9)
		for _, a := range alerts[start:end] {
			if a.ID == "" || a.Symbol == "" {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				a.ID,
				string(a.Kind),
				string(a.Severity),
				a.Title,
				a.Description,
				a.Symbol,
				a.ChangePercent,
				a.Sentiment,
				a.CreatedAt,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (id, kind, severity, title, description, symbol, change_percent, sentiment, created_at) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseAlertStore) Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]models.Alert, error) {
	q := fmt.Sprintf("SELECT id, kind, severity, title, description, symbol, change_percent, sentiment, created_at FROM %s WHERE symbol = ? AND created_at >= ? AND created_at <= ? ORDER BY created_at DESC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		var kind, severity string
		if err := rows.Scan(&a.ID, &kind, &severity, &a.Title, &a.Description, &a.Symbol, &a.ChangePercent, &a.Sentiment, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Kind = models.AlertKind(kind)
		a.Severity = models.Severity(severity)
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (s *ClickHouseAlertStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseAlertStore) Close() error {
	return nil // Pool lifetime is managed by pkg/clickhouse.
}
