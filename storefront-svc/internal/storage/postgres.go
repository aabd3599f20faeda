package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"delivery-storefront/storefront-svc/internal/domain"
)

const datasetsSchema = `
	CREATE TABLE IF NOT EXISTS datasets (
		name       TEXT PRIMARY KEY,
		document   JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

// PostgresSource keeps the whole document as one JSONB row.
type PostgresSource struct {
	DB   *sql.DB
	Name string
}

func NewPostgresSource(db *sql.DB, name string) *PostgresSource {
	return &PostgresSource{DB: db, Name: name}
}

func (s *PostgresSource) EnsureSchema(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, datasetsSchema)
	return err
}

func (s *PostgresSource) Fetch(ctx context.Context) (*domain.Dataset, error) {
	var raw []byte
	err := s.DB.QueryRowContext(ctx, "SELECT document FROM datasets WHERE name = $1", s.Name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("dataset %q: %w", s.Name, domain.ErrEntityNotFound)
	}
	if err != nil {
		return nil, err
	}

	var ds domain.Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("decode dataset %q: %w", s.Name, err)
	}
	return &ds, nil
}

// Put replaces the stored document.
func (s *PostgresSource) Put(ctx context.Context, ds *domain.Dataset) error {
	payload, err := json.Marshal(ds)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO datasets (name, document, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET document = EXCLUDED.document, updated_at = now()`,
		s.Name, payload)
	return err
}
