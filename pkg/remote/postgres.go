package remote

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	settings "github.com/goliatone/go-settings"
)

// Open connects to Postgres with pooling suited to a settings workload
// (few rows, low write volume) and verifies the connection.
func Open(ctx context.Context, dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("remote: missing DSN")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	sdb, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sdb.SetConnMaxLifetime(30 * time.Minute)
	sdb.SetMaxOpenConns(5)
	sdb.SetMaxIdleConns(2)
	if err := sdb.PingContext(ctx); err != nil {
		return nil, err
	}
	return gdb, nil
}

// PostgresStore keeps each configuration document in one row of
// platform_settings: key, JSONB document, and the version token. See
// db/migrations for the schema.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore wraps an open gorm handle.
func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get implements settings.RemoteStore.
func (s *PostgresStore) Get(ctx context.Context, key string) (settings.Document, settings.Version, bool, error) {
	row := s.db.WithContext(ctx).Raw(
		`SELECT document, version FROM platform_settings WHERE key = ?`, key,
	).Row()

	var (
		raw     []byte
		version string
	)
	if err := row.Scan(&raw, &version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, settings.Version{}, false, nil
		}
		return nil, settings.Version{}, false, fmt.Errorf("remote: get %q: %w", key, err)
	}

	var doc settings.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, settings.Version{}, false, fmt.Errorf("remote: decode %q: %w", key, err)
	}
	return doc, settings.ParseVersion(version), true, nil
}

// Put implements settings.RemoteStore with upsert semantics.
func (s *PostgresStore) Put(ctx context.Context, key string, doc settings.Document, next settings.Version) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("remote: encode %q: %w", key, err)
	}
	err = s.db.WithContext(ctx).Exec(
		`INSERT INTO platform_settings (key, document, version, updated_at)
		 VALUES (?, ?, ?, now())
		 ON CONFLICT (key) DO UPDATE
		 SET document = excluded.document, version = excluded.version, updated_at = now()`,
		key, data, next.String(),
	).Error
	if err != nil {
		return fmt.Errorf("remote: put %q: %w", key, err)
	}
	return nil
}

// FetchVersion implements settings.RemoteStore, reading only the token.
func (s *PostgresStore) FetchVersion(ctx context.Context, key string) (settings.Version, bool, error) {
	row := s.db.WithContext(ctx).Raw(
		`SELECT version FROM platform_settings WHERE key = ?`, key,
	).Row()

	var version string
	if err := row.Scan(&version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return settings.Version{}, false, nil
		}
		return settings.Version{}, false, fmt.Errorf("remote: fetch version %q: %w", key, err)
	}
	return settings.ParseVersion(version), true, nil
}
