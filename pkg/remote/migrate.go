package remote

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// ErrNoChange reports that the schema was already up to date.
var ErrNoChange = errors.New("remote: no change")

// Migrator applies the platform_settings schema using golang-migrate with
// the SQL files under db/migrations.
type Migrator struct {
	dsn string
}

// NewMigrator validates the DSN and returns a migrator.
func NewMigrator(dsn string) (*Migrator, error) {
	if dsn == "" {
		return nil, fmt.Errorf("remote: missing DSN")
	}
	return &Migrator{dsn: dsn}, nil
}

func (m *Migrator) sourceURL() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.Join(wd, "db", "migrations")}
	return u.String(), nil
}

// Up applies pending migrations.
func (m *Migrator) Up() error {
	return m.run(func(mig *migrate.Migrate) error { return mig.Up() })
}

// Down rolls back all migrations.
func (m *Migrator) Down() error {
	return m.run(func(mig *migrate.Migrate) error { return mig.Down() })
}

func (m *Migrator) run(step func(*migrate.Migrate) error) error {
	src, err := m.sourceURL()
	if err != nil {
		return err
	}
	mig, err := migrate.New(src, m.dsn)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = mig.Close()
	}()
	if err := step(mig); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return ErrNoChange
		}
		return err
	}
	return nil
}
