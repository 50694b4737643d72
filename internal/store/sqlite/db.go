// Package sqlite implements the store interfaces on modernc.org/sqlite
// with an in-memory mirror in front of every table.
package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/nextlevelbuilder/autoreact/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// OpenDB opens (or creates) the SQLite database at path. WAL mode and a
// busy timeout keep concurrent handler writes from tripping over each
// other.
func OpenDB(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// NewMigrator builds a migrator over the embedded migration files and
// the given database.
func NewMigrator(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	drv, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("create sqlite migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

// Migrate applies all pending migrations. Already up to date is not an
// error.
func Migrate(db *sql.DB) error {
	m, err := NewMigrator(db)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// NewStores creates all stores backed by the given database.
// seedTriggers is the config baseline present in every chat.
func NewStores(db *sql.DB, seedTriggers []string) *store.Stores {
	return &store.Stores{
		Triggers:    NewTriggerStore(db, seedTriggers),
		ChatStatus:  NewChatStatusStore(db),
		Sudoers:     NewSudoStore(db),
		Bans:        NewBanStore(db),
		ReactionLog: NewReactionLogStore(db),
	}
}
