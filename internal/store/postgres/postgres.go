// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/threadcraft/pulse/internal/model"
	"github.com/threadcraft/pulse/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) CreateEvent(ctx context.Context, ev *model.Event) error {
	return queryCreateEvent(ctx, s.db, ev)
}

func (s *PostgresStore) GetEvent(ctx context.Context, tenantID, id string) (*model.Event, error) {
	return queryGetEvent(ctx, s.db, tenantID, id)
}

func (s *PostgresStore) ListEvents(ctx context.Context, filter model.EventFilter) ([]*model.Event, int, error) {
	return queryListEvents(ctx, s.db, filter)
}

func (s *PostgresStore) MarkEventProcessed(ctx context.Context, tenantID, id string) error {
	return queryMarkEventProcessed(ctx, s.db, tenantID, id)
}

func (s *PostgresStore) CreateNotification(ctx context.Context, n *model.Notification) error {
	return queryCreateNotification(ctx, s.db, n)
}

func (s *PostgresStore) ListNotifications(ctx context.Context, filter model.NotificationFilter) ([]*model.Notification, int, error) {
	return queryListNotifications(ctx, s.db, filter)
}

func (s *PostgresStore) UnreadCount(ctx context.Context, tenantID, userID string, category model.Category) (int, error) {
	return queryUnreadCount(ctx, s.db, tenantID, userID, category)
}

func (s *PostgresStore) MarkNotificationRead(ctx context.Context, tenantID, userID, id string) (*model.Notification, error) {
	return queryMarkNotificationRead(ctx, s.db, tenantID, userID, id)
}

func (s *PostgresStore) MarkAllNotificationsRead(ctx context.Context, tenantID, userID string, category model.Category) ([]*model.Notification, error) {
	return queryMarkAllNotificationsRead(ctx, s.db, tenantID, userID, category)
}

func (s *PostgresStore) DeleteNotification(ctx context.Context, tenantID, userID, id string) error {
	return queryDeleteNotification(ctx, s.db, tenantID, userID, id)
}

func (s *PostgresStore) DeleteExpiredNotifications(ctx context.Context, createdBefore time.Time) (int64, error) {
	return queryDeleteExpiredNotifications(ctx, s.db, createdBefore)
}

