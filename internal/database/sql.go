// Package database provides storage access layers for the relational store
// (PostgreSQL in production, SQLite for development and tests) and for the
// session store (Redis or in-process memory).
//
// The relational store holds users and their favorites. Every favorite
// mutation is a single statement keyed by (user_id, song_id), so concurrent
// toggles need no locking beyond what the database already provides.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ieraasyl/FavoritesService/internal/models"
	"github.com/ieraasyl/FavoritesService/pkg/config"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested row or session does not exist.
var ErrNotFound = errors.New("not found")

// schema is idempotent and portable between PostgreSQL and SQLite.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id           TEXT PRIMARY KEY,
		login        TEXT NOT NULL,
		display_name TEXT NOT NULL,
		created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS favorites (
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		song_id    TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, song_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_favorites_user_id ON favorites(user_id)`,
}

var placeholderRe = regexp.MustCompile(`\$\d+`)

// SQLDB wraps a database/sql connection pool holding the users and
// favorites tables. Queries are written with PostgreSQL-style $n
// placeholders and rebound for SQLite.
type SQLDB struct {
	db     *sql.DB
	driver string
}

// NewSQLDB opens the relational store described by cfg and verifies the
// connection with a ping.
//
// Connection pool settings:
//   - PostgreSQL: MaxOpenConns from configuration, half of it idle
//   - SQLite: a single connection, which also keeps ":memory:" databases
//     shared across queries
//
// Example:
//
//	db, err := database.NewSQLDB(&cfg.Database)
//	if err != nil {
//	    log.Fatal().Err(err).Msg("Database connection failed")
//	}
//	defer db.Close()
func NewSQLDB(cfg *config.DatabaseConfig) (*SQLDB, error) {
	driver, dsn, err := cfg.Source()
	if err != nil {
		return nil, err
	}

	if driver == config.DriverSQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	switch driver {
	case config.DriverSQLite:
		db.SetMaxOpenConns(1)
	default:
		maxConns := cfg.MaxConns
		if maxConns <= 0 {
			maxConns = 10
		}
		db.SetMaxOpenConns(maxConns)
		db.SetMaxIdleConns(maxConns / 2)
		db.SetConnMaxLifetime(time.Hour)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info().Str("driver", driver).Msg("Successfully connected to database")

	return &SQLDB{db: db, driver: driver}, nil
}

// Close closes the connection pool.
func (s *SQLDB) Close() error {
	return s.db.Close()
}

// Ping checks if the database connection is alive. Used by /ready.
func (s *SQLDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// RunMigrations creates the users and favorites tables if they are missing.
// Safe to run on every startup.
func (s *SQLDB) RunMigrations(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	log.Info().Msg("Database migrations completed successfully")
	return nil
}

// UpsertUser inserts the user if the provider id is new. An existing row is
// left untouched (ON CONFLICT DO NOTHING). Returns the stored row.
//
// Example:
//
//	user, err := db.UpsertUser(ctx, "141981764", "twitchdev", "TwitchDev")
func (s *SQLDB) UpsertUser(ctx context.Context, id, login, displayName string) (*models.User, error) {
	query := s.rebind(`
		INSERT INTO users (id, login, display_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`)

	if _, err := s.db.ExecContext(ctx, query, id, login, displayName); err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read upserted user: %w", err)
	}

	log.Debug().Str("user_id", user.ID).Msg("User upserted")
	return user, nil
}

// GetUser retrieves a user by provider id. Returns ErrNotFound if absent.
func (s *SQLDB) GetUser(ctx context.Context, id string) (*models.User, error) {
	query := s.rebind(`
		SELECT id, login, display_name, created_at
		FROM users
		WHERE id = $1
	`)

	var user models.User
	var createdAt timestamp
	err := s.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Login, &user.DisplayName, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.CreatedAt = createdAt.Time

	return &user, nil
}

// AddFavorite records (userID, songID). Adding a pair that already exists is
// a no-op.
func (s *SQLDB) AddFavorite(ctx context.Context, userID, songID string) error {
	query := s.rebind(`
		INSERT INTO favorites (user_id, song_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, song_id) DO NOTHING
	`)

	if _, err := s.db.ExecContext(ctx, query, userID, songID); err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

// RemoveFavorite deletes (userID, songID). Removing an absent pair is a
// no-op.
func (s *SQLDB) RemoveFavorite(ctx context.Context, userID, songID string) error {
	query := s.rebind(`DELETE FROM favorites WHERE user_id = $1 AND song_id = $2`)

	if _, err := s.db.ExecContext(ctx, query, userID, songID); err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

// ListFavoriteSongIDs returns every song id favorited by userID, in no
// particular order.
func (s *SQLDB) ListFavoriteSongIDs(ctx context.Context, userID string) ([]string, error) {
	query := s.rebind(`SELECT song_id FROM favorites WHERE user_id = $1`)

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}

	return ids, nil
}

// IsFavorite reports whether (userID, songID) is stored.
func (s *SQLDB) IsFavorite(ctx context.Context, userID, songID string) (bool, error) {
	query := s.rebind(`SELECT 1 FROM favorites WHERE user_id = $1 AND song_id = $2`)

	var one int
	err := s.db.QueryRowContext(ctx, query, userID, songID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return true, nil
}

// sqliteDSN adds the foreign_keys pragma to a SQLite data source, so every
// connection the pool opens enforces the favorites -> users reference.
func sqliteDSN(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

// rebind converts $n placeholders to ? for SQLite. Arguments in every query
// above appear in placeholder order.
func (s *SQLDB) rebind(query string) string {
	if s.driver != config.DriverSQLite {
		return query
	}
	return placeholderRe.ReplaceAllString(query, "?")
}

// timestamp scans TIMESTAMP columns from either driver. lib/pq returns
// time.Time; SQLite may hand back text.
type timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
}

func (t *timestamp) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
}

func (t *timestamp) parse(s string) error {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unparseable timestamp %q", s)
}
