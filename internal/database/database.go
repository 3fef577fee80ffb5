package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"turfdesk/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// DB is a SQLite-backed cart store. Carts survive a desk restart, which the
// in-memory store does not give.
type DB struct {
	db     *sql.DB
	ttl    time.Duration
	logger *zerolog.Logger
	now    func() time.Time
}

func NewDB(path string, ttl time.Duration, logger *zerolog.Logger) (*DB, error) {
	// Создаем директорию для БД, если её нет
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite пишет в один поток
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("Cart database initialized")
	return &DB{db: db, ttl: ttl, logger: logger, now: time.Now}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS carts (
            session_id TEXT PRIMARY KEY,
            payload TEXT NOT NULL,
            updated_at DATETIME NOT NULL,
            expires_at DATETIME NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_carts_expires_at ON carts(expires_at)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// GetCart возвращает корзину сессии или nil, если её нет или она истекла
func (db *DB) GetCart(ctx context.Context, sessionID string) (*models.Cart, error) {
	var (
		payload   string
		expiresAt time.Time
	)
	err := db.db.QueryRowContext(ctx,
		`SELECT payload, expires_at FROM carts WHERE session_id = ?`, sessionID,
	).Scan(&payload, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	if db.now().After(expiresAt) {
		if err := db.ClearCart(ctx, sessionID); err != nil {
			db.logger.Warn().Err(err).Str("session", sessionID).Msg("Failed to drop expired cart")
		}
		return nil, nil
	}

	var cart models.Cart
	if err := json.Unmarshal([]byte(payload), &cart); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart: %w", err)
	}
	return &cart, nil
}

func (db *DB) SaveCart(ctx context.Context, cart *models.Cart) error {
	payload, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}

	now := db.now().UTC()
	_, err = db.db.ExecContext(ctx, `
        INSERT INTO carts (session_id, payload, updated_at, expires_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(session_id) DO UPDATE SET
            payload = excluded.payload,
            updated_at = excluded.updated_at,
            expires_at = excluded.expires_at
    `, cart.SessionID, string(payload), now, now.Add(db.ttl))
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (db *DB) ClearCart(ctx context.Context, sessionID string) error {
	if _, err := db.db.ExecContext(ctx, `DELETE FROM carts WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

// PurgeExpired удаляет истекшие корзины и возвращает их количество
func (db *DB) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := db.db.ExecContext(ctx, `DELETE FROM carts WHERE expires_at < ?`, db.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge carts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		db.logger.Debug().Int64("count", n).Msg("Purged expired carts")
	}
	return n, nil
}

func (db *DB) PingContext(ctx context.Context) error {
	return db.db.PingContext(ctx)
}

func (db *DB) Close() error {
	return db.db.Close()
}
