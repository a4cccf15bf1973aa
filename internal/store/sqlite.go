package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// DBFileName is the SQLite file created inside the database directory.
const DBFileName = "pricewatch.db"

// ErrPriceNotFound is returned by Get when no price is stored for an id.
var ErrPriceNotFound = errors.New("price not found")

// SQLiteStore keeps the latest price per product in a local SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// Options configures SQLiteStore behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// StoredPrice is one row of the prices table.
type StoredPrice struct {
	ID        string
	Price     int
	UpdatedAt time.Time
}

// OpenSQLite opens or creates a SQLiteStore inside dbDir.
func OpenSQLite(dbDir string, opts Options) (*SQLiteStore, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &SQLiteStore{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS prices (
		id TEXT PRIMARY KEY,
		price INTEGER NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Dispatch upserts the latest price for id.
func (s *SQLiteStore) Dispatch(ctx context.Context, id string, price int) error {
	query := `
	INSERT INTO prices (id, price, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		price = excluded.price,
		updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, id, price, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("%w: %w", ErrDispatchFailed, err)
	}
	return nil
}

// Get returns the stored price for id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*StoredPrice, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, price, updated_at FROM prices WHERE id = ?`, id)

	var p StoredPrice
	var updatedAt string
	if err := row.Scan(&p.ID, &p.Price, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPriceNotFound
		}
		return nil, fmt.Errorf("failed to query price: %w", err)
	}
	p.UpdatedAt = parseTimestamp(updatedAt)
	return &p, nil
}

// List returns every stored price ordered by id.
func (s *SQLiteStore) List(ctx context.Context) ([]StoredPrice, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, price, updated_at FROM prices ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query prices: %w", err)
	}
	defer rows.Close()

	var prices []StoredPrice
	for rows.Next() {
		var p StoredPrice
		var updatedAt string
		if err := rows.Scan(&p.ID, &p.Price, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price: %w", err)
		}
		p.UpdatedAt = parseTimestamp(updatedAt)
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

// timestampFormats lists the layouts SQLite may hand back for updated_at.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
}

// parseTimestamp returns the zero time when no layout matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
