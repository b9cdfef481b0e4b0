// Package store persists purchase entries in a single SQLite table.
// The Store owns one connection for its lifetime; Close releases it.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/bikeledger/pkg/types"
)

// driverName is the database/sql driver registered by modernc.org/sqlite.
const driverName = "sqlite"

// Store is an append-only log of BikeEntry records.
type Store struct {
	db   *sql.DB
	path string
	log  *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for open, reset and write events.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// Open creates cfg.DataDir if needed, opens the database file inside it and
// ensures the schema exists. The file is deleted first only when cfg.Reset
// is set.
func Open(cfg types.Config, opts ...Option) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, &types.PersistenceError{Op: "open", Err: err}
	}

	path := filepath.Join(dataDir, cfg.DBFile)
	s := &Store{path: path, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.Reset {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, &types.PersistenceError{Op: "reset", Err: err}
		}
		s.log.Warn("database reset", zap.String("path", path))
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, &types.PersistenceError{Op: "open", Err: err}
	}
	// One connection: the store is the sole writer for the process.
	db.SetMaxOpenConns(1)
	s.db = db

	if err := s.Init(); err != nil {
		db.Close()
		return nil, err
	}

	s.log.Debug("store opened", zap.String("path", path))
	return s, nil
}

// New wraps an already open handle. The caller is responsible for the
// schema; call Init to create it.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the database file path, or "" for a wrapped handle.
func (s *Store) Path() string {
	return s.path
}

// Init creates the bikes table if it does not exist.
func (s *Store) Init() error {
	if s.db == nil {
		return &types.PersistenceError{Op: "init", Err: types.ErrStoreClosed}
	}
	if _, err := s.db.Exec(createBikes); err != nil {
		return &types.PersistenceError{Op: "init", Err: err}
	}
	return nil
}

// Insert appends one record and returns it with the id the database assigned.
func (s *Store) Insert(model, brand string, builtYear, year int, price float64) (types.BikeEntry, error) {
	if s.db == nil {
		return types.BikeEntry{}, &types.PersistenceError{Op: "insert", Err: types.ErrStoreClosed}
	}

	res, err := s.db.Exec(insertBike, model, brand, builtYear, year, price)
	if err != nil {
		return types.BikeEntry{}, &types.PersistenceError{Op: "insert", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return types.BikeEntry{}, &types.PersistenceError{Op: "insert", Err: fmt.Errorf("last insert id: %w", err)}
	}

	entry := types.BikeEntry{
		ID:        id,
		Model:     model,
		Brand:     brand,
		BuiltYear: builtYear,
		Year:      year,
		Price:     price,
	}
	s.log.Debug("entry inserted", zap.Int64("id", id), zap.String("model", model))
	return entry, nil
}

// ListAll returns every record in ascending id order. Each call reads the
// table again.
func (s *Store) ListAll() ([]types.BikeEntry, error) {
	if s.db == nil {
		return nil, &types.PersistenceError{Op: "list", Err: types.ErrStoreClosed}
	}

	rows, err := s.db.Query(selectBikes)
	if err != nil {
		return nil, &types.PersistenceError{Op: "list", Err: err}
	}
	defer rows.Close()

	entries := []types.BikeEntry{}
	for rows.Next() {
		e, err := scanBike(rows)
		if err != nil {
			return nil, &types.PersistenceError{Op: "list", Err: err}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &types.PersistenceError{Op: "list", Err: err}
	}
	return entries, nil
}

// scanBike reads one row. built_year, year and price are nullable in the
// schema; NULL reads as zero.
func scanBike(rows *sql.Rows) (types.BikeEntry, error) {
	var (
		e         types.BikeEntry
		builtYear sql.NullInt64
		year      sql.NullInt64
		price     sql.NullFloat64
	)
	if err := rows.Scan(&e.ID, &e.Model, &e.Brand, &builtYear, &year, &price); err != nil {
		return types.BikeEntry{}, fmt.Errorf("scanning bike: %w", err)
	}
	e.BuiltYear = int(builtYear.Int64)
	e.Year = int(year.Int64)
	e.Price = price.Float64
	return e, nil
}

// Close releases the connection. Close is idempotent.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
