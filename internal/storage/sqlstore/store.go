// Package sqlstore persists collections in a SQL database. PostgreSQL is
// reached through the pgx or postgres drivers, SQLite through sqlite3.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/folio-cms/folio/internal/collections"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"go.uber.org/zap"
)

// Store is a collections.Store backed by database/sql
type Store struct {
	db      *sql.DB
	dialect Dialect
	logger  *zap.Logger
	now     func() time.Time
}

// Open connects to a database and verifies the connection
func Open(ctx context.Context, driver, dsn string, logger *zap.Logger) (*Store, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return New(db, dialect, logger), nil
}

// New wraps an open database
func New(db *sql.DB, dialect Dialect, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		db:      db,
		dialect: dialect,
		logger:  logger,
		now:     time.Now,
	}
}

// Migrate creates the store's tables if they do not exist
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize collection tables: %w", err)
		}
	}
	return nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Put upserts a collection and rewrites its entry positions in one transaction
func (s *Store) Put(ctx context.Context, snapshot collections.Snapshot) error {
	positions := snapshot.Positions
	snapshot.Positions = nil

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode collection %s: %w", snapshot.Handle, err)
	}

	return s.withTransaction(ctx, func(tx *sql.Tx) error {
		upsert := s.dialect.Rebind(`INSERT INTO collections (handle, data, updated_at) VALUES (?, ?, ?)
ON CONFLICT (handle) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`)
		if _, err := tx.ExecContext(ctx, upsert, snapshot.Handle, string(data), s.now().UTC()); err != nil {
			return ConvertDBError(err)
		}

		reset := s.dialect.Rebind(`DELETE FROM collection_positions WHERE collection = ?`)
		if _, err := tx.ExecContext(ctx, reset, snapshot.Handle); err != nil {
			return ConvertDBError(err)
		}

		keys := make([]int, 0, len(positions))
		for position := range positions {
			keys = append(keys, position)
		}
		sort.Ints(keys)

		insert := s.dialect.Rebind(`INSERT INTO collection_positions (collection, position, entry_id) VALUES (?, ?, ?)`)
		for _, position := range keys {
			if _, err := tx.ExecContext(ctx, insert, snapshot.Handle, position, positions[position]); err != nil {
				return ConvertDBError(err)
			}
		}

		s.logger.Debug("collection stored",
			zap.String("handle", snapshot.Handle),
			zap.Int("positions", len(keys)))
		return nil
	})
}

// Get loads a collection and its entry positions
func (s *Store) Get(ctx context.Context, handle string) (collections.Snapshot, error) {
	var snapshot collections.Snapshot

	var data string
	query := s.dialect.Rebind(`SELECT data FROM collections WHERE handle = ?`)
	if err := s.db.QueryRowContext(ctx, query, handle).Scan(&data); err != nil {
		return snapshot, fmt.Errorf("collection %s: %w", handle, ConvertDBError(err))
	}
	snapshot, err := collections.DecodeSnapshot([]byte(data))
	if err != nil {
		return snapshot, fmt.Errorf("failed to decode collection %s: %w", handle, err)
	}

	query = s.dialect.Rebind(`SELECT position, entry_id FROM collection_positions WHERE collection = ? ORDER BY position ASC`)
	rows, err := s.db.QueryContext(ctx, query, handle)
	if err != nil {
		return snapshot, fmt.Errorf("failed to query positions of %s: %w", handle, err)
	}
	defer rows.Close()

	for rows.Next() {
		var position int
		var entryID string
		if err := rows.Scan(&position, &entryID); err != nil {
			return snapshot, fmt.Errorf("failed to scan position: %w", err)
		}
		if snapshot.Positions == nil {
			snapshot.Positions = make(map[int]string)
		}
		snapshot.Positions[position] = entryID
	}
	if err := rows.Err(); err != nil {
		return snapshot, fmt.Errorf("error iterating positions: %w", err)
	}

	return snapshot, nil
}

// Delete removes a collection and its entry positions
func (s *Store) Delete(ctx context.Context, handle string) error {
	return s.withTransaction(ctx, func(tx *sql.Tx) error {
		positions := s.dialect.Rebind(`DELETE FROM collection_positions WHERE collection = ?`)
		if _, err := tx.ExecContext(ctx, positions, handle); err != nil {
			return ConvertDBError(err)
		}

		query := s.dialect.Rebind(`DELETE FROM collections WHERE handle = ?`)
		result, err := tx.ExecContext(ctx, query, handle)
		if err != nil {
			return ConvertDBError(err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("collection %s: %w", handle, collections.ErrNotFound)
		}
		return nil
	})
}

// Handles returns all stored collection handles, sorted
func (s *Store) Handles(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT handle FROM collections ORDER BY handle ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query collections: %w", err)
	}
	defer rows.Close()

	var handles []string
	for rows.Next() {
		var handle string
		if err := rows.Scan(&handle); err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		handles = append(handles, handle)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collections: %w", err)
	}
	return handles, nil
}

// withTransaction commits when fn succeeds and rolls back otherwise
func (s *Store) withTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Warn("rollback failed", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
