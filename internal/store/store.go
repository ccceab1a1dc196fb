// Package store holds the persistence sentinels shared by every backend and the
// Badger key-value store that keeps per-user chat sessions.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/bookbuddy/bookbuddy-server/internal/domain"
)

// SearchIndexer keeps the book search index in sync with catalog writes.
// Stores call it after a book is committed; indexing failures are logged, not returned.
type SearchIndexer interface {
	IndexBook(ctx context.Context, book *domain.Book) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexBook is a no-op.
func (NoopSearchIndexer) IndexBook(context.Context, *domain.Book) error { return nil }

// NewNoopSearchIndexer creates a new no-op search indexer for testing.
func NewNoopSearchIndexer() SearchIndexer {
	return NoopSearchIndexer{}
}

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// New opens (or creates) the Badger database at path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Badger's internal logger is noisy at INFO
	opts.SyncWrites = true       // Survive crashes without losing acknowledged chat turns
	opts.CompactL0OnClose = true // Faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing badger database")
	}
	return s.db.Close()
}

// Ping verifies the database answers reads.
func (s *Store) Ping(_ context.Context) error {
	_, err := s.exists([]byte("health:probe"))
	return err
}

// get retrieves a JSON value by key. Missing keys map to ErrNotFound.
func (s *Store) get(key []byte, dest any) error {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	return err
}

// delete removes a key. Deleting a missing key is not an error.
func (s *Store) delete(key []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// exists checks if a key exists.
func (s *Store) exists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// update runs a read-modify-write of one JSON value inside a single transaction.
// fn receives nil when the key is absent. Badger's optimistic conflict detection
// surfaces a concurrent writer as ErrConflict.
func update[T any](s *Store, key []byte, fn func(cur *T) (*T, error)) (*T, error) {
	var out *T
	err := s.db.Update(func(txn *badger.Txn) error {
		var cur *T
		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			cur = new(T)
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, cur)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", key, err)
			}
		}

		next, err := fn(cur)
		if err != nil {
			return err
		}

		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("failed to marshal value: %w", err)
		}
		out = next
		return txn.Set(key, data)
	})
	if errors.Is(err, badger.ErrConflict) {
		return nil, ErrConflict.WithCause(err)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}
