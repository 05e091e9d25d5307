// Package badgerad keeps the listing snapshot and settings in an embedded
// BadgerDB, the on-disk equivalent of the browser's local storage.
package badgerad

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"estates_console/internal/adapters/observability"
)

type Config struct {
	// Path is the database directory. Ignored when InMemory is true.
	Path       string
	InMemory   bool
	SyncWrites bool
}

// Store is a domain.Store backed by BadgerDB.
type Store struct{ db *badger.DB }

// zlog adapts zerolog to badger.Logger.
type zlog struct{ l zerolog.Logger }

func (z zlog) Errorf(f string, a ...interface{})   { z.l.Error().Msgf(f, a...) }
func (z zlog) Warningf(f string, a ...interface{}) { z.l.Warn().Msgf(f, a...) }
func (z zlog) Infof(f string, a ...interface{})    { z.l.Debug().Msgf(f, a...) }
func (z zlog) Debugf(f string, a ...interface{})   { z.l.Trace().Msgf(f, a...) }

func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("badger: path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("badger: create directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.
		WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(1).
		WithLogger(zlog{l: log.Logger.With().Str("component", "badger").Logger()})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open: %w", err)
	}
	return &Store{db: db}, nil
}

func OpenInMemory() (*Store, error) { return Open(Config{InMemory: true}) }

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		observability.ObserveCache("badger", "miss")
		return nil, false, nil
	case err != nil:
		observability.ObserveCache("badger", "error")
		return nil, false, err
	}
	observability.ObserveCache("badger", "hit")
	return out, true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	observability.ObserveCache("badger", "set")
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

func (s *Store) Del(_ context.Context, key string) error {
	observability.ObserveCache("badger", "del")
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Close flushes and releases the directory lock.
func (s *Store) Close() error { return s.db.Close() }
