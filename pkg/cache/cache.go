// Package cache remembers content already known to need no comma repair, so
// unchanged files can be skipped on later runs.
package cache

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// DefaultTTL is how long an entry is trusted without being seen again.
const DefaultTTL = 30 * 24 * time.Hour

// keyPrefix namespaces entries so the format can change without clearing
// the directory.
const keyPrefix = "clean/v1/"

// Store is a set of content fingerprints backed by BadgerDB.
type Store struct {
	db  *badger.DB
	ttl time.Duration
}

// badgerLogger routes badger's messages to a charm logger. Its chatty info
// output is demoted to debug.
type badgerLogger struct {
	logger *log.Logger
}

var _ badger.Logger = (*badgerLogger)(nil)

func (l *badgerLogger) Errorf(msg string, items ...any) {
	l.logger.Error(fmt.Sprintf(msg, items...))
}

func (l *badgerLogger) Warningf(msg string, items ...any) {
	l.logger.Warn(fmt.Sprintf(msg, items...))
}

func (l *badgerLogger) Infof(msg string, items ...any) {
	l.logger.Debug(fmt.Sprintf(msg, items...))
}

func (l *badgerLogger) Debugf(msg string, items ...any) {
	l.logger.Debug(fmt.Sprintf(msg, items...))
}

// Open opens or creates a store in dir. An empty dir opens an in-memory
// store that is gone after Close.
func Open(dir string, logger *log.Logger) (*Store, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
		opts = badger.DefaultOptions(dir)
	}
	opts = opts.WithCompression(options.None).WithNumVersionsToKeep(1)
	if logger != nil {
		opts.Logger = &badgerLogger{logger: logger}
	} else {
		opts.Logger = nil
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", dir, err)
	}
	return &Store{db: db, ttl: DefaultTTL}, nil
}

// Close flushes and closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Key fingerprints content together with the grammar that judged it, so a
// grammar change invalidates earlier verdicts.
func Key(content []byte, grammar string) []byte {
	hash := sha256.New()
	hash.Write([]byte(grammar))
	hash.Write([]byte{0})
	hash.Write(content)
	return append([]byte(keyPrefix), hash.Sum(nil)...)
}

// IsClean reports whether key was marked clean and has not expired.
func (s *Store) IsClean(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("cache lookup: %w", err)
	}
}

// MarkClean records key as needing no repair.
func (s *Store) MarkClean(key []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(key, nil).WithTTL(s.ttl))
	})
	if err != nil {
		return fmt.Errorf("cache store: %w", err)
	}
	return nil
}

// Forget removes key.
func (s *Store) Forget(key []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
	if err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// Clear drops every entry.
func (s *Store) Clear() error {
	if err := s.db.DropPrefix([]byte(keyPrefix)); err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}
	return nil
}
