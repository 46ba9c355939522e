// Package pebble is an on-disk storage.CodeStore with snappy-compressed values.
package pebble

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cockroachdb/pebble"
	"github.com/golang/snappy"
)

var codePrefix = []byte("code/")

// Store wraps a pebble database.
type Store struct {
	db     *pebble.DB
	logger *slog.Logger
}

// Open opens (or creates) the cache database in dir.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open code cache %s: %w", dir, err)
	}
	return &Store{db: db, logger: logger}, nil
}

func codeKey(key [32]byte) []byte {
	k := make([]byte, 0, len(codePrefix)+len(key))
	k = append(k, codePrefix...)
	return append(k, key[:]...)
}

func (s *Store) GetCode(key [32]byte) ([]byte, bool) {
	v, closer, err := s.db.Get(codeKey(key))
	if err != nil {
		if !errors.Is(err, pebble.ErrNotFound) {
			s.logger.Warn("code cache read failed", "key", fmt.Sprintf("%x", key[:4]), "error", err)
		}
		return nil, false
	}
	defer closer.Close()

	code, err := snappy.Decode(nil, v)
	if err != nil {
		s.logger.Warn("code cache entry corrupt", "key", fmt.Sprintf("%x", key[:4]), "error", err)
		return nil, false
	}
	return code, true
}

func (s *Store) PutCode(key [32]byte, code []byte) error {
	if err := s.db.Set(codeKey(key), snappy.Encode(nil, code), pebble.Sync); err != nil {
		return fmt.Errorf("write code cache: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
