// Package store persists a book to disk. It is the only package that touches
// the filesystem: the engine stays pure and the caller decides when to save.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/finbook/finbook"
	"github.com/rs/zerolog"
)

// DefaultFile is the book file name used when no path is configured.
const DefaultFile = "book.jsonl"

// Store loads and saves one book file.
type Store struct {
	path string
	log  zerolog.Logger
}

// New creates a store for the book file at path.
func New(path string, log zerolog.Logger) *Store {
	return &Store{path: path, log: log}
}

// Path returns the book file path.
func (s *Store) Path() string { return s.path }

// Load reads the book file and rebuilds the book, recomputing every derived
// value. A missing file is not an error: it yields an empty book in the given
// currency, so the first command against a fresh setup just works.
func (s *Store) Load(currency string) (*finbook.Book, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		s.log.Debug().Str("path", s.path).Msg("book file does not exist, starting empty")
		return finbook.NewBook(currency), nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening book file: %w", err)
	}
	defer f.Close()

	b, err := finbook.DecodeBook(f)
	if err != nil {
		return nil, fmt.Errorf("reading book file %s: %w", s.path, err)
	}
	s.log.Debug().Str("path", s.path).Int("transactions", len(b.Transactions())).Msg("book loaded")
	return b, nil
}

// Save writes the book atomically: to a temporary file in the same directory
// first, then renamed over the target, so a crash mid-write never leaves a
// truncated book file behind.
func (s *Store) Save(b *finbook.Book) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating book directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temporary book file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := finbook.EncodeBook(tmp, b); err != nil {
		tmp.Close()
		return fmt.Errorf("writing book: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temporary book file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing book file: %w", err)
	}
	s.log.Debug().Str("path", s.path).Msg("book saved")
	return nil
}
