// Package storage owns the on-disk side of a schedule: the exclusive lock
// file and the two documents with their backups.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/roach88/routines/internal/codec"
)

const (
	// LockFileName is the zero-byte sentinel whose exclusive lock marks
	// the directory as in use.
	LockFileName = ".lockfile"

	backupSuffix = ".bak"
	emptyDoc     = "{}"
)

// ErrLocked is returned when another session holds the directory lock.
var ErrLocked = errors.New("storage is locked by another session")

// Documents lists every document a session manages.
var Documents = []codec.Document{codec.DocIndex, codec.DocRoutines}

// Session is an open, locked storage directory. The lock is held until
// Close. A Session is not safe for concurrent use.
type Session struct {
	dir  string
	lock *os.File
}

// Open locks dir and makes sure both documents exist. Missing or empty
// documents are seeded with an empty object.
func Open(dir string) (*Session, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open storage: %s is not a directory", dir)
	}

	lock, err := os.OpenFile(filepath.Join(dir, LockFileName), os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := lockFile(lock); err != nil {
		lock.Close()
		return nil, fmt.Errorf("lock %s: %w", dir, err)
	}

	s := &Session{dir: dir, lock: lock}
	for _, doc := range Documents {
		if err := s.seed(doc); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

// Dir returns the storage directory.
func (s *Session) Dir() string {
	return s.dir
}

// Path returns the file path of doc.
func (s *Session) Path(doc codec.Document) string {
	return filepath.Join(s.dir, string(doc))
}

func (s *Session) seed(doc codec.Document) error {
	f, err := os.OpenFile(s.Path(doc), os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", doc, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", doc, err)
	}
	if info.Size() > 0 {
		return nil
	}
	if _, err := f.WriteString(emptyDoc); err != nil {
		return fmt.Errorf("seed %s: %w", doc, err)
	}
	return nil
}

// Read returns the current content of doc.
func (s *Session) Read(doc codec.Document) ([]byte, error) {
	data, err := os.ReadFile(s.Path(doc))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", doc, err)
	}
	return data, nil
}

// Write replaces doc with data, keeping the previous content as doc.bak.
// The write is not atomic: if it fails the document may be truncated and
// the backup is the recovery path.
func (s *Session) Write(doc codec.Document, data []byte) error {
	path := s.Path(doc)
	backup := path + backupSuffix

	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(backup); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove backup of %s: %w", doc, err)
		}
		if err := os.Rename(path, backup); err != nil {
			return fmt.Errorf("back up %s: %w", doc, err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", doc, err)
	}
	return nil
}

// Close releases the lock. Calling Close more than once is a no-op.
func (s *Session) Close() error {
	if s == nil || s.lock == nil {
		return nil
	}
	unlockErr := unlockFile(s.lock)
	closeErr := s.lock.Close()
	s.lock = nil
	if unlockErr != nil {
		return fmt.Errorf("unlock %s: %w", s.dir, unlockErr)
	}
	return closeErr
}
