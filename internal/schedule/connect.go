package schedule

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/roach88/routines/internal/codec"
	"github.com/roach88/routines/internal/journal"
	"github.com/roach88/routines/internal/model"
	"github.com/roach88/routines/internal/storage"
)

// Connect attaches the store to the storage directory at path.
//
// An empty path disconnects: the current storage is flushed (errors are
// ignored), its lock released, and unless writeOnly the in-memory state is
// cleared.
//
// With writeOnly the directory is locked and adopted without reading it;
// both documents are marked dirty so the next Flush writes the current
// state there. Otherwise both documents are loaded and replace the
// in-memory state. The previous connection is flushed and released only
// once the new one has loaded successfully.
func (s *Store) Connect(path string, writeOnly bool) error {
	if path == "" {
		s.release()
		if !writeOnly {
			s.reset()
		}
		s.logger.Debug("storage disconnected", "write_only", writeOnly)
		return nil
	}

	session, err := storage.Open(path)
	if err != nil {
		return fmt.Errorf("connect %s: %w: %w", path, ErrStorageNotAccessible, err)
	}

	var jr *journal.Journal
	if s.journalOn {
		jr, err = journal.Open(filepath.Join(path, journal.FileName), s.journalOpts...)
		if err != nil {
			session.Close()
			return fmt.Errorf("connect %s: %w: %w", path, ErrStorageNotAccessible, err)
		}
	}

	if writeOnly {
		s.release()
		s.session, s.journal = session, jr
		s.indexDirty, s.routinesDirty = true, true
		s.logger.Info("storage connected", "path", path, "write_only", true)
		return nil
	}

	st, err := s.load(session)
	if err != nil {
		jr.Close()
		session.Close()
		return fmt.Errorf("connect %s: %w", path, err)
	}

	s.release()
	s.session, s.journal = session, jr
	s.users, s.public, s.personal = st.users, st.public, st.personal
	s.indexDirty, s.routinesDirty = st.indexDirty, st.routinesDirty

	s.logger.Info("storage connected",
		"path", path,
		"users", len(s.users),
		"public_routines", len(s.public),
	)
	return nil
}

type loaded struct {
	users         []model.User
	public        []model.Routine
	personal      map[uuid.UUID][]model.Routine
	indexDirty    bool
	routinesDirty bool
}

func (s *Store) load(session *storage.Session) (loaded, error) {
	var st loaded

	indexData, err := session.Read(codec.DocIndex)
	if err != nil {
		return st, fmt.Errorf("%w: %w", ErrStorageNotAccessible, err)
	}
	routinesData, err := session.Read(codec.DocRoutines)
	if err != nil {
		return st, fmt.Errorf("%w: %w", ErrStorageNotAccessible, err)
	}

	users, emptyIndex, err := s.codec.DecodeIndex(indexData)
	if err != nil {
		return st, fmt.Errorf("%w: %w", ErrStorageCorrupted, err)
	}
	routines, emptyRoutines, err := s.codec.DecodeRoutines(routinesData)
	if err != nil {
		return st, fmt.Errorf("%w: %w", ErrStorageCorrupted, err)
	}

	st.users = users
	st.indexDirty = emptyIndex
	st.routinesDirty = emptyRoutines
	st.personal = make(map[uuid.UUID][]model.Routine, len(users))
	for _, u := range users {
		st.personal[u.ID] = []model.Routine{}
	}

	for _, r := range routines.Public {
		st.public = insertOrdered(st.public, r)
	}
	for owner, list := range routines.Personal {
		ordered, known := st.personal[owner]
		if !known {
			s.logger.Warn("dropping routines of unknown user", "user", owner, "routines", len(list))
			continue
		}
		for _, r := range list {
			ordered = insertOrdered(ordered, r)
		}
		st.personal[owner] = ordered
	}
	return st, nil
}

// Flush writes every dirty document. Each document's dirty flag is cleared
// only after it was written. When a write fails the document on disk may
// be damaged; its previous content is kept next to it with a .bak suffix.
// Flushing a disconnected store does nothing.
func (s *Store) Flush() error {
	if s.session == nil {
		return nil
	}

	if s.indexDirty {
		data, err := s.codec.EncodeIndex(s.users)
		if err != nil {
			return fmt.Errorf("flush: %w", err)
		}
		if err := s.write(codec.DocIndex, data); err != nil {
			return err
		}
		s.indexDirty = false
	}

	if s.routinesDirty {
		data, err := s.codec.EncodeRoutines(s.public, s.personal)
		if err != nil {
			return fmt.Errorf("flush: %w", err)
		}
		if err := s.write(codec.DocRoutines, data); err != nil {
			return err
		}
		s.routinesDirty = false
	}
	return nil
}

func (s *Store) write(doc codec.Document, data []byte) error {
	if err := s.session.Write(doc, data); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	s.logger.Debug("document flushed", "document", doc, "bytes", len(data))

	if s.journal != nil {
		if _, err := s.journal.Append(context.Background(), doc, data); err != nil {
			s.logger.Warn("journal append failed", "document", doc, "error", err)
		}
	}
	return nil
}

// Path returns the connected storage directory, or "" when disconnected.
func (s *Store) Path() string {
	if s.session == nil {
		return ""
	}
	return s.session.Dir()
}

// Close flushes and releases the storage. The in-memory state is kept.
func (s *Store) Close() error {
	err := s.Flush()
	s.closeSession()
	return err
}

// release flushes and closes the current connection, ignoring flush errors.
func (s *Store) release() {
	if s.session == nil {
		return
	}
	if err := s.Flush(); err != nil {
		s.logger.Warn("flush before release failed", "path", s.session.Dir(), "error", err)
	}
	s.closeSession()
}

func (s *Store) closeSession() {
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			s.logger.Warn("journal close failed", "error", err)
		}
		s.journal = nil
	}
	if s.session != nil {
		if err := s.session.Close(); err != nil {
			s.logger.Warn("storage close failed", "error", err)
		}
		s.session = nil
	}
}

func (s *Store) reset() {
	s.users = nil
	s.public = nil
	s.personal = make(map[uuid.UUID][]model.Routine)
	s.indexDirty, s.routinesDirty = false, false
}
