// Package schedule is the authoritative in-memory record store for users
// and routines, backed by a locked storage directory.
//
// Reads over a time window materialize recurring and public routines into
// per-day ghost occurrences. Ghosts are cached in the owner's personal list
// and never persisted. Editing a ghost turns it into a real record and
// drops every cached ghost of that owner so they are regenerated on the
// next read.
//
// A Store is not safe for concurrent use.
package schedule

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/roach88/routines/internal/codec"
	"github.com/roach88/routines/internal/journal"
	"github.com/roach88/routines/internal/model"
	"github.com/roach88/routines/internal/storage"
)

// Connection outcomes. Errors returned by Connect wrap one of these.
var (
	ErrStorageNotAccessible = errors.New("storage not accessible")
	ErrStorageCorrupted     = errors.New("storage corrupted")
)

// IDGenerator produces ids for new users and generated occurrences.
type IDGenerator interface {
	NewID() uuid.UUID
}

// RandomIDs generates random (version 4) UUIDs.
type RandomIDs struct{}

// NewID returns a fresh random UUID.
func (RandomIDs) NewID() uuid.UUID {
	return uuid.New()
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithIDGenerator replaces the random id source.
func WithIDGenerator(ids IDGenerator) Option {
	return func(s *Store) {
		s.ids = ids
	}
}

// WithJournal records every flushed document in the storage directory's
// journal database.
func WithJournal(opts ...journal.Option) Option {
	return func(s *Store) {
		s.journalOn = true
		s.journalOpts = opts
	}
}

// Store holds users, public routines and per-user personal routines.
// Every routine list is sorted by start time.
type Store struct {
	codec    *codec.Codec
	validate *validator.Validate
	ids      IDGenerator
	logger   *slog.Logger

	journalOn   bool
	journalOpts []journal.Option

	session *storage.Session
	journal *journal.Journal

	indexDirty    bool
	routinesDirty bool

	users    []model.User
	public   []model.Routine
	personal map[uuid.UUID][]model.Routine
}

// New returns a disconnected, empty Store.
func New(opts ...Option) (*Store, error) {
	c, err := codec.New()
	if err != nil {
		return nil, fmt.Errorf("new store: %w", err)
	}

	s := &Store{
		codec:    c,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		ids:      RandomIDs{},
		logger:   slog.Default(),
		personal: make(map[uuid.UUID][]model.Routine),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Journal returns the journal of the current connection, or nil.
func (s *Store) Journal() *journal.Journal {
	return s.journal
}

func (s *Store) markDirty(index, routines bool) {
	s.indexDirty = s.indexDirty || index
	s.routinesDirty = s.routinesDirty || routines
}

// Dirty reports which documents have unflushed changes.
func (s *Store) Dirty() (index, routines bool) {
	return s.indexDirty, s.routinesDirty
}
