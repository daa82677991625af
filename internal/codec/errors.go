package codec

import (
	"errors"
	"fmt"
)

// ErrCorrupted reports a document that does not describe a valid schedule.
var ErrCorrupted = errors.New("document corrupted")

// Document names a persisted file.
type Document string

const (
	DocIndex    Document = "index.cfg"
	DocRoutines Document = "routines.cfg"
)

// SchemaError locates a problem in a loaded document.
type SchemaError struct {
	Document Document
	Path     string
	Message  string
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", e.Document, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Document, e.Path, e.Message)
}

// Unwrap lets callers match any SchemaError with errors.Is(err, ErrCorrupted).
func (e *SchemaError) Unwrap() error {
	return ErrCorrupted
}

func schemaErrorf(doc Document, path, format string, args ...any) *SchemaError {
	return &SchemaError{Document: doc, Path: path, Message: fmt.Sprintf(format, args...)}
}
