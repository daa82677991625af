package codec

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSource string

// Schema checks document shape before decoding. A Schema is not safe for
// concurrent use.
type Schema struct {
	ctx      *cue.Context
	index    cue.Value
	routines cue.Value
}

// NewSchema compiles the embedded document schema.
func NewSchema() (*Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	s := &Schema{
		ctx:      ctx,
		index:    v.LookupPath(cue.ParsePath("#Index")),
		routines: v.LookupPath(cue.ParsePath("#Routines")),
	}
	if !s.index.Exists() || !s.routines.Exists() {
		return nil, fmt.Errorf("compile schema: missing document definitions")
	}
	return s, nil
}

// Validate unifies raw JSON with the definition for doc.
func (s *Schema) Validate(doc Document, data []byte) error {
	var def cue.Value
	switch doc {
	case DocIndex:
		def = s.index
	case DocRoutines:
		def = s.routines
	default:
		panic(fmt.Sprintf("codec: unknown document %q", doc))
	}

	v := s.ctx.CompileBytes(data, cue.Filename(string(doc)))
	if err := v.Err(); err != nil {
		return cueSchemaError(doc, err)
	}

	unified := def.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return cueSchemaError(doc, err)
	}
	return nil
}

// cueSchemaError keeps the first CUE error and its path.
func cueSchemaError(doc Document, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &SchemaError{Document: doc, Message: err.Error()}
	}
	first := errs[0]
	return &SchemaError{
		Document: doc,
		Path:     strings.Join(first.Path(), "."),
		Message:  first.Error(),
	}
}
