// Package codec converts the schedule model to and from its two persisted
// JSON documents. It does no I/O.
package codec

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/routines/internal/jsontree"
	"github.com/roach88/routines/internal/model"
)

// IndexVersion is the only supported index document version.
const IndexVersion = 1

// Routines is the decoded content of routines.cfg.
type Routines struct {
	Public   []model.Routine
	Personal map[uuid.UUID][]model.Routine
}

// Codec decodes and encodes the schedule documents.
type Codec struct {
	schema *Schema
}

// New returns a Codec with the embedded schema compiled.
func New() (*Codec, error) {
	s, err := NewSchema()
	if err != nil {
		return nil, err
	}
	return &Codec{schema: s}, nil
}

// parseDocument parses data and reports whether it is the empty object.
func parseDocument(doc Document, data []byte) (jsontree.Object, bool, error) {
	v, err := jsontree.Parse(data)
	if err != nil {
		return nil, false, schemaErrorf(doc, "", "%v", err)
	}
	obj, ok := v.(jsontree.Object)
	if !ok {
		return nil, false, schemaErrorf(doc, "", "top level is %s, want object", jsontree.Kind(v))
	}
	return obj, len(obj) == 0, nil
}

// DecodeIndex reads index.cfg. An empty object yields no users and
// empty=true, meaning the caller should rewrite the document.
func (c *Codec) DecodeIndex(data []byte) (users []model.User, empty bool, err error) {
	obj, empty, err := parseDocument(DocIndex, data)
	if err != nil || empty {
		return nil, empty, err
	}
	if err := c.schema.Validate(DocIndex, data); err != nil {
		return nil, false, err
	}

	r := reader{doc: DocIndex}
	if v := r.u64(obj, "version", "version"); r.err == nil && v != IndexVersion {
		return nil, false, schemaErrorf(DocIndex, "version", "unsupported version %d", v)
	}

	for i, elem := range r.array(obj, "users", "users") {
		path := fmt.Sprintf("users[%d]", i)
		u := r.object(elem, path)
		prefs := r.object(u["preferences"], path+".preferences")
		theme, terr := model.ParseTheme(r.str(prefs, "theme", path+".preferences"))
		if terr != nil && r.err == nil {
			r.err = schemaErrorf(DocIndex, path+".preferences.theme", "%v", terr)
		}
		user := model.User{
			ID:                   r.id(u, "id", path),
			Name:                 r.str(u, "name", path),
			Nickname:             r.str(u, "nickname", path),
			IsAdmin:              r.boolean(u, "is_admin", path),
			LastRoutinesUpdateTS: r.u64(u, "last_routines_update_ts", path),
			Preferences: model.Preferences{
				DayViewPreferTimeline:     r.boolean(prefs, "day_view_prefer_timeline", path+".preferences"),
				Theme:                     theme,
				VerifyIdentityBeforeLogin: r.boolean(prefs, "verify_identity_before_login", path+".preferences"),
			},
		}
		if r.err != nil {
			return nil, false, r.err
		}
		users = append(users, user)
	}
	if r.err != nil {
		return nil, false, r.err
	}
	return users, false, nil
}

// DecodeRoutines reads routines.cfg. Routines are returned in file order;
// ordering is the store's concern.
func (c *Codec) DecodeRoutines(data []byte) (routines Routines, empty bool, err error) {
	routines.Personal = make(map[uuid.UUID][]model.Routine)

	obj, empty, err := parseDocument(DocRoutines, data)
	if err != nil || empty {
		return routines, empty, err
	}
	if err := c.schema.Validate(DocRoutines, data); err != nil {
		return Routines{}, false, err
	}

	r := reader{doc: DocRoutines}
	for i, elem := range r.array(obj, "public", "public") {
		path := fmt.Sprintf("public[%d]", i)
		rt := r.routine(elem, path)
		if r.err != nil {
			return Routines{}, false, r.err
		}
		if _, ok := rt.Template.(model.Derived); ok {
			return Routines{}, false, schemaErrorf(DocRoutines, path, "public routine cannot be derived")
		}
		routines.Public = append(routines.Public, rt)
	}

	personal := r.object(obj["personal"], "personal")
	for _, key := range personal.SortedKeys() {
		owner, perr := uuid.Parse(key)
		if perr != nil {
			return Routines{}, false, schemaErrorf(DocRoutines, "personal", "invalid owner id %q", key)
		}
		list := make([]model.Routine, 0)
		for i, elem := range r.array(personal, key, "personal") {
			list = append(list, r.routine(elem, fmt.Sprintf("personal.%s[%d]", key, i)))
		}
		if r.err != nil {
			return Routines{}, false, r.err
		}
		routines.Personal[owner] = list
	}
	if r.err != nil {
		return Routines{}, false, r.err
	}
	return routines, false, nil
}

// EncodeIndex renders users as canonical index.cfg content.
func (c *Codec) EncodeIndex(users []model.User) ([]byte, error) {
	arr := make(jsontree.Array, 0, len(users))
	for _, u := range users {
		arr = append(arr, jsontree.NewObject(
			jsontree.P("id", jsontree.String(u.ID.String())),
			jsontree.P("name", jsontree.String(u.Name)),
			jsontree.P("nickname", jsontree.String(u.Nickname)),
			jsontree.P("is_admin", jsontree.Bool(u.IsAdmin)),
			jsontree.P("last_routines_update_ts", jsontree.Uint(u.LastRoutinesUpdateTS)),
			jsontree.P("preferences", jsontree.NewObject(
				jsontree.P("day_view_prefer_timeline", jsontree.Bool(u.Preferences.DayViewPreferTimeline)),
				jsontree.P("theme", jsontree.String(u.Preferences.Theme.String())),
				jsontree.P("verify_identity_before_login", jsontree.Bool(u.Preferences.VerifyIdentityBeforeLogin)),
			)),
		))
	}

	doc := jsontree.NewObject(
		jsontree.P("version", jsontree.Uint(IndexVersion)),
		jsontree.P("users", arr),
	)
	return jsontree.MarshalCanonical(doc)
}

// EncodeRoutines renders routines as canonical routines.cfg content.
// Personal ghosts are skipped. A ghost in the public list panics.
func (c *Codec) EncodeRoutines(public []model.Routine, personal map[uuid.UUID][]model.Routine) ([]byte, error) {
	pub := make(jsontree.Array, 0, len(public))
	for _, rt := range public {
		if rt.IsGhost {
			panic(fmt.Sprintf("codec: public routine %s is a ghost", rt.ID))
		}
		pub = append(pub, encodeRoutine(rt))
	}

	groups := make(jsontree.Object, len(personal))
	for owner, list := range personal {
		arr := make(jsontree.Array, 0, len(list))
		for _, rt := range list {
			if rt.IsGhost {
				continue
			}
			arr = append(arr, encodeRoutine(rt))
		}
		groups[owner.String()] = arr
	}

	doc := jsontree.NewObject(
		jsontree.P("public", pub),
		jsontree.P("personal", groups),
	)
	return jsontree.MarshalCanonical(doc)
}

func encodeRoutine(rt model.Routine) jsontree.Object {
	return jsontree.NewObject(
		jsontree.P("id", jsontree.String(rt.ID.String())),
		jsontree.P("start_secs_since_epoch", jsontree.Uint(rt.Start)),
		jsontree.P("duration_secs", jsontree.Uint(rt.Duration)),
		jsontree.P("name", jsontree.String(rt.Name)),
		jsontree.P("description", jsontree.String(rt.Description)),
		jsontree.P("color", jsontree.Uint(uint64(rt.Color))),
		jsontree.P("end_trigger_kind", jsontree.Uint(uint64(rt.EndTrigger))),
		jsontree.P("is_ended", jsontree.Bool(rt.IsEnded)),
		jsontree.P("template_options", encodeTemplate(rt.Template)),
	)
}

func encodeTemplate(t model.Template) jsontree.Value {
	switch tpl := t.(type) {
	case nil:
		return jsontree.Null{}
	case model.Repeating:
		flags := make(jsontree.Array, len(tpl.DaysFlags))
		for i, f := range tpl.DaysFlags {
			if f {
				flags[i] = jsontree.Uint(1)
			} else {
				flags[i] = jsontree.Uint(0)
			}
		}
		return jsontree.NewObject(
			jsontree.P("repeat_days_cycle", jsontree.Uint(uint64(tpl.DaysCycle))),
			jsontree.P("repeat_cycles", jsontree.Uint(uint64(tpl.Cycles))),
			jsontree.P("repeat_days_flags", flags),
		)
	case model.Derived:
		return jsontree.NewObject(
			jsontree.P("source_routine", jsontree.String(tpl.Source.String())),
		)
	default:
		panic(fmt.Sprintf("codec: unknown template %T", t))
	}
}
