package codec

import (
	"math"

	"github.com/google/uuid"

	"github.com/roach88/routines/internal/jsontree"
	"github.com/roach88/routines/internal/model"
)

// reader extracts typed fields from a validated tree. The first failure is
// kept in err and later calls return zero values.
type reader struct {
	doc Document
	err error
}

func (r *reader) fail(path, format string, args ...any) {
	if r.err == nil {
		r.err = schemaErrorf(r.doc, path, format, args...)
	}
}

func (r *reader) object(v jsontree.Value, path string) jsontree.Object {
	obj, ok := v.(jsontree.Object)
	if !ok {
		r.fail(path, "want object, got %s", jsontree.Kind(v))
		return jsontree.Object{}
	}
	return obj
}

func (r *reader) array(obj jsontree.Object, key, path string) jsontree.Array {
	arr, ok := obj[key].(jsontree.Array)
	if !ok {
		r.fail(path, "%s: want array, got %s", key, jsontree.Kind(obj[key]))
		return nil
	}
	return arr
}

func (r *reader) str(obj jsontree.Object, key, path string) string {
	s, ok := obj[key].(jsontree.String)
	if !ok {
		r.fail(path, "%s: want string, got %s", key, jsontree.Kind(obj[key]))
		return ""
	}
	return string(s)
}

func (r *reader) boolean(obj jsontree.Object, key, path string) bool {
	b, ok := obj[key].(jsontree.Bool)
	if !ok {
		r.fail(path, "%s: want bool, got %s", key, jsontree.Kind(obj[key]))
		return false
	}
	return bool(b)
}

func (r *reader) u64(obj jsontree.Object, key, path string) uint64 {
	n, ok := obj[key].(jsontree.Number)
	if !ok {
		r.fail(path, "%s: want number, got %s", key, jsontree.Kind(obj[key]))
		return 0
	}
	v, err := n.Uint64()
	if err != nil {
		r.fail(path, "%s: %v", key, err)
		return 0
	}
	return v
}

func (r *reader) u32(obj jsontree.Object, key, path string) uint32 {
	v := r.u64(obj, key, path)
	if v > math.MaxUint32 {
		r.fail(path, "%s: %d overflows 32 bits", key, v)
		return 0
	}
	return uint32(v)
}

func (r *reader) id(obj jsontree.Object, key, path string) uuid.UUID {
	s := r.str(obj, key, path)
	if r.err != nil {
		return uuid.Nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		r.fail(path, "%s: invalid id %q", key, s)
		return uuid.Nil
	}
	return id
}

func (r *reader) routine(v jsontree.Value, path string) model.Routine {
	obj := r.object(v, path)
	return model.Routine{
		ID:          r.id(obj, "id", path),
		Start:       r.u64(obj, "start_secs_since_epoch", path),
		Duration:    r.u64(obj, "duration_secs", path),
		Name:        r.str(obj, "name", path),
		Description: r.str(obj, "description", path),
		Color:       r.u32(obj, "color", path),
		EndTrigger:  model.EndTrigger(r.u32(obj, "end_trigger_kind", path)),
		IsEnded:     r.boolean(obj, "is_ended", path),
		Template:    r.template(obj["template_options"], path+".template_options"),
	}
}

func (r *reader) template(v jsontree.Value, path string) model.Template {
	switch tpl := v.(type) {
	case jsontree.Null:
		return nil
	case jsontree.Object:
		if _, ok := tpl["source_routine"]; ok {
			return model.Derived{Source: r.id(tpl, "source_routine", path)}
		}
		rep := model.Repeating{
			DaysCycle: r.u32(tpl, "repeat_days_cycle", path),
			Cycles:    r.u32(tpl, "repeat_cycles", path),
		}
		flags := r.array(tpl, "repeat_days_flags", path)
		if r.err != nil {
			return nil
		}
		if uint64(len(flags)) != uint64(rep.DaysCycle) {
			r.fail(path, "repeat_days_flags has %d entries, repeat_days_cycle is %d", len(flags), rep.DaysCycle)
			return nil
		}
		rep.DaysFlags = make([]bool, len(flags))
		for i, f := range flags {
			n, ok := f.(jsontree.Number)
			if !ok {
				r.fail(path, "repeat_days_flags[%d]: want number, got %s", i, jsontree.Kind(f))
				return nil
			}
			u, err := n.Uint64()
			if err != nil {
				r.fail(path, "repeat_days_flags[%d]: %v", i, err)
				return nil
			}
			rep.DaysFlags[i] = u != 0
		}
		return rep
	default:
		r.fail(path, "want null or object, got %s", jsontree.Kind(v))
		return nil
	}
}
