package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/routines/internal/jsontree"
)

// Snapshot renders the trace of a run as canonical JSON, so identical runs
// produce identical bytes.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	events := make(jsontree.Array, len(result.Trace))
	for i, e := range result.Trace {
		obj := jsontree.NewObject(
			jsontree.P("seq", jsontree.Int(int64(e.Seq))),
			jsontree.P("op", jsontree.String(e.Op)),
			jsontree.P("ok", jsontree.Bool(e.OK)),
		)
		if e.Error != "" {
			obj["error"] = jsontree.String(e.Error)
		}
		if e.Routines != nil {
			routines := make(jsontree.Array, len(e.Routines))
			for j, r := range e.Routines {
				routines[j] = routineValue(r)
			}
			obj["routines"] = routines
		}
		events[i] = obj
	}

	return jsontree.MarshalCanonical(jsontree.NewObject(
		jsontree.P("scenario", jsontree.String(scenarioName)),
		jsontree.P("trace", events),
	))
}

func routineValue(r RoutineView) jsontree.Object {
	obj := jsontree.NewObject(
		jsontree.P("start", jsontree.String(r.Start)),
		jsontree.P("name", jsontree.String(r.Name)),
		jsontree.P("ghost", jsontree.Bool(r.Ghost)),
		jsontree.P("ended", jsontree.Bool(r.Ended)),
		jsontree.P("template", jsontree.String(r.Template)),
	)
	if r.ID != "" {
		obj["id"] = jsontree.String(r.ID)
	}
	if r.Source != "" {
		obj["source"] = jsontree.String(r.Source)
	}
	return obj
}

// RunWithGolden executes a scenario in a temporary directory and compares
// its trace against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, t.TempDir())
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
