package schedule

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/roach88/routines/internal/model"
)

func ptr[T any](v T) *T {
	return &v
}

func TestFilter(t *testing.T) {
	morning := oneOff(uuid.New(), day0+7*hour, "Morning Run")
	morning.Description = "around the park"
	late := oneOff(uuid.New(), day0+23*hour, "Late reading")
	late.IsEnded = true
	routines := []model.Routine{morning, late}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"zero filter", Filter{}, []string{"Morning Run", "Late reading"}},
		{"ended", Filter{Ended: ptr(true)}, []string{"Late reading"}},
		{"not ended", Filter{Ended: ptr(false)}, []string{"Morning Run"}},
		{"title case-insensitive", Filter{Titles: []string{"RUN"}}, []string{"Morning Run"}},
		{"any title", Filter{Titles: []string{"run", "read"}}, []string{"Morning Run", "Late reading"}},
		{"description", Filter{Descriptions: []string{"park"}}, []string{"Morning Run"}},
		{"time of day", Filter{TimeOfDayFrom: ptr(6 * hour), TimeOfDayTo: ptr(8 * hour)}, []string{"Morning Run"}},
		{"wraps midnight", Filter{TimeOfDayFrom: ptr(22 * hour), TimeOfDayTo: ptr(2 * hour)}, []string{"Late reading"}},
		{"only from", Filter{TimeOfDayFrom: ptr(12 * hour)}, []string{"Late reading"}},
		{"timezone shifts day", Filter{TimeOfDayTo: ptr(2 * hour), TZOffset: 2 * 3600}, []string{"Late reading"}},
		{"negative offset", Filter{TimeOfDayFrom: ptr(4 * hour), TimeOfDayTo: ptr(5 * hour), TZOffset: -3 * 3600}, []string{"Morning Run"}},
		{"combined", Filter{Ended: ptr(true), Titles: []string{"run"}}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(routines)
			names := make([]string, 0, len(got))
			for _, r := range got {
				names = append(names, r.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}
