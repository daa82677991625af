package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/routines/internal/model"
	"github.com/roach88/routines/internal/schedule"
)

// RangeOptions holds flags for the range command.
type RangeOptions struct {
	*RootOptions
	From         string
	To           string
	Days         uint64
	After        string
	Before       string
	TZOffset     time.Duration
	Ended        bool
	Active       bool
	Titles       []string
	Descriptions []string

	// Now overrides the clock used when --from is omitted (for testing).
	Now func() time.Time
}

// NewRangeCommand creates the range command.
func NewRangeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RangeOptions{RootOptions: rootOpts, Now: time.Now}

	cmd := &cobra.Command{
		Use:   "range <user>",
		Short: "List a user's routines in a time window",
		Long: `List every routine of a user starting in [from, to), including public
routines and the occurrences of recurring routines.

--from defaults to the start of the current UTC day and --to to --days
after --from (range_days from the config when --days is omitted).

Filters:
  --after/--before   time of day window (HH:MM), shifted by --tz-offset;
                     --after later than --before wraps past midnight
  --ended/--active   only ended or only active routines
  --title/--desc     case-insensitive substrings; repeat to match any

Example:
  routinectl range alice --from 2023-11-14 --days 7 --after 08:00 --before 12:00`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRange(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.From, "from", "", "window start")
	cmd.Flags().StringVar(&opts.To, "to", "", "window end (exclusive)")
	cmd.Flags().Uint64Var(&opts.Days, "days", 0, "window length in days")
	cmd.Flags().StringVar(&opts.After, "after", "", "earliest time of day (HH:MM)")
	cmd.Flags().StringVar(&opts.Before, "before", "", "latest time of day, exclusive (HH:MM)")
	cmd.Flags().DurationVar(&opts.TZOffset, "tz-offset", 0, "offset of local time from UTC for --after/--before")
	cmd.Flags().BoolVar(&opts.Ended, "ended", false, "only ended routines")
	cmd.Flags().BoolVar(&opts.Active, "active", false, "only routines not ended")
	cmd.Flags().StringArrayVar(&opts.Titles, "title", nil, "name contains")
	cmd.Flags().StringArrayVar(&opts.Descriptions, "desc", nil, "description contains")
	cmd.MarkFlagsMutuallyExclusive("ended", "active")
	cmd.MarkFlagsMutuallyExclusive("to", "days")

	return cmd
}

// window resolves the [start, end) interval from the flags.
func (o *RangeOptions) window() (uint64, uint64, error) {
	var start uint64
	if o.From != "" {
		t, err := parseTime(o.From)
		if err != nil {
			return 0, 0, WrapExitError(ExitCommandError, ErrCodeInput, "invalid --from", err)
		}
		start = t
	} else {
		start = uint64(o.Now().UTC().Truncate(24 * time.Hour).Unix())
	}

	if o.To != "" {
		end, err := parseTime(o.To)
		if err != nil {
			return 0, 0, WrapExitError(ExitCommandError, ErrCodeInput, "invalid --to", err)
		}
		return start, end, nil
	}

	days := o.Days
	if days == 0 {
		days = o.Config.RangeDays
	}
	return start, start + days*model.SecondsPerDay, nil
}

// filter builds the result filter from the flags.
func (o *RangeOptions) filter() (schedule.Filter, error) {
	f := schedule.Filter{
		TZOffset:     int64(o.TZOffset / time.Second),
		Titles:       o.Titles,
		Descriptions: o.Descriptions,
	}
	if o.After != "" {
		tod, err := parseClock(o.After)
		if err != nil {
			return schedule.Filter{}, WrapExitError(ExitCommandError, ErrCodeInput, "invalid --after", err)
		}
		f.TimeOfDayFrom = &tod
	}
	if o.Before != "" {
		tod, err := parseClock(o.Before)
		if err != nil {
			return schedule.Filter{}, WrapExitError(ExitCommandError, ErrCodeInput, "invalid --before", err)
		}
		f.TimeOfDayTo = &tod
	}
	switch {
	case o.Ended:
		ended := true
		f.Ended = &ended
	case o.Active:
		ended := false
		f.Ended = &ended
	}
	return f, nil
}

func runRange(opts *RangeOptions, name string, cmd *cobra.Command) error {
	start, end, err := opts.window()
	if err != nil {
		return err
	}
	if end < start {
		return NewExitError(ExitCommandError, ErrCodeInput, "window ends before it starts")
	}
	filter, err := opts.filter()
	if err != nil {
		return err
	}

	return opts.withStore(func(st *schedule.Store) error {
		u, err := lookupUser(st, name)
		if err != nil {
			return err
		}
		routines, ok := st.Range(u.ID, start, end)
		if !ok {
			return NewExitError(ExitFailure, ErrCodeNotFound, fmt.Sprintf("user %q has no routines", name))
		}

		f := opts.formatter(cmd)
		f.VerboseLog("window %s .. %s: %d routines before filtering", formatTime(start), formatTime(end), len(routines))
		return f.Success(newRoutineList(filter.Apply(routines)))
	})
}
