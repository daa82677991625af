package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/roach88/routines/internal/model"
	"github.com/roach88/routines/internal/schedule"
)

// routineFlags describe a routine on the command line.
type routineFlags struct {
	Name        string
	Description string
	Start       string
	Duration    time.Duration
	Color       uint32
	EndOnExpiry bool
	Cycle       uint32
	Cycles      uint32
	Days        []int
}

func (f *routineFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.Name, "name", "", "routine name (required)")
	fs.StringVar(&f.Description, "description", "", "routine description")
	fs.StringVar(&f.Start, "start", "", "start time: Unix seconds, RFC 3339 or YYYY-MM-DD (required)")
	fs.DurationVar(&f.Duration, "duration", time.Hour, "duration, whole seconds")
	fs.Uint32Var(&f.Color, "color", 0, "color as 0xRRGGBB")
	fs.BoolVar(&f.EndOnExpiry, "end-on-expiry", false, "end the routine when its time is over")
	fs.Uint32Var(&f.Cycle, "cycle", 0, "repeat: cycle length in days")
	fs.Uint32Var(&f.Cycles, "cycles", 0, "repeat: number of cycles, 0 for unbounded")
	fs.IntSliceVar(&f.Days, "days", nil, "repeat: day offsets within the cycle")
}

// build validates the flags and returns the routine they describe.
func (f *routineFlags) build(id uuid.UUID) (model.Routine, error) {
	if f.Name == "" {
		return model.Routine{}, NewExitError(ExitCommandError, ErrCodeInput, "--name is required")
	}
	if f.Start == "" {
		return model.Routine{}, NewExitError(ExitCommandError, ErrCodeInput, "--start is required")
	}
	start, err := parseTime(f.Start)
	if err != nil {
		return model.Routine{}, WrapExitError(ExitCommandError, ErrCodeInput, "invalid --start", err)
	}
	if f.Duration < 0 || f.Duration%time.Second != 0 {
		return model.Routine{}, NewExitError(ExitCommandError, ErrCodeInput,
			fmt.Sprintf("invalid --duration %s: must be whole non-negative seconds", f.Duration))
	}

	r := model.Routine{
		ID:          id,
		Start:       start,
		Duration:    uint64(f.Duration / time.Second),
		Name:        f.Name,
		Description: f.Description,
		Color:       f.Color,
	}
	if f.EndOnExpiry {
		r.EndTrigger = model.EndExpiry
	}

	switch {
	case f.Cycle > 0:
		flags := make([]bool, f.Cycle)
		for _, d := range f.Days {
			if d < 0 || d >= int(f.Cycle) {
				return model.Routine{}, NewExitError(ExitCommandError, ErrCodeInput,
					fmt.Sprintf("--days: %d is outside a cycle of %d days", d, f.Cycle))
			}
			flags[d] = true
		}
		r.Template = model.Repeating{DaysCycle: f.Cycle, Cycles: f.Cycles, DaysFlags: flags}
	case len(f.Days) > 0 || f.Cycles > 0:
		return model.Routine{}, NewExitError(ExitCommandError, ErrCodeInput, "--days and --cycles need --cycle")
	}
	return r, nil
}

// NewRoutineCommand creates the routine command group for personal
// routines.
func NewRoutineCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routine",
		Short: "Manage a user's personal routines",
	}

	cmd.AddCommand(newRoutineAddCommand(rootOpts))
	cmd.AddCommand(newRoutineListCommand(rootOpts))
	cmd.AddCommand(newRoutineShowCommand(rootOpts))
	cmd.AddCommand(newRoutineRemoveCommand(rootOpts))
	cmd.AddCommand(newRoutineEndCommand(rootOpts))
	return cmd
}

func newRoutineAddCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &routineFlags{}

	cmd := &cobra.Command{
		Use:   "add <user>",
		Short: "Add a personal routine",
		Long: `Add a routine to a user's personal list. With --cycle the routine
repeats: --days lists the day offsets within each cycle that get an
occurrence, and --cycles bounds the number of cycles.

Examples:
  routinectl routine add alice --name gym --start 2023-11-14T18:00:00Z --duration 1h
  routinectl routine add alice --name gym --start 2023-11-14T18:00:00Z --cycle 7 --days 0,2,4`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := flags.build(uuid.New())
			if err != nil {
				return err
			}
			return rootOpts.withStore(func(st *schedule.Store) error {
				u, err := lookupUser(st, args[0])
				if err != nil {
					return err
				}
				if !st.UpsertPersonal(u.ID, r) {
					return NewExitError(ExitFailure, ErrCodeRejected, "cannot add routine")
				}
				return rootOpts.formatter(cmd).Success(newRoutineView(r))
			})
		},
	}

	flags.register(cmd.Flags())
	return cmd
}

func newRoutineListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list <user>",
		Short:         "List a user's stored routines",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(func(st *schedule.Store) error {
				u, err := lookupUser(st, args[0])
				if err != nil {
					return err
				}
				routines, _ := st.Routines(u.ID)
				return rootOpts.formatter(cmd).Success(newRoutineList(routines))
			})
		},
	}
}

func newRoutineShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <user> <id>",
		Short:         "Show a personal routine",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			return rootOpts.withStore(func(st *schedule.Store) error {
				u, err := lookupUser(st, args[0])
				if err != nil {
					return err
				}
				r, ok := st.LookupRoutine(u.ID, id)
				if !ok {
					return NewExitError(ExitFailure, ErrCodeNotFound, fmt.Sprintf("unknown routine %s", id))
				}
				return rootOpts.formatter(cmd).Success(newRoutineView(r))
			})
		},
	}
}

func newRoutineRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <user> <id>",
		Short: "Remove a personal routine",
		Long: `Remove a routine from a user's personal list. Removing a stored
occurrence of a recurring routine brings back the generated occurrence
while the recurring routine exists.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			return rootOpts.withStore(func(st *schedule.Store) error {
				u, err := lookupUser(st, args[0])
				if err != nil {
					return err
				}

				f := rootOpts.formatter(cmd)
				policy := st.DeletePolicy(u.ID, id)
				f.VerboseLog("deletion policy: %s", policy)
				if !st.RemovePersonal(u.ID, id) {
					return NewExitError(ExitFailure, ErrCodeNotFound, fmt.Sprintf("unknown routine %s", id))
				}

				if f.Format == "json" {
					return f.Success(map[string]string{"removed": id.String(), "policy": policy.String()})
				}
				return f.Success(fmt.Sprintf("Removed routine %s (%s)", id, policy))
			})
		},
	}
}

func newRoutineEndCommand(rootOpts *RootOptions) *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:           "end <user> <id>",
		Short:         "Mark a routine as ended",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			return rootOpts.withStore(func(st *schedule.Store) error {
				u, err := lookupUser(st, args[0])
				if err != nil {
					return err
				}
				if !st.SetEnded(u.ID, id, !undo) {
					return NewExitError(ExitFailure, ErrCodeNotFound, fmt.Sprintf("unknown routine %s", id))
				}
				r, _ := st.LookupRoutine(u.ID, id)
				return rootOpts.formatter(cmd).Success(newRoutineView(r))
			})
		},
	}

	cmd.Flags().BoolVar(&undo, "undo", false, "clear the ended flag instead")
	return cmd
}
