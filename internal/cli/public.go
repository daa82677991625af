package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/routines/internal/model"
	"github.com/roach88/routines/internal/schedule"
)

// NewPublicCommand creates the public command group.
func NewPublicCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "public",
		Short: "Manage public routines shared by every user",
	}

	cmd.AddCommand(newPublicAddCommand(rootOpts))
	cmd.AddCommand(newPublicListCommand(rootOpts))
	cmd.AddCommand(newPublicRemoveCommand(rootOpts))
	return cmd
}

func newPublicAddCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &routineFlags{}
	var id string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add or replace a public routine",
		Long: `Add a public routine, or replace the one with the given --id.
Every user sees public routines in their ranges.

Example:
  routinectl public add --name standup --start 2023-11-14T09:00:00Z --duration 15m --cycle 7 --days 0,1,2,3,4`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rid := uuid.New()
			if id != "" {
				var err error
				if rid, err = parseID(id); err != nil {
					return err
				}
			}
			r, err := flags.build(rid)
			if err != nil {
				return err
			}
			return rootOpts.withStore(func(st *schedule.Store) error {
				st.UpsertPublic(r)
				stored, _ := st.LookupRoutine(model.PublicOwner, rid)
				return rootOpts.formatter(cmd).Success(newRoutineView(stored))
			})
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&id, "id", "", "id of the public routine to replace")
	return cmd
}

func newPublicListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List public routines",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(func(st *schedule.Store) error {
				return rootOpts.formatter(cmd).Success(newRoutineList(st.PublicRoutines()))
			})
		},
	}
}

func newPublicRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "remove <id>",
		Short:         "Remove a public routine",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return rootOpts.withStore(func(st *schedule.Store) error {
				if !st.RemovePublic(id) {
					return NewExitError(ExitFailure, ErrCodeNotFound, fmt.Sprintf("unknown public routine %s", id))
				}
				f := rootOpts.formatter(cmd)
				if f.Format == "json" {
					return f.Success(map[string]string{"removed": id.String()})
				}
				return f.Success(fmt.Sprintf("Removed public routine %s", id))
			})
		},
	}
}
