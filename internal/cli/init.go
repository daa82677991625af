package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/routines/internal/schedule"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a storage directory",
		Long: `Create the storage directory if needed and seed index.cfg and
routines.cfg. Existing documents are loaded and validated, never replaced.

Example:
  routinectl init --storage ./schedule`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, cmd)
		},
	}
}

func runInit(opts *RootOptions, cmd *cobra.Command) error {
	dir, err := opts.storageDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return WrapExitError(ExitCommandError, ErrCodeStorage, "failed to create storage directory", err)
	}

	var users int
	err = opts.withStore(func(st *schedule.Store) error {
		users = len(st.Users())
		return nil
	})
	if err != nil {
		return err
	}

	f := opts.formatter(cmd)
	if f.Format == "json" {
		return f.Success(map[string]any{"storage": dir, "users": users})
	}
	return f.Success(fmt.Sprintf("Storage ready at %s (%d users)", dir, users))
}
