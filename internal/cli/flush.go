package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/routines/internal/schedule"
)

// NewFlushCommand creates the flush command.
func NewFlushCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "flush",
		Short: "Rewrite both storage documents",
		Long: `Load the storage directory and write both documents back in
canonical form. Useful after editing the files by hand: loading validates
them, writing normalizes key order and drops unknown fields.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := rootOpts.storageDir()
			if err != nil {
				return err
			}

			// Detaching and re-adopting the directory write-only keeps the
			// loaded state and marks both documents dirty.
			err = rootOpts.withStore(func(st *schedule.Store) error {
				if err := st.Connect("", true); err != nil {
					return connectError(err)
				}
				if err := st.Connect(dir, true); err != nil {
					return connectError(err)
				}
				return nil
			})
			if err != nil {
				return err
			}
			return rootOpts.formatter(cmd).Success("Flushed " + dir)
		},
	}
}
