package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/routines/internal/model"
	"github.com/roach88/routines/internal/schedule"
)

// UserOptions holds flags for the user subcommands.
type UserOptions struct {
	*RootOptions
	Nickname       string
	Admin          bool
	Theme          string
	Timeline       bool
	VerifyIdentity bool
}

// NewUserCommand creates the user command group.
func NewUserCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	cmd.AddCommand(newUserAddCommand(rootOpts))
	cmd.AddCommand(newUserListCommand(rootOpts))
	cmd.AddCommand(newUserShowCommand(rootOpts))
	cmd.AddCommand(newUserUpdateCommand(rootOpts))
	cmd.AddCommand(newUserRemoveCommand(rootOpts))
	return cmd
}

func newUserAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UserOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a user",
		Long: `Create a user with default preferences. Names are ASCII letters and
digits and must be unique.

Example:
  routinectl user add alice --nickname Alice`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			nickname := opts.Nickname
			if nickname == "" {
				nickname = args[0]
			}
			return opts.withStore(func(st *schedule.Store) error {
				u, ok := st.CreateUser(args[0], nickname, opts.Admin)
				if !ok {
					return NewExitError(ExitFailure, ErrCodeRejected,
						fmt.Sprintf("cannot create user %q: name taken or not alphanumeric", args[0]))
				}
				return opts.formatter(cmd).Success(newUserView(u))
			})
		},
	}

	cmd.Flags().StringVar(&opts.Nickname, "nickname", "", "display name (defaults to the name)")
	cmd.Flags().BoolVar(&opts.Admin, "admin", false, "grant admin rights")
	return cmd
}

func newUserListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List users",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(func(st *schedule.Store) error {
				users := st.Users()
				list := make(UserList, len(users))
				for i, u := range users {
					list[i] = newUserView(u)
				}
				return rootOpts.formatter(cmd).Success(list)
			})
		},
	}
}

func newUserShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <name>",
		Short:         "Show a user",
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
				n := len(routines)
				v := newUserView(u)
				v.Routines = &n
				return rootOpts.formatter(cmd).Success(v)
			})
		},
	}
}

func newUserUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UserOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Change a user's nickname, admin flag or preferences",
		Long: `Change a user's nickname, admin flag or preferences. Only the flags
given are applied; the name never changes.

Example:
  routinectl user update alice --theme dark --timeline=false`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(func(st *schedule.Store) error {
				u, err := lookupUser(st, args[0])
				if err != nil {
					return err
				}

				flags := cmd.Flags()
				if flags.Changed("nickname") {
					if opts.Nickname == "" {
						return NewExitError(ExitCommandError, ErrCodeInput, "nickname must not be empty")
					}
					u.Nickname = opts.Nickname
				}
				if flags.Changed("admin") {
					u.IsAdmin = opts.Admin
				}
				if flags.Changed("theme") {
					theme, err := model.ParseTheme(opts.Theme)
					if err != nil {
						return WrapExitError(ExitCommandError, ErrCodeInput, "invalid theme", err)
					}
					u.Preferences.Theme = theme
				}
				if flags.Changed("timeline") {
					u.Preferences.DayViewPreferTimeline = opts.Timeline
				}
				if flags.Changed("verify-identity") {
					u.Preferences.VerifyIdentityBeforeLogin = opts.VerifyIdentity
				}

				if !st.UpdateUser(u) {
					return NewExitError(ExitFailure, ErrCodeRejected, fmt.Sprintf("cannot update user %q", args[0]))
				}
				return opts.formatter(cmd).Success(newUserView(u))
			})
		},
	}

	cmd.Flags().StringVar(&opts.Nickname, "nickname", "", "display name")
	cmd.Flags().BoolVar(&opts.Admin, "admin", false, "admin rights")
	cmd.Flags().StringVar(&opts.Theme, "theme", "", "color theme (system|light|dark)")
	cmd.Flags().BoolVar(&opts.Timeline, "timeline", true, "prefer the timeline day view")
	cmd.Flags().BoolVar(&opts.VerifyIdentity, "verify-identity", false, "verify identity before login")
	return cmd
}

func newUserRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "remove <name>",
		Short:         "Remove a user and all of its routines",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(func(st *schedule.Store) error {
				u, err := lookupUser(st, args[0])
				if err != nil {
					return err
				}
				st.RemoveUser(u.ID)
				f := rootOpts.formatter(cmd)
				if f.Format == "json" {
					return f.Success(map[string]string{"removed": u.ID.String()})
				}
				return f.Success(fmt.Sprintf("Removed user %s", u.Name))
			})
		},
	}
}

func lookupUser(st *schedule.Store, name string) (model.User, error) {
	u, ok := st.LookupUserByName(name)
	if !ok {
		return model.User{}, NewExitError(ExitFailure, ErrCodeNotFound, fmt.Sprintf("unknown user %q", name))
	}
	return u, nil
}
