package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/routines/internal/codec"
	"github.com/roach88/routines/internal/journal"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Document string
	Limit    int
}

// HistoryList is the output form of history.
type HistoryList []journal.Entry

func (l HistoryList) WriteText(w io.Writer) {
	if len(l) == 0 {
		fmt.Fprintln(w, "No flushes recorded.")
		return
	}
	for _, e := range l {
		fmt.Fprintf(w, "%6d  %s  %-12s  %6d bytes  %s\n",
			e.Seq, time.Unix(e.WrittenAt, 0).UTC().Format(time.RFC3339), e.Document, e.Size, e.Hash[:12])
	}
}

// HistoryEntry is the output form of history show.
type HistoryEntry struct {
	journal.Entry
	Content string `json:"content"`
}

func (e HistoryEntry) WriteText(w io.Writer) {
	fmt.Fprintln(w, e.Content)
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded document flushes",
		Long: `List the document versions recorded in the storage journal, newest
first. Flushes are recorded when the journal is enabled (journal: true in
the config file or ROUTINES_JOURNAL=true).

Examples:
  routinectl history --document routines.cfg --limit 5
  routinectl history show 12`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Document, "document", "", "only this document (index.cfg|routines.cfg)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum entries, 0 for all")

	cmd.AddCommand(newHistoryShowCommand(rootOpts))
	return cmd
}

// openJournal opens the journal of the storage directory without locking
// the directory. A missing journal is an error.
func openJournal(opts *RootOptions) (*journal.Journal, error) {
	dir, err := opts.storageDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, journal.FileName)
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, ErrCodeStorage, "no journal in "+dir, err)
	}
	j, err := journal.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, ErrCodeStorage, "failed to open journal", err)
	}
	return j, nil
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	doc := codec.Document(opts.Document)
	switch doc {
	case "", codec.DocIndex, codec.DocRoutines:
	default:
		return NewExitError(ExitCommandError, ErrCodeInput, fmt.Sprintf("unknown document %q", opts.Document))
	}

	j, err := openJournal(opts.RootOptions)
	if err != nil {
		return err
	}
	defer j.Close()

	entries, err := j.List(context.Background(), doc, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, ErrCodeStorage, "failed to read journal", err)
	}
	return opts.formatter(cmd).Success(HistoryList(entries))
}

func newHistoryShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <seq>",
		Short:         "Print a recorded document version",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return WrapExitError(ExitCommandError, ErrCodeInput, "invalid sequence number", err)
			}

			j, err := openJournal(rootOpts)
			if err != nil {
				return err
			}
			defer j.Close()

			e, err := j.Get(context.Background(), seq)
			if errors.Is(err, journal.ErrNotFound) {
				return NewExitError(ExitFailure, ErrCodeNotFound, fmt.Sprintf("no journal entry %d", seq))
			}
			if err != nil {
				return WrapExitError(ExitCommandError, ErrCodeStorage, "failed to read journal", err)
			}
			return rootOpts.formatter(cmd).Success(HistoryEntry{Entry: e, Content: string(e.Content)})
		},
	}
}
