package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/gitnostr/internal/event"
)

// ImportResult summarizes an import.
type ImportResult struct {
	Read     int            `json:"read"`
	Imported int            `json:"imported"` // new to the replica
	Known    int            `json:"known"`    // already present
	Rejected []EventVerdict `json:"rejected"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <events-file>",
		Short: "Validate events and add them to the local replica",
		Long: `Validate a file of events and append the valid ones to the local
replica. Events already present are skipped. Use "-" to read stdin.

Events are stored as signed even when their tags are unusable for their
kind; projection decides what to show.

Exit codes:
  0 - Every event was valid
  1 - One or more events were rejected (the rest were imported)
  2 - Command error

Examples:
  gitnostr import events.json
  gitnostr import - < relay-dump.jsonl`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(rootOpts, args[0], cmd)
		},
	}
}

func runImport(opts *RootOptions, path string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, opts, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	events, err := readEvents(cmd, path)
	if err != nil {
		return a.out.Fail(ExitCommandError, ErrCodeInput, "failed to read events", err)
	}

	before, err := a.store.Count(ctx)
	if err != nil {
		return a.out.Fail(ExitCommandError, ErrCodeStore, "failed to count events", err)
	}

	result := ImportResult{Read: len(events), Rejected: []EventVerdict{}}
	for _, ev := range events {
		err := a.engine.Publish(ctx, ev)
		if event.IsValidationError(err) {
			result.Rejected = append(result.Rejected, verdict(ev, err))
			continue
		}
		if err != nil {
			return a.out.Fail(ExitCommandError, ErrCodeStore, "failed to store event", err)
		}
	}

	after, err := a.store.Count(ctx)
	if err != nil {
		return a.out.Fail(ExitCommandError, ErrCodeStore, "failed to count events", err)
	}
	result.Imported = after - before
	result.Known = result.Read - len(result.Rejected) - result.Imported

	if a.out.Format == "json" {
		if err := a.out.Success(result); err != nil {
			return err
		}
	} else {
		for _, v := range result.Rejected {
			printVerdict(a.out, v)
		}
		fmt.Fprintf(a.out.Writer, "%d read, %d imported, %d already known, %d rejected\n",
			result.Read, result.Imported, result.Known, len(result.Rejected))
	}

	if len(result.Rejected) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d events rejected", len(result.Rejected), result.Read))
	}
	return nil
}
