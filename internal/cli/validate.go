package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/gitnostr/internal/event"
	"github.com/roach88/gitnostr/internal/project"
	"github.com/roach88/gitnostr/internal/refcode"
	"github.com/roach88/gitnostr/internal/source"
)

// EventVerdict is the validation outcome of one event.
type EventVerdict struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Ref     string `json:"ref"`
	Valid   bool   `json:"valid"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool           `json:"valid"`
	Total   int            `json:"total"`
	Invalid int            `json:"invalid"`
	Events  []EventVerdict `json:"events"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <events-file>",
		Short: "Validate events without storing them",
		Long: `Validate a file of events: a JSON array, or one JSON event per line.
Use "-" to read stdin.

Each event's id is recomputed from its content and its signature is checked
against its author's key. Events of known kinds are also checked for the
tags and content their kind requires.

Exit codes:
  0 - All events valid
  1 - One or more events invalid
  2 - Command error (unreadable or undecodable file)

Examples:
  gitnostr validate events.json
  cat events.jsonl | gitnostr validate -
  gitnostr validate events.json --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	events, err := readEvents(cmd, path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInput, "failed to read events", err)
	}
	formatter.VerboseLog("Read %d event(s) from %s", len(events), path)

	result := ValidationResult{
		Valid:  true,
		Total:  len(events),
		Events: make([]EventVerdict, 0, len(events)),
	}
	validator := event.NewValidator(nil)
	for _, ev := range events {
		v := verdict(ev, validator.Validate(ev))
		if v.Valid {
			v = verdict(ev, checkStructure(ev))
		}
		if !v.Valid {
			result.Valid = false
			result.Invalid++
		}
		result.Events = append(result.Events, v)
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		for _, v := range result.Events {
			printVerdict(formatter, v)
		}
		fmt.Fprintf(formatter.Writer, "%d event(s), %d invalid\n", result.Total, result.Invalid)
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d events invalid", result.Invalid, result.Total))
	}
	return nil
}

// readEvents decodes path, or stdin for "-".
func readEvents(cmd *cobra.Command, path string) ([]event.Event, error) {
	if path == "-" {
		return source.Decode(cmd.InOrStdin())
	}
	return source.ReadFile(path)
}

// checkStructure runs the projector of ev's kind. Unknown kinds pass.
func checkStructure(ev event.Event) error {
	var err error
	switch ev.Kind {
	case event.KindRepository:
		_, err = project.Repository(ev)
	case event.KindIssue:
		_, err = project.Issue(ev)
	case event.KindIssueComment:
		_, err = project.Comment(ev)
	case event.KindIssueStatus:
		_, err = project.StatusOf(ev)
	case event.KindPatch:
		_, err = project.Patch(ev)
	case event.KindProfile:
		_, err = project.Profile(ev)
	}
	return err
}

func verdict(ev event.Event, err error) EventVerdict {
	v := EventVerdict{
		ID:    ev.ID,
		Kind:  ev.Kind.String(),
		Ref:   refcode.Format(ev.ID),
		Valid: err == nil,
	}
	if err == nil {
		return v
	}
	v.Message = err.Error()
	switch {
	case event.IsValidationError(err):
		v.Code = string(event.ValidationCode(err))
	case project.IsStructuralError(err):
		v.Code = string(project.StructuralCode(err))
	default:
		v.Code = ErrCodeInvalidEvent
	}
	return v
}

func printVerdict(f *OutputFormatter, v EventVerdict) {
	if v.Valid {
		fmt.Fprintf(f.Writer, "✓ %s %s %s\n", v.Ref, v.Kind, v.ID)
		return
	}
	fmt.Fprintf(f.Writer, "✗ %s %s %s\n", v.Ref, v.Kind, v.ID)
	fmt.Fprintf(f.Writer, "  %s\n", v.Code)
	f.VerboseLog("  %s", v.Message)
}
