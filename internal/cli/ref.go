package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/gitnostr/internal/refcode"
)

// RefResult is the reference number of one id.
type RefResult struct {
	ID     string `json:"id"`
	Ref    string `json:"ref"`
	Number uint32 `json:"number"`
}

// NewRefCommand creates the ref command.
func NewRefCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ref <id>...",
		Short: "Print the reference number of event ids",
		Long: `Print the short reference number shown next to issues and patches.

Reference numbers are derived from the id alone and may collide; they are
labels, not keys.

Examples:
  gitnostr ref 24f2e6...
  gitnostr ref 24f2e6... 916fd1e7... --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRef(rootOpts, args, cmd)
		},
	}
}

func runRef(opts *RootOptions, args []string, cmd *cobra.Command) error {
	out := newFormatter(opts, cmd)

	results := make([]RefResult, 0, len(args))
	for _, arg := range args {
		id := refcode.Canonical(arg)
		results = append(results, RefResult{
			ID:     id,
			Ref:    refcode.Format(id),
			Number: refcode.Encode(id),
		})
	}

	if out.Format == "json" {
		return out.Success(results)
	}
	for _, r := range results {
		if len(results) == 1 {
			fmt.Fprintln(out.Writer, r.Ref)
			continue
		}
		fmt.Fprintf(out.Writer, "%s  %s\n", r.Ref, r.ID)
	}
	return nil
}
