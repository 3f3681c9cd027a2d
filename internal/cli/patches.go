package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// PatchesOptions holds flags for the patches command.
type PatchesOptions struct {
	*RootOptions
	Diff bool // print each diff in text output
}

// NewPatchesCommand creates the patches command.
func NewPatchesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PatchesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "patches <repo-id>",
		Short: "List the patches submitted to a repository",
		Long: `List patch submissions, oldest first. Resubmitting under the same name
adds another entry; nothing is merged.

Examples:
  gitnostr patches 1439f6c4...
  gitnostr patches 1439f6c4... --diff`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatches(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Diff, "diff", false, "include each diff in text output")

	return cmd
}

func runPatches(opts *PatchesOptions, arg string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	repoID, err := parseID(a.out, "repository", arg)
	if err != nil {
		return err
	}
	patches, err := a.engine.Patches(ctx, repoID)
	if err != nil {
		return a.fail("patches", err)
	}

	views := make([]patchView, 0, len(patches))
	for _, p := range patches {
		views = append(views, newPatchView(ctx, a.engine, p))
	}

	if a.out.Format == "json" {
		return a.out.Success(views)
	}
	if len(views) == 0 {
		fmt.Fprintln(a.out.Writer, "No patches found.")
		return nil
	}
	w := a.out.Writer
	for i, v := range views {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s %s\n", v.Ref, v.Name)
		fmt.Fprintf(w, "  id:      %s\n", v.ID)
		fmt.Fprintf(w, "  author:  %s\n", v.AuthorName)
		fmt.Fprintf(w, "  created: %s\n", timestamp(v.CreatedAt))
		if v.Description != "" {
			fmt.Fprintf(w, "  %s\n", v.Description)
		}
		if opts.Diff {
			fmt.Fprintln(w)
			fmt.Fprint(w, v.Diff)
			if len(v.Diff) > 0 && v.Diff[len(v.Diff)-1] != '\n' {
				fmt.Fprintln(w)
			}
		}
	}
	return nil
}
