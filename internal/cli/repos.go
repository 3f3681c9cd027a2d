package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/gitnostr/internal/keys"
)

// ReposOptions holds flags for the repos command.
type ReposOptions struct {
	*RootOptions
	Authors []string // hex or npub; empty lists everyone
}

// NewReposCommand creates the repos command.
func NewReposCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReposOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "repos",
		Short: "List repositories",
		Long: `List repository announcements, oldest first.

Announcements are never merged: an owner announcing the same name twice
shows up twice.

Examples:
  gitnostr repos
  gitnostr repos --author npub1... --author 04918dfc...
  gitnostr repos --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepos(opts, cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Authors, "author", nil, "only repositories by this key (repeatable)")

	return cmd
}

func runRepos(opts *ReposOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	authors := make([]string, 0, len(opts.Authors))
	for _, s := range opts.Authors {
		pk, err := keys.ParsePublicKey(s)
		if err != nil {
			return a.out.Fail(ExitCommandError, ErrCodeInput, fmt.Sprintf("invalid author %q", s), err)
		}
		authors = append(authors, pk)
	}

	repos, err := a.engine.Repositories(ctx, authors)
	if err != nil {
		return a.fail("repositories", err)
	}

	views := make([]repositoryView, 0, len(repos))
	for _, r := range repos {
		views = append(views, newRepositoryView(ctx, a.engine, r))
	}

	if a.out.Format == "json" {
		return a.out.Success(views)
	}
	if len(views) == 0 {
		fmt.Fprintln(a.out.Writer, "No repositories found.")
		return nil
	}
	for i, v := range views {
		if i > 0 {
			fmt.Fprintln(a.out.Writer)
		}
		printRepository(a.out.Writer, v)
	}
	return nil
}

// NewRepoCommand creates the repo command.
func NewRepoCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repo <repo-id>",
		Short: "Show one repository",
		Long: `Show one repository announcement by event id.

Examples:
  gitnostr repo 1439f6c4...
  gitnostr repo 1439f6c4... --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepo(rootOpts, args[0], cmd)
		},
	}
}

func runRepo(opts *RootOptions, arg string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, opts, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := parseID(a.out, "repository", arg)
	if err != nil {
		return err
	}
	repo, err := a.engine.Repository(ctx, id)
	if err != nil {
		return a.fail("repository", err)
	}

	v := newRepositoryView(ctx, a.engine, repo)
	if a.out.Format == "json" {
		return a.out.Success(v)
	}
	printRepository(a.out.Writer, v)
	return nil
}

func printRepository(w io.Writer, v repositoryView) {
	fmt.Fprintf(w, "%s %s\n", v.Ref, v.Name)
	fmt.Fprintf(w, "  id:       %s\n", v.ID)
	fmt.Fprintf(w, "  owner:    %s\n", v.OwnerName)
	fmt.Fprintf(w, "  location: %s\n", v.Location)
	fmt.Fprintf(w, "  created:  %s\n", timestamp(v.CreatedAt))
	if v.Description != "" {
		fmt.Fprintf(w, "  %s\n", v.Description)
	}
}
