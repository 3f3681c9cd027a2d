package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/gitnostr/internal/event"
	"github.com/roach88/gitnostr/internal/project"
	"github.com/roach88/gitnostr/internal/refcode"
)

// PublishedEvent is one event created by a publish subcommand.
type PublishedEvent struct {
	ID        string `json:"id"`
	Ref       string `json:"ref"`
	Kind      string `json:"kind"`
	CreatedAt int64  `json:"created_at"`
}

// PublishOptions holds the flags shared by the publish subcommands.
type PublishOptions struct {
	*RootOptions
	Name        string
	Location    string
	Description string
	Title       string
	Body        string
	Text        string
	Comment     string
	Completed   bool
	File        string
}

// NewPublishCommand creates the publish command and its subcommands.
func NewPublishCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Sign and publish repositories, issues, comments and patches",
		Long: `Sign new events with the configured secret key and add them to the local
replica.

The key is read from secret_key in the config file or GITNOSTR_SECRET_KEY,
as hex or nsec.

Examples:
  gitnostr publish repo --name gitnostr --location https://example.com/gitnostr.git
  gitnostr publish issue 1439f6c4... --title "Crash on empty tag" --body "..."
  gitnostr publish close 916fd1e7... --completed --comment "Fixed in abc123"
  git format-patch -1 --stdout | gitnostr publish patch 1439f6c4... --name fix --file -`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newPublishRepoCommand(rootOpts),
		newPublishIssueCommand(rootOpts),
		newPublishCommentCommand(rootOpts),
		newPublishCloseCommand(rootOpts),
		newPublishReopenCommand(rootOpts),
		newPublishPatchCommand(rootOpts),
		newPublishProfileCommand(rootOpts),
	)
	return cmd
}

func newPublishRepoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PublishOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:           "repo",
		Short:         "Announce a repository",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(opts.RootOptions, cmd, func(out *OutputFormatter) ([]event.Draft, error) {
				d, err := project.NewRepository(opts.Name, opts.Location, opts.Description)
				return one(out, d, err)
			})
		},
	}
	cmd.Flags().StringVar(&opts.Name, "name", "", "repository name")
	cmd.Flags().StringVar(&opts.Location, "location", "", "clone URL")
	cmd.Flags().StringVar(&opts.Description, "description", "", "short description")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("location")
	return cmd
}

func newPublishIssueCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PublishOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:           "issue <repo-id>",
		Short:         "Open an issue against a repository",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(opts.RootOptions, cmd, func(out *OutputFormatter) ([]event.Draft, error) {
				repoID, err := parseID(out, "repository", args[0])
				if err != nil {
					return nil, err
				}
				d, err := project.NewIssue(repoID, opts.Title, opts.Body)
				return one(out, d, err)
			})
		},
	}
	cmd.Flags().StringVar(&opts.Title, "title", "", "issue title")
	cmd.Flags().StringVar(&opts.Body, "body", "", "issue body")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newPublishCommentCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PublishOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:           "comment <issue-id>",
		Short:         "Comment on an issue",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(opts.RootOptions, cmd, func(out *OutputFormatter) ([]event.Draft, error) {
				issueID, err := parseID(out, "issue", args[0])
				if err != nil {
					return nil, err
				}
				d, err := project.NewComment(issueID, opts.Text)
				return one(out, d, err)
			})
		},
	}
	cmd.Flags().StringVar(&opts.Text, "text", "", "comment text")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

func newPublishCloseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PublishOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "close <issue-id>",
		Short: "Close an issue",
		Long: `Close an issue. With --comment the comment is published first, one second
before the status change. Only the issue's author and the repository's owner
can change its status.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(opts.RootOptions, cmd, func(out *OutputFormatter) ([]event.Draft, error) {
				issueID, err := parseID(out, "issue", args[0])
				if err != nil {
					return nil, err
				}
				return project.CloseIssue(issueID, opts.Completed, opts.Comment), nil
			})
		},
	}
	cmd.Flags().BoolVar(&opts.Completed, "completed", false, "mark the issue as completed rather than just closed")
	cmd.Flags().StringVar(&opts.Comment, "comment", "", "comment to publish before closing")
	return cmd
}

func newPublishReopenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PublishOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:           "reopen <issue-id>",
		Short:         "Reopen an issue",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(opts.RootOptions, cmd, func(out *OutputFormatter) ([]event.Draft, error) {
				issueID, err := parseID(out, "issue", args[0])
				if err != nil {
					return nil, err
				}
				return project.ReopenIssue(issueID, opts.Comment), nil
			})
		},
	}
	cmd.Flags().StringVar(&opts.Comment, "comment", "", "comment to publish before reopening")
	return cmd
}

func newPublishPatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PublishOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:           "patch <repo-id>",
		Short:         "Submit a patch to a repository",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(opts.RootOptions, cmd, func(out *OutputFormatter) ([]event.Draft, error) {
				repoID, err := parseID(out, "repository", args[0])
				if err != nil {
					return nil, err
				}
				diff, err := readDiff(cmd, opts.File)
				if err != nil {
					return nil, out.Fail(ExitCommandError, ErrCodeInput, "failed to read patch", err)
				}
				d, err := project.NewPatch(repoID, opts.Name, opts.Description, diff)
				return one(out, d, err)
			})
		},
	}
	cmd.Flags().StringVar(&opts.Name, "name", "", "patch name")
	cmd.Flags().StringVar(&opts.Description, "description", "", "what the patch does")
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", `diff file, or "-" for stdin`)
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newPublishProfileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PublishOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:           "profile",
		Short:         "Publish the display name shown next to your events",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(opts.RootOptions, cmd, func(out *OutputFormatter) ([]event.Draft, error) {
				return []event.Draft{project.NewProfile(opts.Name)}, nil
			})
		},
	}
	cmd.Flags().StringVar(&opts.Name, "name", "", "display name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

// one wraps a single draft, reporting a construction error as bad input.
func one(out *OutputFormatter, d event.Draft, err error) ([]event.Draft, error) {
	if err != nil {
		return nil, out.Fail(ExitCommandError, ErrCodeInput, "invalid input", err)
	}
	return []event.Draft{d}, nil
}

func readDiff(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// runPublish signs and publishes the drafts built by build. build reports
// its own errors through out.
func runPublish(opts *RootOptions, cmd *cobra.Command, build func(out *OutputFormatter) ([]event.Draft, error)) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, opts, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	signer, err := a.signer()
	if err != nil {
		return err
	}
	drafts, err := build(a.out)
	if err != nil {
		return err
	}

	events, err := a.engine.Submit(ctx, signer, drafts...)
	published := make([]PublishedEvent, 0, len(events))
	for _, ev := range events {
		published = append(published, PublishedEvent{
			ID:        ev.ID,
			Ref:       refcode.Format(ev.ID),
			Kind:      ev.Kind.String(),
			CreatedAt: ev.CreatedAt,
		})
	}
	if err != nil {
		a.logger.Error("publish failed", "published", len(published), "error", err)
		return a.out.Fail(ExitCommandError, ErrCodeStore, "failed to publish", err)
	}

	if a.out.Format == "json" {
		return a.out.Success(published)
	}
	for _, p := range published {
		fmt.Fprintf(a.out.Writer, "%s %s %s\n", p.Ref, p.Kind, p.ID)
	}
	return nil
}
