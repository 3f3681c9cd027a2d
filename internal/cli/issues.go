package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewIssuesCommand creates the issues command.
func NewIssuesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "issues <repo-id>",
		Short: "List the issues of a repository",
		Long: `List the issues of a repository with their current status and
reference numbers, oldest first.

Status is resolved from updates by the issue's author and the repository's
owner only; anyone else's updates are ignored.

Examples:
  gitnostr issues 1439f6c4...
  gitnostr issues 1439f6c4... --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIssues(rootOpts, args[0], cmd)
		},
	}
}

func runIssues(opts *RootOptions, arg string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, opts, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	repoID, err := parseID(a.out, "repository", arg)
	if err != nil {
		return err
	}
	issues, err := a.engine.Issues(ctx, repoID)
	if err != nil {
		return a.fail("issues", err)
	}

	views := make([]issueView, 0, len(issues))
	for _, is := range issues {
		views = append(views, newIssueView(ctx, a.engine, is))
	}

	if a.out.Format == "json" {
		return a.out.Success(views)
	}
	if len(views) == 0 {
		fmt.Fprintln(a.out.Writer, "No issues found.")
		return nil
	}
	tw := tabwriter.NewWriter(a.out.Writer, 0, 4, 2, ' ', 0)
	for _, v := range views {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", v.Ref, v.Status, v.Title, v.AuthorName, timestamp(v.CreatedAt))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if a.out.Verbose {
		for _, v := range views {
			a.out.VerboseLog("%s %s", v.Ref, v.ID)
		}
	}
	return nil
}

// NewIssueCommand creates the issue command.
func NewIssueCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "issue <repo-id> <issue-id>",
		Short: "Show an issue and its timeline",
		Long: `Show an issue, its current status and its timeline of comments and
status changes.

Examples:
  gitnostr issue 1439f6c4... 916fd1e7...
  gitnostr issue 1439f6c4... 916fd1e7... --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIssue(rootOpts, args[0], args[1], cmd)
		},
	}
}

func runIssue(opts *RootOptions, repoArg, issueArg string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, opts, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	repoID, err := parseID(a.out, "repository", repoArg)
	if err != nil {
		return err
	}
	issueID, err := parseID(a.out, "issue", issueArg)
	if err != nil {
		return err
	}

	thread, err := a.engine.Thread(ctx, repoID, issueID)
	if err != nil {
		return a.fail("issue", err)
	}
	v := newThreadView(ctx, a.engine, thread)

	if a.out.Format == "json" {
		return a.out.Success(v)
	}

	w := a.out.Writer
	fmt.Fprintf(w, "%s %s [%s]\n", v.Issue.Ref, v.Issue.Title, v.Issue.Status)
	fmt.Fprintf(w, "  id:         %s\n", v.Issue.ID)
	if v.Repository != nil {
		fmt.Fprintf(w, "  repository: %s %s\n", v.Repository.Ref, v.Repository.Name)
	} else {
		fmt.Fprintf(w, "  repository: unknown\n")
	}
	fmt.Fprintf(w, "  author:     %s\n", v.Issue.AuthorName)
	fmt.Fprintf(w, "  created:    %s\n", timestamp(v.Issue.CreatedAt))
	if body := strings.TrimSpace(v.Issue.Content); body != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, indent(body, "  "))
	}

	if len(v.Timeline) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	for _, e := range v.Timeline {
		switch e.Type {
		case "comment":
			fmt.Fprintf(w, "%s  %s commented:\n", timestamp(e.CreatedAt), e.AuthorName)
			fmt.Fprintln(w, indent(e.Text, "    "))
		case "status":
			fmt.Fprintf(w, "%s  %s set status to %s\n", timestamp(e.CreatedAt), e.AuthorName, e.Status)
		}
	}
	return nil
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
