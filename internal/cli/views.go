package cli

import (
	"context"
	"time"

	"github.com/roach88/gitnostr/internal/engine"
	"github.com/roach88/gitnostr/internal/project"
	"github.com/roach88/gitnostr/internal/refcode"
)

// Views add what the CLI shows next to a record: its reference number and
// the display name of its author.

type repositoryView struct {
	project.RepositoryRecord
	Ref       string `json:"ref"`
	OwnerName string `json:"owner_name"`
}

type issueView struct {
	project.IssueRecord
	Ref        string `json:"ref"`
	AuthorName string `json:"author_name"`
}

type patchView struct {
	project.PatchRecord
	Ref        string `json:"ref"`
	AuthorName string `json:"author_name"`
}

type timelineEntry struct {
	Type       string `json:"type"` // "comment" | "status"
	ID         string `json:"id"`
	Author     string `json:"author"`
	AuthorName string `json:"author_name"`
	CreatedAt  int64  `json:"created_at"`
	Text       string `json:"text,omitempty"`
	Status     string `json:"status,omitempty"`
}

type threadView struct {
	Repository *repositoryView `json:"repository,omitempty"`
	Issue      issueView       `json:"issue"`
	Timeline   []timelineEntry `json:"timeline"`
}

func newRepositoryView(ctx context.Context, e *engine.Engine, r project.RepositoryRecord) repositoryView {
	return repositoryView{
		RepositoryRecord: r,
		Ref:              refcode.Format(r.ID),
		OwnerName:        e.Display(ctx, r.Owner),
	}
}

func newIssueView(ctx context.Context, e *engine.Engine, is project.IssueRecord) issueView {
	return issueView{
		IssueRecord: is,
		Ref:         refcode.Format(is.ID),
		AuthorName:  e.Display(ctx, is.Author),
	}
}

func newPatchView(ctx context.Context, e *engine.Engine, p project.PatchRecord) patchView {
	return patchView{
		PatchRecord: p,
		Ref:         refcode.Format(p.ID),
		AuthorName:  e.Display(ctx, p.Author),
	}
}

func newThreadView(ctx context.Context, e *engine.Engine, th engine.Thread) threadView {
	v := threadView{
		Issue:    newIssueView(ctx, e, th.Issue),
		Timeline: make([]timelineEntry, 0, len(th.Timeline)),
	}
	if th.Repository != nil {
		repo := newRepositoryView(ctx, e, *th.Repository)
		v.Repository = &repo
	}
	for _, r := range th.Timeline {
		entry := timelineEntry{
			ID:         r.EventID(),
			Author:     r.Attribution(),
			AuthorName: e.Display(ctx, r.Attribution()),
			CreatedAt:  r.Timestamp(),
		}
		switch x := r.(type) {
		case project.IssueComment:
			entry.Type = "comment"
			entry.Text = x.Text
		case project.StatusUpdate:
			entry.Type = "status"
			entry.Status = x.Status.String()
		}
		v.Timeline = append(v.Timeline, entry)
	}
	return v
}

// timestamp renders created_at for text output.
func timestamp(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04")
}
