package engine

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/gitnostr/internal/event"
	"github.com/roach88/gitnostr/internal/project"
)

// Thread is an issue together with its merged timeline.
type Thread struct {
	Repository *project.RepositoryRecord
	Issue      project.IssueRecord
	Timeline   []project.Response
}

// repoOwner looks up the owner of repoID. An unknown repository is not an
// error: the issue's author alone may then set its status.
func (e *Engine) repoOwner(ctx context.Context, repoID string) (*project.RepositoryRecord, error) {
	repo, err := e.Repository(ctx, repoID)
	if IsNotFound(err) {
		e.logger.DebugContext(ctx, "repository not found, owner unknown", "repository", repoID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &repo, nil
}

func owner(repo *project.RepositoryRecord) string {
	if repo == nil {
		return ""
	}
	return repo.Owner
}

// statusFilter narrows a status query to the authors every policy admits.
// ok is false when no author could possibly be admitted, in which case there
// is nothing to fetch.
func statusFilter(issueIDs []string, policies []project.Policy) (f event.Filter, ok bool) {
	f = event.Filter{
		Kinds: []event.Kind{event.KindIssueStatus},
		Refs:  issueIDs,
	}
	var authors []string
	for _, p := range policies {
		set, enumerable := p.(project.AuthorSet)
		if !enumerable {
			// Cannot narrow; fetch everything and rely on the local check.
			return f, true
		}
		authors = append(authors, set.Authors()...)
	}
	slices.Sort(authors)
	f.Authors = slices.Compact(authors)
	return f, len(f.Authors) > 0
}

// Issues lists the issues of repoID, each with its resolved status.
func (e *Engine) Issues(ctx context.Context, repoID string) ([]project.IssueRecord, error) {
	repo, err := e.repoOwner(ctx, repoID)
	if err != nil {
		return nil, err
	}

	evs, err := e.fetch(ctx, "issues", event.Filter{
		Kinds: []event.Kind{event.KindIssue},
		Refs:  []string{repoID},
	})
	if err != nil {
		return nil, err
	}
	issues, excluded := project.Issues(repoID, evs)
	e.excluded(ctx, "issues", excluded)
	if len(issues) == 0 {
		return issues, nil
	}

	ids := make([]string, len(issues))
	policies := make([]project.Policy, len(issues))
	for i, is := range issues {
		ids[i] = is.ID
		policies[i] = e.policy(is, owner(repo))
	}

	var statuses []event.Event
	if f, ok := statusFilter(ids, policies); ok {
		statuses, err = e.fetch(ctx, "issue statuses", f)
		if err != nil {
			return nil, err
		}
	}
	authors := make([]string, 0, len(issues))
	for i := range issues {
		issues[i].Status = project.ResolveStatus(issues[i].ID, statuses, policies[i])
		authors = append(authors, issues[i].Author)
	}
	e.enrich(ctx, authors)

	e.metrics.IncrementProjection("issues")
	e.logger.InfoContext(ctx, "issues projected",
		"repository", repoID,
		"count", len(issues),
		"excluded", len(excluded),
	)
	return issues, nil
}

// issue fetches the creating event of issueID. When repoID is non-empty the
// issue must belong to it.
func (e *Engine) issue(ctx context.Context, repoID, issueID string) (project.IssueRecord, error) {
	evs, err := e.fetch(ctx, "issue", event.Filter{
		IDs:   []string{issueID},
		Kinds: []event.Kind{event.KindIssue},
	})
	if err != nil {
		return project.IssueRecord{}, err
	}
	for _, ev := range evs {
		if ev.ID != issueID {
			continue
		}
		rec, err := project.Issue(ev)
		if err != nil {
			e.excluded(ctx, "issue", []event.Exclusion{{EventID: ev.ID, Reason: string(project.StructuralCode(err))}})
			break
		}
		if repoID != "" {
			if !ev.References(repoID) {
				break
			}
			rec.Repository = repoID
		}
		return rec, nil
	}
	return project.IssueRecord{}, fmt.Errorf("issue %s: %w", issueID, ErrNotFound)
}

// statusEvents fetches the status updates of issueID that policy could admit.
func (e *Engine) statusEvents(ctx context.Context, issueID string, policy project.Policy) ([]event.Event, error) {
	f, ok := statusFilter([]string{issueID}, []project.Policy{policy})
	if !ok {
		return nil, nil
	}
	return e.fetch(ctx, "issue statuses", f)
}

// Issue returns one issue of repoID with its resolved status.
func (e *Engine) Issue(ctx context.Context, repoID, issueID string) (project.IssueRecord, error) {
	rec, err := e.issue(ctx, repoID, issueID)
	if err != nil {
		return project.IssueRecord{}, err
	}
	repo, err := e.repoOwner(ctx, rec.Repository)
	if err != nil {
		return project.IssueRecord{}, err
	}
	rec.Status, err = e.IssueStatus(ctx, rec, owner(repo))
	if err != nil {
		return project.IssueRecord{}, err
	}
	e.enrich(ctx, []string{rec.Author})
	e.metrics.IncrementProjection("issue")
	return rec, nil
}

// IssueStatus resolves the current status of issue, given its repository's
// owner.
func (e *Engine) IssueStatus(ctx context.Context, issue project.IssueRecord, repoOwner string) (project.Status, error) {
	policy := e.policy(issue, repoOwner)
	evs, err := e.statusEvents(ctx, issue.ID, policy)
	if err != nil {
		return project.StatusOpen, err
	}
	_, excluded := project.StatusUpdates(issue.ID, evs, policy)
	e.excluded(ctx, "issue status", excluded)
	return project.ResolveStatus(issue.ID, evs, policy), nil
}

// Comments lists every comment on issueID, by any author.
func (e *Engine) Comments(ctx context.Context, issueID string) ([]project.IssueComment, error) {
	evs, err := e.fetch(ctx, "comments", event.Filter{
		Kinds: []event.Kind{event.KindIssueComment},
		Refs:  []string{issueID},
	})
	if err != nil {
		return nil, err
	}
	comments, excluded := project.Comments(issueID, evs)
	e.excluded(ctx, "comments", excluded)

	authors := make([]string, len(comments))
	for i, c := range comments {
		authors[i] = c.Author
	}
	e.enrich(ctx, authors)
	e.metrics.IncrementProjection("comments")
	return comments, nil
}

// Thread returns an issue of repoID, its status and its merged timeline of
// comments and authorized status updates.
func (e *Engine) Thread(ctx context.Context, repoID, issueID string) (Thread, error) {
	rec, err := e.issue(ctx, repoID, issueID)
	if err != nil {
		return Thread{}, err
	}
	repo, err := e.repoOwner(ctx, rec.Repository)
	if err != nil {
		return Thread{}, err
	}
	policy := e.policy(rec, owner(repo))

	comments, err := e.fetch(ctx, "comments", event.Filter{
		Kinds: []event.Kind{event.KindIssueComment},
		Refs:  []string{issueID},
	})
	if err != nil {
		return Thread{}, err
	}
	statuses, err := e.statusEvents(ctx, issueID, policy)
	if err != nil {
		return Thread{}, err
	}

	all := append(comments, statuses...)
	rec.Status = project.ResolveStatus(issueID, all, policy)
	timeline := project.Timeline(issueID, all, policy)

	authors := []string{rec.Author}
	for _, r := range timeline {
		authors = append(authors, r.Attribution())
	}
	e.enrich(ctx, authors)

	e.metrics.IncrementProjection("thread")
	e.logger.InfoContext(ctx, "thread projected",
		"issue", issueID,
		"status", rec.Status.String(),
		"responses", len(timeline),
	)
	return Thread{Repository: repo, Issue: rec, Timeline: timeline}, nil
}
