package project

import (
	"github.com/roach88/gitnostr/internal/event"
)

// Issue builds the base record from a creating event. A missing title
// invalidates the whole issue. The returned Status is always Open; use
// ResolveStatus to derive the real one.
func Issue(ev event.Event) (IssueRecord, error) {
	if err := checkKind(ev, event.KindIssue); err != nil {
		return IssueRecord{}, err
	}
	tags := event.IndexTags(ev.Tags)
	title, ok := tags.Value(event.TagName)
	if !ok {
		return IssueRecord{}, structural(ErrCodeMissingTitle, ev.ID, "issue has no title tag")
	}
	repo, _ := tags.Value(event.TagRef)
	return IssueRecord{
		ID:         ev.ID,
		Repository: repo,
		Author:     ev.PubKey,
		CreatedAt:  ev.CreatedAt,
		Title:      title,
		Content:    ev.Content,
		Status:     StatusOpen,
	}, nil
}

// Issues projects the issues of repoID, ordered by (created_at, id).
// An issue belongs to repoID when any of its ref tags points there; issues
// referencing only other repositories are skipped silently.
func Issues(repoID string, events []event.Event) ([]IssueRecord, []event.Exclusion) {
	out := []IssueRecord{}
	var excluded []event.Exclusion
	for _, ev := range ofKind(events, event.KindIssue) {
		rec, err := Issue(ev)
		if err != nil {
			if ev.References(repoID) {
				excluded = exclude(excluded, ev.ID, err)
			}
			continue
		}
		if !ev.References(repoID) {
			continue
		}
		rec.Repository = repoID
		out = append(out, rec)
	}
	byTime(out, func(r IssueRecord) (int64, string) { return r.CreatedAt, r.ID })
	return out, event.SortExclusions(excluded)
}

// Comment builds a comment record. The event must reference an issue.
func Comment(ev event.Event) (IssueComment, error) {
	if err := checkKind(ev, event.KindIssueComment); err != nil {
		return IssueComment{}, err
	}
	issue, ok := event.IndexTags(ev.Tags).Value(event.TagRef)
	if !ok {
		return IssueComment{}, structural(ErrCodeMissingReference, ev.ID, "comment references no issue")
	}
	return IssueComment{
		ID:        ev.ID,
		Issue:     issue,
		Author:    ev.PubKey,
		CreatedAt: ev.CreatedAt,
		Text:      ev.Content,
	}, nil
}

// Comments projects every comment on issueID regardless of author,
// ordered by (created_at, id). A comment with several ref tags belongs to
// each issue it references.
func Comments(issueID string, events []event.Event) ([]IssueComment, []event.Exclusion) {
	out := []IssueComment{}
	var excluded []event.Exclusion
	for _, ev := range ofKind(events, event.KindIssueComment) {
		c, err := Comment(ev)
		if err != nil {
			excluded = exclude(excluded, ev.ID, err)
			continue
		}
		if ev.References(issueID) {
			c.Issue = issueID
			out = append(out, c)
		}
	}
	byTime(out, func(c IssueComment) (int64, string) { return c.CreatedAt, c.ID })
	return out, event.SortExclusions(excluded)
}

// StatusOf builds a status update record. The event must reference an issue
// and its content must name a known status.
func StatusOf(ev event.Event) (StatusUpdate, error) {
	if err := checkKind(ev, event.KindIssueStatus); err != nil {
		return StatusUpdate{}, err
	}
	issue, ok := event.IndexTags(ev.Tags).Value(event.TagRef)
	if !ok {
		return StatusUpdate{}, structural(ErrCodeMissingReference, ev.ID, "status update references no issue")
	}
	st, err := ParseStatus(ev.Content)
	if err != nil {
		return StatusUpdate{}, structural(ErrCodeMalformedContent, ev.ID, "%v", err)
	}
	return StatusUpdate{
		ID:        ev.ID,
		Issue:     issue,
		Author:    ev.PubKey,
		CreatedAt: ev.CreatedAt,
		Status:    st,
	}, nil
}

// StatusUpdates returns the status updates on issueID whose authors policy
// allows, ordered by (created_at, id). Updates by anyone else are reported
// as ReasonUnauthorized exclusions.
//
// The policy is enforced here even when the events were fetched with an
// author filter: a source is free to ignore the filter.
func StatusUpdates(issueID string, events []event.Event, policy Policy) ([]StatusUpdate, []event.Exclusion) {
	out := []StatusUpdate{}
	var excluded []event.Exclusion
	for _, ev := range ofKind(events, event.KindIssueStatus) {
		u, err := StatusOf(ev)
		if err != nil {
			if ev.References(issueID) || StructuralCode(err) == ErrCodeMissingReference {
				excluded = exclude(excluded, ev.ID, err)
			}
			continue
		}
		if !ev.References(issueID) {
			continue
		}
		u.Issue = issueID
		if !policy.Allows(u.Author) {
			excluded = append(excluded, event.Exclusion{EventID: u.ID, Reason: ReasonUnauthorized})
			continue
		}
		out = append(out, u)
	}
	byTime(out, func(u StatusUpdate) (int64, string) { return u.CreatedAt, u.ID })
	return out, event.SortExclusions(excluded)
}

// ResolveStatus derives the current status of issueID: the status of the
// latest authorized update by (created_at, id), or Open when there is none.
// There is no transition graph; any authorized update may move the issue to
// any status.
func ResolveStatus(issueID string, events []event.Event, policy Policy) Status {
	updates, _ := StatusUpdates(issueID, events, policy)
	if len(updates) == 0 {
		return StatusOpen
	}
	return updates[len(updates)-1].Status
}

// Timeline interleaves the comments on issueID with its authorized status
// updates, ordered by (created_at, id). Unauthorized status updates are
// dropped; unauthorized comments do not exist.
func Timeline(issueID string, events []event.Event, policy Policy) []Response {
	comments, _ := Comments(issueID, events)
	updates, _ := StatusUpdates(issueID, events, policy)

	out := make([]Response, 0, len(comments)+len(updates))
	for _, c := range comments {
		out = append(out, c)
	}
	for _, u := range updates {
		out = append(out, u)
	}
	byTime(out, func(r Response) (int64, string) { return r.Timestamp(), r.EventID() })
	return out
}
