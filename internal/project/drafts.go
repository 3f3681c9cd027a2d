package project

import (
	"encoding/json"
	"strings"

	"github.com/roach88/gitnostr/internal/event"
)

func blank(field string) error {
	return structural(ErrCodeBlankField, "", "%s must not be blank", field)
}

// NewRepository composes a repository announcement.
func NewRepository(name, location, description string) (event.Draft, error) {
	name, location = strings.TrimSpace(name), strings.TrimSpace(location)
	if name == "" {
		return event.Draft{}, blank("repository name")
	}
	if location == "" {
		return event.Draft{}, blank("repository location")
	}
	return event.Draft{
		Kind: event.KindRepository,
		Tags: [][]string{
			{event.TagLocation, location},
			{event.TagName, name},
		},
		Content: description,
	}, nil
}

// NewIssue composes an issue on repoID.
func NewIssue(repoID, title, body string) (event.Draft, error) {
	title = strings.TrimSpace(title)
	if repoID == "" {
		return event.Draft{}, blank("repository id")
	}
	if title == "" {
		return event.Draft{}, blank("issue title")
	}
	return event.Draft{
		Kind: event.KindIssue,
		Tags: [][]string{
			{event.TagRef, repoID},
			{event.TagName, title},
		},
		Content: body,
	}, nil
}

// NewComment composes a comment on issueID. Blank text is rejected.
func NewComment(issueID, text string) (event.Draft, error) {
	if issueID == "" {
		return event.Draft{}, blank("issue id")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return event.Draft{}, blank("comment")
	}
	return event.Draft{
		Kind:    event.KindIssueComment,
		Tags:    [][]string{{event.TagRef, issueID}},
		Content: text,
	}, nil
}

// NewStatusUpdate composes a status update on issueID.
func NewStatusUpdate(issueID string, st Status) event.Draft {
	return event.Draft{
		Kind:    event.KindIssueStatus,
		Tags:    [][]string{{event.TagRef, issueID}},
		Content: st.Content(),
	}
}

// CloseIssue composes the events that close issueID: an optional comment
// followed by the status update. A blank comment is skipped.
func CloseIssue(issueID string, completed bool, comment string) []event.Draft {
	st := StatusClosed
	if completed {
		st = StatusClosedCompleted
	}
	return withComment(issueID, comment, NewStatusUpdate(issueID, st))
}

// ReopenIssue composes the events that reopen issueID, with an optional
// comment first.
func ReopenIssue(issueID, comment string) []event.Draft {
	return withComment(issueID, comment, NewStatusUpdate(issueID, StatusOpen))
}

func withComment(issueID, comment string, update event.Draft) []event.Draft {
	if c, err := NewComment(issueID, comment); err == nil {
		return []event.Draft{c, update}
	}
	return []event.Draft{update}
}

// NewPatch composes a patch submission to repoID.
func NewPatch(repoID, name, description, diff string) (event.Draft, error) {
	name = strings.TrimSpace(name)
	if repoID == "" {
		return event.Draft{}, blank("repository id")
	}
	if name == "" {
		return event.Draft{}, blank("patch name")
	}
	if strings.TrimSpace(diff) == "" {
		return event.Draft{}, blank("patch")
	}
	content, err := json.Marshal(patchContent{Description: description, Patch: diff})
	if err != nil {
		return event.Draft{}, err
	}
	return event.Draft{
		Kind: event.KindPatch,
		Tags: [][]string{
			{event.TagRef, repoID},
			{event.TagName, name},
		},
		Content: string(content),
	}, nil
}

// NewProfile composes a profile event carrying a display name.
func NewProfile(name string) event.Draft {
	content, _ := json.Marshal(profileContent{Name: strings.TrimSpace(name)})
	return event.Draft{Kind: event.KindProfile, Content: string(content)}
}
