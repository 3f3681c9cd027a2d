package project_test

import (
	"testing"

	"github.com/roach88/gitnostr/internal/event"
	"github.com/roach88/gitnostr/internal/keys"
	"github.com/roach88/gitnostr/internal/project"
	"github.com/roach88/gitnostr/internal/testutil"
)

// world is a small fixture: an owner with a repository, an issue author
// with an issue on it, and an outsider.
type world struct {
	t        *testing.T
	owner    *keys.Signer
	author   *keys.Signer
	attacker *keys.Signer
	repo     event.Event
	issue    event.Event
}

func newWorld(t *testing.T) *world {
	t.Helper()
	w := &world{
		t:        t,
		owner:    testutil.Signer(t, 2),
		author:   testutil.Signer(t, 1),
		attacker: testutil.Signer(t, 3),
	}
	repo, err := project.NewRepository("nips", "https://github.com/nostr-protocol/nips", "protocol docs")
	if err != nil {
		t.Fatal(err)
	}
	w.repo = testutil.Sign(t, w.owner, repo, 1)
	issue, err := project.NewIssue(w.repo.ID, "First issue", "hello")
	if err != nil {
		t.Fatal(err)
	}
	w.issue = testutil.Sign(t, w.author, issue, 2)
	return w
}

func (w *world) status(by *keys.Signer, st project.Status, at int64) event.Event {
	return testutil.Sign(w.t, by, project.NewStatusUpdate(w.issue.ID, st), at)
}

func (w *world) comment(by *keys.Signer, text string, at int64) event.Event {
	d, err := project.NewComment(w.issue.ID, text)
	if err != nil {
		w.t.Fatal(err)
	}
	return testutil.Sign(w.t, by, d, at)
}

func (w *world) policy() project.AllowList {
	return project.StatusPolicy(w.author.PublicKey(), w.owner.PublicKey())
}
