package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gitnostr/internal/event"
	"github.com/roach88/gitnostr/internal/project"
	"github.com/roach88/gitnostr/internal/source"
	"github.com/roach88/gitnostr/internal/store"
	"github.com/roach88/gitnostr/internal/testutil"
)

// Compile-time checks: the replica is an endpoint.
var (
	_ source.Source = (*store.Store)(nil)
	_ source.Sink   = (*store.Store)(nil)
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "replica.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

type fixture struct {
	repo, issue event.Event
	comments    []event.Event
	status      event.Event
}

func seed(t *testing.T, s *store.Store) fixture {
	t.Helper()
	ctx := context.Background()
	owner := testutil.Signer(t, 2)
	author := testutil.Signer(t, 1)

	repoDraft, err := project.NewRepository("nips", "https://github.com/nostr-protocol/nips", "")
	require.NoError(t, err)
	repo := testutil.Sign(t, owner, repoDraft, 10)
	issueDraft, err := project.NewIssue(repo.ID, "First issue", "hello")
	require.NoError(t, err)
	issue := testutil.Sign(t, author, issueDraft, 20)

	var f fixture
	f.repo, f.issue = repo, issue
	for i, text := range []string{"one", "two", "three"} {
		d, err := project.NewComment(issue.ID, text)
		require.NoError(t, err)
		f.comments = append(f.comments, testutil.Sign(t, owner, d, int64(30+i)))
	}
	f.status = testutil.Sign(t, author, project.NewStatusUpdate(issue.ID, project.StatusClosed), 40)

	all := append([]event.Event{repo, issue, f.status}, f.comments...)
	n, err := s.PublishAll(ctx, all)
	require.NoError(t, err)
	require.Equal(t, len(all), n)
	return f
}

func ids(evs []event.Event) []string {
	out := make([]string, len(evs))
	for i, ev := range evs {
		out[i] = ev.ID
	}
	return out
}

func TestPublish_Idempotent(t *testing.T) {
	s := openStore(t)
	f := seed(t, s)
	ctx := context.Background()

	require.NoError(t, s.Publish(ctx, f.issue))
	require.NoError(t, s.Publish(ctx, f.issue))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}

func TestFetch_RoundTripsEventsExactly(t *testing.T) {
	s := openStore(t)
	f := seed(t, s)

	got, err := s.Fetch(context.Background(), event.Filter{IDs: []string{f.issue.ID}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, f.issue, got[0])
	assert.NoError(t, event.Validate(got[0]))
}

func TestFetch_Filters(t *testing.T) {
	s := openStore(t)
	f := seed(t, s)
	ctx := context.Background()
	owner := f.repo.PubKey
	since, until := int64(31), int64(32)

	tests := []struct {
		name   string
		filter event.Filter
		want   []string
	}{
		{"kind", event.Filter{Kinds: []event.Kind{event.KindRepository}}, []string{f.repo.ID}},
		{
			"refs newest first",
			event.Filter{Kinds: []event.Kind{event.KindIssueComment}, Refs: []string{f.issue.ID}},
			[]string{f.comments[2].ID, f.comments[1].ID, f.comments[0].ID},
		},
		{
			"authors narrow status",
			event.Filter{Kinds: []event.Kind{event.KindIssueStatus}, Authors: []string{owner}},
			[]string{},
		},
		{
			"window",
			event.Filter{Kinds: []event.Kind{event.KindIssueComment}, Since: &since, Until: &until},
			[]string{f.comments[2].ID, f.comments[1].ID},
		},
		{"limit", event.Filter{Limit: 1}, []string{f.status.ID}},
		{"issue by repo ref", event.Filter{Kinds: []event.Kind{event.KindIssue}, Refs: []string{f.repo.ID}}, []string{f.issue.ID}},
		{"no match", event.Filter{IDs: []string{"nope"}}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Fetch(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFetch_AgreesWithMemorySource(t *testing.T) {
	s := openStore(t)
	f := seed(t, s)
	ctx := context.Background()

	all, err := s.Fetch(ctx, event.Filter{})
	require.NoError(t, err)
	mem := source.NewMemory(all...)

	for _, filter := range []event.Filter{
		{},
		{Refs: []string{f.issue.ID}, Limit: 2},
		{Authors: []string{f.issue.PubKey}},
		{Kinds: []event.Kind{event.KindIssueComment, event.KindIssueStatus}},
	} {
		fromStore, err := s.Fetch(ctx, filter)
		require.NoError(t, err)
		fromMemory, err := mem.Fetch(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, ids(fromMemory), ids(fromStore))
	}
}

func TestNames_GetPut(t *testing.T) {
	s := openStore(t)
	names := s.Names()
	ctx := context.Background()

	_, ok, err := names.Get(ctx, "pk")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, names.Put(ctx, "pk", "alice"))
	require.NoError(t, names.Put(ctx, "pk", "alice2"))

	name, ok, err := names.Get(ctx, "pk")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice2", name)
}
