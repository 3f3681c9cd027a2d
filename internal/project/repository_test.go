package project_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gitnostr/internal/event"
	"github.com/roach88/gitnostr/internal/project"
	"github.com/roach88/gitnostr/internal/testutil"
)

func TestRepository_FromAnnouncement(t *testing.T) {
	w := newWorld(t)

	rec, err := project.Repository(w.repo)
	require.NoError(t, err)
	assert.Equal(t, project.RepositoryRecord{
		ID:          w.repo.ID,
		Owner:       w.owner.PublicKey(),
		Name:        "nips",
		Description: "protocol docs",
		Location:    "https://github.com/nostr-protocol/nips",
		CreatedAt:   1,
	}, rec)
}

func TestRepository_MissingTagsRejected(t *testing.T) {
	owner := testutil.Signer(t, 2)
	tests := []struct {
		name string
		tags [][]string
	}{
		{"no location", [][]string{{"n", "nips"}}},
		{"no name", [][]string{{"r", "https://example.com/x.git"}}},
		{"bare location key", [][]string{{"r"}, {"n", "nips"}}},
		{"no tags", [][]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := testutil.Sign(t, owner, event.Draft{Kind: event.KindRepository, Tags: tt.tags, Content: "d"}, 1)

			_, err := project.Repository(ev)
			assert.Equal(t, project.ErrCodeRepoUndefined, project.StructuralCode(err))

			repos, excluded := project.Repositories([]event.Event{ev})
			assert.Empty(t, repos)
			assert.NotNil(t, repos)
			assert.Equal(t, []event.Exclusion{{EventID: ev.ID, Reason: "REPO_UNDEFINED"}}, excluded)
		})
	}
}

func TestRepositories_SameNameStaysIndependent(t *testing.T) {
	owner := testutil.Signer(t, 2)
	d1, err := project.NewRepository("tool", "https://a.example/tool.git", "first")
	require.NoError(t, err)
	d2, err := project.NewRepository("tool", "https://b.example/tool.git", "second")
	require.NoError(t, err)
	first := testutil.Sign(t, owner, d1, 100)
	second := testutil.Sign(t, owner, d2, 200)

	repos, excluded := project.Repositories([]event.Event{second, first, second})

	require.Len(t, repos, 2)
	assert.Empty(t, excluded)
	assert.Equal(t, first.ID, repos[0].ID)
	assert.Equal(t, second.ID, repos[1].ID)
	assert.Equal(t, "tool", repos[0].Name)
	assert.Equal(t, "tool", repos[1].Name)
}

func TestRepositories_LastTagOccurrenceWins(t *testing.T) {
	owner := testutil.Signer(t, 2)
	ev := testutil.Sign(t, owner, event.Draft{
		Kind: event.KindRepository,
		Tags: [][]string{{"n", "old"}, {"r", "https://x.example/r.git"}, {"n", "new"}},
	}, 1)

	rec, err := project.Repository(ev)
	require.NoError(t, err)
	assert.Equal(t, "new", rec.Name)
}
