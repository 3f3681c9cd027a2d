package project_test

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gitnostr/internal/event"
	"github.com/roach88/gitnostr/internal/project"
	"github.com/roach88/gitnostr/internal/testutil"
)

type snapshot struct {
	Repositories []project.RepositoryRecord `json:"repositories"`
	Issues       []project.IssueRecord      `json:"issues"`
	Patches      []project.PatchRecord      `json:"patches"`
	Timeline     []string                   `json:"timeline"`
	Excluded     []event.Exclusion          `json:"excluded"`
}

func projectAll(t *testing.T, w *world, raw []event.Event) []byte {
	t.Helper()
	batch := event.Collect(raw)
	snap := snapshot{Excluded: batch.Exclusions}

	snap.Repositories, _ = project.Repositories(batch.Events)
	snap.Issues, _ = project.Issues(w.repo.ID, batch.Events)
	for i := range snap.Issues {
		policy := project.StatusPolicy(snap.Issues[i].Author, w.owner.PublicKey())
		snap.Issues[i].Status = project.ResolveStatus(snap.Issues[i].ID, batch.Events, policy)
	}
	snap.Patches, _ = project.Patches(w.repo.ID, batch.Events)
	for _, r := range project.Timeline(w.issue.ID, batch.Events, w.policy()) {
		snap.Timeline = append(snap.Timeline, r.EventID())
	}

	out, err := json.Marshal(snap)
	require.NoError(t, err)
	return out
}

func TestProjection_PermutationAndDuplicationInvariant(t *testing.T) {
	w := newWorld(t)
	clock := testutil.NewDeterministicClock(100)
	patch, err := project.NewPatch(w.repo.ID, "p", "", sampleDiff)
	require.NoError(t, err)

	events := []event.Event{
		w.repo,
		w.issue,
		w.comment(w.attacker, "hi", clock.Next()),
		w.status(w.author, project.StatusClosed, clock.Next()),
		w.status(w.attacker, project.StatusOpen, clock.Next()),
		w.comment(w.owner, "thanks", clock.Next()),
		w.status(w.owner, project.StatusClosedCompleted, clock.Current()),
		testutil.Sign(t, w.author, patch, clock.Next()),
	}
	events = append(events, testutil.Tamper(events[3]))

	want := projectAll(t, w, events)
	assert.Equal(t, want, projectAll(t, w, events), "re-running is byte-identical")

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 25; i++ {
		perm := make([]event.Event, 0, len(events)*2)
		for _, ev := range events {
			for n := rng.Intn(3) + 1; n > 0; n-- {
				perm = append(perm, ev.Clone())
			}
		}
		rng.Shuffle(len(perm), func(a, b int) { perm[a], perm[b] = perm[b], perm[a] })

		assert.Equal(t, string(want), string(projectAll(t, w, perm)), "permutation %d", i)
	}
}
