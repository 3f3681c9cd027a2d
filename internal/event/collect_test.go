package event_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gitnostr/internal/event"
	"github.com/roach88/gitnostr/internal/testutil"
)

func TestDedup_KeepsOneCopyPerID(t *testing.T) {
	issue, repo := knownIssue(), knownRepository()

	out := event.Dedup([]event.Event{issue, repo, issue, issue, repo})

	require.Len(t, out, 2)
	assert.Equal(t, repo.ID, out[0].ID, "sorted by id")
	assert.Equal(t, issue.ID, out[1].ID)
}

func TestDedup_Empty(t *testing.T) {
	out := event.Dedup(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestCollect_ExcludesInvalidAndDeduplicates(t *testing.T) {
	good := knownIssue()
	tampered := testutil.Tamper(good)

	batch := event.Collect([]event.Event{good, tampered, good})

	require.Len(t, batch.Events, 1)
	assert.Equal(t, good.ID, batch.Events[0].ID)
	assert.Equal(t, []event.Exclusion{{EventID: good.ID, Reason: "TAMPERED_ID"}}, batch.Exclusions)
}

func TestCollect_ForgedCopyDoesNotShadowGenuine(t *testing.T) {
	good := knownIssue()
	forged := good.Clone()
	forged.Sig = knownRepository().Sig

	// forged arrives first from a faster endpoint
	batch := event.Collect([]event.Event{forged, good})

	require.Len(t, batch.Events, 1)
	assert.Equal(t, good.Sig, batch.Events[0].Sig)
	assert.Equal(t, []event.Exclusion{{EventID: good.ID, Reason: "BAD_SIGNATURE"}}, batch.Exclusions)
}

func TestCollect_OrderIndependent(t *testing.T) {
	s := testutil.Signer(t, 4)
	clock := testutil.NewDeterministicClock(1000)
	var evs []event.Event
	for i := 0; i < 5; i++ {
		evs = append(evs, testutil.Sign(t, s, event.Draft{Kind: event.KindIssueComment, Content: "c"}, clock.Next()))
	}
	bad := testutil.Tamper(evs[2])

	forward := event.Collect(append(append([]event.Event{}, evs...), bad))
	reversed := []event.Event{bad}
	for i := len(evs) - 1; i >= 0; i-- {
		reversed = append(reversed, evs[i], evs[i])
	}
	backward := event.Collect(reversed)

	assert.Equal(t, forward, backward)
	assert.Len(t, forward.Events, 5)
}

func TestSortExclusions_Compacts(t *testing.T) {
	in := []event.Exclusion{
		{EventID: "b", Reason: "TAMPERED_ID"},
		{EventID: "a", Reason: "BAD_SIGNATURE"},
		{EventID: "b", Reason: "TAMPERED_ID"},
	}
	assert.Equal(t, []event.Exclusion{
		{EventID: "a", Reason: "BAD_SIGNATURE"},
		{EventID: "b", Reason: "TAMPERED_ID"},
	}, event.SortExclusions(in))
}
