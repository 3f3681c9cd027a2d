package source_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gitnostr/internal/event"
	"github.com/roach88/gitnostr/internal/metrics"
	"github.com/roach88/gitnostr/internal/source"
	"github.com/roach88/gitnostr/internal/testutil"
)

func comments(t *testing.T, n int) []event.Event {
	t.Helper()
	s := testutil.Signer(t, 1)
	clock := testutil.NewDeterministicClock(1000)
	out := make([]event.Event, n)
	for i := range out {
		out[i] = testutil.Sign(t, s, event.Draft{
			Kind:    event.KindIssueComment,
			Tags:    [][]string{{"e", "issue"}},
			Content: "c",
		}, clock.Next())
	}
	return out
}

func failing(err error) source.Source {
	return source.Func(func(context.Context, event.Filter) ([]event.Event, error) {
		return nil, err
	})
}

func TestMemory_FetchAppliesFilterAndLimit(t *testing.T) {
	evs := comments(t, 5)
	mem := source.NewMemory(evs...)
	require.NoError(t, mem.Publish(context.Background(), evs[0]))
	assert.Equal(t, 5, mem.Len())

	got, err := mem.Fetch(context.Background(), event.Filter{Kinds: []event.Kind{event.KindIssueComment}, Limit: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, evs[4].ID, got[0].ID, "newest first")
	assert.Equal(t, evs[3].ID, got[1].ID)

	got, err = mem.Fetch(context.Background(), event.Filter{Kinds: []event.Kind{event.KindIssue}})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestMemory_KeepsCopiesThatDifferBeyondID(t *testing.T) {
	genuine := comments(t, 1)[0]
	tampered := testutil.Tamper(genuine)

	mem := source.NewMemory(tampered, genuine, genuine)
	assert.Equal(t, 2, mem.Len(), "exact copies collapse, a tampered copy does not shadow the genuine")

	got, err := mem.Fetch(context.Background(), event.Filter{IDs: []string{genuine.ID}})
	require.NoError(t, err)
	batch := event.Collect(got)
	require.Len(t, batch.Events, 1)
	assert.Equal(t, genuine.Content, batch.Events[0].Content)
	require.Len(t, batch.Exclusions, 1)
}

func TestMemory_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := source.NewMemory().Fetch(ctx, event.Filter{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMulti_PartialFailureDegrades(t *testing.T) {
	evs := comments(t, 3)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	multi := source.NewMulti([]source.Endpoint{
		{Name: "a", Source: source.NewMemory(evs[0], evs[1])},
		{Name: "down", Source: failing(errors.New("connection refused"))},
		{Name: "b", Source: source.NewMemory(evs[1], evs[2])},
	}, source.WithMetrics(m))

	got, err := multi.Fetch(context.Background(), event.Filter{})
	require.NoError(t, err)
	assert.Len(t, got, 4, "duplicates are kept for the caller to collapse")
	assert.Len(t, event.Dedup(got), 3)
	assert.Equal(t, 1.0, promtest.ToFloat64(m.SourceFailures.WithLabelValues("down")))
	assert.Equal(t, []string{"a", "down", "b"}, multi.Endpoints())
}

func TestMulti_TotalFailureIsSourceError(t *testing.T) {
	multi := source.NewMulti([]source.Endpoint{
		{Name: "x", Source: failing(errors.New("boom"))},
		{Name: "y", Source: failing(context.DeadlineExceeded)},
	})

	got, err := multi.Fetch(context.Background(), event.Filter{})
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, source.IsSourceError(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "source: all 2 endpoints failed: x: boom; y: context deadline exceeded", err.Error())
}

func TestMulti_TotalFailureWithSharedNames(t *testing.T) {
	multi := source.NewMulti([]source.Endpoint{
		{Name: "gitnostr.db", Source: failing(errors.New("locked"))},
		{Name: "gitnostr.db", Source: failing(errors.New("locked"))},
	})

	got, err := multi.Fetch(context.Background(), event.Filter{})
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, source.IsSourceError(err))

	var se *source.Error
	require.ErrorAs(t, err, &se)
	assert.Len(t, se.Failures, 2)
}

func TestMulti_EmptyResultIsNotAnError(t *testing.T) {
	multi := source.NewMulti([]source.Endpoint{
		{Name: "empty", Source: source.NewMemory()},
		{Name: "down", Source: failing(errors.New("boom"))},
	})

	got, err := multi.Fetch(context.Background(), event.Filter{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMulti_NoEndpoints(t *testing.T) {
	_, err := source.NewMulti(nil).Fetch(context.Background(), event.Filter{})
	require.Error(t, err)
	assert.True(t, source.IsSourceError(err))
	assert.Contains(t, err.Error(), "no endpoints")
}

func TestMulti_SlowEndpointTimesOut(t *testing.T) {
	evs := comments(t, 1)
	slow := source.Func(func(ctx context.Context, _ event.Filter) ([]event.Event, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	multi := source.NewMulti([]source.Endpoint{
		{Name: "slow", Source: slow},
		{Name: "fast", Source: source.NewMemory(evs...)},
	}, source.WithTimeout(20*time.Millisecond))

	got, err := multi.Fetch(context.Background(), event.Filter{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestMulti_ConcurrencyLimit(t *testing.T) {
	var inflight, peak atomic.Int32
	probe := source.Func(func(context.Context, event.Filter) ([]event.Event, error) {
		n := inflight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inflight.Add(-1)
		return nil, nil
	})
	var eps []source.Endpoint
	for _, name := range []string{"a", "b", "c", "d"} {
		eps = append(eps, source.Endpoint{Name: name, Source: probe})
	}

	_, err := source.NewMulti(eps, source.WithConcurrency(1)).Fetch(context.Background(), event.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int32(1), peak.Load())
}

func TestDecode_ArrayAndLines(t *testing.T) {
	arr := `  [{"id":"a","pubkey":"p","created_at":1,"kind":125,"tags":[["n","t"]],"content":"x","sig":"s"}]`
	got, err := source.Decode(strings.NewReader(arr))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, event.KindIssue, got[0].Kind)
	assert.Equal(t, [][]string{{"n", "t"}}, got[0].Tags)

	lines := "{\"id\":\"a\",\"kind\":1}\n{\"id\":\"b\",\"kind\":2}\n"
	got, err = source.Decode(strings.NewReader(lines))
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = source.Decode(strings.NewReader("  \n"))
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = source.Decode(strings.NewReader("[{"))
	assert.Error(t, err)
}
