package harness

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/gitnostr/internal/engine"
	"github.com/roach88/gitnostr/internal/event"
	"github.com/roach88/gitnostr/internal/keys"
	"github.com/roach88/gitnostr/internal/names"
	"github.com/roach88/gitnostr/internal/project"
	"github.com/roach88/gitnostr/internal/source"
	"github.com/roach88/gitnostr/internal/testutil"
)

// ClockStart is the timestamp the scenario clock starts from. The first
// event without an explicit "at" is created at ClockStart+1.
const ClockStart int64 = 1_700_000_000

// Harness is the scenario execution state.
// It publishes with a deterministic clock and fixed keys, so the same
// scenario always produces byte-identical events.
type Harness struct {
	scenario *Scenario
	signers  map[string]*keys.Signer
	aliases  map[string]string // pubkey -> alias
	ids      map[string]string // label -> published id
	labels   map[string]string // id -> label
	relays   map[string]*source.Memory
	served   []event.Event // every copy any relay serves
	clock    *testutil.DeterministicClock
	logger   *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against fresh in-memory relays for isolation.
//
// Execution flow:
// 1. Derive signers from the key seeds
// 2. Sign each event and hand it to its relays, tampering or forging as asked
// 3. Project repositories, issues, timelines and patches through the engine
// 4. Audit exclusions over everything served
// 5. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	h := &Harness{
		scenario: scenario,
		signers:  make(map[string]*keys.Signer, len(scenario.Keys)),
		aliases:  make(map[string]string, len(scenario.Keys)),
		ids:      make(map[string]string, len(scenario.Events)),
		labels:   make(map[string]string, len(scenario.Events)),
		relays:   make(map[string]*source.Memory, len(scenario.Relays)),
		clock:    testutil.NewDeterministicClock(ClockStart),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	for alias, seed := range scenario.Keys {
		s, err := keys.FromBytes(bytes.Repeat([]byte{byte(seed)}, 32))
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", alias, err)
		}
		h.signers[alias] = s
		h.aliases[s.PublicKey()] = alias
	}
	for _, r := range scenario.Relays {
		h.relays[r] = source.NewMemory()
	}

	ctx := context.Background()

	for i, step := range scenario.Events {
		if err := h.publish(ctx, step); err != nil {
			return nil, fmt.Errorf("events[%d] (%s): %w", i, step.Label, err)
		}
	}

	eng := h.engine()
	snapshot, err := h.project(ctx, eng)
	if err != nil {
		return nil, fmt.Errorf("failed to project: %w", err)
	}
	snapshot.Exclusions = h.audit()

	result := NewResult()
	result.Snapshot = snapshot
	for _, errMsg := range EvaluateAssertions(snapshot, scenario.Assertions) {
		result.AddError(errMsg)
	}
	return result, nil
}

// engine builds an engine reading from every relay at once.
func (h *Harness) engine() *engine.Engine {
	endpoints := make([]source.Endpoint, 0, len(h.scenario.Relays))
	for _, r := range h.scenario.Relays {
		endpoints = append(endpoints, source.Endpoint{Name: r, Source: h.relays[r]})
	}
	multi := source.NewMulti(endpoints, source.WithLogger(h.logger))
	resolver := names.NewResolver(multi, names.NewMemoryCache(), names.WithLogger(h.logger))
	return engine.New(multi,
		engine.WithLogger(h.logger),
		engine.WithNames(resolver),
	)
}

// publish signs step and hands the resulting copies to its relays.
func (h *Harness) publish(ctx context.Context, step EventStep) error {
	d, err := h.draft(step)
	if err != nil {
		return err
	}
	at := step.At
	if at == 0 {
		at = h.clock.Next()
	}
	ev, err := h.signers[step.By].Sign(d, at)
	if err != nil {
		return err
	}
	if step.Forge {
		ev = testutil.Forge(ev, ev.Content+" (forged)")
	}
	h.ids[step.Label] = ev.ID
	h.labels[ev.ID] = step.Label

	for _, r := range h.scenario.Relays {
		tampered := slices.Contains(step.TamperedOn, r)
		serves := len(step.Relays) == 0 || slices.Contains(step.Relays, r)
		if !tampered && !serves {
			continue
		}
		c := ev
		if tampered {
			c = testutil.Tamper(ev)
		}
		if err := h.relays[r].Publish(ctx, c); err != nil {
			return fmt.Errorf("relay %s: %w", r, err)
		}
		h.served = append(h.served, c)
	}
	return nil
}

// draft builds the unsigned event of step. Label references were checked
// when the scenario was loaded.
func (h *Harness) draft(step EventStep) (event.Draft, error) {
	switch step.Kind {
	case StepRepository:
		return project.NewRepository(step.Name, step.Location, step.Description)
	case StepIssue:
		return project.NewIssue(h.ids[step.Repo], step.Title, step.Body)
	case StepComment:
		return project.NewComment(h.ids[step.Issue], step.Text)
	case StepStatus:
		var st project.Status
		if err := st.UnmarshalText([]byte(step.Status)); err != nil {
			return event.Draft{}, err
		}
		return project.NewStatusUpdate(h.ids[step.Issue], st), nil
	case StepPatch:
		return project.NewPatch(h.ids[step.Repo], step.Name, step.Description, step.Diff)
	case StepProfile:
		return project.NewProfile(step.Name), nil
	case StepRaw:
		tags := make([][]string, len(step.Tags))
		for i, tag := range step.Tags {
			tags[i] = make([]string, len(tag))
			for j, v := range tag {
				if label, ok := strings.CutPrefix(v, "$"); ok {
					v = h.ids[label]
				}
				tags[i][j] = v
			}
		}
		return event.Draft{Kind: event.Kind(step.RawKind), Tags: tags, Content: step.Content}, nil
	default:
		return event.Draft{}, fmt.Errorf("unknown kind %q", step.Kind)
	}
}

// project reads everything back through the engine.
func (h *Harness) project(ctx context.Context, eng *engine.Engine) (Snapshot, error) {
	snap := Snapshot{
		Scenario:     h.scenario.Name,
		Repositories: []RepositoryView{},
	}

	repos, err := eng.Repositories(ctx, nil)
	if err != nil {
		return Snapshot{}, err
	}
	for _, repo := range repos {
		view := RepositoryView{
			Label:   h.label(repo.ID),
			Owner:   h.alias(repo.Owner),
			Name:    repo.Name,
			Issues:  []IssueView{},
			Patches: []PatchView{},
		}

		issues, err := eng.Issues(ctx, repo.ID)
		if err != nil {
			return Snapshot{}, err
		}
		for _, is := range issues {
			thread, err := eng.Thread(ctx, repo.ID, is.ID)
			if err != nil {
				return Snapshot{}, err
			}
			view.Issues = append(view.Issues, IssueView{
				Label:    h.label(is.ID),
				Author:   h.alias(is.Author),
				Title:    is.Title,
				Status:   is.Status.String(),
				Timeline: h.timeline(thread.Timeline),
			})
		}

		patches, err := eng.Patches(ctx, repo.ID)
		if err != nil {
			return Snapshot{}, err
		}
		for _, p := range patches {
			view.Patches = append(view.Patches, PatchView{
				Label:  h.label(p.ID),
				Author: h.alias(p.Author),
				Name:   p.Name,
			})
		}

		snap.Repositories = append(snap.Repositories, view)
	}
	return snap, nil
}

func (h *Harness) timeline(responses []project.Response) []EntryView {
	out := make([]EntryView, 0, len(responses))
	for _, r := range responses {
		entry := EntryView{
			Event:  h.label(r.EventID()),
			Author: h.alias(r.Attribution()),
		}
		switch v := r.(type) {
		case project.IssueComment:
			entry.Type = "comment"
		case project.StatusUpdate:
			entry.Type = "status"
			entry.Status = v.Status.String()
		}
		out = append(out, entry)
	}
	return out
}

// audit lists every exclusion any projection of the served events makes,
// including status updates the engine's narrowed queries never fetch.
func (h *Harness) audit() []ExclusionView {
	batch := event.Collect(h.served)
	excluded := slices.Clone(batch.Exclusions)

	repos, x := project.Repositories(batch.Events)
	excluded = append(excluded, x...)
	for _, repo := range repos {
		issues, x := project.Issues(repo.ID, batch.Events)
		excluded = append(excluded, x...)
		_, x = project.Patches(repo.ID, batch.Events)
		excluded = append(excluded, x...)
		for _, is := range issues {
			_, x = project.Comments(is.ID, batch.Events)
			excluded = append(excluded, x...)
			_, x = project.StatusUpdates(is.ID, batch.Events, engine.DefaultPolicy(is, repo.Owner))
			excluded = append(excluded, x...)
		}
	}

	views := make([]ExclusionView, 0, len(excluded))
	for _, ex := range excluded {
		views = append(views, ExclusionView{Event: h.label(ex.EventID), Reason: ex.Reason})
	}
	slices.SortFunc(views, func(a, b ExclusionView) int {
		if c := cmp.Compare(a.Event, b.Event); c != 0 {
			return c
		}
		return cmp.Compare(a.Reason, b.Reason)
	})
	return slices.Compact(views)
}

func (h *Harness) label(id string) string {
	if l, ok := h.labels[id]; ok {
		return l
	}
	return id
}

func (h *Harness) alias(pubkey string) string {
	if a, ok := h.aliases[pubkey]; ok {
		return a
	}
	return names.Fallback(pubkey)
}
