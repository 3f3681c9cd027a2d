package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/gitnostr/internal/project"
)

// AssertionError is returned when an assertion fails.
// It includes the projection around the failure to help debugging.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Context  []string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if len(e.Context) > 0 {
		fmt.Fprintf(&buf, "\nProjection:\n")
		for _, line := range e.Context {
			fmt.Fprintf(&buf, "  %s\n", line)
		}
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion and returns the failure
// messages, empty when all hold.
func EvaluateAssertions(snap Snapshot, assertions []Assertion) []string {
	errs := []string{}
	for i, a := range assertions {
		if err := evaluate(snap, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return errs
}

func evaluate(snap Snapshot, a Assertion) error {
	switch a.Type {
	case AssertRepositoryCount:
		return assertRepositoryCount(snap, a)
	case AssertIssueCount:
		return assertIssueCount(snap, a)
	case AssertPatchCount:
		return assertPatchCount(snap, a)
	case AssertIssueStatus:
		return assertIssueStatus(snap, a)
	case AssertTimeline:
		return assertTimeline(snap, a)
	case AssertExcluded:
		return assertExcluded(snap, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertRepositoryCount(snap Snapshot, a Assertion) error {
	if got := len(snap.Repositories); got != a.Count {
		labels := make([]string, len(snap.Repositories))
		for i, r := range snap.Repositories {
			labels[i] = r.Label
		}
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d repositories", a.Count),
			Actual:   fmt.Sprintf("%d repositories", got),
			Context:  labels,
		}
	}
	return nil
}

func assertIssueCount(snap Snapshot, a Assertion) error {
	repo, ok := snap.repository(a.Repo)
	if !ok {
		return missing(a, "repository", a.Repo)
	}
	if got := len(repo.Issues); got != a.Count {
		labels := make([]string, len(repo.Issues))
		for i, is := range repo.Issues {
			labels[i] = is.Label
		}
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d issues in %s", a.Count, a.Repo),
			Actual:   fmt.Sprintf("%d issues", got),
			Context:  labels,
		}
	}
	return nil
}

func assertPatchCount(snap Snapshot, a Assertion) error {
	repo, ok := snap.repository(a.Repo)
	if !ok {
		return missing(a, "repository", a.Repo)
	}
	if got := len(repo.Patches); got != a.Count {
		labels := make([]string, len(repo.Patches))
		for i, p := range repo.Patches {
			labels[i] = p.Label
		}
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d patches in %s", a.Count, a.Repo),
			Actual:   fmt.Sprintf("%d patches", got),
			Context:  labels,
		}
	}
	return nil
}

func assertIssueStatus(snap Snapshot, a Assertion) error {
	is, ok := snap.issue(a.Issue)
	if !ok {
		return missing(a, "issue", a.Issue)
	}
	if is.Status != canonicalStatus(a.Status) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s is %s", a.Issue, canonicalStatus(a.Status)),
			Actual:   is.Status,
			Context:  entries(is.Timeline),
		}
	}
	return nil
}

// assertTimeline requires the issue's timeline to be exactly a.Events, in
// order.
func assertTimeline(snap Snapshot, a Assertion) error {
	is, ok := snap.issue(a.Issue)
	if !ok {
		return missing(a, "issue", a.Issue)
	}
	got := make([]string, len(is.Timeline))
	for i, e := range is.Timeline {
		got[i] = e.Event
	}
	want := a.Events
	if want == nil {
		want = []string{}
	}
	if !slices.Equal(got, want) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%v", want),
			Actual:   fmt.Sprintf("%v", got),
			Context:  entries(is.Timeline),
		}
	}
	return nil
}

func assertExcluded(snap Snapshot, a Assertion) error {
	want := ExclusionView{Event: a.Event, Reason: a.Reason}
	if slices.Contains(snap.Exclusions, want) {
		return nil
	}
	ctx := make([]string, len(snap.Exclusions))
	for i, ex := range snap.Exclusions {
		ctx[i] = ex.Event + " " + ex.Reason
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%s excluded as %s", a.Event, a.Reason),
		Actual:   "not excluded with that reason",
		Context:  ctx,
	}
}

func missing(a Assertion, what, label string) error {
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%s %s in the projection", what, label),
		Actual:   "not projected",
	}
}

func entries(timeline []EntryView) []string {
	out := make([]string, len(timeline))
	for i, e := range timeline {
		line := fmt.Sprintf("%s %s by %s", e.Type, e.Event, e.Author)
		if e.Status != "" {
			line += " -> " + e.Status
		}
		out[i] = line
	}
	return out
}

// canonicalStatus accepts either spelling of a status, e.g. Close or
// Closed.
func canonicalStatus(name string) string {
	var st project.Status
	if err := st.UnmarshalText([]byte(name)); err != nil {
		return name
	}
	return st.String()
}
