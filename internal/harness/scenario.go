package harness

import (
	"bytes"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/gitnostr/internal/project"
)

// DefaultRelay is the single relay of a scenario that declares none.
const DefaultRelay = "primary"

// Scenario defines a projection test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Relays lists the in-memory relays events are served from.
	// Default: [primary].
	Relays []string `yaml:"relays,omitempty"`

	// Keys maps identity aliases to secret key seeds (1-255). The secret key
	// is 32 repetitions of the seed byte.
	Keys map[string]int `yaml:"keys"`

	// Events are signed and published in order.
	Events []EventStep `yaml:"events"`

	// Assertions validate the projection.
	Assertions []Assertion `yaml:"assertions"`
}

// EventStep describes one event to sign and publish.
type EventStep struct {
	Label string `yaml:"label"`
	By    string `yaml:"by"`
	Kind  string `yaml:"kind"`

	// At is the created_at timestamp. Zero means the next clock tick.
	At int64 `yaml:"at,omitempty"`

	// Repo and Issue are labels of earlier events.
	Repo  string `yaml:"repo,omitempty"`
	Issue string `yaml:"issue,omitempty"`

	Name        string `yaml:"name,omitempty"`
	Location    string `yaml:"location,omitempty"`
	Description string `yaml:"description,omitempty"`
	Title       string `yaml:"title,omitempty"`
	Body        string `yaml:"body,omitempty"`
	Text        string `yaml:"text,omitempty"`
	Status      string `yaml:"status,omitempty"`
	Diff        string `yaml:"diff,omitempty"`

	// Raw events only.
	RawKind int        `yaml:"raw_kind,omitempty"`
	Tags    [][]string `yaml:"tags,omitempty"`
	Content string     `yaml:"content,omitempty"`

	// Relays serving this event. Default: every relay.
	Relays []string `yaml:"relays,omitempty"`

	// TamperedOn lists relays that serve a copy edited after signing.
	TamperedOn []string `yaml:"tampered_on,omitempty"`

	// Forge replaces the event with one whose ID matches its content but
	// whose signature was made for different content.
	Forge bool `yaml:"forge,omitempty"`
}

// Event step kinds.
const (
	StepRepository = "repository"
	StepIssue      = "issue"
	StepComment    = "comment"
	StepStatus     = "status"
	StepPatch      = "patch"
	StepProfile    = "profile"
	StepRaw        = "raw"
)

// Assertion validates the projection.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	Repo   string   `yaml:"repo,omitempty"`
	Issue  string   `yaml:"issue,omitempty"`
	Event  string   `yaml:"event,omitempty"`
	Status string   `yaml:"status,omitempty"`
	Reason string   `yaml:"reason,omitempty"`
	Count  int      `yaml:"count,omitempty"`
	Events []string `yaml:"events,omitempty"`
}

// Assertion type constants.
const (
	AssertRepositoryCount = "repository_count"
	AssertIssueCount      = "issue_count"
	AssertPatchCount      = "patch_count"
	AssertIssueStatus     = "issue_status"
	AssertTimeline        = "timeline"
	AssertExcluded        = "excluded"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is inconsistent.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(scenario.Relays) == 0 {
		scenario.Relays = []string{DefaultRelay}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and that every
// label, alias and relay referenced is declared.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Keys) == 0 {
		return fmt.Errorf("keys map is required and must be non-empty")
	}
	if len(s.Events) == 0 {
		return fmt.Errorf("events list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for alias, seed := range s.Keys {
		if seed < 1 || seed > 255 {
			return fmt.Errorf("keys.%s: seed must be between 1 and 255, got %d", alias, seed)
		}
	}
	for i, r := range s.Relays {
		if strings.TrimSpace(r) == "" {
			return fmt.Errorf("relays[%d]: name must not be empty", i)
		}
		if slices.Index(s.Relays, r) != i {
			return fmt.Errorf("relays[%d]: duplicate relay %q", i, r)
		}
	}

	kinds := make(map[string]string, len(s.Events))
	for i := range s.Events {
		if err := validateStep(s, i, kinds); err != nil {
			return err
		}
		kinds[s.Events[i].Label] = s.Events[i].Kind
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a, kinds); err != nil {
			return err
		}
	}
	return nil
}

// validateStep checks events[i]. kinds holds the labels of earlier steps.
func validateStep(s *Scenario, i int, kinds map[string]string) error {
	step := s.Events[i]
	if step.Label == "" {
		return fmt.Errorf("events[%d]: label is required", i)
	}
	if _, dup := kinds[step.Label]; dup {
		return fmt.Errorf("events[%d]: duplicate label %q", i, step.Label)
	}
	if _, ok := s.Keys[step.By]; !ok {
		return fmt.Errorf("events[%d]: unknown key %q", i, step.By)
	}
	if step.At < 0 {
		return fmt.Errorf("events[%d]: at must not be negative", i)
	}
	for _, r := range append(slices.Clone(step.Relays), step.TamperedOn...) {
		if !slices.Contains(s.Relays, r) {
			return fmt.Errorf("events[%d]: unknown relay %q", i, r)
		}
	}

	refers := func(field, label, want string) error {
		if label == "" {
			return fmt.Errorf("events[%d]: %s is required for %s", i, field, step.Kind)
		}
		k, ok := kinds[label]
		if !ok {
			return fmt.Errorf("events[%d]: %s %q is not an earlier label", i, field, label)
		}
		if k != want && k != StepRaw {
			return fmt.Errorf("events[%d]: %s %q is a %s, not a %s", i, field, label, k, want)
		}
		return nil
	}

	switch step.Kind {
	case StepRepository:
		if step.Name == "" || step.Location == "" {
			return fmt.Errorf("events[%d]: name and location are required for repository", i)
		}
	case StepIssue:
		if err := refers("repo", step.Repo, StepRepository); err != nil {
			return err
		}
		if step.Title == "" {
			return fmt.Errorf("events[%d]: title is required for issue", i)
		}
	case StepComment:
		if err := refers("issue", step.Issue, StepIssue); err != nil {
			return err
		}
		if step.Text == "" {
			return fmt.Errorf("events[%d]: text is required for comment", i)
		}
	case StepStatus:
		if err := refers("issue", step.Issue, StepIssue); err != nil {
			return err
		}
		var st project.Status
		if err := st.UnmarshalText([]byte(step.Status)); err != nil {
			return fmt.Errorf("events[%d]: %w", i, err)
		}
	case StepPatch:
		if err := refers("repo", step.Repo, StepRepository); err != nil {
			return err
		}
		if step.Name == "" || step.Diff == "" {
			return fmt.Errorf("events[%d]: name and diff are required for patch", i)
		}
	case StepProfile:
		if step.Name == "" {
			return fmt.Errorf("events[%d]: name is required for profile", i)
		}
	case StepRaw:
		if step.RawKind < 0 {
			return fmt.Errorf("events[%d]: raw_kind must not be negative", i)
		}
		for _, tag := range step.Tags {
			for _, v := range tag {
				if label, ok := strings.CutPrefix(v, "$"); ok {
					if _, known := kinds[label]; !known {
						return fmt.Errorf("events[%d]: tag value %q is not an earlier label", i, v)
					}
				}
			}
		}
	case "":
		return fmt.Errorf("events[%d]: kind is required", i)
	default:
		return fmt.Errorf("events[%d]: unknown kind %q", i, step.Kind)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion, kinds map[string]string) error {
	known := func(field, label string) error {
		if label == "" {
			return fmt.Errorf("assertions[%d]: %s is required for %s", index, field, a.Type)
		}
		if _, ok := kinds[label]; !ok {
			return fmt.Errorf("assertions[%d]: unknown label %q", index, label)
		}
		return nil
	}

	switch a.Type {
	case AssertRepositoryCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertIssueCount, AssertPatchCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
		return known("repo", a.Repo)
	case AssertIssueStatus:
		var st project.Status
		if err := st.UnmarshalText([]byte(a.Status)); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		return known("issue", a.Issue)
	case AssertTimeline:
		for _, l := range a.Events {
			if err := known("events", l); err != nil {
				return err
			}
		}
		return known("issue", a.Issue)
	case AssertExcluded:
		if a.Reason == "" {
			return fmt.Errorf("assertions[%d]: reason is required for excluded", index)
		}
		return known("event", a.Event)
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
