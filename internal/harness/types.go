package harness

// Snapshot is the projection of a scenario with every ID replaced by its
// label and every public key by its alias. It is what golden files hold.
type Snapshot struct {
	Scenario     string           `json:"scenario"`
	Repositories []RepositoryView `json:"repositories"`
	Exclusions   []ExclusionView  `json:"exclusions"`
}

// RepositoryView is one projected repository.
type RepositoryView struct {
	Label   string      `json:"label"`
	Owner   string      `json:"owner"`
	Name    string      `json:"name"`
	Issues  []IssueView `json:"issues"`
	Patches []PatchView `json:"patches"`
}

// IssueView is one projected issue with its timeline.
type IssueView struct {
	Label    string      `json:"label"`
	Author   string      `json:"author"`
	Title    string      `json:"title"`
	Status   string      `json:"status"`
	Timeline []EntryView `json:"timeline"`
}

// EntryView is a timeline entry: a comment or a status update.
type EntryView struct {
	Event  string `json:"event"`
	Author string `json:"author"`
	Type   string `json:"type"` // "comment" or "status"
	Status string `json:"status,omitempty"`
}

// PatchView is one projected patch.
type PatchView struct {
	Label  string `json:"label"`
	Author string `json:"author"`
	Name   string `json:"name"`
}

// ExclusionView is an excluded event and the reason.
type ExclusionView struct {
	Event  string `json:"event"`
	Reason string `json:"reason"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every assertion holds.
	Pass bool `json:"pass"`

	Snapshot Snapshot `json:"snapshot"`

	// Errors contains assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// issue finds the view of an issue label.
func (s Snapshot) issue(label string) (IssueView, bool) {
	for _, repo := range s.Repositories {
		for _, is := range repo.Issues {
			if is.Label == label {
				return is, true
			}
		}
	}
	return IssueView{}, false
}

// repository finds the view of a repository label.
func (s Snapshot) repository(label string) (RepositoryView, bool) {
	for _, repo := range s.Repositories {
		if repo.Label == label {
			return repo, true
		}
	}
	return RepositoryView{}, false
}
