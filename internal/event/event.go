package event

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// Kind discriminates the semantic schema of an event.
type Kind int

// Kinds consumed by the projectors.
const (
	KindProfile      Kind = 0
	KindRepository   Kind = 124
	KindIssue        Kind = 125
	KindIssueComment Kind = 126
	KindIssueStatus  Kind = 127
	KindPatch        Kind = 128
)

// String returns a short name for known kinds and the number otherwise.
func (k Kind) String() string {
	switch k {
	case KindProfile:
		return "profile"
	case KindRepository:
		return "repository"
	case KindIssue:
		return "issue"
	case KindIssueComment:
		return "issue_comment"
	case KindIssueStatus:
		return "issue_status"
	case KindPatch:
		return "patch"
	default:
		return "kind_" + strconv.Itoa(int(k))
	}
}

// Tag keys as they appear on the wire.
const (
	TagLocation = "r" // repository clone location
	TagName     = "n" // repository name, issue title, patch name
	TagRef      = "e" // referenced event id
)

// Event is a signed, content-addressed log entry.
type Event struct {
	ID        string     `json:"id"`
	PubKey    string     `json:"pubkey"`
	CreatedAt int64      `json:"created_at"`
	Kind      Kind       `json:"kind"`
	Tags      [][]string `json:"tags"`
	Content   string     `json:"content"`
	Sig       string     `json:"sig"`
}

// Draft is an unsigned event body. Signing a draft fixes its author and
// timestamp and derives the ID.
type Draft struct {
	Kind    Kind
	Tags    [][]string
	Content string
}

// Clone returns a deep copy so callers can hand events across goroutines
// without sharing tag slices.
func (e Event) Clone() Event {
	c := e
	if e.Tags != nil {
		c.Tags = make([][]string, len(e.Tags))
		for i, t := range e.Tags {
			c.Tags[i] = slices.Clone(t)
		}
	}
	return c
}

// References reports whether any ref tag of e points at id.
func (e Event) References(id string) bool {
	return slices.Contains(IndexTags(e.Tags).Values(TagRef), id)
}

// CompareTime orders events by (CreatedAt, ID) ascending. Timestamps are
// self-reported, so the ID breaks ties deterministically.
func CompareTime(aCreated int64, aID string, bCreated int64, bID string) int {
	if c := cmp.Compare(aCreated, bCreated); c != 0 {
		return c
	}
	return strings.Compare(aID, bID)
}

// SortByTime sorts events in place by (CreatedAt, ID) ascending.
func SortByTime(events []Event) {
	slices.SortFunc(events, func(a, b Event) int {
		return CompareTime(a.CreatedAt, a.ID, b.CreatedAt, b.ID)
	})
}
