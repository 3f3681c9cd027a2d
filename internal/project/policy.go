package project

import (
	"slices"
)

// Policy decides whether an author may perform a privileged state
// transition, such as changing an issue's status.
type Policy interface {
	Allows(pubkey string) bool
}

// AuthorSet is implemented by policies that can enumerate every author they
// allow. Callers use it to narrow retrieval filters; the policy itself is
// still re-applied to whatever comes back.
type AuthorSet interface {
	Authors() []string
}

// PolicyFunc adapts a predicate to Policy.
type PolicyFunc func(pubkey string) bool

// Allows implements Policy.
func (f PolicyFunc) Allows(pubkey string) bool { return f(pubkey) }

// AllowList is a fixed set of authorized keys.
type AllowList struct {
	keys []string // sorted, unique
}

// NewAllowList builds an allow-list. Empty keys and repeats are dropped.
func NewAllowList(keys ...string) AllowList {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return AllowList{keys: slices.Compact(out)}
}

// StatusPolicy is the default rule for issue status: the issue's author and
// the repository's owner may set it, nobody else.
func StatusPolicy(issueAuthor, repoOwner string) AllowList {
	return NewAllowList(issueAuthor, repoOwner)
}

// Allows implements Policy.
func (a AllowList) Allows(pubkey string) bool {
	_, ok := slices.BinarySearch(a.keys, pubkey)
	return ok
}

// Authors implements AuthorSet.
func (a AllowList) Authors() []string {
	return slices.Clone(a.keys)
}
