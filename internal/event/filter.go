package event

import "slices"

// Filter is an allow-list style retrieval query handed to an event source.
// Empty fields are unconstrained; non-empty fields must all match.
//
// A filter only narrows what a source is asked for. Sources may ignore it,
// so projectors re-check every property they depend on.
type Filter struct {
	IDs     []string `json:"ids,omitempty"`
	Authors []string `json:"authors,omitempty"`
	Kinds   []Kind   `json:"kinds,omitempty"`
	Refs    []string `json:"#e,omitempty"`
	Since   *int64   `json:"since,omitempty"`
	Until   *int64   `json:"until,omitempty"`
	Limit   int      `json:"limit,omitempty"`
}

// Matches reports whether ev satisfies every constraint of f except Limit.
func (f Filter) Matches(ev Event) bool {
	if len(f.IDs) > 0 && !slices.Contains(f.IDs, ev.ID) {
		return false
	}
	if len(f.Authors) > 0 && !slices.Contains(f.Authors, ev.PubKey) {
		return false
	}
	if len(f.Kinds) > 0 && !slices.Contains(f.Kinds, ev.Kind) {
		return false
	}
	if len(f.Refs) > 0 {
		refs := IndexTags(ev.Tags).Values(TagRef)
		if !slices.ContainsFunc(f.Refs, func(r string) bool { return slices.Contains(refs, r) }) {
			return false
		}
	}
	if f.Since != nil && ev.CreatedAt < *f.Since {
		return false
	}
	if f.Until != nil && ev.CreatedAt > *f.Until {
		return false
	}
	return true
}
