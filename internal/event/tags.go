package event

// TagIndex is a tag list parsed once into a multimap from tag key to the
// payload of every occurrence, in list order.
//
// Tags without a payload (a bare key) are dropped: a key that carries no
// value is treated as absent.
type TagIndex map[string][][]string

// IndexTags builds a TagIndex from a raw tag list.
func IndexTags(tags [][]string) TagIndex {
	idx := make(TagIndex, len(tags))
	for _, t := range tags {
		if len(t) < 2 {
			continue
		}
		idx[t[0]] = append(idx[t[0]], t[1:])
	}
	return idx
}

// Value returns the first payload element of the last occurrence of key.
// Later occurrences override earlier ones.
func (idx TagIndex) Value(key string) (string, bool) {
	occ := idx[key]
	if len(occ) == 0 {
		return "", false
	}
	return occ[len(occ)-1][0], true
}

// Values returns the first payload element of every occurrence of key.
func (idx TagIndex) Values(key string) []string {
	occ := idx[key]
	if len(occ) == 0 {
		return nil
	}
	out := make([]string, len(occ))
	for i, p := range occ {
		out[i] = p[0]
	}
	return out
}

// Has reports whether key occurs with a payload.
func (idx TagIndex) Has(key string) bool {
	return len(idx[key]) > 0
}
