package internal

import "sort"

// SortedUniques hands collect an emit func and returns every distinct string emitted, sorted.
// It keeps traversal logic inline at the call site while exposing plain set semantics.
func SortedUniques(collect func(emit func(string))) []string {
	set := make(map[string]struct{})
	collect(func(str string) {
		set[str] = struct{}{}
	})

	strs := make([]string, 0, len(set))
	for key := range set {
		strs = append(strs, key)
	}
	sort.Strings(strs)

	return strs
}
