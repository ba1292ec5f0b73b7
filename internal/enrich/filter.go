package enrich

import (
	"moviemeta/internal/catalog"
	"moviemeta/internal/textutil"
)

// Remaining returns the candidates that state does not yet represent, in
// their original order. Repeated identities keep only the first occurrence,
// and a bare title is dropped once an earlier candidate has the same title:
// whatever that candidate is classified as also covers the bare one.
// It never mutates its inputs, so repeated calls against an unchanged state
// return the same list.
func Remaining(candidates []catalog.Candidate, state *RunState) []catalog.Candidate {
	out := make([]catalog.Candidate, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	titles := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		key := c.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		title := textutil.FoldTitle(c.Title)
		if _, earlier := titles[title]; earlier && !c.HasYear() {
			continue
		}
		titles[title] = struct{}{}
		if state != nil && state.Represents(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}
