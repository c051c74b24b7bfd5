package rewrite

import "sort"

// BuildIncludeSet orders resolved includes: local lines sorted, a blank
// line when both groups are present, then external lines sorted.
func BuildIncludeSet(resolved []Resolution) []string {
	var local, external []string
	for _, res := range resolved {
		if res.Local {
			local = append(local, res.Line)
		} else {
			external = append(external, res.Line)
		}
	}
	sort.Strings(local)
	sort.Strings(external)

	out := make([]string, 0, len(local)+len(external)+1)
	out = append(out, local...)
	if len(local) > 0 && len(external) > 0 {
		out = append(out, "")
	}
	return append(out, external...)
}
