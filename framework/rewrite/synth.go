package rewrite

// Synthesizer reassembles canonical file content from parsed zones.
type Synthesizer struct {
	conv     Conventions
	resolver *Resolver
}

// NewSynthesizer pairs the conventions with the resolver used for includes.
func NewSynthesizer(conv Conventions, resolver *Resolver) *Synthesizer {
	return &Synthesizer{conv: conv, resolver: resolver}
}

// Synthesize returns the canonical lines for pf.
func (s *Synthesizer) Synthesize(pf *ParsedFile) []string {
	includes := BuildIncludeSet(s.resolver.ResolveAll(pf.Includes))

	lines := []string{s.conv.Banner, ""}
	if pf.Kind == KindHeader {
		lines = append(lines, s.conv.PragmaLine, s.conv.UniversalInclude)
		lines = append(lines, includes...)
		lines = append(lines, pf.Custom...)
		lines = append(lines, pf.Generated...)
	} else {
		if pf.HasPCH {
			lines = append(lines, s.resolver.Resolve(pf.PCH).Line, "")
		}
		lines = append(lines, includes...)
		lines = append(lines, pf.Custom...)
	}
	lines = append(lines, "")
	return append(lines, pf.Code...)
}
