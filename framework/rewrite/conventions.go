package rewrite

import "strings"

// Conventions holds the fixed markers the rewriter recognises and emits.
type Conventions struct {
	// Banner is the license line every file starts with.
	Banner string
	// BannerMarker identifies existing banner lines, which are replaced.
	BannerMarker string
	// CustomMarker toggles a hand-maintained block.
	CustomMarker string
	// SkipMarker on the first line excludes a file from rewriting.
	SkipMarker       string
	PragmaLine       string
	UniversalInclude string
	GeneratedSuffix  string
	InlineSuffix     string
}

// DefaultConventions returns the Unreal plugin conventions for banner.
func DefaultConventions(banner string) Conventions {
	return Conventions{
		Banner:           banner,
		BannerMarker:     "//$ Copyright",
		CustomMarker:     "//!!",
		SkipMarker:       "//~",
		PragmaLine:       "#pragma once",
		UniversalInclude: `#include "CoreMinimal.h"`,
		GeneratedSuffix:  `.generated.h"`,
		InlineSuffix:     `.inl"`,
	}
}

func (c Conventions) isBanner(line string) bool {
	trimmed := strings.TrimSpace(line)
	if c.BannerMarker != "" && strings.HasPrefix(trimmed, c.BannerMarker) {
		return true
	}
	return c.Banner != "" && trimmed == strings.TrimSpace(c.Banner)
}

func (c Conventions) isCustomMarker(line string) bool {
	return c.CustomMarker != "" && strings.HasPrefix(strings.TrimSpace(line), c.CustomMarker)
}

// ShouldSkip reports whether the file's first line opts out of rewriting.
func (c Conventions) ShouldSkip(lines []string) bool {
	return c.SkipMarker != "" && len(lines) > 0 && strings.HasPrefix(lines[0], c.SkipMarker)
}

// isInclude reports whether line is an include directive the rewriter
// classifies. Inline template includes are not.
func (c Conventions) isInclude(line string) bool {
	if !strings.HasPrefix(line, "#include ") {
		return false
	}
	return c.InlineSuffix == "" || !strings.HasSuffix(line, c.InlineSuffix)
}

func (c Conventions) isGenerated(line string) bool {
	return c.GeneratedSuffix != "" && strings.HasSuffix(strings.TrimSpace(line), c.GeneratedSuffix)
}
