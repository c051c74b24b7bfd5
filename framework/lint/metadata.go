package lint

import (
	"regexp"
	"strings"
)

// Finding is one metadata declaration that lacks a category.
type Finding struct {
	Path string
	// Line is 1-based.
	Line int
	Text string
}

var blueprintMetadata = regexp.MustCompile(`(UPROPERTY|UFUNCTION)\((.*Blueprint.*)\)`)

// MetadataValidator flags UPROPERTY/UFUNCTION declarations that expose a
// symbol to Blueprint without a Category parameter. It never edits content.
type MetadataValidator struct {
	pattern *regexp.Regexp
}

// NewMetadataValidator returns a validator using the Blueprint access pattern.
func NewMetadataValidator() *MetadataValidator {
	return &MetadataValidator{pattern: blueprintMetadata}
}

// Validate scans the lines of one header.
func (v *MetadataValidator) Validate(path string, lines []string) []Finding {
	var findings []Finding
	for i, raw := range lines {
		line := StripComment(raw)
		m := v.pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if strings.Contains(strings.ToLower(m[2]), "category") {
			continue
		}
		findings = append(findings, Finding{Path: path, Line: i + 1, Text: line})
	}
	return findings
}

// StripComment drops everything from the first "//" on.
func StripComment(line string) string {
	if i := strings.Index(line, "//"); i != -1 {
		return line[:i]
	}
	return line
}
