package rewrite

import (
	"errors"
	"strings"
)

// ErrMalformedCustomBlock reports a custom block that is never closed.
var ErrMalformedCustomBlock = errors.New("malformed custom include block")

// Capability selects the header-zone lines a Segmenter captures on top of
// the include directives every mode handles.
type Capability uint8

const (
	// CapturesPCH keeps the first include apart as the precompiled header.
	CapturesPCH Capability = 1 << iota
	// CapturesPragma drops the pragma marker; synthesis re-inserts it.
	CapturesPragma
	// CapturesUniversalInclude drops the universal include; synthesis re-inserts it.
	CapturesUniversalInclude
	// CapturesGeneratedHeader keeps generated-header includes for the end of the zone.
	CapturesGeneratedHeader
)

// Has reports whether c includes flag.
func (c Capability) Has(flag Capability) bool {
	return c&flag != 0
}

// FileKind distinguishes sources from headers.
type FileKind int

const (
	KindSource FileKind = iota
	KindHeader
)

// String implements fmt.Stringer.
func (k FileKind) String() string {
	if k == KindHeader {
		return "header"
	}
	return "source"
}

// Capabilities returns the capability set segmentation uses for k.
func (k FileKind) Capabilities() Capability {
	if k == KindHeader {
		return CapturesPragma | CapturesUniversalInclude | CapturesGeneratedHeader
	}
	return CapturesPCH
}

// KindForExt maps a file extension (with or without dot) to a kind.
func KindForExt(ext string) (FileKind, bool) {
	switch strings.TrimPrefix(ext, ".") {
	case "h":
		return KindHeader, true
	case "cpp":
		return KindSource, true
	}
	return 0, false
}

// LateInclude is an include directive found after the header zone closed.
type LateInclude struct {
	// Line is 1-based.
	Line int
	Text string
}

// ParsedFile holds the zones of one file.
type ParsedFile struct {
	Kind FileKind
	// PCH is the precompiled-header include; sources only.
	PCH      string
	HasPCH   bool
	Includes []string
	// Custom holds custom-block lines, markers included, in original order.
	Custom []string
	// Generated holds generated-header includes; headers only.
	Generated []string
	Code      []string
	// LateIncludes were copied into Code untouched.
	LateIncludes []LateInclude
}

// Segmenter splits raw lines into zones with a single forward scan.
type Segmenter struct {
	conv Conventions
	kind FileKind
	caps Capability
}

// NewSegmenter builds the segmenter for kind.
func NewSegmenter(conv Conventions, kind FileKind) *Segmenter {
	return &Segmenter{conv: conv, kind: kind, caps: kind.Capabilities()}
}

// Segment classifies every line. It fails with ErrMalformedCustomBlock when
// the scan ends inside a custom block.
func (s *Segmenter) Segment(lines []string) (*ParsedFile, error) {
	pf := &ParsedFile{Kind: s.kind}
	inCustom := false
	inHeader := true
	for i, line := range lines {
		if s.conv.isCustomMarker(line) {
			inCustom = !inCustom
			pf.Custom = append(pf.Custom, line)
			continue
		}
		if inCustom {
			pf.Custom = append(pf.Custom, line)
			continue
		}
		if inHeader && s.headerLine(pf, line) {
			continue
		}
		inHeader = false
		pf.Code = append(pf.Code, line)
		if s.conv.isInclude(line) {
			pf.LateIncludes = append(pf.LateIncludes, LateInclude{Line: i + 1, Text: line})
		}
	}
	if inCustom {
		return nil, ErrMalformedCustomBlock
	}
	return pf, nil
}

// headerLine consumes line when it belongs to the header zone.
func (s *Segmenter) headerLine(pf *ParsedFile, line string) bool {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return true
	case s.conv.isBanner(line):
		return true
	case s.caps.Has(CapturesPragma) && trimmed == s.conv.PragmaLine:
		return true
	case s.caps.Has(CapturesUniversalInclude) && trimmed == s.conv.UniversalInclude:
		return true
	case !s.conv.isInclude(line):
		return false
	case s.caps.Has(CapturesPCH) && !pf.HasPCH:
		pf.PCH = line
		pf.HasPCH = true
	case s.caps.Has(CapturesGeneratedHeader) && s.conv.isGenerated(line):
		pf.Generated = append(pf.Generated, line)
	default:
		pf.Includes = append(pf.Includes, line)
	}
	return true
}
