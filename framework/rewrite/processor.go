package rewrite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/lexcodex/headerlint/framework"
	"github.com/lexcodex/headerlint/framework/cxxindex"
	"github.com/lexcodex/headerlint/framework/lint"
)

// Options configures a Processor.
type Options struct {
	Conventions Conventions
	Whitelist   []string
	// DryRun computes outcomes without writing files.
	DryRun bool
	// SkipValidation disables the metadata validator on headers.
	SkipValidation bool
	Telemetry      framework.Telemetry
}

// Candidate is one file to canonicalize.
type Candidate struct {
	Path string
	Kind FileKind
}

// CandidatesFromRecords converts indexed files into candidates, dropping
// records whose extension is neither header nor source.
func CandidatesFromRecords(records []cxxindex.FileRecord) []Candidate {
	out := make([]Candidate, 0, len(records))
	for _, rec := range records {
		kind, ok := KindForExt(rec.Ext)
		if !ok {
			continue
		}
		out = append(out, Candidate{Path: rec.FullPath(), Kind: kind})
	}
	return out
}

// Outcome describes what processing did to one file.
type Outcome struct {
	Path     string
	Kind     FileKind
	Modified bool
	// Skipped is set for opted-out and malformed files; Reason says which.
	Skipped bool
	Reason  string
	// Malformed is set when the file ended inside a custom block.
	Malformed    bool
	LateIncludes []LateInclude
	Findings     []lint.Finding
}

// Summary aggregates a batch run.
type Summary struct {
	HeadersModified int
	SourcesModified int
	Skipped         int
	Failed          int
	LateIncludes    int
	Findings        int
}

// Modified returns the total number of rewritten files.
func (s Summary) Modified() int {
	return s.HeadersModified + s.SourcesModified
}

// Processor runs the segment, resolve and synthesize pipeline over files.
type Processor struct {
	opts      Options
	resolver  *Resolver
	synth     *Synthesizer
	segmenter map[FileKind]*Segmenter
	validator *lint.MetadataValidator
}

// NewProcessor binds a processor to a frozen IndexSet.
func NewProcessor(set *cxxindex.IndexSet, opts Options) *Processor {
	resolver := NewResolver(set, opts.Whitelist)
	return &Processor{
		opts:     opts,
		resolver: resolver,
		synth:    NewSynthesizer(opts.Conventions, resolver),
		segmenter: map[FileKind]*Segmenter{
			KindSource: NewSegmenter(opts.Conventions, KindSource),
			KindHeader: NewSegmenter(opts.Conventions, KindHeader),
		},
		validator: lint.NewMetadataValidator(),
	}
}

// Canonicalize returns the canonical content for one file's bytes, encoded
// with the file's own line endings and BOM. The returned outcome has Skipped
// set when the file opts out.
func (p *Processor) Canonicalize(path string, kind FileKind, content []byte) ([]byte, Outcome, error) {
	lines, outcome, err := p.canonicalLines(path, kind, SplitLines(content))
	if err != nil || outcome.Skipped {
		return content, outcome, err
	}
	return DetectFormat(content).Encode(lines), outcome, nil
}

func (p *Processor) canonicalLines(path string, kind FileKind, lines []string) ([]string, Outcome, error) {
	outcome := Outcome{Path: path, Kind: kind}
	if p.opts.Conventions.ShouldSkip(lines) {
		outcome.Skipped = true
		outcome.Reason = "skip marker"
		return lines, outcome, nil
	}
	if kind == KindHeader && !p.opts.SkipValidation {
		outcome.Findings = p.validator.Validate(path, lines)
	}
	pf, err := p.segmenter[kind].Segment(lines)
	if err != nil {
		return nil, outcome, err
	}
	outcome.LateIncludes = pf.LateIncludes
	return p.synth.Synthesize(pf), outcome, nil
}

// ProcessFile canonicalizes one file. The synthesized lines are compared to
// the file's lines one by one; the file is written only when they differ.
func (p *Processor) ProcessFile(c Candidate) (Outcome, error) {
	original, err := os.ReadFile(c.Path)
	if err != nil {
		return Outcome{Path: c.Path, Kind: c.Kind}, err
	}
	lines := SplitLines(original)
	out, outcome, err := p.canonicalLines(c.Path, c.Kind, lines)
	p.report(outcome)
	if errors.Is(err, ErrMalformedCustomBlock) {
		outcome.Skipped = true
		outcome.Malformed = true
		outcome.Reason = err.Error()
		return outcome, nil
	}
	if err != nil || outcome.Skipped {
		return outcome, err
	}
	if slices.Equal(out, lines) {
		return outcome, nil
	}
	outcome.Modified = true
	if p.opts.DryRun {
		return outcome, nil
	}
	if err := writeFileAtomic(c.Path, DetectFormat(original).Encode(out)); err != nil {
		return outcome, err
	}
	return outcome, nil
}

func (p *Processor) report(outcome Outcome) {
	for _, f := range outcome.Findings {
		framework.Emit(p.opts.Telemetry, framework.Event{
			Type:    framework.EventMissingCategory,
			Path:    f.Path,
			Line:    f.Line,
			Message: "Blueprint access doesn't have a category",
			Metadata: map[string]interface{}{
				"text": f.Text,
			},
		})
	}
	for _, late := range outcome.LateIncludes {
		framework.Emit(p.opts.Telemetry, framework.Event{
			Type:    framework.EventLateInclude,
			Path:    outcome.Path,
			Line:    late.Line,
			Message: "include not processed",
			Metadata: map[string]interface{}{
				"text": late.Text,
			},
		})
	}
}

// Run processes every candidate. A failing file is reported and skipped;
// it never stops the batch. Only cancellation of ctx ends the run early.
func (p *Processor) Run(ctx context.Context, candidates []Candidate) (Summary, error) {
	var summary Summary
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		outcome, err := p.processSafely(c)
		summary.LateIncludes += len(outcome.LateIncludes)
		summary.Findings += len(outcome.Findings)
		switch {
		case err != nil:
			summary.Failed++
			framework.Emit(p.opts.Telemetry, framework.Event{
				Type:    framework.EventFileFailed,
				Path:    c.Path,
				Message: err.Error(),
			})
		case outcome.Skipped:
			summary.Skipped++
			eventType := framework.EventFileSkipped
			if outcome.Malformed {
				eventType = framework.EventMalformedBlock
			}
			framework.Emit(p.opts.Telemetry, framework.Event{
				Type:    eventType,
				Path:    c.Path,
				Message: outcome.Reason,
			})
		case outcome.Modified:
			if c.Kind == KindHeader {
				summary.HeadersModified++
			} else {
				summary.SourcesModified++
			}
			framework.Emit(p.opts.Telemetry, framework.Event{
				Type:     framework.EventFileModified,
				Path:     c.Path,
				Message:  c.Kind.String(),
				Metadata: map[string]interface{}{"dry_run": p.opts.DryRun},
			})
		}
	}
	framework.Emit(p.opts.Telemetry, framework.Event{
		Type: framework.EventRunSummary,
		Metadata: map[string]interface{}{
			"headers": summary.HeadersModified,
			"sources": summary.SourcesModified,
			"skipped": summary.Skipped,
			"failed":  summary.Failed,
		},
	})
	return summary, nil
}

func (p *Processor) processSafely(c Candidate) (outcome Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome = Outcome{Path: c.Path, Kind: c.Kind}
			err = fmt.Errorf("panic processing %s: %v", c.Path, r)
		}
	}()
	return p.ProcessFile(c)
}

// writeFileAtomic replaces path with data via a temporary file in the same
// directory, keeping the original permissions.
func writeFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
