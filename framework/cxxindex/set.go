package cxxindex

import (
	"path/filepath"

	"github.com/lexcodex/headerlint/framework"
)

// ModuleSubtrees are the folders of a module that are indexed and scanned.
var ModuleSubtrees = []string{"Public", "Private"}

// Layout lists the root trees of one run.
type Layout struct {
	// EngineRoots are indexed in engine mode with the score table.
	EngineRoots []string
	// ExternalRoots are game modules and plugins outside the linted plugin.
	// Their records override engine records of the same name.
	ExternalRoots []string
	// ModuleRoots are the linted plugin's modules; their Public and Private
	// subtrees are indexed.
	ModuleRoots []string
}

// LocalRoots expands ModuleRoots into their Public/Private subtrees.
func (l Layout) LocalRoots() []string {
	var roots []string
	for _, module := range l.ModuleRoots {
		for _, sub := range ModuleSubtrees {
			roots = append(roots, filepath.Join(module, sub))
		}
	}
	return roots
}

// SetConfig carries the options shared by every index of a run.
type SetConfig struct {
	Scores    ScoreTable
	Ignore    []string
	VendorDir string
	Telemetry framework.Telemetry
}

// IndexSet holds the three frozen indices consulted during resolution.
type IndexSet struct {
	LocalHeaders *Index
	LocalSources *Index
	// Engine merges engine and external headers.
	Engine *Index
}

// BuildSet indexes every root of layout. All roots are walked before the set
// is returned, so callers only ever see complete indices.
func BuildSet(layout Layout, cfg SetConfig) (*IndexSet, error) {
	engine, err := NewIndexer(IndexConfig{
		Extension:  "h",
		EngineMode: true,
		Scores:     cfg.Scores,
		VendorDir:  cfg.VendorDir,
		Telemetry:  cfg.Telemetry,
	}).Build(layout.EngineRoots...)
	if err != nil {
		return nil, err
	}
	emitBuilt(cfg.Telemetry, "engine", engine)

	external, err := NewIndexer(IndexConfig{
		Extension:  "h",
		EngineMode: true,
		VendorDir:  cfg.VendorDir,
		Telemetry:  cfg.Telemetry,
	}).Build(layout.ExternalRoots...)
	if err != nil {
		return nil, err
	}
	emitBuilt(cfg.Telemetry, "external", external)

	local := layout.LocalRoots()
	headers, err := NewIndexer(IndexConfig{
		Extension:    "h",
		Ignore:       cfg.Ignore,
		VendorDir:    cfg.VendorDir,
		QuietMissing: true,
		Telemetry:    cfg.Telemetry,
	}).Build(local...)
	if err != nil {
		return nil, err
	}
	sources, err := NewIndexer(IndexConfig{
		Extension:    "cpp",
		Ignore:       cfg.Ignore,
		VendorDir:    cfg.VendorDir,
		QuietMissing: true,
		Telemetry:    cfg.Telemetry,
	}).Build(local...)
	if err != nil {
		return nil, err
	}
	set := &IndexSet{
		LocalHeaders: headers,
		LocalSources: sources,
		Engine:       Overlay(engine, external),
	}
	framework.Emit(cfg.Telemetry, framework.Event{
		Type:    framework.EventIndexBuilt,
		Message: "local",
		Metadata: map[string]interface{}{
			"headers": headers.Len(),
			"sources": sources.Len(),
		},
	})
	return set, nil
}

func emitBuilt(sink framework.Telemetry, kind string, idx *Index) {
	framework.Emit(sink, framework.Event{
		Type:     framework.EventIndexBuilt,
		Message:  kind,
		Metadata: map[string]interface{}{"headers": idx.Len()},
	})
}

// LocalFiles lists every header and source file of the layout's modules that
// the ignore list does not exclude, headers first. Unlike the indices it keeps
// files whose names collide.
func LocalFiles(layout Layout, cfg SetConfig) ([]FileRecord, error) {
	var out []FileRecord
	for _, ext := range []string{"h", "cpp"} {
		files, err := NewIndexer(IndexConfig{
			Extension:    ext,
			Ignore:       cfg.Ignore,
			VendorDir:    cfg.VendorDir,
			QuietMissing: true,
		}).Files(layout.LocalRoots()...)
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}
	return out, nil
}
