package cxxindex

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/lexcodex/headerlint/framework"
)

// DefaultVendorDir is never indexed, at any depth.
const DefaultVendorDir = "Microsoft"

// wrapperDirs are stripped from engine directories, in this order, to turn a
// module-relative directory into an include root.
var wrapperDirs = []string{"Public", "Classes", "Private"}

// IndexConfig configures an Indexer.
type IndexConfig struct {
	// Extension selects the files to index, without the dot ("h", "cpp").
	Extension string
	// EngineMode strips wrapper folders from stored directories and disables
	// the ignore list.
	EngineMode bool
	Scores     ScoreTable
	// Ignore holds project-relative paths, bare file names or doublestar
	// patterns. Only consulted outside engine mode.
	Ignore    []string
	VendorDir string
	// QuietMissing skips missing roots without reporting them.
	QuietMissing bool
	Telemetry    framework.Telemetry
}

// Indexer walks root trees and folds every matching file into an Index.
type Indexer struct {
	config IndexConfig
}

// NewIndexer builds an indexer, defaulting the vendor folder.
func NewIndexer(config IndexConfig) *Indexer {
	if config.VendorDir == "" {
		config.VendorDir = DefaultVendorDir
	}
	config.Extension = strings.TrimPrefix(config.Extension, ".")
	return &Indexer{config: config}
}

// Build walks roots in order and returns the resulting index. A missing root
// is reported and skipped; it never fails the build.
func (ix *Indexer) Build(roots ...string) (*Index, error) {
	if ix.config.Extension == "" {
		return nil, errors.New("index extension required")
	}
	builder := newIndexBuilder(ix.config.Scores.Prefer)
	for _, root := range roots {
		if err := ix.walk(root, builder.add); err != nil {
			return nil, err
		}
	}
	return builder.build(), nil
}

// Files walks roots in order and returns every matching record without
// resolving name collisions.
func (ix *Indexer) Files(roots ...string) ([]FileRecord, error) {
	if ix.config.Extension == "" {
		return nil, errors.New("index extension required")
	}
	var out []FileRecord
	for _, root := range roots {
		err := ix.walk(root, func(rec FileRecord) { out = append(out, rec) })
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (ix *Indexer) walk(root string, visit func(FileRecord)) error {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		if ix.config.QuietMissing {
			return nil
		}
		framework.Emit(ix.config.Telemetry, framework.Event{
			Type:    framework.EventRootMissing,
			Path:    root,
			Message: "index root not found",
		})
		return nil
	}
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Printf("index warning: %v", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			rel = ""
		}
		if d.IsDir() {
			if ix.isVendor(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		modulePath := path.Dir(rel)
		if modulePath == "." {
			modulePath = ""
		}
		name, ok := ix.className(d.Name())
		if !ok {
			return nil
		}
		dir := modulePath
		if ix.config.EngineMode {
			dir = ImportRoot(modulePath)
		} else if ix.ignored(rel, d.Name()) {
			return nil
		}
		visit(FileRecord{
			Root:       root,
			Dir:        dir,
			Name:       name,
			ModulePath: modulePath,
			Ext:        ix.config.Extension,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("index %s: %w", root, err)
	}
	return nil
}

func (ix *Indexer) className(file string) (string, bool) {
	suffix := "." + ix.config.Extension
	if !strings.HasSuffix(file, suffix) || len(file) == len(suffix) {
		return "", false
	}
	return strings.TrimSuffix(file, suffix), true
}

func (ix *Indexer) isVendor(rel string) bool {
	if rel == "" {
		return false
	}
	for _, segment := range strings.Split(rel, "/") {
		if segment == ix.config.VendorDir {
			return true
		}
	}
	return false
}

func (ix *Indexer) ignored(rel, file string) bool {
	for _, entry := range ix.config.Ignore {
		entry = filepath.ToSlash(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		if entry == rel || entry == file {
			return true
		}
		if !strings.ContainsAny(entry, "*?[{") {
			continue
		}
		if ok, err := doublestar.Match(entry, rel); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(entry, file); err == nil && ok {
			return true
		}
	}
	return false
}

// ImportRoot strips the wrapper folders from an engine module directory.
// For each wrapper the text up to and including its last occurrence is
// removed, then a leading '/'.
func ImportRoot(dir string) string {
	for _, wrapper := range wrapperDirs {
		if i := strings.LastIndex(dir, wrapper); i != -1 {
			dir = dir[i+len(wrapper):]
		}
		dir = strings.TrimPrefix(dir, "/")
	}
	return strings.TrimSpace(dir)
}
