package cxxindex

import (
	"path"
	"path/filepath"
	"sort"
)

// FileRecord locates one indexed file.
type FileRecord struct {
	// Root is the directory the walk started from.
	Root string
	// Dir is the stored directory relative to Root, '/' separated. In engine
	// mode the wrapper folders have been stripped so Dir is an import root.
	Dir string
	// Name is the file name without its extension.
	Name string
	// ModulePath is the unstripped relative directory, used for scoring.
	ModulePath string
	// Ext is the extension the record was indexed under, without the dot.
	Ext string
}

// IncludePath returns the quoted include path for the record.
func (r FileRecord) IncludePath() string {
	if r.Dir == "" {
		return r.Name + ".h"
	}
	return r.Dir + "/" + r.Name + ".h"
}

// RelPath returns the path of the file relative to Root, built from the
// unstripped module path.
func (r FileRecord) RelPath() string {
	return path.Join(r.ModulePath, r.Name+"."+r.Ext)
}

// FullPath returns the file's location on disk.
func (r FileRecord) FullPath() string {
	return filepath.Join(r.Root, filepath.FromSlash(r.RelPath()))
}

// Index maps class names to file records. It is immutable once built.
type Index struct {
	records map[string]FileRecord
}

// Lookup returns the record for name.
func (idx *Index) Lookup(name string) (FileRecord, bool) {
	if idx == nil {
		return FileRecord{}, false
	}
	rec, ok := idx.records[name]
	return rec, ok
}

// Len returns the number of indexed names.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.records)
}

// Records returns every record sorted by name.
func (idx *Index) Records() []FileRecord {
	if idx == nil {
		return nil
	}
	out := make([]FileRecord, 0, len(idx.records))
	for _, rec := range idx.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// indexBuilder folds a stream of records into an Index using a comparator.
type indexBuilder struct {
	records map[string]FileRecord
	prefer  func(candidate, existing FileRecord) bool
}

func newIndexBuilder(prefer func(candidate, existing FileRecord) bool) *indexBuilder {
	return &indexBuilder{records: make(map[string]FileRecord), prefer: prefer}
}

func (b *indexBuilder) add(rec FileRecord) {
	existing, ok := b.records[rec.Name]
	if !ok || b.prefer(rec, existing) {
		b.records[rec.Name] = rec
	}
}

func (b *indexBuilder) build() *Index {
	out := &Index{records: b.records}
	b.records = nil
	return out
}

// NewIndex folds records, in order, into an index using the scores'
// conflict rule.
func NewIndex(scores ScoreTable, records ...FileRecord) *Index {
	b := newIndexBuilder(scores.Prefer)
	for _, rec := range records {
		b.add(rec)
	}
	return b.build()
}

// Overlay returns a new index holding every record of base, with the records
// of top replacing base records of the same name.
func Overlay(base, top *Index) *Index {
	b := newIndexBuilder(func(FileRecord, FileRecord) bool { return true })
	for _, idx := range []*Index{base, top} {
		if idx == nil {
			continue
		}
		for _, rec := range idx.records {
			b.add(rec)
		}
	}
	return b.build()
}
