package lint

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// DefaultMaxPathLength is the longest project-relative path accepted.
const DefaultMaxPathLength = 170

// LongPath is a file whose project-relative path exceeds the limit.
type LongPath struct {
	Path   string
	Length int
}

// AuditFilenames walks root, skipping hidden directories, and returns every
// file whose path relative to root is longer than limit characters.
func AuditFilenames(root string, limit int) ([]LongPath, error) {
	if limit <= 0 {
		limit = DefaultMaxPathLength
	}
	var long []LongPath
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if n := len(rel); n > limit {
			long = append(long, LongPath{Path: filepath.ToSlash(rel), Length: n})
		}
		return nil
	})
	return long, err
}
