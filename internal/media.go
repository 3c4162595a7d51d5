package internal

import (
	"fmt"
	"io/fs"
	"path/filepath"
)

// ListFiles walks root and returns every regular file in lexical order within
// each directory. Unreadable subdirectories are reported and skipped; an
// unreadable root is an error.
func ListFiles(root string, log *Logger) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.Warn("skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if d.Name() == lockFileName {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning files: %w", err)
	}
	return files, nil
}
