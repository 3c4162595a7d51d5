package internal

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// CleanupResult describes what RemoveEmptyTree left behind.
type CleanupResult struct {
	RemovedDirs int
	Residue     []string
}

// RemoveEmptyTree deletes every empty directory under root, deepest first,
// and root itself when it ends up empty. Files are never removed; any that
// remain are returned as residue.
func RemoveEmptyTree(root string, log *Logger) (CleanupResult, error) {
	var res CleanupResult
	var dirs []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			dirs = append(dirs, path)
		} else {
			res.Residue = append(res.Residue, path)
		}
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	for i := len(dirs) - 1; i >= 0; i-- {
		entries, err := os.ReadDir(dirs[i])
		if err != nil {
			log.Warn("could not read %s: %v", dirs[i], err)
			continue
		}
		if len(entries) > 0 {
			continue
		}
		if err := os.Remove(dirs[i]); err != nil {
			log.Warn("could not remove %s: %v", dirs[i], err)
			continue
		}
		res.RemovedDirs++
		log.Log(ActionDeleted, "%s", dirs[i])
	}

	if len(res.Residue) > 0 {
		log.Warn("%s still contains %d file(s), leaving them in place", root, len(res.Residue))
		for _, f := range res.Residue {
			log.Warn("left behind: %s", f)
		}
	}
	return res, nil
}
