package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const lockFileName = ".picsort.lock"

// ErrTargetLocked means another run currently owns the target directory.
var ErrTargetLocked = errors.New("another picsort run is using the target directory")

// TargetLock keeps two runs from picking the same collision slot in one
// target tree.
type TargetLock struct {
	lock *flock.Flock
}

// LockTarget takes the lock file in target. The target must exist.
func LockTarget(target string) (*TargetLock, error) {
	l := flock.New(filepath.Join(target, lockFileName))
	ok, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTargetLocked, target)
	}
	return &TargetLock{lock: l}, nil
}

func (t *TargetLock) Release() error {
	path := t.lock.Path()
	if err := t.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove lock file: %w", err)
	}
	return nil
}
