package internal

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// renameFunc is swapped in tests to simulate cross-device moves.
var renameFunc = os.Rename

// maxCollisionAttempts bounds the search for a free file name.
const maxCollisionAttempts = 10000

var (
	ErrNoFreeName   = errors.New("no free file name left")
	ErrCopyMismatch = errors.New("copy does not match source")
)

// Outcome is the fate of a single file.
type Outcome int

const (
	OutcomeMoved Outcome = iota
	OutcomeInPlace
	OutcomePlanned
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMoved:
		return "moved"
	case OutcomeInPlace:
		return "already in place"
	case OutcomePlanned:
		return "planned"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// MoveResult reports what happened to one file.
type MoveResult struct {
	Source      string
	Destination string
	Outcome     Outcome
	// Renamed is set when a collision forced a numbered file name.
	Renamed bool
	Err     error
}

// Mover carries out plans under a target root.
type Mover struct {
	Target string
	DryRun bool
	Log    *Logger

	// planned holds the destinations a dry run has already handed out, since
	// nothing lands on disk to make them taken.
	planned map[string]bool
}

func NewMover(target string, dryRun bool, log *Logger) *Mover {
	if log == nil {
		log = Discard()
	}
	return &Mover{Target: target, DryRun: dryRun, Log: log, planned: make(map[string]bool)}
}

// Move relocates f according to plan. It never overwrites an existing file and
// never returns without reporting the outcome.
func (m *Mover) Move(f CandidateFile, plan Plan) MoveResult {
	res := MoveResult{Source: f.Path}
	name := filepath.Base(f.Path)

	if plan.Noop {
		res.Destination = f.Path
		res.Outcome = OutcomeInPlace
		m.Log.Info("%s was already in %s", name, filepath.Dir(f.Path))
		return res
	}

	dest := plan.Path(m.Target)
	res.Destination = dest
	if samePath(f.Path, dest) {
		res.Outcome = OutcomeInPlace
		m.Log.Info("%s was already in %s", name, filepath.Dir(f.Path))
		return res
	}

	if m.DryRun {
		final, renamed, err := nextFreePath(dest, m.planned)
		if err != nil {
			return m.fail(res, err)
		}
		m.planned[final] = true
		res.Destination, res.Renamed, res.Outcome = final, renamed, OutcomePlanned
		m.Log.Log(ActionDryRun, "would move %s to %s", f.Path, final)
		return res
	}

	if err := m.ensureDir(filepath.Dir(dest)); err != nil {
		return m.fail(res, err)
	}

	final, renamed, err := nextFreePath(dest, nil)
	if err != nil {
		return m.fail(res, err)
	}
	if renamed {
		m.Log.Warn("%s already exists, using %s", dest, filepath.Base(final))
	}

	if err := m.moveFile(f.Path, final); err != nil {
		return m.fail(res, err)
	}

	res.Destination, res.Renamed, res.Outcome = final, renamed, OutcomeMoved
	m.Log.Log(ActionMoved, "%s to %s", f.Path, final)
	return res
}

func (m *Mover) fail(res MoveResult, err error) MoveResult {
	res.Outcome = OutcomeFailed
	res.Err = err
	m.Log.Error("failed to move %s: %v", res.Source, err)
	return res
}

// ensureDir creates dir and reports the topmost directory it had to create.
func (m *Mover) ensureDir(dir string) error {
	var top string
	for p := dir; ; p = filepath.Dir(p) {
		if _, err := os.Stat(p); err == nil {
			break
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to stat %s: %w", p, err)
		}
		top = p
		if parent := filepath.Dir(p); parent == p {
			break
		}
	}
	if top == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	m.Log.Log(ActionCreated, "%s", top)
	return nil
}

// moveFile renames src to dst, copying across devices when a rename cannot.
func (m *Mover) moveFile(src, dst string) error {
	err := renameFunc(src, dst)
	if err == nil {
		return nil
	}
	if !isCrossDevice(err) {
		return err
	}

	if err := copyFileAtomic(src, dst); err != nil {
		return fmt.Errorf("failed to copy file %s to %s: %w", src, dst, err)
	}
	if err := os.Remove(src); err != nil {
		m.Log.Warn("copied %s but could not remove it: %v", src, err)
	}
	return nil
}

// nextFreePath returns dest when nothing exists there, otherwise the first free
// "name_N.ext" with N counting from 1. Paths in reserved count as taken.
func nextFreePath(dest string, reserved map[string]bool) (string, bool, error) {
	free, err := isFree(dest, reserved)
	if err != nil || free {
		return dest, false, err
	}

	ext := filepath.Ext(dest)
	base := strings.TrimSuffix(dest, ext)
	for i := 1; i <= maxCollisionAttempts; i++ {
		try := fmt.Sprintf("%s_%d%s", base, i, ext)
		free, err := isFree(try, reserved)
		if err != nil {
			return "", false, err
		}
		if free {
			return try, true, nil
		}
	}
	return "", false, fmt.Errorf("%w: %d numbered names taken for %s", ErrNoFreeName, maxCollisionAttempts, dest)
}

func isFree(path string, reserved map[string]bool) (bool, error) {
	if reserved[path] {
		return false, nil
	}
	_, err := os.Lstat(path)
	if err == nil {
		return false, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	return false, fmt.Errorf("failed to stat %s: %w", path, err)
}

// copyFileAtomic copies src next to dest under a temporary name, verifies size
// and SHA-256, keeps the modification time and renames into place.
func copyFileAtomic(src, dest string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := out.Name()
	defer os.Remove(tmp)

	srcHash := sha256.New()
	dstHash := sha256.New()
	written, err := io.Copy(io.MultiWriter(out, dstHash), io.TeeReader(in, srcHash))
	if err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if written != srcInfo.Size() {
		return fmt.Errorf("%w: source %d bytes, copied %d bytes", ErrCopyMismatch, srcInfo.Size(), written)
	}
	if !bytes.Equal(srcHash.Sum(nil), dstHash.Sum(nil)) {
		return fmt.Errorf("%w: sha256 differs", ErrCopyMismatch)
	}

	if err := os.Chmod(tmp, srcInfo.Mode().Perm()); err != nil {
		return err
	}
	if err := os.Chtimes(tmp, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
		return err
	}
	return os.Rename(tmp, dest)
}

func isCrossDevice(err error) bool {
	var le *os.LinkError
	if errors.As(err, &le) {
		return errors.Is(le.Err, syscall.EXDEV)
	}
	return errors.Is(err, syscall.EXDEV)
}

func samePath(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}
