package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Summary counts the fate of every file in a run.
type Summary struct {
	Files        int
	Moved        int
	InPlace      int
	Planned      int
	Renamed      int
	Unknown      int
	NamingErrors int
	Failed       int

	Class   *Classification
	Errors  *ErrorStats
	Cleanup *CleanupResult
}

// Runner drives a full run: pre-pass, move pass and optional source cleanup.
type Runner struct {
	Options  Options
	Resolver *Resolver
	Serials  SerialExtractor
	Log      *Logger
}

func NewRunner(opts Options, resolver *Resolver, serials SerialExtractor, log *Logger) *Runner {
	if log == nil {
		log = Discard()
	}
	if resolver == nil {
		resolver = NewResolver(nil, log)
	}
	if serials == nil {
		serials = OffsetSerial{}
	}
	return &Runner{Options: opts, Resolver: resolver, Serials: serials, Log: log}
}

// Run only returns an error for problems that stop the whole run: bad
// options, an unreadable source or a locked target. Per-file failures end up
// in the summary.
func (r *Runner) Run() (*Summary, error) {
	opts := r.Options
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	info, err := os.Stat(opts.Source)
	if err != nil {
		return nil, fmt.Errorf("source does not exist: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source is not a directory: %s", opts.Source)
	}

	r.Log.Log(ActionSource, "%s", opts.Source)
	r.Log.Log(ActionTarget, "%s", opts.Target)

	r.Log.Step("analysing dates")
	files, class, err := Classify(opts.Source, r.Resolver)
	if err != nil {
		return nil, err
	}
	r.Log.Info("%d files, %d distinct dates, %d distinct years, %d without date",
		len(files), len(class.Dates), len(class.Years), len(class.Unknown))

	sum := &Summary{Files: len(files), Class: class, Errors: NewErrorStats()}

	var lock *TargetLock
	if !opts.DryRun {
		if err := NewMover(opts.Target, false, r.Log).ensureDir(opts.Target); err != nil {
			return nil, err
		}
		lock, err = LockTarget(opts.Target)
		if err != nil {
			return nil, err
		}
	}

	r.Log.Step("moving files")
	planner := NewPlanner(opts, class, r.Serials)
	mover := NewMover(opts.Target, opts.DryRun, r.Log)
	for _, f := range files {
		r.process(planner, mover, f, sum)
	}

	if lock != nil {
		if err := lock.Release(); err != nil {
			r.Log.Warn("%v", err)
		}
	}

	if opts.DeleteSource && !opts.DryRun {
		r.Log.Step("removing source")
		if within(opts.Target, opts.Source) {
			r.Log.Warn("target %s lies inside source, not removing source", opts.Target)
		} else {
			cleanup, err := RemoveEmptyTree(opts.Source, r.Log)
			if err != nil {
				r.Log.Error("%v", err)
			}
			sum.Cleanup = &cleanup
		}
	}

	return sum, nil
}

func (r *Runner) process(planner *Planner, mover *Mover, f CandidateFile, sum *Summary) {
	plan, err := planner.Plan(f)
	if err != nil {
		r.Log.Error("skipping %s: %v", f.Path, err)
		sum.Failed++
		sum.Errors.Add(CategorizeError(f.Path, err))
		return
	}

	res := mover.Move(f, plan)
	switch res.Outcome {
	case OutcomeMoved:
		sum.Moved++
	case OutcomeInPlace:
		sum.InPlace++
	case OutcomePlanned:
		sum.Planned++
	case OutcomeFailed:
		sum.Failed++
		sum.Errors.Add(CategorizeError(f.Path, res.Err))
		return
	}
	if res.Renamed {
		sum.Renamed++
	}
	if plan.Unknown {
		sum.Unknown++
	}
	if plan.NamingError {
		sum.NamingErrors++
		r.Log.Warn("%s has no serial number, filed under %s", filepath.Base(f.Path), ErrorsFolder)
	}
}

// Table renders the summary for the console.
func (s *Summary) Table() string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Result", "Files"})

	rows := []struct {
		label string
		n     int
	}{
		{"Scanned", s.Files},
		{"Moved", s.Moved},
		{"Already in place", s.InPlace},
		{"Planned (dry run)", s.Planned},
		{"Renamed on collision", s.Renamed},
		{"Without date (" + OtherFilesFolder + ")", s.Unknown},
		{"Naming errors (" + ErrorsFolder + ")", s.NamingErrors},
		{"Failed", s.Failed},
	}
	for _, row := range rows {
		tw.AppendRow(table.Row{row.label, strconv.Itoa(row.n)})
	}
	if s.Class != nil {
		tw.AppendSeparator()
		tw.AppendRow(table.Row{"Single date", yesNo(s.Class.SingleDate)})
		tw.AppendRow(table.Row{"Single year", yesNo(s.Class.SingleYear)})
	}
	if s.Cleanup != nil {
		tw.AppendSeparator()
		tw.AppendRow(table.Row{"Source folders removed", strconv.Itoa(s.Cleanup.RemovedDirs)})
		tw.AppendRow(table.Row{"Left in source", strconv.Itoa(len(s.Cleanup.Residue))})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})
	return tw.Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// within reports whether path is root or lies below it.
func within(path, root string) bool {
	absPath, err1 := filepath.Abs(path)
	absRoot, err2 := filepath.Abs(root)
	if err := errors.Join(err1, err2); err != nil {
		return false
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
