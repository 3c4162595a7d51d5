package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"syscall"
)

// ErrorCategory groups per-file failures by what went wrong.
type ErrorCategory string

const (
	ErrorCategoryIO        ErrorCategory = "io_error"
	ErrorCategoryCollision ErrorCategory = "collision_error"
	ErrorCategoryPlan      ErrorCategory = "plan_error"
	ErrorCategoryCopy      ErrorCategory = "copy_error"
	ErrorCategoryUnknown   ErrorCategory = "unknown_error"
)

// ErrorSeverity separates failures that will hit every remaining file
// (critical) from failures local to one file.
type ErrorSeverity string

const (
	ErrorSeverityCritical ErrorSeverity = "critical"
	ErrorSeverityError    ErrorSeverity = "error"
)

// ProcessError is a categorized per-file failure.
type ProcessError struct {
	FilePath    string
	Category    ErrorCategory
	Severity    ErrorSeverity
	OriginalErr error
	Suggestion  string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("[%s/%s] %s: %v", e.Severity, e.Category, e.FilePath, e.OriginalErr)
}

func (e *ProcessError) Unwrap() error { return e.OriginalErr }

type errorRule struct {
	target     error
	category   ErrorCategory
	severity   ErrorSeverity
	suggestion string
}

// errorRules is checked in order with errors.Is; the first match wins.
// Errno values come wrapped in *os.PathError or *os.LinkError from the Mover.
var errorRules = []errorRule{
	{syscall.ENOSPC, ErrorCategoryIO, ErrorSeverityCritical, "The target drive is full: free up disk space and run again"},
	{syscall.EROFS, ErrorCategoryIO, ErrorSeverityCritical, "The target is mounted read-only: remount it writable"},
	{fs.ErrPermission, ErrorCategoryIO, ErrorSeverityCritical, "Check write permission on the target and the source folders"},
	{syscall.ENAMETOOLONG, ErrorCategoryIO, ErrorSeverityError, "Use a shorter target path or suffix"},
	{syscall.EIO, ErrorCategoryIO, ErrorSeverityError, "The drive reported a read or write failure: check its health"},
	{fs.ErrNotExist, ErrorCategoryIO, ErrorSeverityError, "The file vanished during the run: check whether the drive disconnected"},
	{ErrNoFreeName, ErrorCategoryCollision, ErrorSeverityError, "Too many files share this name in one folder: move some away"},
	{ErrCopyMismatch, ErrorCategoryCopy, ErrorSeverityError, "The copy did not verify and the original was kept: check the drives"},
	{ErrNoDestination, ErrorCategoryPlan, ErrorSeverityError, "Name the folder suffix yourself with -x NAME"},
}

// CategorizeError wraps err in a ProcessError for filePath. It returns nil for
// a nil error.
func CategorizeError(filePath string, err error) *ProcessError {
	if err == nil {
		return nil
	}

	procErr := &ProcessError{
		FilePath:    filePath,
		Category:    ErrorCategoryUnknown,
		Severity:    ErrorSeverityError,
		OriginalErr: err,
		Suggestion:  "Unexpected failure: see the log above",
	}
	for _, rule := range errorRules {
		if errors.Is(err, rule.target) {
			procErr.Category = rule.category
			procErr.Severity = rule.severity
			procErr.Suggestion = rule.suggestion
			break
		}
	}
	return procErr
}

// recentErrors is how many failures ErrorStats keeps for the report.
const recentErrors = 5

// ErrorStats tracks errors over a run.
type ErrorStats struct {
	Total      int
	Critical   int
	Errors     int
	ByCategory map[ErrorCategory]int
	LastErrors []*ProcessError
}

func NewErrorStats() *ErrorStats {
	return &ErrorStats{
		ByCategory: make(map[ErrorCategory]int),
		LastErrors: make([]*ProcessError, 0, recentErrors),
	}
}

func (s *ErrorStats) Add(err *ProcessError) {
	s.Total++
	s.ByCategory[err.Category]++
	if err.Severity == ErrorSeverityCritical {
		s.Critical++
	} else {
		s.Errors++
	}

	if len(s.LastErrors) == recentErrors {
		s.LastErrors = s.LastErrors[1:]
	}
	s.LastErrors = append(s.LastErrors, err)
}

// GenerateReport renders the end-of-run failure report.
func (s *ErrorStats) GenerateReport() string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n%d files failed (%d critical, %d per-file)\n", s.Total, s.Critical, s.Errors)

	categories := make([]string, 0, len(s.ByCategory))
	for cat := range s.ByCategory {
		categories = append(categories, string(cat))
	}
	sort.Strings(categories)
	b.WriteString("\nBy category:\n")
	for _, cat := range categories {
		fmt.Fprintf(&b, "  %-16s %d\n", cat, s.ByCategory[ErrorCategory(cat)])
	}

	b.WriteString("\nLatest failures:\n")
	for _, err := range s.LastErrors {
		fmt.Fprintf(&b, "  %s [%s]\n    %v\n", err.FilePath, err.Severity, err.OriginalErr)
		if err.Suggestion != "" {
			fmt.Fprintf(&b, "    hint: %s\n", err.Suggestion)
		}
	}

	b.WriteString("\nNext:\n")
	if s.Critical > 0 {
		b.WriteString("  - fix the critical problem first, every later file hit it too\n")
	}
	if s.ByCategory[ErrorCategoryCopy] > 0 {
		b.WriteString("  - check the drives before moving across them again\n")
	}
	b.WriteString("  - failed files stay in the source folder; run again once fixed\n")

	return b.String()
}
