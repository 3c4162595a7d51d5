package internal

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	// OtherFilesFolder receives files without a resolvable timestamp.
	OtherFilesFolder = "Other files"
	// ErrorsFolder sits under a date folder and receives files whose name
	// carries no valid serial.
	ErrorsFolder = "errors"
)

// ErrSourceRequired is returned when no source directory was given.
var ErrSourceRequired = errors.New("source option is required")

// ErrNoDestination is returned by Plan when no target path can be built.
var ErrNoDestination = errors.New("cannot build a destination")

// folderDatePrefix matches the date-like token photographers put in front of
// an import folder name, e.g. "20200501_" in "20200501_Holiday".
var folderDatePrefix = regexp.MustCompile(`^\d{4,8}_`)

// collisionTail is the "_N" suffix the Mover appends to a taken name.
var collisionTail = regexp.MustCompile(`_[1-9]\d*$`)

// Options is the immutable run configuration.
type Options struct {
	Source              string
	Target              string
	AddPrefix           bool
	AddSuffix           bool
	CustomSuffix        string
	AddMillenniumFolder bool
	DryRun              bool
	DeleteSource        bool
}

func (o Options) Validate() error {
	if strings.TrimSpace(o.Source) == "" {
		return ErrSourceRequired
	}
	if strings.TrimSpace(o.Target) == "" {
		return errors.New("target directory is empty")
	}
	return nil
}

// Plan is where one file should go, relative to the target root.
type Plan struct {
	// Noop is set when the file is already where it belongs.
	Noop        bool
	Segments    []string
	Filename    string
	NamingError bool
	Unknown     bool
}

// Path joins target, every non-empty segment and the filename.
func (p Plan) Path(target string) string {
	parts := make([]string, 0, len(p.Segments)+2)
	parts = append(parts, target)
	for _, s := range p.Segments {
		if s != "" {
			parts = append(parts, s)
		}
	}
	parts = append(parts, p.Filename)
	return filepath.Join(parts...)
}

// Planner computes destinations. It holds no mutable state; the same input
// always yields the same plan.
type Planner struct {
	opts    Options
	class   *Classification
	serials SerialExtractor
}

func NewPlanner(opts Options, class *Classification, serials SerialExtractor) *Planner {
	if class == nil {
		class = &Classification{}
	}
	if serials == nil {
		serials = OffsetSerial{}
	}
	return &Planner{opts: opts, class: class, serials: serials}
}

func (p *Planner) Plan(f CandidateFile) (Plan, error) {
	if filepath.Clean(f.Path) == filepath.Clean(p.opts.Target) {
		return Plan{Noop: true}, nil
	}

	name := filepath.Base(f.Path)
	if name == "." || name == string(filepath.Separator) {
		return Plan{}, fmt.Errorf("%w: no file name in %q", ErrNoDestination, f.Path)
	}

	if !f.HasTimestamp() {
		return Plan{Segments: []string{OtherFilesFolder}, Filename: name, Unknown: true}, nil
	}

	suffix, err := p.suffix()
	if err != nil {
		return Plan{}, err
	}

	var prefix string
	if p.opts.AddPrefix {
		prefix = f.Taken.Format(timeLayout) + "_"
	}

	year := f.Taken.Format(yearLayout)
	date := f.Taken.Format(dateLayout)

	var segments []string
	switch {
	case p.class.SingleDate:
		segments = []string{date + suffix}
	case !p.opts.AddMillenniumFolder || p.class.SingleYear:
		segments = []string{year + suffix, date}
	default:
		segments = []string{year[:2] + suffix, year, date}
	}

	plan := Plan{Segments: segments}
	if p.inFolder(f.Path, segments) && p.renamedEarlier(name, prefix) {
		plan.Filename = name
		return plan, nil
	}
	if serial, ok := p.serials.ExtractSerial(name); ok {
		plan.Filename = prefix + serial + filepath.Ext(name)
		return plan, nil
	}

	plan.Segments = append(plan.Segments, ErrorsFolder)
	plan.NamingError = true
	plan.Filename = prefix + name
	if prefix != "" && strings.HasPrefix(name, prefix) && p.inFolder(f.Path, plan.Segments) {
		// sorted before with the same prefix
		plan.Filename = name
	}
	return plan, nil
}

// inFolder reports whether path sits directly in the target folder named by
// segments.
func (p *Planner) inFolder(path string, segments []string) bool {
	return filepath.Clean(filepath.Dir(path)) == Plan{Segments: segments}.Path(p.opts.Target)
}

// renamedEarlier reports whether name is what the Mover produces when the
// planned name was taken: the planned name plus "_N" before the extension.
func (p *Planner) renamedEarlier(name, prefix string) bool {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	loc := collisionTail.FindStringIndex(stem)
	if loc == nil {
		return false
	}
	base := stem[:loc[0]] + ext
	serial, ok := p.serials.ExtractSerial(base)
	return ok && prefix+serial+ext == base
}

// suffix returns the folder suffix including its leading underscore, or ""
// when suffixing is off or nothing usable can be derived.
func (p *Planner) suffix() (string, error) {
	if !p.opts.AddSuffix {
		return "", nil
	}
	if custom := strings.TrimSpace(p.opts.CustomSuffix); custom != "" {
		return "_" + custom, nil
	}
	derived, err := DeriveSuffix(p.opts.Source)
	if err != nil {
		return "", err
	}
	if derived == "" {
		return "", nil
	}
	return "_" + derived, nil
}

// DeriveSuffix turns the source folder name into a suffix by dropping a
// leading date token: "20200501_Holiday" becomes "Holiday".
func DeriveSuffix(source string) (string, error) {
	abs, err := filepath.Abs(source)
	if err != nil {
		return "", fmt.Errorf("failed to resolve source %s: %w", source, err)
	}
	base := filepath.Base(abs)
	if base == string(filepath.Separator) || base == "." || base == filepath.VolumeName(abs) {
		return "", fmt.Errorf("%w: no suffix derivable from source %s", ErrNoDestination, source)
	}
	return folderDatePrefix.ReplaceAllString(base, ""), nil
}
