package internal

import (
	"sort"
	"time"
)

const (
	yearLayout = "2006"
	dateLayout = "20060102"
	timeLayout = "150405"
)

// CandidateFile is a source file together with its resolved capture time.
// Taken is zero when no timestamp could be resolved.
type CandidateFile struct {
	Path  string
	Taken time.Time
}

func (f CandidateFile) HasTimestamp() bool {
	return !f.Taken.IsZero()
}

// Classification is the result of the pre-pass over the source tree. It is
// computed once, before any file moves, and read-only afterwards.
type Classification struct {
	SingleDate bool
	SingleYear bool

	Years   map[string]int
	Dates   map[string]int
	Unknown []string
}

// Classify resolves every file under root and records which distinct years
// and dates occur. Zero resolvable timestamps yields neither single-date nor
// single-year.
func Classify(root string, resolver *Resolver) ([]CandidateFile, *Classification, error) {
	paths, err := ListFiles(root, resolver.Log)
	if err != nil {
		return nil, nil, err
	}

	files := make([]CandidateFile, 0, len(paths))
	for _, p := range paths {
		files = append(files, CandidateFile{Path: p, Taken: resolver.Resolve(p)})
	}
	return files, classifyFiles(files), nil
}

func classifyFiles(files []CandidateFile) *Classification {
	c := &Classification{
		Years: make(map[string]int),
		Dates: make(map[string]int),
	}
	for _, f := range files {
		if !f.HasTimestamp() {
			c.Unknown = append(c.Unknown, f.Path)
			continue
		}
		c.Years[f.Taken.Format(yearLayout)]++
		c.Dates[f.Taken.Format(dateLayout)]++
	}
	c.SingleDate = len(c.Dates) == 1
	c.SingleYear = len(c.Years) == 1
	return c
}

// SortedYears returns the distinct years in ascending order.
func (c *Classification) SortedYears() []string {
	return sortedKeys(c.Years)
}

// SortedDates returns the distinct dates in ascending order.
func (c *Classification) SortedDates() []string {
	return sortedKeys(c.Dates)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
