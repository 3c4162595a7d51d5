package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// metadataLayout is the EXIF "Date/Time Original" format.
const metadataLayout = "2006:01:02 15:04:05"

// ErrNoOriginalDate means the metadata was readable but carries no original
// capture time.
var ErrNoOriginalDate = errors.New("no original date/time tag")

// MetadataReader returns the raw "Date/Time Original" value embedded in a file.
type MetadataReader interface {
	OriginalDateTime(path string) (string, error)
}

// MetadataError wraps a failure to decode a file's metadata (corrupt or
// unsupported content). Resolution recovers from it.
type MetadataError struct {
	Path string
	Err  error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("metadata read failed for %s: %v", e.Path, e.Err)
}

func (e *MetadataError) Unwrap() error { return e.Err }

// ExifReader reads EXIF with goexif.
type ExifReader struct{}

func (ExifReader) OriginalDateTime(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return "", &MetadataError{Path: path, Err: err}
	}

	tag, err := x.Get(exif.DateTimeOriginal)
	if err != nil {
		var notPresent exif.TagNotPresentError
		if errors.As(err, &notPresent) {
			return "", ErrNoOriginalDate
		}
		return "", &MetadataError{Path: path, Err: err}
	}

	value, err := tag.StringVal()
	if err != nil {
		return "", &MetadataError{Path: path, Err: err}
	}
	return value, nil
}

// Resolver turns a file into its capture time. The zero time means the
// timestamp could not be resolved; that is a valid result, not a failure.
type Resolver struct {
	Reader MetadataReader
	Log    *Logger
}

func NewResolver(reader MetadataReader, log *Logger) *Resolver {
	if reader == nil {
		reader = ExifReader{}
	}
	if log == nil {
		log = Discard()
	}
	return &Resolver{Reader: reader, Log: log}
}

func (r *Resolver) Resolve(path string) time.Time {
	raw, err := r.Reader.OriginalDateTime(path)
	switch {
	case err == nil:
		t, perr := time.Parse(metadataLayout, strings.TrimSpace(raw))
		if perr == nil {
			return t
		}
		r.Log.Warn("unparsable original date %q for %s", raw, path)
	case errors.Is(err, ErrNoOriginalDate):
		// handled by the fallback message below
	case isIOError(err):
		r.Log.Error("could not read %s: %v", path, err)
		return time.Time{}
	default:
		r.Log.Error("%v", err)
	}

	t, err := fileModTime(path)
	if err != nil {
		r.Log.Error("no usable modification time for %s: %v", path, err)
		return time.Time{}
	}
	r.Log.Warn("could not find original date for %s, falling back to last modified time: %s",
		path, t.Format(time.RFC3339))
	return t
}

// fileModTime is the fallback timestamp, taken as UTC wall-clock time.
func fileModTime(path string) (time.Time, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	t := fi.ModTime()
	if t.IsZero() || t.Unix() <= 0 {
		return time.Time{}, fmt.Errorf("modification time %v is not set", t)
	}
	return t.UTC().Truncate(time.Second), nil
}

func isIOError(err error) bool {
	var pathErr *fs.PathError
	return errors.As(err, &pathErr)
}
