package internal

import (
	"errors"
	"fmt"

	"github.com/barasher/go-exiftool"
)

// ExifToolReader reads metadata through a long-running exiftool process. It
// understands far more container formats (HEIC, MOV, MP4, most RAW files) than
// goexif.
type ExifToolReader struct {
	et *exiftool.Exiftool
}

func NewExifToolReader() (*ExifToolReader, error) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("failed to start exiftool: %w", err)
	}
	return &ExifToolReader{et: et}, nil
}

func (r *ExifToolReader) OriginalDateTime(path string) (string, error) {
	infos := r.et.ExtractMetadata(path)
	if len(infos) == 0 {
		return "", &MetadataError{Path: path, Err: errors.New("exiftool returned no metadata")}
	}
	info := infos[0]
	if info.Err != nil {
		return "", &MetadataError{Path: path, Err: info.Err}
	}

	value, err := info.GetString("DateTimeOriginal")
	if err != nil {
		if errors.Is(err, exiftool.ErrKeyNotFound) {
			return "", ErrNoOriginalDate
		}
		return "", &MetadataError{Path: path, Err: err}
	}
	return value, nil
}

func (r *ExifToolReader) Close() error {
	return r.et.Close()
}

// OpenMetadataReader picks the reader for a run. When exiftool is requested
// but cannot be started the run continues on goexif.
func OpenMetadataReader(useExifTool bool, log *Logger) (MetadataReader, func() error) {
	noop := func() error { return nil }
	if !useExifTool {
		return ExifReader{}, noop
	}
	r, err := NewExifToolReader()
	if err != nil {
		log.Warn("%v, using built-in EXIF reader", err)
		return ExifReader{}, noop
	}
	return r, r.Close
}
