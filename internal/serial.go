package internal

import (
	"fmt"
	"regexp"
)

const (
	SerialStrategyOffset  = "offset"
	SerialStrategyPattern = "pattern"
)

var threeDigits = regexp.MustCompile(`^\d{3}$`)

// SerialExtractor pulls the per-file sequence number out of a file name.
// ok is false when the name does not follow the expected convention.
type SerialExtractor interface {
	ExtractSerial(name string) (serial string, ok bool)
}

// OffsetSerial takes the three characters that end four characters before the
// end of the name, e.g. "042" from "IMG_042.JPG".
type OffsetSerial struct{}

func (OffsetSerial) ExtractSerial(name string) (string, bool) {
	if len(name) < 7 {
		return "", false
	}
	serial := name[len(name)-7 : len(name)-4]
	if !threeDigits.MatchString(serial) {
		return "", false
	}
	return serial, true
}

// PatternSerial accepts three digits directly before an extension of three to
// five word characters, e.g. "042" from "DSC042.JPEG".
type PatternSerial struct{}

var trailingSerial = regexp.MustCompile(`(\d{3})\.\w{3,5}$`)

func (PatternSerial) ExtractSerial(name string) (string, bool) {
	m := trailingSerial.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// NewSerialExtractor maps a serial_strategy config value to its extractor.
func NewSerialExtractor(strategy string) (SerialExtractor, error) {
	switch strategy {
	case SerialStrategyOffset, "":
		return OffsetSerial{}, nil
	case SerialStrategyPattern:
		return PatternSerial{}, nil
	}
	return nil, fmt.Errorf("unknown serial strategy %q", strategy)
}
