package internal

import "testing"

func TestOffsetSerial(t *testing.T) {
	tests := []struct {
		name   string
		serial string
		ok     bool
	}{
		{"IMG_042.JPG", "042", true},
		{"DSC00123.NEF", "123", true},
		{"MVI_0001.MOV", "001", true},
		{"IMG_4A2.JPG", "", false},
		{"photo.jpg", "", false},
		{"a.jpg", "", false},
		{"001.JPG", "001", true},
		// the offset ignores how long the extension is
		{"IMG_0042.JPEG", "", false},
	}

	for _, tt := range tests {
		serial, ok := OffsetSerial{}.ExtractSerial(tt.name)
		if serial != tt.serial || ok != tt.ok {
			t.Errorf("ExtractSerial(%q) = %q, %v; want %q, %v", tt.name, serial, ok, tt.serial, tt.ok)
		}
	}
}

func TestPatternSerial(t *testing.T) {
	tests := []struct {
		name   string
		serial string
		ok     bool
	}{
		{"IMG_042.JPG", "042", true},
		{"IMG_0042.JPEG", "042", true},
		{"clip_007.MP4", "007", true},
		{"holiday.jpg", "", false},
		{"IMG_042.X", "", false},
	}

	for _, tt := range tests {
		serial, ok := PatternSerial{}.ExtractSerial(tt.name)
		if serial != tt.serial || ok != tt.ok {
			t.Errorf("ExtractSerial(%q) = %q, %v; want %q, %v", tt.name, serial, ok, tt.serial, tt.ok)
		}
	}
}

func TestNewSerialExtractor(t *testing.T) {
	if ex, err := NewSerialExtractor(""); err != nil {
		t.Errorf("empty strategy: %v", err)
	} else if _, ok := ex.(OffsetSerial); !ok {
		t.Errorf("empty strategy should use offset, got %T", ex)
	}
	if ex, err := NewSerialExtractor(SerialStrategyPattern); err != nil {
		t.Errorf("pattern strategy: %v", err)
	} else if _, ok := ex.(PatternSerial); !ok {
		t.Errorf("expected PatternSerial, got %T", ex)
	}
	if _, err := NewSerialExtractor("guess"); err == nil {
		t.Error("expected an error for an unknown strategy")
	}
}
