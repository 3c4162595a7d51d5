package internal

import (
	"path/filepath"
	"testing"
	"time"
)

var (
	mayDay    = time.Date(2020, 5, 1, 14, 30, 0, 0, time.UTC)
	oldPhoto  = time.Date(1998, 7, 14, 9, 5, 3, 0, time.UTC)
	newPhoto  = time.Date(2003, 2, 28, 22, 0, 0, 0, time.UTC)
	singleYr  = &Classification{SingleYear: true}
	multiYear = &Classification{}
)

func planPath(t *testing.T, p *Planner, f CandidateFile) (Plan, string) {
	t.Helper()
	plan, err := p.Plan(f)
	if err != nil {
		t.Fatalf("Plan(%s) failed: %v", f.Path, err)
	}
	return plan, plan.Path("/target")
}

func TestPlanner_YearAndDate(t *testing.T) {
	p := NewPlanner(Options{Source: "/card", Target: "/target"}, singleYr, nil)
	_, got := planPath(t, p, CandidateFile{Path: "/card/IMG_042.JPG", Taken: mayDay})

	want := filepath.Join("/target", "2020", "20200501", "042.JPG")
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestPlanner_TimePrefix(t *testing.T) {
	p := NewPlanner(Options{Source: "/card", Target: "/target", AddPrefix: true}, singleYr, nil)
	plan, _ := planPath(t, p, CandidateFile{Path: "/card/IMG_042.JPG", Taken: mayDay})

	if plan.Filename != "143000_042.JPG" {
		t.Errorf("Expected 143000_042.JPG, got %s", plan.Filename)
	}
}

func TestPlanner_SingleDateIsFlat(t *testing.T) {
	class := &Classification{SingleDate: true, SingleYear: true}
	p := NewPlanner(Options{Source: "/card", Target: "/target", AddMillenniumFolder: true}, class, nil)
	_, got := planPath(t, p, CandidateFile{Path: "/card/sub/IMG_042.JPG", Taken: mayDay})

	want := filepath.Join("/target", "20200501", "042.JPG")
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestPlanner_MillenniumFolders(t *testing.T) {
	p := NewPlanner(Options{Source: "/card", Target: "/target", AddMillenniumFolder: true}, multiYear, nil)

	tests := []struct {
		file CandidateFile
		want string
	}{
		{CandidateFile{Path: "/card/IMG_001.JPG", Taken: oldPhoto}, filepath.Join("/target", "19", "1998", "19980714", "001.JPG")},
		{CandidateFile{Path: "/card/IMG_002.JPG", Taken: newPhoto}, filepath.Join("/target", "20", "2003", "20030228", "002.JPG")},
	}
	for _, tt := range tests {
		_, got := planPath(t, p, tt.file)
		if got != tt.want {
			t.Errorf("Expected %s, got %s", tt.want, got)
		}
	}
}

func TestPlanner_MillenniumIgnoredForSingleYear(t *testing.T) {
	p := NewPlanner(Options{Source: "/card", Target: "/target", AddMillenniumFolder: true}, singleYr, nil)
	_, got := planPath(t, p, CandidateFile{Path: "/card/IMG_042.JPG", Taken: mayDay})

	want := filepath.Join("/target", "2020", "20200501", "042.JPG")
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestPlanner_Suffix(t *testing.T) {
	tests := []struct {
		name  string
		opts  Options
		class *Classification
		file  CandidateFile
		want  string
	}{
		{
			name:  "derived from source on year folder",
			opts:  Options{Source: "/import/20200501_Holiday", Target: "/target", AddSuffix: true},
			class: singleYr,
			file:  CandidateFile{Path: "/import/20200501_Holiday/IMG_042.JPG", Taken: mayDay},
			want:  filepath.Join("/target", "2020_Holiday", "20200501", "042.JPG"),
		},
		{
			name:  "custom on date folder",
			opts:  Options{Source: "/card", Target: "/target", AddSuffix: true, CustomSuffix: "Paris"},
			class: &Classification{SingleDate: true, SingleYear: true},
			file:  CandidateFile{Path: "/card/IMG_042.JPG", Taken: mayDay},
			want:  filepath.Join("/target", "20200501_Paris", "042.JPG"),
		},
		{
			name:  "only on millennium folder",
			opts:  Options{Source: "/card", Target: "/target", AddSuffix: true, CustomSuffix: "Scans", AddMillenniumFolder: true},
			class: multiYear,
			file:  CandidateFile{Path: "/card/IMG_001.JPG", Taken: oldPhoto},
			want:  filepath.Join("/target", "19_Scans", "1998", "19980714", "001.JPG"),
		},
		{
			name:  "derived suffix empty after stripping",
			opts:  Options{Source: "/import/2020_", Target: "/target", AddSuffix: true},
			class: singleYr,
			file:  CandidateFile{Path: "/import/2020_/IMG_042.JPG", Taken: mayDay},
			want:  filepath.Join("/target", "2020", "20200501", "042.JPG"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := planPath(t, NewPlanner(tt.opts, tt.class, nil), tt.file)
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestPlanner_InvalidSerialGoesToErrors(t *testing.T) {
	p := NewPlanner(Options{Source: "/card", Target: "/target", AddPrefix: true}, singleYr, nil)
	plan, got := planPath(t, p, CandidateFile{Path: "/card/holiday.jpg", Taken: mayDay})

	want := filepath.Join("/target", "2020", "20200501", ErrorsFolder, "143000_holiday.jpg")
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
	if !plan.NamingError {
		t.Error("Expected NamingError to be set")
	}
}

func TestPlanner_ShortNameIsNamingError(t *testing.T) {
	p := NewPlanner(Options{Source: "/card", Target: "/target"}, singleYr, nil)
	plan, _ := planPath(t, p, CandidateFile{Path: "/card/a.jpg", Taken: mayDay})
	if !plan.NamingError || plan.Filename != "a.jpg" {
		t.Errorf("Expected naming error with original name, got %+v", plan)
	}
}

func TestPlanner_NoTimestamp(t *testing.T) {
	p := NewPlanner(Options{Source: "/card", Target: "/target", AddPrefix: true, AddSuffix: true}, singleYr, nil)
	plan, got := planPath(t, p, CandidateFile{Path: "/card/IMG_042.JPG"})

	want := filepath.Join("/target", OtherFilesFolder, "IMG_042.JPG")
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
	if !plan.Unknown {
		t.Error("Expected Unknown to be set")
	}
}

func TestPlanner_PathEqualsTargetIsNoop(t *testing.T) {
	p := NewPlanner(Options{Source: "/card", Target: "/target"}, singleYr, nil)
	plan, err := p.Plan(CandidateFile{Path: "/target", Taken: mayDay})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if !plan.Noop {
		t.Error("Expected a no-op plan")
	}
}

func TestPlanner_UnderivableSuffixFails(t *testing.T) {
	p := NewPlanner(Options{Source: "/", Target: "/target", AddSuffix: true}, singleYr, nil)
	if _, err := p.Plan(CandidateFile{Path: "/IMG_042.JPG", Taken: mayDay}); err == nil {
		t.Error("Expected an error deriving a suffix from the filesystem root")
	}
}

func TestPlanner_PatternSerial(t *testing.T) {
	p := NewPlanner(Options{Source: "/card", Target: "/target"}, singleYr, PatternSerial{})
	plan, _ := planPath(t, p, CandidateFile{Path: "/card/IMG_0042.JPEG", Taken: mayDay})
	if plan.Filename != "042.JPEG" {
		t.Errorf("Expected 042.JPEG, got %s", plan.Filename)
	}
}

func TestPlanner_Deterministic(t *testing.T) {
	p := NewPlanner(Options{Source: "/card", Target: "/target", AddPrefix: true}, multiYear, nil)
	f := CandidateFile{Path: "/card/IMG_042.JPG", Taken: mayDay}
	_, first := planPath(t, p, f)
	_, second := planPath(t, p, f)
	if first != second {
		t.Errorf("Plan changed between calls: %s vs %s", first, second)
	}
}

func TestDeriveSuffix(t *testing.T) {
	tests := map[string]string{
		"/import/20200501_Holiday": "Holiday",
		"/import/2020_Summer":      "Summer",
		"/import/123_Short":        "123_Short",
		"/import/Wedding":          "Wedding",
		"/import/202005011_Long":   "202005011_Long",
	}
	for source, want := range tests {
		got, err := DeriveSuffix(source)
		if err != nil {
			t.Errorf("DeriveSuffix(%s) failed: %v", source, err)
			continue
		}
		if got != want {
			t.Errorf("DeriveSuffix(%s) = %q, want %q", source, got, want)
		}
	}
}

func TestPlanner_KeepsEarlierCollisionNames(t *testing.T) {
	tests := []struct {
		name   string
		opts   Options
		class  *Classification
		file   CandidateFile
		want   string
		naming bool
	}{
		{
			name:  "renamed serial already in its date folder",
			opts:  Options{Source: "/target", Target: "/target"},
			class: &Classification{SingleDate: true, SingleYear: true},
			file:  CandidateFile{Path: "/target/20200501/042_1.JPG", Taken: mayDay},
			want:  filepath.Join("/target", "20200501", "042_1.JPG"),
		},
		{
			name:  "renamed serial with time prefix",
			opts:  Options{Source: "/target", Target: "/target", AddPrefix: true},
			class: singleYr,
			file:  CandidateFile{Path: "/target/2020/20200501/143000_042_12.JPG", Taken: mayDay},
			want:  filepath.Join("/target", "2020", "20200501", "143000_042_12.JPG"),
		},
		{
			name:   "same name outside the library is not a serial",
			opts:   Options{Source: "/card", Target: "/target"},
			class:  singleYr,
			file:   CandidateFile{Path: "/card/042_1.JPG", Taken: mayDay},
			want:   filepath.Join("/target", "2020", "20200501", ErrorsFolder, "042_1.JPG"),
			naming: true,
		},
		{
			name:  "camera name with underscore keeps the offset rule",
			opts:  Options{Source: "/card", Target: "/target"},
			class: singleYr,
			file:  CandidateFile{Path: "/card/100_1234.JPG", Taken: mayDay},
			want:  filepath.Join("/target", "2020", "20200501", "234.JPG"),
		},
		{
			name:   "prefixed naming error is not prefixed twice",
			opts:   Options{Source: "/target", Target: "/target", AddPrefix: true},
			class:  singleYr,
			file:   CandidateFile{Path: "/target/2020/20200501/errors/143000_holiday.jpg", Taken: mayDay},
			want:   filepath.Join("/target", "2020", "20200501", ErrorsFolder, "143000_holiday.jpg"),
			naming: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, got := planPath(t, NewPlanner(tt.opts, tt.class, nil), tt.file)
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
			if plan.NamingError != tt.naming {
				t.Errorf("NamingError = %v, want %v", plan.NamingError, tt.naming)
			}
		})
	}
}
