package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// AnalyticsOptions contains configuration for source analysis
type AnalyticsOptions struct {
	Format string
}

// AnalyticsResults is a read-only preview of how a source tree would be laid out.
type AnalyticsResults struct {
	FolderPath   string         `json:"folder_path"`
	TotalFiles   int            `json:"total_files"`
	SingleDate   bool           `json:"single_date"`
	SingleYear   bool           `json:"single_year"`
	Years        map[string]int `json:"years"`
	Dates        map[string]int `json:"dates"`
	Unknown      []string       `json:"unknown"`
	NamingErrors []string       `json:"naming_errors"`
	DateRange    *DateRange     `json:"date_range,omitempty"`

	ScanDuration time.Duration `json:"scan_duration"`
}

type DateRange struct {
	Earliest time.Time `json:"earliest"`
	Latest   time.Time `json:"latest"`
}

// AnalyzeFolder runs the classification pre-pass and reports what it found
// without touching any file.
func AnalyzeFolder(folderPath string, resolver *Resolver, serials SerialExtractor) (*AnalyticsResults, error) {
	startTime := time.Now()

	files, class, err := Classify(folderPath, resolver)
	if err != nil {
		return nil, err
	}

	results := &AnalyticsResults{
		FolderPath: folderPath,
		TotalFiles: len(files),
		SingleDate: class.SingleDate,
		SingleYear: class.SingleYear,
		Years:      class.Years,
		Dates:      class.Dates,
		Unknown:    class.Unknown,
	}

	for _, f := range files {
		if !f.HasTimestamp() {
			continue
		}
		if _, ok := serials.ExtractSerial(filepath.Base(f.Path)); !ok {
			results.NamingErrors = append(results.NamingErrors, f.Path)
		}
		if results.DateRange == nil {
			results.DateRange = &DateRange{Earliest: f.Taken, Latest: f.Taken}
			continue
		}
		if f.Taken.Before(results.DateRange.Earliest) {
			results.DateRange.Earliest = f.Taken
		}
		if f.Taken.After(results.DateRange.Latest) {
			results.DateRange.Latest = f.Taken
		}
	}

	results.ScanDuration = time.Since(startTime)
	return results, nil
}

// DisplayAnalytics formats and writes the analysis results
func DisplayAnalytics(w io.Writer, results *AnalyticsResults, options *AnalyticsOptions) error {
	switch options.Format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(results)
	case "table", "":
		_, err := fmt.Fprintln(w, renderAnalytics(results))
		return err
	}
	return fmt.Errorf("unsupported format %q (want table or json)", options.Format)
}

func renderAnalytics(results *AnalyticsResults) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("picsort analysis: " + results.FolderPath)
	tw.AppendHeader(table.Row{"Year", "Date", "Files"})

	class := &Classification{Years: results.Years, Dates: results.Dates}
	for _, year := range class.SortedYears() {
		tw.AppendRow(table.Row{year, "", strconv.Itoa(results.Years[year])})
		for _, date := range class.SortedDates() {
			if date[:4] == year {
				tw.AppendRow(table.Row{"", date, strconv.Itoa(results.Dates[date])})
			}
		}
	}

	tw.AppendSeparator()
	tw.AppendRow(table.Row{OtherFilesFolder, "", strconv.Itoa(len(results.Unknown))})
	tw.AppendRow(table.Row{"Naming errors", "", strconv.Itoa(len(results.NamingErrors))})
	tw.AppendRow(table.Row{"Total", "", strconv.Itoa(results.TotalFiles)})
	tw.AppendFooter(table.Row{
		"single date: " + yesNo(results.SingleDate),
		"single year: " + yesNo(results.SingleYear),
		results.ScanDuration.Round(time.Millisecond).String(),
	})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
	})
	return tw.Render()
}
