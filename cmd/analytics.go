package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"picsort/internal"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		sourceFlag   string
		formatFlag   string
		exifToolFlag bool
	)

	cmd := &cobra.Command{
		Use:   "analyze -s SOURCE",
		Short: "Preview dates and naming problems in a folder without moving anything",
		Long: `Resolve the capture date of every file under SOURCE and report how many
files fall on each year and date, which files have no date at all and which
names carry no serial number.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := os.Stat(sourceFlag)
			if err != nil || !info.IsDir() {
				return fmt.Errorf("folder does not exist or is not a directory: %s", sourceFlag)
			}

			conf, err := internal.LoadConfig()
			if err != nil {
				return err
			}

			// Per-file warnings would drown the report.
			logger := internal.Discard()
			reader, closeReader := internal.OpenMetadataReader(exifToolFlag || conf.UseExifTool, logger)
			defer closeReader()

			serials, err := internal.NewSerialExtractor(conf.SerialStrategy)
			if err != nil {
				return err
			}

			options := &internal.AnalyticsOptions{Format: formatFlag}
			results, err := internal.AnalyzeFolder(sourceFlag, internal.NewResolver(reader, logger), serials)
			if err != nil {
				return fmt.Errorf("failed to analyze folder: %w", err)
			}

			return internal.DisplayAnalytics(cmd.OutOrStdout(), results, options)
		},
	}

	cmd.Flags().StringVarP(&sourceFlag, "source", "s", "", "Folder to analyze (required)")
	cmd.Flags().StringVar(&formatFlag, "format", "table", "Output format: table, json")
	cmd.Flags().BoolVar(&exifToolFlag, "exiftool", false, "Read metadata through exiftool (HEIC, MOV, RAW)")
	_ = cmd.MarkFlagRequired("source")

	return cmd
}
