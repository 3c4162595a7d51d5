package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"picsort/internal"
)

// Version is overwritten from the embedded VERSION file at startup.
var Version = "dev"

type sortFlags struct {
	source       string
	target       string
	prefix       bool
	suffix       string
	millennium   bool
	dryRun       bool
	deleteSource bool
	useExifTool  bool
	logFile      string
	noColor      bool
}

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	var flags sortFlags

	cmd := &cobra.Command{
		Use:   "picsort -s SOURCE [-t TARGET] [-p] [-x [SUFFIX]] [-m]",
		Short: "Sort photos and videos into year and date folders",
		Long: `Move every file under SOURCE into TARGET/YYYY/YYYYMMDD using the EXIF
original capture date, or the file's last modified time when there is none.
Files are renamed to their three-digit serial number; files without one go
into an "errors" folder and files without any date into "Other files".`,
		// One positional argument is allowed: the value of a bare -x.
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSort(cmd, &flags, args)
		},
	}

	flags.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("source")

	cmd.AddCommand(newAnalyzeCmd())
	return cmd
}

func (flags *sortFlags) register(f *pflag.FlagSet) {
	f.StringVarP(&flags.source, "source", "s", "", "Folder to sort (required)")
	f.StringVarP(&flags.target, "target", "t", "", "Library root (default from config, else ~/Pictures)")
	f.BoolVarP(&flags.prefix, "prefix", "p", false, "Prefix file names with the capture time as HHmmss_")
	f.StringVarP(&flags.suffix, "suffix", "x", "", "Suffix year/date folders; derived from the source name unless a NAME is given")
	f.Lookup("suffix").NoOptDefVal = " "
	f.BoolVarP(&flags.millennium, "millennium", "m", false, "Nest year folders in a two-digit century folder when years differ")
	f.BoolVarP(&flags.dryRun, "dry-run", "n", false, "Report what would happen without touching any file")
	f.BoolVarP(&flags.deleteSource, "delete-source", "d", false, "Remove the source tree afterwards when it is empty")
	f.BoolVar(&flags.useExifTool, "exiftool", false, "Read metadata through exiftool (HEIC, MOV, RAW)")
	f.StringVar(&flags.logFile, "log-file", "", "Append a plain copy of the report to this file")
	f.BoolVar(&flags.noColor, "no-color", false, "Disable coloured output")
}

func runSort(cmd *cobra.Command, flags *sortFlags, args []string) error {
	conf, err := internal.LoadConfig()
	if err != nil {
		return err
	}

	opts, err := buildOptions(cmd, flags, args, conf)
	if err != nil {
		return err
	}

	logFile := flags.logFile
	if logFile == "" {
		logFile = conf.LogFile
	}
	logger, err := internal.NewLogger(cmd.OutOrStdout(), logFile, flags.noColor)
	if err != nil {
		return err
	}
	defer logger.Close()

	reader, closeReader := internal.OpenMetadataReader(flags.useExifTool || conf.UseExifTool, logger)
	defer closeReader()

	serials, err := internal.NewSerialExtractor(conf.SerialStrategy)
	if err != nil {
		return err
	}

	if opts.DryRun {
		logger.Info("dry run: no files will be moved")
	}

	runner := internal.NewRunner(opts, internal.NewResolver(reader, logger), serials, logger)
	sum, err := runner.Run()
	if err != nil {
		return err
	}

	logger.Step("summary")
	logger.Print(sum.Table())
	if sum.Errors.Total > 0 {
		logger.Print(sum.Errors.GenerateReport())
	}
	return nil
}

// buildOptions merges command line flags over config values. A positional
// argument is only accepted as the suffix following a bare -x, so both
// "-x Holiday" and "-x=Holiday" name a custom suffix.
func buildOptions(cmd *cobra.Command, flags *sortFlags, args []string, conf *internal.Config) (internal.Options, error) {
	opts := internal.Options{
		Source:              flags.source,
		Target:              flags.target,
		AddPrefix:           flags.prefix,
		AddMillenniumFolder: flags.millennium,
		DryRun:              flags.dryRun,
		DeleteSource:        flags.deleteSource || conf.DeleteSource,
	}
	if opts.Target == "" {
		opts.Target = conf.Target
	}
	if cmd.Flags().Changed("suffix") {
		opts.AddSuffix = true
		opts.CustomSuffix = strings.TrimSpace(flags.suffix)
	}
	if len(args) > 0 {
		if !opts.AddSuffix || opts.CustomSuffix != "" {
			return opts, fmt.Errorf("unexpected argument %q", args[0])
		}
		opts.CustomSuffix = strings.TrimSpace(args[0])
	}
	return opts, nil
}

// ApplyVersion copies Version onto the root command so --version reports it.
func ApplyVersion() {
	rootCmd.Version = Version
}

func Execute() error {
	return rootCmd.Execute()
}
