package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/BerylCAtieno/avatar-analyzer/internal/logger"
	"github.com/BerylCAtieno/avatar-analyzer/internal/notify"
	"github.com/BerylCAtieno/avatar-analyzer/internal/record"
	"github.com/BerylCAtieno/avatar-analyzer/internal/service"
	"github.com/BerylCAtieno/avatar-analyzer/internal/share"
)

var (
	// Global flags
	verbose  bool
	logLevel string

	log *logrus.Logger

	// clipboard is swapped in tests.
	clipboard share.Clipboard = share.SystemClipboard{}
)

var rootCmd = &cobra.Command{
	Use:   "avatar-report",
	Short: "Render, export and share avatar analysis records",
	Long: `avatar-report works on an analysis record saved as JSON (the body
returned by POST /api/analyze), without a running server.

Use "-" as the file name to read the record from stdin.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := logLevel
		if verbose {
			level = "debug"
		}
		l, err := logger.New(level, "")
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		l.SetOutput(cmd.ErrOrStderr())
		log = l
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level")

	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "Write the HTML report to this file instead of stdout")
	renderCmd.Flags().StringVar(&renderTab, "tab", "", "Avatar tab to show: demografia, psicografia or comportamento")
	renderCmd.Flags().StringVar(&renderDownload, "download-url", "", "Target of the header download action")
	renderCmd.Flags().BoolVar(&renderJSON, "json", false, "Print the composed view as JSON instead of HTML")

	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write the text report to this file (\"auto\" picks the download name)")

	shareCmd.Flags().StringVar(&shareTitle, "title", share.DefaultTitle, "Share title")
	shareCmd.Flags().StringVar(&shareText, "text", share.DefaultText, "Share text")
	shareCmd.Flags().DurationVar(&shareNotify, "notify-duration", notify.DefaultDuration, "How long the confirmation stays visible")

	rootCmd.AddCommand(renderCmd, exportCmd, shareCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newService() *service.Service {
	return service.New(service.Options{Log: log})
}

// readRecord loads an analysis record from path, or stdin for "-". A
// stored analysis (GET /api/analyses/:id) is accepted too; its
// "analysis" member is used.
func readRecord(cmd *cobra.Command, path string) (record.AnalysisRecord, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return record.AnalysisRecord{}, fmt.Errorf("failed to read record: %w", err)
	}

	rec, err := record.Parse(data)
	if err != nil {
		return record.AnalysisRecord{}, fmt.Errorf("invalid record %s: %w", path, err)
	}
	if stored, ok := storedRecord(rec); ok {
		log.Debug("Using the analysis member of a stored analysis")
		return stored, nil
	}
	return rec, nil
}

func storedRecord(rec record.AnalysisRecord) (record.AnalysisRecord, bool) {
	n, err := rec.Root().Key("analysis")
	if err != nil || !n.IsObject() {
		return record.AnalysisRecord{}, false
	}
	if status, err := rec.Root().Key("status"); err != nil || status.Missing() {
		return record.AnalysisRecord{}, false
	}
	inner, err := record.Parse(n.JSON())
	if err != nil {
		return record.AnalysisRecord{}, false
	}
	return inner, true
}

func createOutput(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, nil
}

// now is swapped in tests.
var now = time.Now
