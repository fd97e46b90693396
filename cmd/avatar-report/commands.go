package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/BerylCAtieno/avatar-analyzer/internal/export"
	"github.com/BerylCAtieno/avatar-analyzer/internal/notify"
	"github.com/BerylCAtieno/avatar-analyzer/internal/report"
	"github.com/BerylCAtieno/avatar-analyzer/internal/share"
)

var (
	renderOut      string
	renderTab      string
	renderDownload string
	renderJSON     bool

	exportOut string

	shareTitle  string
	shareText   string
	shareNotify time.Duration
)

var renderCmd = &cobra.Command{
	Use:   "render <record.json>",
	Short: "Render the HTML report for a record",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

var exportCmd = &cobra.Command{
	Use:   "export <record.json>",
	Short: "Export the plain-text report for a record",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var shareCmd = &cobra.Command{
	Use:   "share <url>",
	Short: "Copy a report link to the clipboard",
	Args:  cobra.ExactArgs(1),
	RunE:  runShare,
}

func runRender(cmd *cobra.Command, args []string) error {
	rec, err := readRecord(cmd, args[0])
	if err != nil {
		return err
	}
	svc := newService()
	links := report.Links{Download: renderDownload, Share: "#"}

	out := cmd.OutOrStdout()
	if renderOut != "" {
		f, err := createOutput(renderOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	if renderJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(svc.View(rec, links, renderTab))
	}
	if err := svc.RenderHTML(out, rec, links, renderTab); err != nil {
		return err
	}
	if renderOut != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", renderOut)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	rec, err := readRecord(cmd, args[0])
	if err != nil {
		return err
	}

	generated := now()
	var out io.Writer = cmd.OutOrStdout()
	path := exportOut
	if path == "auto" {
		path = export.Filename(generated)
	}
	if path != "" {
		f, err := createOutput(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	if err := export.Write(out, rec, generated); err != nil {
		return err
	}
	if path != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Report exported to %s\n", path)
	}
	return nil
}

func runShare(cmd *cobra.Command, args []string) error {
	n := notify.New(notify.LogSink{Log: log}, shareNotify)
	s := share.New(nil, clipboard, n)

	method, err := s.Share(cmd.Context(), share.Target{
		Title: shareTitle,
		Text:  shareText,
		URL:   args[0],
	})
	if err != nil {
		return err
	}
	if method == share.MethodClipboard {
		fmt.Fprintln(cmd.OutOrStdout(), share.CopiedMsg)
	}
	return nil
}
