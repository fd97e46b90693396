// Package export serializes an analysis record to the downloadable
// plain-text report.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/BerylCAtieno/avatar-analyzer/internal/record"
	"github.com/BerylCAtieno/avatar-analyzer/internal/report"
)

const (
	Title       = "ANÁLISE DE AVATAR - RELATÓRIO COMPLETO"
	Footer      = "Relatório gerado pelo Avatar Analyzer"
	ContentType = "text/plain; charset=utf-8"

	generatedPrefix = "Gerado em: "
)

var (
	rule    = strings.Repeat("=", 60)
	subrule = strings.Repeat("-", 60)

	textAccessor = record.Accessor{Placeholder: record.TextPlaceholder}
)

// Filename names the downloaded document after the export instant.
func Filename(now time.Time) string {
	return fmt.Sprintf("analise-avatar-%d.txt", now.UnixMilli())
}

// GeneratedLine reports whether line is the generation timestamp line,
// the only line that differs between two exports of the same record.
func GeneratedLine(line string) bool {
	return strings.HasPrefix(line, generatedPrefix)
}

// Export renders rec as the fixed-layout text report. Every section is
// written, absent ones with N/A throughout; it never fails.
func Export(rec record.AnalysisRecord, generatedAt time.Time) string {
	var sb strings.Builder

	sb.WriteString(Title + "\n")
	sb.WriteString(generatedPrefix + generatedAt.Format(time.RFC3339) + "\n")
	sb.WriteString(rule + "\n")

	for i, spec := range report.Sections {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "%d. %s\n", i+1, strings.ToUpper(spec.Title))
		sb.WriteString(subrule + "\n")
		writeSection(&sb, spec, rec.Section(spec.Key))
	}

	sb.WriteString("\n" + rule + "\n")
	sb.WriteString(Footer + "\n")
	return sb.String()
}

// Write is Export into w.
func Write(w io.Writer, rec record.AnalysisRecord, generatedAt time.Time) error {
	_, err := io.WriteString(w, Export(rec, generatedAt))
	return err
}

func writeSection(sb *strings.Builder, spec report.SectionSpec, section record.Node) {
	var tab report.TabName
	for _, f := range spec.Fields {
		if f.Tab != "" && f.Tab != tab {
			tab = f.Tab
			fmt.Fprintf(sb, "[%s]\n", report.TabLabel(tab))
		}
		writeField(sb, f, section)
	}
}

func writeField(sb *strings.Builder, f report.Field, section record.Node) {
	items, err := report.FieldItems(f, section, textAccessor)
	if err != nil || len(items) == 0 || onlyPlaceholder(items) {
		fmt.Fprintf(sb, "%s: %s\n", f.Label, record.TextPlaceholder)
		return
	}

	switch f.Kind {
	case report.KindText:
		fmt.Fprintf(sb, "%s: %s\n", f.Label, items[0].Text)
	case report.KindList:
		fmt.Fprintf(sb, "%s: %s\n", f.Label, strings.Join(texts(items), ", "))
	case report.KindScenario:
		fmt.Fprintf(sb, "%s:\n", f.Label)
		for _, it := range items {
			fmt.Fprintf(sb, "  %s: %s\n", it.Label, it.Text)
		}
	default:
		fmt.Fprintf(sb, "%s:\n", f.Label)
		for _, it := range items {
			sb.WriteString(itemLine(it) + "\n")
		}
	}
}

func itemLine(it report.Item) string {
	line := "- "
	if it.Label != "" {
		line += it.Label + ": "
	}
	line += it.Text
	if len(it.Details) > 0 {
		parts := make([]string, 0, len(it.Details))
		for _, d := range it.Details {
			parts = append(parts, d.Label+": "+d.Value)
		}
		line += " (" + strings.Join(parts, "; ") + ")"
	}
	return line
}

func onlyPlaceholder(items []report.Item) bool {
	for _, it := range items {
		if !it.Placeholder {
			return false
		}
	}
	return true
}

func texts(items []report.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Text)
	}
	return out
}
