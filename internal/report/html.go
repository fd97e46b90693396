package report

import (
	"html/template"
	"io"
)

const reportTpl = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{ .Header.Title }}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Arial, sans-serif; background: #f8fafc; color: #1e293b; line-height: 1.6; margin: 0; padding: 20px; }
        .container { max-width: 960px; margin: 0 auto; }
        header { text-align: center; margin-bottom: 32px; }
        .actions a { display: inline-block; margin: 0 6px; padding: 8px 16px; border-radius: 6px; background: #2563eb; color: #fff; text-decoration: none; }
        .section { background: #fff; border: 1px solid #e2e8f0; border-radius: 12px; padding: 24px; margin-bottom: 24px; }
        .section h2 { margin-top: 0; }
        .section.unavailable { border-style: dashed; color: #64748b; }
        .block h4 { margin: 16px 0 6px; color: #475569; }
        .placeholder { color: #94a3b8; font-style: italic; }
        .card { border-left: 4px solid #cbd5e1; background: #f8fafc; padding: 10px 14px; margin-bottom: 8px; border-radius: 6px; }
        .severity-alta { border-left-color: #ef4444; }
        .severity-media { border-left-color: #f59e0b; }
        .severity-baixa { border-left-color: #22c55e; }
        .tabs a { display: inline-block; padding: 6px 14px; margin-right: 4px; border-radius: 6px 6px 0 0; background: #e2e8f0; color: #334155; text-decoration: none; }
        .tabs a.active { background: #2563eb; color: #fff; }
    </style>
</head>
<body>
<div class="container">
    <header>
        <h1>{{ .Header.Title }}</h1>
        <div class="summary">{{ .Header.Summary }}</div>
        <div class="actions">
        {{- range .Header.Actions }}
            <a class="action" data-action="{{ .Name }}" href="{{ if .Href }}{{ .Href }}{{ else }}#{{ end }}">{{ .Label }}</a>
        {{- end }}
        </div>
    </header>
{{ range .Sections }}
    <section class="section{{ if .Unavailable }} unavailable{{ end }}" id="{{ .Key }}" data-section="{{ .Key }}">
        <h2>{{ .Icon }} {{ .Title }}</h2>
        {{- if .Tabs }}
        <nav class="tabs">
            {{- range .Tabs }}
            <a href="?tab={{ .Name }}" data-tab="{{ .Name }}"{{ if .Active }} class="active"{{ end }}>{{ .Label }}</a>
            {{- end }}
        </nav>
        {{- range .Tabs }}
        <div class="tab-panel" data-tab-panel="{{ .Name }}"{{ if not .Active }} hidden{{ end }}>
            {{- range .Blocks }}{{ template "block" . }}{{ end }}
        </div>
        {{- end }}
        {{- end }}
        {{- range .Blocks }}{{ template "block" . }}{{ end }}
    </section>
{{ end }}
</div>
</body>
</html>
{{ define "block" }}
            <div class="block block-{{ .Kind }}">
                <h4>{{ .Label }}</h4>
                {{- if eq (printf "%s" .Kind) "list" }}
                <ul>
                    {{- range .Items }}
                    <li{{ if .Placeholder }} class="placeholder"{{ end }}>{{ .Text }}</li>
                    {{- end }}
                </ul>
                {{- else if eq (printf "%s" .Kind) "cards" }}
                {{- range .Items }}
                <div class="card{{ with .Severity }} {{ severityClass . }}{{ end }}{{ if .Placeholder }} placeholder{{ end }}"{{ with .Severity }} data-severity="{{ . }}"{{ end }}>
                    {{- if .Label }}<strong>{{ .Label }}:</strong> {{ end }}{{ .Text }}
                    {{- if .Details }}
                    <ul class="details">
                        {{- range .Details }}
                        <li><span class="label">{{ .Label }}:</span> {{ .Value }}</li>
                        {{- end }}
                    </ul>
                    {{- end }}
                </div>
                {{- end }}
                {{- else }}
                {{- range .Items }}
                <p{{ if .Placeholder }} class="placeholder"{{ end }}>{{ if .Label }}<strong>{{ .Label }}:</strong> {{ end }}{{ .Text }}</p>
                {{- end }}
                {{- end }}
            </div>
{{- end }}
`

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"severityClass": SeverityClass,
}).Parse(reportTpl))

// WriteHTML serializes a composed view as a standalone HTML page.
func WriteHTML(w io.Writer, view ReportView) error {
	return htmlTemplate.Execute(w, view)
}
