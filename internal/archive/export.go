// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/journal-club/internal/publish"
)

// Export formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatHTML = "html"
)

// RunExport is a run with its results.
type RunExport struct {
	Run     Run      `json:"run" yaml:"run"`
	Results []Result `json:"results" yaml:"results"`
}

// Load returns a run and its results.
func (s *Store) Load(ctx context.Context, runID string) (RunExport, error) {
	run, err := s.Run(ctx, runID)
	if err != nil {
		return RunExport{}, err
	}
	results, err := s.Results(ctx, runID)
	if err != nil {
		return RunExport{}, err
	}
	return RunExport{Run: run, Results: results}, nil
}

// Export writes run runID to w in format.
func (s *Store) Export(ctx context.Context, runID, format string, w io.Writer) error {
	exp, err := s.Load(ctx, runID)
	if err != nil {
		return err
	}

	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(exp)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	case FormatJSON:
		data, err := json.MarshalIndent(exp, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		_, err = w.Write(append(data, '\n'))
		return err
	case FormatHTML:
		return writeHTML(exp, w)
	default:
		return fmt.Errorf("unknown export format %q (want yaml, json or html)", format)
	}
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Table))

type htmlResult struct {
	Result
	URL  string
	Body template.HTML
}

var htmlTmpl = template.Must(template.New("run").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Journal club {{.Run.Category}} {{.Run.StartedAt.Format "2006-01-02"}}</title>
</head>
<body>
<h1>{{.Run.Category}} {{.Run.StartedAt.Format "2006-01-02"}}</h1>
<p>Run {{.Run.ID}}: {{.Run.Published}} published, {{.Run.Failed}} failed of {{.Run.Candidates}} candidates.</p>
{{- if .Run.Error}}
<p class="fatal">Aborted: {{.Run.Error}}</p>
{{- end}}
{{range .Results}}
<article id="paper-{{.Position}}">
{{- if .Body}}
{{.Body}}
{{- else}}
<h2><a href="{{.URL}}">{{.Paper.Title}}</a></h2>
{{- end}}
{{- if .Error}}
<p class="error">Failed at {{.Stage}}: {{.Error}}</p>
{{- end}}
</article>
{{end}}
</body>
</html>
`))

func writeHTML(exp RunExport, w io.Writer) error {
	view := struct {
		Run     Run
		Results []htmlResult
	}{Run: exp.Run}

	for _, r := range exp.Results {
		hr := htmlResult{Result: r, URL: r.Paper.URL()}
		if r.Discussion != nil {
			var buf bytes.Buffer
			if err := markdown.Convert(publish.Transcript(r.Paper, *r.Discussion), &buf); err != nil {
				return fmt.Errorf("rendering %s: %w", r.Paper.ID, err)
			}
			hr.Body = template.HTML(buf.String())
		}
		view.Results = append(view.Results, hr)
	}

	if err := htmlTmpl.Execute(w, view); err != nil {
		return fmt.Errorf("writing HTML: %w", err)
	}
	return nil
}
