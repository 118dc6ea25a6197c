package console

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"

	"github.com/hupe1980/blogmesh/core"
)

// Artifact names written by Export.
const (
	BestDraftMarkdown = "best_draft.md"
	BestDraftHTML     = "best_draft.html"
	SEODraftMarkdown  = "seo_draft.md"
	ReportJSON        = "report.json"
)

// ErrEmptyDraft is returned by MarkdownToHTML for blank input.
var ErrEmptyDraft = errors.New("empty draft")

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<article>
{{.Body}}</article>
</body>
</html>
`))

// MarkdownToHTML converts a draft to a standalone HTML page.
func MarkdownToHTML(title, md string) ([]byte, error) {
	if len(bytes.TrimSpace([]byte(md))) == 0 {
		return nil, ErrEmptyDraft
	}
	var body bytes.Buffer
	if err := goldmark.Convert([]byte(md), &body); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}

	// goldmark omits raw HTML unless WithUnsafe is set.
	var out bytes.Buffer
	err := page.Execute(&out, struct {
		Title string
		Body  template.HTML
	}{Title: title, Body: template.HTML(body.String())})
	if err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Export stores the report artifacts for the session and returns the ids
// written. A halted run only produces the JSON report.
func Export(store core.ArtifactStore, r Report) ([]string, error) {
	var written []string
	save := func(id string, data []byte) error {
		if err := store.Save(r.SessionID, id, data); err != nil {
			return fmt.Errorf("export %s: %w", id, err)
		}
		written = append(written, id)
		return nil
	}

	if r.BestDraft != "" {
		if err := save(BestDraftMarkdown, []byte(r.BestDraft)); err != nil {
			return written, err
		}
		html, err := MarkdownToHTML(r.Topic, r.BestDraft)
		if err != nil {
			return written, err
		}
		if err := save(BestDraftHTML, html); err != nil {
			return written, err
		}
	}
	if r.SEODraft != "" {
		if err := save(SEODraftMarkdown, []byte(r.SEODraft)); err != nil {
			return written, err
		}
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return written, fmt.Errorf("encode report: %w", err)
	}
	if err := save(ReportJSON, data); err != nil {
		return written, err
	}
	return written, nil
}
