// Package render turns a finished report tree into the HTML and plaintext
// documents that get delivered. The comment selectors and the date helper
// are exposed to the templates by name, so custom templates can use the same
// vocabulary as the embedded defaults.
package render

import (
	"bytes"
	_ "embed"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	"path/filepath"
	texttemplate "text/template"
	"time"

	"github.com/vanng822/go-premailer/premailer"

	"github.com/palantir/asana-mailer/internal/report"
)

//go:embed templates/default.html.tmpl
var defaultHTMLTemplate string

//go:embed templates/default.markdown.tmpl
var defaultTextTemplate string

// Data is the root object the templates execute against.
type Data struct {
	// Project is the finished, filtered report tree.
	Project report.Project

	// CurrentDate is the run date formatted as YYYY-MM-DD.
	CurrentDate string

	// Now is the run timestamp, passed to commentsWithinLookback.
	Now time.Time
}

// Options configures a Renderer. Empty template names select the embedded
// defaults; custom names are resolved inside TemplatesDir.
type Options struct {
	TemplatesDir string
	HTMLTemplate string
	TextTemplate string
	InlineCSS    bool
	Logger       *slog.Logger
}

// Renderer holds the parsed template pair.
type Renderer struct {
	html      *htmltemplate.Template
	text      *texttemplate.Template
	inlineCSS bool
	log       *slog.Logger
}

// helpers is the function vocabulary shared by both template environments.
func helpers() map[string]any {
	return map[string]any{
		"lastComment":            report.LastComment,
		"mostRecentComments":     report.MostRecentComments,
		"commentsWithinLookback": report.CommentsWithinLookback,
		"asDate":                 AsDate,
	}
}

// New parses the HTML and text templates.
func New(opts Options) (*Renderer, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	var html *htmltemplate.Template
	var err error
	if opts.HTMLTemplate == "" {
		html, err = htmltemplate.New("default.html.tmpl").Funcs(helpers()).Parse(defaultHTMLTemplate)
	} else {
		path := filepath.Join(opts.TemplatesDir, opts.HTMLTemplate)
		html, err = htmltemplate.New(filepath.Base(path)).Funcs(helpers()).ParseFiles(path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse html template: %w", err)
	}

	var text *texttemplate.Template
	if opts.TextTemplate == "" {
		text, err = texttemplate.New("default.markdown.tmpl").Funcs(helpers()).Parse(defaultTextTemplate)
	} else {
		path := filepath.Join(opts.TemplatesDir, opts.TextTemplate)
		text, err = texttemplate.New(filepath.Base(path)).Funcs(helpers()).ParseFiles(path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse text template: %w", err)
	}

	return &Renderer{
		html:      html,
		text:      text,
		inlineCSS: opts.InlineCSS,
		log:       log,
	}, nil
}

// Render executes both templates against the project tree and returns the
// HTML and plaintext documents. When CSS inlining is enabled, the HTML's
// style rules are folded into element style attributes for mail clients
// that strip <style> blocks.
func (r *Renderer) Render(p report.Project, now time.Time) (html string, text string, err error) {
	data := Data{
		Project:     p,
		CurrentDate: now.Format("2006-01-02"),
		Now:         now,
	}

	r.log.Info("rendering HTML template")
	var htmlBuf bytes.Buffer
	if err := r.html.Execute(&htmlBuf, data); err != nil {
		return "", "", fmt.Errorf("render html: %w", err)
	}
	html = htmlBuf.String()

	if r.inlineCSS {
		r.log.Info("inlining CSS")
		prem, err := premailer.NewPremailerFromString(html, premailer.NewOptions())
		if err != nil {
			return "", "", fmt.Errorf("inline css: %w", err)
		}
		html, err = prem.Transform()
		if err != nil {
			return "", "", fmt.Errorf("inline css: %w", err)
		}
	}

	r.log.Info("rendering text template")
	var textBuf bytes.Buffer
	if err := r.text.Execute(&textBuf, data); err != nil {
		return "", "", fmt.Errorf("render text: %w", err)
	}

	return html, textBuf.String(), nil
}

// AsDate formats a timestamp string as a plain date (YYYY-MM-DD). A string
// that does not parse is returned unchanged; display formatting is never a
// reason to fail a report.
func AsDate(s string) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}
