package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/palantir/asana-mailer/internal/report"
)

func sampleProject() report.Project {
	commentAt := time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC)
	return report.Project{
		GID:         "123",
		Name:        "Widget Launch",
		Description: "Shipping widgets",
		Sections: []report.Section{
			{Name: "In Flight:", Tasks: []report.Task{
				{
					Name:     "Build the widget",
					Assignee: "Ada",
					DueOn:    "2026-09-01",
					Tags:     []string{"p1"},
					Comments: []report.Comment{
						{CreatedAt: commentAt, Author: "Grace", Text: "halfway there"},
					},
				},
			}},
			{Name: "Done:", Tasks: []report.Task{
				{Name: "Kickoff", Completed: true},
			}},
		},
	}
}

func TestRenderDefaults(t *testing.T) {
	r, err := New(Options{})
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	html, text, err := r.Render(sampleProject(), now)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{"Widget Launch", "2026-08-29", "In Flight:", "Build the widget", "Ada", "halfway there", "Done:"} {
		if !strings.Contains(html, want) {
			t.Errorf("html output missing %q", want)
		}
		if !strings.Contains(text, want) {
			t.Errorf("text output missing %q", want)
		}
	}

	if !strings.Contains(text, "[x] Kickoff") {
		t.Errorf("text output missing completed checkbox, got:\n%s", text)
	}
	if !strings.Contains(text, "due 2026-09-01") {
		t.Errorf("text output missing due date, got:\n%s", text)
	}
}

func TestRenderHTMLEscapes(t *testing.T) {
	r, err := New(Options{})
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	p := report.Project{
		Name: "P",
		Sections: []report.Section{
			{Name: "S:", Tasks: []report.Task{{Name: "<script>alert(1)</script>"}}},
		},
	}

	html, _, err := r.Render(p, time.Now())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Error("task name was not HTML-escaped")
	}
}

func TestRenderCustomTemplates(t *testing.T) {
	dir, err := os.MkdirTemp("", "mailer-templates-*")
	if err != nil {
		t.Fatalf("create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	custom := "custom: {{ .Project.Name }} on {{ .CurrentDate }}"
	for _, name := range []string{"custom.html", "custom.markdown"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(custom), 0644); err != nil {
			t.Fatalf("write template: %v", err)
		}
	}

	r, err := New(Options{
		TemplatesDir: dir,
		HTMLTemplate: "custom.html",
		TextTemplate: "custom.markdown",
	})
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	now := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	html, text, err := r.Render(report.Project{Name: "P"}, now)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if html != "custom: P on 2026-08-29" {
		t.Errorf("html = %q", html)
	}
	if text != "custom: P on 2026-08-29" {
		t.Errorf("text = %q", text)
	}
}

func TestRenderMissingCustomTemplate(t *testing.T) {
	_, err := New(Options{TemplatesDir: "testdata", HTMLTemplate: "nope.html"})
	if err == nil {
		t.Fatal("expected error for missing template file")
	}
}

func TestRenderInlineCSS(t *testing.T) {
	r, err := New(Options{InlineCSS: true})
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	html, _, err := r.Render(sampleProject(), time.Now())
	if err != nil {
		t.Fatalf("render with inline css: %v", err)
	}

	// The stylesheet's body rule should end up on the element itself.
	if !strings.Contains(html, `style=`) {
		t.Error("expected inlined style attributes in html output")
	}
}

func TestAsDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2026-08-29T15:04:05Z", "2026-08-29"},
		{"2026-08-29T15:04:05.123Z", "2026-08-29"},
		{"2026-08-29", "2026-08-29"},
		{"not a date", "not a date"}, // malformed input falls back to the raw string
		{"", ""},
	}

	for _, tt := range tests {
		if got := AsDate(tt.in); got != tt.want {
			t.Errorf("AsDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
