package report

import (
	"testing"
	"time"

	"github.com/palantir/asana-mailer/internal/asana"
)

func TestIsSectionMarker(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Section A:", true},
		{"Misc:", true},
		{":", true},
		{"Deploy: staging", false},
		{"Regular task", false},
		{"", false},
		{"Trailing space: ", false},
	}

	for _, tt := range tests {
		if got := IsSectionMarker(tt.name); got != tt.want {
			t.Errorf("IsSectionMarker(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestParseTaskCompletionTime(t *testing.T) {
	rec := asana.Task{
		GID:         "1",
		Name:        "Done task",
		Completed:   true,
		CompletedAt: "2026-08-28T15:04:05Z",
	}

	task, err := ParseTask(rec, nil)
	if err != nil {
		t.Fatalf("parse task: %v", err)
	}

	if task.CompletionTime == nil {
		t.Fatal("CompletionTime is nil for completed task")
	}
	want := time.Date(2026, 8, 28, 15, 4, 5, 0, time.UTC)
	if !task.CompletionTime.Equal(want) {
		t.Errorf("CompletionTime = %v, want %v", task.CompletionTime, want)
	}
}

func TestParseTaskIncompleteNeverParsesTimestamp(t *testing.T) {
	// Incomplete tasks carry a null/garbage completed_at; it must be ignored.
	rec := asana.Task{
		GID:         "1",
		Name:        "Open task",
		Completed:   false,
		CompletedAt: "not a timestamp",
	}

	task, err := ParseTask(rec, nil)
	if err != nil {
		t.Fatalf("parse task: %v", err)
	}
	if task.CompletionTime != nil {
		t.Errorf("CompletionTime = %v, want nil for incomplete task", task.CompletionTime)
	}
}

func TestParseTaskBadCompletedAtIsFatal(t *testing.T) {
	rec := asana.Task{
		GID:         "1",
		Name:        "Done task",
		Completed:   true,
		CompletedAt: "garbage",
	}

	if _, err := ParseTask(rec, nil); err == nil {
		t.Fatal("expected error for completed task with malformed completed_at")
	}
}

func TestParseTaskOptionalFields(t *testing.T) {
	rec := asana.Task{
		GID:      "1",
		Name:     "T",
		Assignee: &asana.Assignee{Name: "Ada"},
		Notes:    "some notes",
		DueOn:    "2026-09-01",
		Tags:     []asana.Tag{{Name: "p1"}, {Name: "infra"}},
	}

	task, err := ParseTask(rec, nil)
	if err != nil {
		t.Fatalf("parse task: %v", err)
	}

	if task.Assignee != "Ada" {
		t.Errorf("Assignee = %q, want Ada", task.Assignee)
	}
	if task.Description != "some notes" {
		t.Errorf("Description = %q, want 'some notes'", task.Description)
	}
	if task.DueOn != "2026-09-01" {
		t.Errorf("DueOn = %q, want 2026-09-01", task.DueOn)
	}
	if len(task.Tags) != 2 || task.Tags[0] != "p1" || task.Tags[1] != "infra" {
		t.Errorf("Tags = %v, want [p1 infra] in order", task.Tags)
	}
}

func TestParseTaskEmptyNotesMeansNoDescription(t *testing.T) {
	task, err := ParseTask(asana.Task{GID: "1", Name: "T"}, nil)
	if err != nil {
		t.Fatalf("parse task: %v", err)
	}
	if task.Description != "" {
		t.Errorf("Description = %q, want empty", task.Description)
	}
	if task.Assignee != "" {
		t.Errorf("Assignee = %q, want empty", task.Assignee)
	}
}

func TestCommentsFromStories(t *testing.T) {
	stories := []asana.Story{
		{GID: "s1", Type: "system", CreatedAt: "2026-08-01T10:00:00Z", Text: "added to project"},
		{GID: "s2", Type: "comment", CreatedAt: "2026-08-02T10:00:00Z", CreatedBy: &asana.Assignee{Name: "Ada"}, Text: "first"},
		{GID: "s3", Type: "system", CreatedAt: "2026-08-03T10:00:00Z", Text: "completed"},
		{GID: "s4", Type: "comment", CreatedAt: "2026-08-04T10:00:00Z", Text: "second"},
	}

	comments, err := CommentsFromStories(stories)
	if err != nil {
		t.Fatalf("comments from stories: %v", err)
	}

	if len(comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(comments))
	}
	if comments[0].Text != "first" || comments[1].Text != "second" {
		t.Errorf("source order not preserved: %+v", comments)
	}
	if comments[0].Author != "Ada" {
		t.Errorf("Author = %q, want Ada", comments[0].Author)
	}
	if comments[1].Author != "" {
		t.Errorf("Author = %q, want empty when created_by missing", comments[1].Author)
	}
}

func TestCommentsFromStoriesNoComments(t *testing.T) {
	stories := []asana.Story{
		{GID: "s1", Type: "system", CreatedAt: "2026-08-01T10:00:00Z"},
	}

	comments, err := CommentsFromStories(stories)
	if err != nil {
		t.Fatalf("comments from stories: %v", err)
	}
	if comments != nil {
		t.Errorf("expected nil for no comments, got %+v", comments)
	}
}

func TestCommentsFromStoriesBadTimestamp(t *testing.T) {
	stories := []asana.Story{
		{GID: "s1", Type: "comment", CreatedAt: "yesterday", Text: "hi"},
	}

	if _, err := CommentsFromStories(stories); err == nil {
		t.Fatal("expected error for malformed created_at")
	}
}
