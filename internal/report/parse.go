package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/palantir/asana-mailer/internal/asana"
)

// IsSectionMarker reports whether a task name designates a section header.
// The convention is positional: any record whose display name ends with a
// colon is a marker, regardless of its other fields. Markers never become
// tasks.
func IsSectionMarker(name string) bool {
	return strings.HasSuffix(name, ":")
}

// ParseTask converts a raw Asana task record plus its pre-selected comments
// into a Task. The upstream API contract is assumed to hold; a completed
// record with an unparseable completed_at is a data-integrity error.
func ParseTask(rec asana.Task, comments []Comment) (Task, error) {
	t := Task{
		Name:      rec.Name,
		Completed: rec.Completed,
		DueOn:     rec.DueOn,
		Comments:  comments,
	}

	if rec.Assignee != nil {
		t.Assignee = rec.Assignee.Name
	}

	// completed_at is only meaningful (and only parsed) on completed tasks.
	if rec.Completed {
		ct, err := time.Parse(time.RFC3339, rec.CompletedAt)
		if err != nil {
			return Task{}, fmt.Errorf("task %s: parse completed_at %q: %w", rec.GID, rec.CompletedAt, err)
		}
		t.CompletionTime = &ct
	}

	if rec.Notes != "" {
		t.Description = rec.Notes
	}

	if len(rec.Tags) > 0 {
		t.Tags = make([]string, len(rec.Tags))
		for i, tag := range rec.Tags {
			t.Tags[i] = tag.Name
		}
	}

	return t, nil
}

// CommentsFromStories selects the comment stories from a task's activity
// stream, preserving source order. Returns nil when the task has no comments.
func CommentsFromStories(stories []asana.Story) ([]Comment, error) {
	var comments []Comment
	for _, story := range stories {
		if story.Type != asana.StoryTypeComment {
			continue
		}
		createdAt, err := time.Parse(time.RFC3339, story.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("story %s: parse created_at %q: %w", story.GID, story.CreatedAt, err)
		}
		c := Comment{CreatedAt: createdAt, Text: story.Text}
		if story.CreatedBy != nil {
			c.Author = story.CreatedBy.Name
		}
		comments = append(comments, c)
	}
	return comments, nil
}
