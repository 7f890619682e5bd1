// Package report holds the core of the mailer: parsing raw Asana task
// records, partitioning them into sections, filtering the resulting tree,
// and the comment selectors used at render time.
//
// The tree is assembled once per run and is read-only afterwards. Filtering
// never mutates an existing tree; it returns a new one.
package report

import "time"

// MiscSectionName is the synthetic section that collects tasks appearing
// before any explicit section marker.
const MiscSectionName = "Misc:"

// Project is the finished report tree for one Asana project.
type Project struct {
	// GID is the Asana project identifier.
	GID string `yaml:"gid" json:"gid"`

	// Name is the project display name.
	Name string `yaml:"name" json:"name"`

	// Description is the project's free-text notes field.
	Description string `yaml:"description" json:"description"`

	// Sections is the ordered list of task sections. After filtering,
	// every section holds at least one task.
	Sections []Section `yaml:"sections" json:"sections"`
}

// Section is a named group of tasks. Name is the raw marker text with the
// trailing colon retained.
type Section struct {
	Name  string `yaml:"name" json:"name"`
	Tasks []Task `yaml:"tasks" json:"tasks"`
}

// Task is one parsed task record.
type Task struct {
	// Name is the task display name.
	Name string `yaml:"name" json:"name"`

	// Assignee is the display name of the assigned user, or empty.
	Assignee string `yaml:"assignee,omitempty" json:"assignee,omitempty"`

	// Completed reports whether the task is done.
	Completed bool `yaml:"completed" json:"completed"`

	// CompletionTime is set iff Completed is true.
	CompletionTime *time.Time `yaml:"completion_time,omitempty" json:"completion_time,omitempty"`

	// Description is the task's notes field, or empty.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// DueOn is the date-only due date as returned by the API ("2026-08-29"),
	// or empty.
	DueOn string `yaml:"due_on,omitempty" json:"due_on,omitempty"`

	// Tags keeps the API's tag order for display. Matching against tag
	// filters treats it as a set.
	Tags []string `yaml:"tags,omitempty" json:"tags,omitempty"`

	// Comments is the ordered list of comment stories, nil when none.
	Comments []Comment `yaml:"comments,omitempty" json:"comments,omitempty"`
}

// Comment is one user comment on a task.
type Comment struct {
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`
	Author    string    `yaml:"author,omitempty" json:"author,omitempty"`
	Text      string    `yaml:"text" json:"text"`
}

// StringSet is a set of strings used for section and tag filters.
type StringSet map[string]bool

// NewStringSet builds a set from its arguments, dropping empty strings.
func NewStringSet(items ...string) StringSet {
	s := make(StringSet, len(items))
	for _, item := range items {
		if item != "" {
			s[item] = true
		}
	}
	return s
}
