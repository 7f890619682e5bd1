package asana

// Project is the project metadata returned by the projects endpoint.
type Project struct {
	GID   string `json:"gid"`
	Name  string `json:"name"`
	Notes string `json:"notes"`
}

// Task is one task record as returned by the project tasks endpoint with
// opt_expand set. Records whose Name ends with a colon are section markers,
// not real tasks; that distinction is made downstream.
type Task struct {
	GID         string    `json:"gid"`
	Name        string    `json:"name"`
	Assignee    *Assignee `json:"assignee"`
	Completed   bool      `json:"completed"`
	CompletedAt string    `json:"completed_at"`
	Notes       string    `json:"notes"`
	DueOn       string    `json:"due_on"`
	ModifiedAt  string    `json:"modified_at"`
	Tags        []Tag     `json:"tags"`
}

// Assignee is the user a task is assigned to.
type Assignee struct {
	GID  string `json:"gid"`
	Name string `json:"name"`
}

// Tag is a named label attached to a task.
type Tag struct {
	GID  string `json:"gid"`
	Name string `json:"name"`
}

// Story is one activity record on a task. Only stories whose Type is
// "comment" carry user discussion; the rest are system events.
type Story struct {
	GID       string    `json:"gid"`
	Type      string    `json:"type"`
	CreatedAt string    `json:"created_at"`
	CreatedBy *Assignee `json:"created_by"`
	Text      string    `json:"text"`
}

// StoryTypeComment is the story type for user comments.
const StoryTypeComment = "comment"
