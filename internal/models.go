package internal

import "time"

// Role identifies who authored a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the chat transcript. Messages are owned by a
// MessageStore and never change after they are appended.
type Message struct {
	ID        string    `json:"id" yaml:"id"`
	Seq       uint64    `json:"-" yaml:"-"`
	Role      Role      `json:"role" yaml:"role"`
	Content   string    `json:"content" yaml:"content"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// Task is a structured view of one line of a task-list reply.
//
// ID is the zero-based position among the surviving lines of the parse that
// produced it; it is not stable across reloads. Ref, Due and Priority are
// filled only when the line carries the backend's metadata suffix.
type Task struct {
	ID        int    `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Completed bool   `json:"completed" yaml:"completed"`
	RawLine   string `json:"raw_line" yaml:"raw_line"`
	Ref       string `json:"ref,omitempty" yaml:"ref,omitempty"`
	Due       string `json:"due,omitempty" yaml:"due,omitempty"`
	Priority  int    `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// TaskOptions holds the optional fields of an add intent. Zero values are
// treated as absent.
type TaskOptions struct {
	Description string
	Category    string
	DueDate     string
	Priority    int
	Tags        []string
}

// Intent is a structured task action that an Encoder turns into a command
type Intent interface {
	intent()
}

// ListIntent asks the assistant for the current task list
type ListIntent struct{}

// AddIntent creates a task
type AddIntent struct {
	Title   string
	Options TaskOptions
}

// CompleteIntent marks a task as done. TaskID is whatever identifier the
// backend should receive.
type CompleteIntent struct {
	TaskID string
}

func (ListIntent) intent()     {}
func (AddIntent) intent()      {}
func (CompleteIntent) intent() {}

// Transcript is a point-in-time snapshot of a session used by exporters
type Transcript struct {
	ID         string    `json:"id" yaml:"id"`
	BaseURL    string    `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	ExportedAt time.Time `json:"exported_at" yaml:"exported_at"`
	Messages   []Message `json:"messages" yaml:"messages"`
	Tasks      []Task    `json:"tasks" yaml:"tasks"`
}
