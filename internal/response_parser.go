package internal

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Parser reconstructs tasks from a free-text assistant reply. Any change in
// the backend's reply layout is a breaking change for the parser only.
type Parser interface {
	Version() string
	ParseTaskList(text string) []Task
}

// Completion markers used by the backend's list layout
const (
	MarkerCompleted = "✔"
	MarkerOpen      = "•"
)

var (
	duePattern      = regexp.MustCompile(`\(due (\d{4}-\d{2}-\d{2})\)`)
	priorityPattern = regexp.MustCompile(`\[prio (\d+)\]`)
	refPattern      = regexp.MustCompile(`^\[([^\]]+)\]`)
)

// BulletParserV1 understands one layout: one task per line, an optional
// leading marker, the title, and an optional bracketed suffix. The backend
// renders lines as
//
//	✔ Pay rent [<uuid>]  (due 2024-01-01) [prio 2]
//
// Lines that do not follow this layout still become tasks; text with no
// non-blank lines yields an empty list rather than an error.
type BulletParserV1 struct{}

// NewBulletParser returns the current reply parser
func NewBulletParser() *BulletParserV1 {
	return &BulletParserV1{}
}

// Version returns the reply layout version this parser understands
func (p *BulletParserV1) Version() string {
	return "bullet/v1"
}

// ParseTaskList parses every non-blank line of text into a Task. A line
// whose title is empty after stripping still yields a Task with an empty
// title.
func (p *BulletParserV1) ParseTaskList(text string) []Task {
	tasks := make([]Task, 0)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		tasks = append(tasks, parseTaskLine(len(tasks), line))
	}
	return tasks
}

func parseTaskLine(id int, line string) Task {
	body := strings.TrimLeftFunc(line, unicode.IsSpace)

	completed := false
	switch {
	case strings.HasPrefix(body, MarkerCompleted):
		completed = true
		body = strings.TrimPrefix(body, MarkerCompleted)
	case strings.HasPrefix(body, MarkerOpen):
		body = strings.TrimPrefix(body, MarkerOpen)
	}

	title, rest := body, ""
	if i := strings.IndexByte(body, '['); i >= 0 {
		title, rest = body[:i], body[i:]
	}

	task := Task{
		ID:        id,
		Title:     strings.TrimSpace(title),
		Completed: completed,
		RawLine:   line,
	}
	extractMetadata(&task, rest)
	return task
}

// extractMetadata fills Ref, Due and Priority from the part of the line that
// follows the title. Only a bracket holding a UUID counts as a Ref, so
// annotations such as "[done]" are left alone.
func extractMetadata(task *Task, rest string) {
	if rest == "" {
		return
	}
	if m := refPattern.FindStringSubmatch(rest); m != nil {
		if id, err := uuid.Parse(strings.TrimSpace(m[1])); err == nil {
			task.Ref = id.String()
		}
	}
	if m := duePattern.FindStringSubmatch(rest); m != nil {
		task.Due = m[1]
	}
	if m := priorityPattern.FindStringSubmatch(rest); m != nil {
		if prio, err := strconv.Atoi(m[1]); err == nil {
			task.Priority = prio
		}
	}
}

// FormatTaskList renders tasks in the canonical layout, one per line.
// Parsing the result yields the same titles and completion states.
func FormatTaskList(tasks []Task) string {
	lines := make([]string, 0, len(tasks))
	for _, task := range tasks {
		marker := MarkerOpen
		if task.Completed {
			marker = MarkerCompleted
		}
		lines = append(lines, marker+" "+task.Title)
	}
	return strings.Join(lines, "\n")
}
