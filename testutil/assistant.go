package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

// Paths served by FakeAssistant
const (
	ChatPath  = "/api/assistant/chat"
	StartPath = "/chat"

	StartGreeting = "Hello! How can I help you today?"
)

// FakeTask is a task held by FakeAssistant
type FakeTask struct {
	ID          string
	Title       string
	Description string
	Category    string
	Due         string
	Priority    int
	Tags        []string
	Completed   bool
}

// HistoryEntry mirrors one history item as the client sends it
type HistoryEntry struct {
	ID      string `json:"id"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request records one call received by FakeAssistant
type Request struct {
	Path    string
	Message string
	Text    *string
	History []HistoryEntry
	Header  http.Header
}

type requestBody struct {
	Message string         `json:"message"`
	Text    *string        `json:"text"`
	History []HistoryEntry `json:"history"`
}

// FakeAssistant is an in-memory stand-in for the assistant backend. It
// understands the /task slash commands and echoes everything else.
type FakeAssistant struct {
	mu       sync.Mutex
	tasks    []FakeTask
	requests []Request

	// FailStatus, when non-zero, makes every call fail with that status
	FailStatus int
	// RawBody, when set, is returned verbatim with status 200
	RawBody string
	// Delay is applied before each response
	Delay time.Duration
}

// NewFakeAssistant creates a backend seeded with tasks
func NewFakeAssistant(tasks ...FakeTask) *FakeAssistant {
	f := &FakeAssistant{}
	for _, task := range tasks {
		if task.ID == "" {
			task.ID = uuid.NewString()
		}
		if task.Priority == 0 {
			task.Priority = 1
		}
		f.tasks = append(f.tasks, task)
	}
	return f
}

// Start serves the fake on an httptest server closed at test cleanup
func (f *FakeAssistant) Start(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(f.Handler())
	t.Cleanup(srv.Close)
	return srv
}

// Handler returns the HTTP handler for both chat endpoints
func (f *FakeAssistant) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(ChatPath, f.handle)
	mux.HandleFunc(StartPath, f.handle)
	return mux
}

func (f *FakeAssistant) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body requestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.requests = append(f.requests, Request{
		Path:    r.URL.Path,
		Message: body.Message,
		Text:    body.Text,
		History: body.History,
		Header:  r.Header.Clone(),
	})
	failStatus, rawBody, delay := f.FailStatus, f.RawBody, f.Delay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if failStatus != 0 {
		http.Error(w, http.StatusText(failStatus), failStatus)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if rawBody != "" {
		_, _ = w.Write([]byte(rawBody))
		return
	}

	if r.URL.Path == StartPath {
		_ = json.NewEncoder(w).Encode(map[string]string{"text": StartGreeting, "sender": "bot"})
		return
	}

	text := strings.TrimSpace(body.Message)
	var reply string
	if strings.HasPrefix(text, "/") {
		reply = f.handleCommand(text)
	} else {
		reply = "echo: " + text
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"reply": reply})
}

func (f *FakeAssistant) handleCommand(text string) string {
	parts := strings.Fields(text)
	if len(parts) < 2 || parts[0] != "/task" {
		return "Unknown command. Try:\n/task list\n/task add \"Title\"\n/task done <task_id>"
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch strings.ToLower(parts[1]) {
	case "list":
		if len(f.tasks) == 0 {
			return "No tasks yet."
		}
		lines := make([]string, 0, len(f.tasks))
		for _, t := range f.tasks {
			status := "•"
			if t.Completed {
				status = "✔"
			}
			due := ""
			if t.Due != "" {
				due = fmt.Sprintf(" (due %s)", t.Due)
			}
			lines = append(lines, fmt.Sprintf("%s %s [%s] %s [prio %d]", status, t.Title, t.ID, due, t.Priority))
		}
		return strings.Join(lines, "\n")

	case "done":
		if len(parts) < 3 {
			return "Usage: /task done <task_id>"
		}
		for i := range f.tasks {
			if f.tasks[i].ID == parts[2] {
				f.tasks[i].Completed = true
				return "Marked complete: " + f.tasks[i].Title
			}
		}
		return "Task not found."

	case "add":
		return f.addFromCommand(text)
	}
	return "Unknown /task subcommand."
}

func (f *FakeAssistant) addFromCommand(text string) string {
	remainder := strings.TrimSpace(text[strings.Index(text, "add")+3:])
	var title string
	if strings.HasPrefix(remainder, `"`) {
		end := strings.Index(remainder[1:], `"`)
		if end == -1 {
			return `Missing closing quote for title. Example: /task add "Pay rent"`
		}
		title = remainder[1 : end+1]
		remainder = strings.TrimSpace(remainder[end+2:])
	} else if sp := strings.Index(remainder, " --"); sp != -1 {
		title = strings.TrimSpace(remainder[:sp])
		remainder = remainder[sp:]
	} else {
		title = remainder
		remainder = ""
	}

	task := FakeTask{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(title),
		Description: extractFlag(remainder, "--desc"),
		Category:    extractFlag(remainder, "--cat"),
		Due:         extractFlag(remainder, "--due"),
		Priority:    1,
	}
	if task.Category == "" {
		task.Category = "general"
	}
	if prio := extractFlag(remainder, "--priority"); prio != "" {
		p, err := strconv.Atoi(prio)
		if err != nil {
			return "Could not add task: " + err.Error()
		}
		task.Priority = p
	}
	if tags := extractFlag(remainder, "--tags"); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			task.Tags = append(task.Tags, strings.TrimSpace(tag))
		}
	}

	f.tasks = append(f.tasks, task)
	return fmt.Sprintf("Created task %q with id %s.", task.Title, task.ID)
}

// extractFlag reads the value following flag: a quoted string, or the text
// up to the next " --"
func extractFlag(text, flag string) string {
	idx := strings.Index(text, flag)
	if idx == -1 {
		return ""
	}
	after := strings.TrimSpace(text[idx+len(flag):])
	if after == "" {
		return ""
	}
	if strings.HasPrefix(after, `"`) {
		end := strings.Index(after[1:], `"`)
		if end == -1 {
			return ""
		}
		return after[1 : end+1]
	}
	if next := strings.Index(after, " --"); next != -1 {
		return strings.TrimSpace(after[:next])
	}
	return strings.TrimSpace(after)
}

// Requests returns every call received so far
func (f *FakeAssistant) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Request, len(f.requests))
	copy(out, f.requests)
	return out
}

// Messages returns the message field of every chat call, in order
func (f *FakeAssistant) Messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, r := range f.requests {
		if r.Path == ChatPath {
			out = append(out, r.Message)
		}
	}
	return out
}

// Tasks returns the backend's tasks
func (f *FakeAssistant) Tasks() []FakeTask {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FakeTask, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// SetFailStatus changes FailStatus under the lock
func (f *FakeAssistant) SetFailStatus(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FailStatus = status
}

// SetRawBody changes RawBody under the lock
func (f *FakeAssistant) SetRawBody(body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RawBody = body
}

// SetDelay changes Delay under the lock
func (f *FakeAssistant) SetDelay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Delay = d
}
