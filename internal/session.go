package internal

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User-facing texts shown in place of a failed action
const (
	GreetingText        = `Hi! I'm your task assistant. I can help you manage tasks and answer questions about life admin. Try "/task list" or ask me anything!`
	ChatErrorText       = "Sorry, I encountered an error. Please try again."
	LoadTasksErrorText  = "Failed to load tasks"
	UpdateTaskErrorText = "Failed to update task"
	CreateTaskErrorText = "Failed to create task"
)

// SessionOptions overrides the collaborators a Session creates by default
type SessionOptions struct {
	Store      *MessageStore
	Parser     Parser
	Projection *TaskListProjection
	Guard      *Guard
}

// Session ties the transcript and the task view to one backend client. It
// is the single writer of both structures.
type Session struct {
	id         string
	client     *Client
	store      *MessageStore
	parser     Parser
	projection *TaskListProjection
	guard      *Guard
	now        func() time.Time
}

// NewSession creates a session for client
func NewSession(client *Client, opts SessionOptions) *Session {
	s := &Session{
		id:         uuid.NewString(),
		client:     client,
		store:      opts.Store,
		parser:     opts.Parser,
		projection: opts.Projection,
		guard:      opts.Guard,
		now:        time.Now,
	}
	if s.store == nil {
		s.store = NewMessageStore()
	}
	if s.parser == nil {
		s.parser = NewBulletParser()
	}
	if s.projection == nil {
		s.projection = NewTaskListProjection()
	}
	if s.guard == nil {
		s.guard = NewGuard()
	}
	return s
}

// ID returns the session identifier
func (s *Session) ID() string { return s.id }

// Messages returns the transcript
func (s *Session) Messages() []Message { return s.store.All() }

// Tasks returns the current task view
func (s *Session) Tasks() []Task { return s.projection.Tasks() }

// Projection exposes the task view for read-only consumers
func (s *Session) Projection() *TaskListProjection { return s.projection }

// Greet seeds the transcript with the local greeting
func (s *Session) Greet() Message {
	return s.store.Append(Message{Role: RoleAssistant, Content: GreetingText})
}

// GreetRemote asks the backend for its opening line. The local greeting is
// used when the backend cannot be reached.
func (s *Session) GreetRemote(ctx context.Context) (Message, error) {
	reply, err := s.client.StartConversation(ctx)
	if err != nil {
		LogWarn("Failed to start conversation: %v", err)
		return s.Greet(), err
	}
	return s.store.Append(Message{Role: reply.Sender, Content: reply.Text}), nil
}

// Send posts text to the assistant and returns the message appended for the
// reply. On failure the appended message is the generic apology and the
// error is returned alongside it. A canceled request appends nothing.
func (s *Session) Send(ctx context.Context, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}

	// The context window excludes the message being sent.
	window := s.store.HistoryWindow(s.client.HistoryLimit())
	s.store.Append(Message{Role: RoleUser, Content: text})

	isList := s.client.Encoder().IsListCommand(text)
	var ticket Ticket
	if isList {
		ticket = s.projection.Begin()
	}

	reply, err := s.client.Chat(ctx, text, window)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			LogDebug("Chat request canceled: %v", err)
			return Message{}, err
		}
		LogWarn("Chat request failed: %v", err)
		return s.store.Append(Message{Role: RoleAssistant, Content: ChatErrorText}), err
	}

	msg := s.store.Append(Message{Role: reply.Sender, Content: reply.Text})
	if isList {
		s.projection.Apply(ticket, s.parser.ParseTaskList(reply.Text))
	}
	return msg, nil
}

// LoadTasks reloads the task view. Concurrent loads share one request.
func (s *Session) LoadTasks(ctx context.Context) ([]Task, error) {
	ticket := s.projection.Begin()
	reply, shared, err := s.guard.Do(ctx, keyListTasks, s.client.GetTasks)
	if err != nil {
		LogWarn("Failed to load tasks: %v", err)
		return nil, err
	}
	if shared {
		LogDebug("Joined in-flight task list request")
	}
	s.projection.Apply(ticket, s.parser.ParseTaskList(reply.Text))
	return s.projection.Tasks(), nil
}

// reload issues a fresh list request that never joins one already in
// flight, since that one may predate a mutation
func (s *Session) reload(ctx context.Context) ([]Task, error) {
	ticket := s.projection.Begin()
	reply, err := s.client.GetTasks(ctx)
	if err != nil {
		LogWarn("Failed to reload tasks: %v", err)
		return nil, err
	}
	s.projection.Apply(ticket, s.parser.ParseTaskList(reply.Text))
	return s.projection.Tasks(), nil
}

// AddTask creates a task, then reloads the list. It returns the assistant's
// confirmation text.
func (s *Session) AddTask(ctx context.Context, title string, opts TaskOptions) (string, error) {
	command, err := s.client.Encoder().Encode(AddIntent{Title: title, Options: opts})
	if err != nil {
		return "", err
	}
	reply, _, err := s.guard.Do(ctx, keyCreate+command, func(ctx context.Context) (*Reply, error) {
		return s.client.CreateTask(ctx, title, opts)
	})
	if err != nil {
		LogWarn("Failed to create task: %v", err)
		return "", err
	}
	if _, err := s.reload(ctx); err != nil {
		return reply.Text, err
	}
	return reply.Text, nil
}

// ToggleTask sends one complete command for task and then one full reload.
// The task view is not touched until the reload resolves.
func (s *Session) ToggleTask(ctx context.Context, task Task) error {
	id := completionID(task)
	_, _, err := s.guard.Do(ctx, keyComplete+id, func(ctx context.Context) (*Reply, error) {
		return s.client.CompleteTask(ctx, id)
	})
	if err != nil {
		LogWarn("Failed to complete task %s: %v", id, err)
		return err
	}
	_, err = s.reload(ctx)
	return err
}

// ToggleTaskAt toggles the task at position id of the current view
func (s *Session) ToggleTaskAt(ctx context.Context, id int) error {
	for _, task := range s.projection.Tasks() {
		if task.ID == id {
			return s.ToggleTask(ctx, task)
		}
	}
	return fmt.Errorf("no task with id %d in the current list", id)
}

// completionID prefers the backend reference parsed from the line and falls
// back to the position in the list
func completionID(task Task) string {
	if task.Ref != "" {
		return task.Ref
	}
	return strconv.Itoa(task.ID)
}

// Transcript returns a snapshot for export
func (s *Session) Transcript() *Transcript {
	return &Transcript{
		ID:         s.id,
		BaseURL:    s.client.BaseURL(),
		ExportedAt: s.now().UTC(),
		Messages:   s.store.All(),
		Tasks:      s.projection.Tasks(),
	}
}
