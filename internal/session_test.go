package internal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/iksnae/taskchat/testutil"
)

func newTestSession(t *testing.T, fake *testutil.FakeAssistant) *Session {
	t.Helper()
	srv := fake.Start(t)
	return NewSession(NewClient(ClientOptions{BaseURL: srv.URL, Timeout: 2 * time.Second}), SessionOptions{})
}

func titles(tasks []Task) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.Title)
	}
	return out
}

func TestSessionSendRejectsEmpty(t *testing.T) {
	fake := testutil.NewFakeAssistant()
	s := newTestSession(t, fake)

	if _, err := s.Send(context.Background(), "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("Send() error = %v, want ErrEmptyMessage", err)
	}
	if len(fake.Requests()) != 0 {
		t.Error("Send() of blank text reached the backend")
	}
	if len(s.Messages()) != 0 {
		t.Error("Send() of blank text changed the transcript")
	}
}

func TestSessionSendAppendsExchange(t *testing.T) {
	fake := testutil.NewFakeAssistant()
	s := newTestSession(t, fake)
	s.Greet()

	msg, err := s.Send(context.Background(), "  hello  ")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if msg.Content != "echo: hello" || msg.Role != RoleAssistant {
		t.Errorf("Send() = %+v, want assistant echo", msg)
	}

	got := s.Messages()
	want := []Message{
		{Role: RoleAssistant, Content: GreetingText},
		{Role: RoleUser, Content: "hello"},
		{Role: RoleAssistant, Content: "echo: hello"},
	}
	opts := cmpopts.IgnoreFields(Message{}, "ID", "Seq", "Timestamp")
	if diff := cmp.Diff(want, got, opts); diff != "" {
		t.Errorf("transcript mismatch (-want +got):\n%s", diff)
	}
	if s.Projection().Loaded() {
		t.Error("non-list message loaded the task view")
	}
}

func TestSessionSendHistoryExcludesCurrentMessage(t *testing.T) {
	fake := testutil.NewFakeAssistant()
	s := newTestSession(t, fake)
	ctx := context.Background()

	s.Greet()
	if _, err := s.Send(ctx, "first"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if _, err := s.Send(ctx, "second"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	reqs := fake.Requests()
	if len(reqs[0].History) != 1 {
		t.Errorf("first request history = %d entries, want 1", len(reqs[0].History))
	}
	var contents []string
	for _, h := range reqs[1].History {
		contents = append(contents, h.Content)
	}
	want := []string{GreetingText, "first", "echo: first"}
	if diff := cmp.Diff(want, contents); diff != "" {
		t.Errorf("second request history mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionSendHistoryWindowIsBounded(t *testing.T) {
	fake := testutil.NewFakeAssistant()
	s := newTestSession(t, fake)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		if _, err := s.Send(ctx, "ping"); err != nil {
			t.Fatalf("Send() error = %v", err)
		}
	}
	reqs := fake.Requests()
	last := reqs[len(reqs)-1]
	if len(last.History) != DefaultHistoryLimit {
		t.Errorf("history = %d entries, want %d", len(last.History), DefaultHistoryLimit)
	}
}

func TestSessionSendListUpdatesTasks(t *testing.T) {
	fake := testutil.NewFakeAssistant(testutil.SampleTasks()...)
	s := newTestSession(t, fake)

	if _, err := s.Send(context.Background(), "/task list"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	tasks := s.Tasks()
	if diff := cmp.Diff([]string{"Buy milk", "Pay rent"}, titles(tasks)); diff != "" {
		t.Fatalf("titles mismatch (-want +got):\n%s", diff)
	}
	if tasks[0].Completed || !tasks[1].Completed {
		t.Errorf("completion = %v/%v, want false/true", tasks[0].Completed, tasks[1].Completed)
	}
	if tasks[1].Ref != testutil.DoneTask.ID || tasks[1].Due != "2025-01-31" || tasks[1].Priority != 3 {
		t.Errorf("metadata = %+v, want ref, due and priority from the line", tasks[1])
	}
}

func TestSessionSendFailure(t *testing.T) {
	fake := testutil.NewFakeAssistant(testutil.SampleTasks()...)
	s := newTestSession(t, fake)
	ctx := context.Background()

	if _, err := s.LoadTasks(ctx); err != nil {
		t.Fatalf("LoadTasks() error = %v", err)
	}
	before := s.Tasks()

	fake.SetFailStatus(http.StatusInternalServerError)
	msg, err := s.Send(ctx, "/task list")
	if _, ok := IsNetworkError(err); !ok {
		t.Fatalf("Send() error = %v, want *NetworkError", err)
	}
	if msg.Content != ChatErrorText || msg.Role != RoleAssistant {
		t.Errorf("Send() = %+v, want fallback apology", msg)
	}
	if diff := cmp.Diff(before, s.Tasks()); diff != "" {
		t.Errorf("failed list changed the task view (-want +got):\n%s", diff)
	}
}

func TestSessionSendCanceled(t *testing.T) {
	fake := testutil.NewFakeAssistant()
	fake.Delay = time.Second
	s := newTestSession(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Send(ctx, "hello"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Send() error = %v, want context.Canceled", err)
	}
	msgs := s.Messages()
	if len(msgs) != 1 || msgs[0].Role != RoleUser {
		t.Errorf("transcript = %+v, want only the user message", msgs)
	}
}

func TestSessionLoadTasksFailureKeepsView(t *testing.T) {
	fake := testutil.NewFakeAssistant()
	fake.FailStatus = http.StatusBadGateway
	s := newTestSession(t, fake)

	if _, err := s.LoadTasks(context.Background()); err == nil {
		t.Fatal("LoadTasks() error = nil, want error")
	}
	if s.Projection().Loaded() {
		t.Error("failed load marked the view as loaded")
	}
	if len(s.Messages()) != 0 {
		t.Error("LoadTasks() wrote to the transcript")
	}
}

func TestSessionLoadTasksSharesInFlightRequest(t *testing.T) {
	fake := testutil.NewFakeAssistant(testutil.SampleTasks()...)
	fake.Delay = 200 * time.Millisecond
	s := newTestSession(t, fake)

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.LoadTasks(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("LoadTasks() #%d error = %v", i, err)
		}
	}
	if n := len(fake.Messages()); n != 1 {
		t.Errorf("backend saw %d list requests, want 1", n)
	}
	if len(s.Tasks()) != 2 {
		t.Errorf("Tasks() = %d, want 2", len(s.Tasks()))
	}
}

func TestSessionToggleTask(t *testing.T) {
	fake := testutil.NewFakeAssistant(testutil.SampleTasks()...)
	s := newTestSession(t, fake)
	ctx := context.Background()

	tasks, err := s.LoadTasks(ctx)
	if err != nil {
		t.Fatalf("LoadTasks() error = %v", err)
	}
	if err := s.ToggleTask(ctx, tasks[0]); err != nil {
		t.Fatalf("ToggleTask() error = %v", err)
	}

	want := []string{"/task list", "/task done " + testutil.OpenTask.ID, "/task list"}
	if diff := cmp.Diff(want, fake.Messages()); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
	if !s.Tasks()[0].Completed {
		t.Error("task view was not refreshed after toggle")
	}
	if len(s.Messages()) != 0 {
		t.Error("ToggleTask() wrote to the transcript")
	}
}

func TestSessionToggleTaskFallsBackToPosition(t *testing.T) {
	fake := testutil.NewFakeAssistant()
	s := newTestSession(t, fake)

	if err := s.ToggleTask(context.Background(), Task{ID: 4, Title: "No ref"}); err != nil {
		t.Fatalf("ToggleTask() error = %v", err)
	}
	if got := fake.Messages()[0]; got != "/task done 4" {
		t.Errorf("command = %q, want /task done 4", got)
	}
}

func TestSessionToggleTaskFailureKeepsView(t *testing.T) {
	fake := testutil.NewFakeAssistant(testutil.SampleTasks()...)
	s := newTestSession(t, fake)
	ctx := context.Background()

	tasks, err := s.LoadTasks(ctx)
	if err != nil {
		t.Fatalf("LoadTasks() error = %v", err)
	}
	version := s.Projection().Version()

	fake.SetFailStatus(http.StatusInternalServerError)
	if err := s.ToggleTask(ctx, tasks[0]); err == nil {
		t.Fatal("ToggleTask() error = nil, want error")
	}
	if diff := cmp.Diff(tasks, s.Tasks()); diff != "" {
		t.Errorf("failed toggle changed the view (-want +got):\n%s", diff)
	}
	if s.Projection().Version() != version {
		t.Error("failed toggle applied a new list")
	}
	if n := len(fake.Messages()); n != 2 {
		t.Errorf("backend saw %d requests, want list and done only", n)
	}
}

func TestSessionToggleTaskAt(t *testing.T) {
	fake := testutil.NewFakeAssistant(testutil.SampleTasks()...)
	s := newTestSession(t, fake)
	ctx := context.Background()

	if err := s.ToggleTaskAt(ctx, 0); err == nil {
		t.Error("ToggleTaskAt() on an empty view error = nil, want error")
	}
	if _, err := s.LoadTasks(ctx); err != nil {
		t.Fatalf("LoadTasks() error = %v", err)
	}
	if err := s.ToggleTaskAt(ctx, 0); err != nil {
		t.Fatalf("ToggleTaskAt() error = %v", err)
	}
	if !fake.Tasks()[0].Completed {
		t.Error("backend task was not completed")
	}
}

func TestSessionAddTask(t *testing.T) {
	fake := testutil.NewFakeAssistant()
	s := newTestSession(t, fake)

	confirmation, err := s.AddTask(context.Background(), "Call mom", TaskOptions{Category: "family"})
	if err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	if confirmation == "" {
		t.Error("AddTask() returned empty confirmation")
	}
	if diff := cmp.Diff([]string{"Call mom"}, titles(s.Tasks())); diff != "" {
		t.Errorf("titles mismatch (-want +got):\n%s", diff)
	}
	if got := fake.Tasks()[0].Category; got != "family" {
		t.Errorf("backend category = %q, want family", got)
	}
}

func TestSessionGreetRemote(t *testing.T) {
	fake := testutil.NewFakeAssistant()
	s := newTestSession(t, fake)

	msg, err := s.GreetRemote(context.Background())
	if err != nil {
		t.Fatalf("GreetRemote() error = %v", err)
	}
	if msg.Content != testutil.StartGreeting || msg.Role != RoleAssistant {
		t.Errorf("GreetRemote() = %+v, want backend greeting", msg)
	}

	fake = testutil.NewFakeAssistant()
	fake.FailStatus = http.StatusServiceUnavailable
	s = newTestSession(t, fake)
	msg, err = s.GreetRemote(context.Background())
	if err == nil {
		t.Error("GreetRemote() error = nil, want error")
	}
	if msg.Content != GreetingText {
		t.Errorf("GreetRemote() = %q, want local greeting", msg.Content)
	}
}

func TestSessionTranscript(t *testing.T) {
	fake := testutil.NewFakeAssistant(testutil.SampleTasks()...)
	s := newTestSession(t, fake)
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	s.Greet()
	if _, err := s.Send(context.Background(), "/task list"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	tr := s.Transcript()
	if tr.ID != s.ID() || !tr.ExportedAt.Equal(fixed) {
		t.Errorf("Transcript() header = %s %v", tr.ID, tr.ExportedAt)
	}
	if len(tr.Messages) != 3 || len(tr.Tasks) != 2 {
		t.Errorf("Transcript() = %d messages, %d tasks, want 3 and 2", len(tr.Messages), len(tr.Tasks))
	}
}
