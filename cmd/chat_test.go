package cmd

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/iksnae/taskchat/internal"
)

func TestChatOneShot(t *testing.T) {
	fake, url := startBackend(t)

	out, err := executeCommand(t, "chat", "hello", "there", "--base-url", url)
	if err != nil {
		t.Fatalf("chat error = %v", err)
	}
	if !strings.Contains(out, "echo: hello there") {
		t.Errorf("output = %s, want echoed reply", out)
	}
	if strings.Contains(out, "task(s)") {
		t.Errorf("output = %s, want no task table for plain chat", out)
	}
	if got := fake.Messages(); len(got) != 1 || got[0] != "hello there" {
		t.Errorf("backend messages = %v", got)
	}
}

func TestChatOneShotListCommand(t *testing.T) {
	_, url := startBackend(t)

	out, err := executeCommand(t, "chat", "/task list", "--base-url", url)
	if err != nil {
		t.Fatalf("chat error = %v", err)
	}
	if !strings.Contains(out, "2 task(s)") {
		t.Errorf("output = %s, want task table", out)
	}
}

func TestChatOneShotFailure(t *testing.T) {
	fake, url := startBackend(t)
	fake.SetFailStatus(http.StatusInternalServerError)

	_, err := executeCommand(t, "chat", "hello", "--base-url", url)
	if _, ok := internal.IsNetworkError(err); !ok {
		t.Errorf("chat error = %v, want network error", err)
	}
}

func TestChatExportToStdout(t *testing.T) {
	_, url := startBackend(t)

	out, err := executeCommand(t, "chat", "/task list", "--export", "-", "--format", "json", "--base-url", url)
	if err != nil {
		t.Fatalf("chat error = %v", err)
	}

	start := strings.Index(out, "{\n")
	if start == -1 {
		t.Fatalf("output has no JSON transcript:\n%s", out)
	}
	var transcript internal.Transcript
	if err := json.Unmarshal([]byte(out[start:]), &transcript); err != nil {
		t.Fatalf("transcript is not valid JSON: %v", err)
	}
	if len(transcript.Messages) != 2 || len(transcript.Tasks) != 2 {
		t.Errorf("transcript = %d messages, %d tasks, want 2 and 2", len(transcript.Messages), len(transcript.Tasks))
	}
	if transcript.BaseURL != url {
		t.Errorf("transcript BaseURL = %q, want %q", transcript.BaseURL, url)
	}
}
