package cmd

import (
	"net/http"
	"strings"
	"testing"
)

func TestHealthcheckCommand(t *testing.T) {
	_, url := startBackend(t)

	out, err := executeCommand(t, "healthcheck", "--details", "--base-url", url)
	if err != nil {
		t.Fatalf("healthcheck error = %v", err)
	}
	for _, want := range []string{"Start endpoint answered", "Parsed 2 task line(s)", "Health check passed", "Backend: " + url} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestHealthcheckCommand_Failure(t *testing.T) {
	fake, url := startBackend(t)
	fake.SetFailStatus(http.StatusServiceUnavailable)

	out, err := executeCommand(t, "healthcheck", "--base-url", url)
	if err == nil {
		t.Fatal("healthcheck error = nil, want error")
	}
	if !strings.Contains(out, "Health check failed") {
		t.Errorf("output = %s, want failure summary", out)
	}
}

func TestHealthcheckCommandExists(t *testing.T) {
	found := false
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == "healthcheck" {
			found = true
			if cmd.Flag("details") == nil {
				t.Error("healthcheck command should have --details flag")
			}
			break
		}
	}

	if !found {
		t.Error("healthcheck command not found in root command")
	}
}
