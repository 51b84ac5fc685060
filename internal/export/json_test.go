package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/iksnae/taskchat/internal"
)

func TestJSONExporter_Export(t *testing.T) {
	tests := []struct {
		name       string
		transcript *internal.Transcript
	}{
		{name: "basic transcript", transcript: internal.CreateTestTranscript("test1")},
		{name: "empty transcript", transcript: internal.CreateTestTranscriptWithMessages("test2", []internal.Message{})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			exporter := &JSONExporter{}

			if err := exporter.Export(tt.transcript, &buf); err != nil {
				t.Fatalf("JSONExporter.Export() error = %v", err)
			}

			output := buf.String()
			var decoded internal.Transcript
			if err := json.Unmarshal([]byte(output), &decoded); err != nil {
				t.Fatalf("Output is not valid JSON: %v\nOutput: %s", err, output)
			}

			if decoded.ID != tt.transcript.ID {
				t.Errorf("decoded ID = %q, want %q", decoded.ID, tt.transcript.ID)
			}
			if diff := cmp.Diff(tt.transcript.Tasks, decoded.Tasks); diff != "" {
				t.Errorf("tasks mismatch (-want +got):\n%s", diff)
			}
			if len(decoded.Messages) != len(tt.transcript.Messages) {
				t.Errorf("decoded %d messages, want %d", len(decoded.Messages), len(tt.transcript.Messages))
			}
			if !strings.Contains(output, "\n  ") {
				t.Errorf("Output should be pretty-printed with indentation")
			}
		})
	}
}

func TestJSONExporter_Extension(t *testing.T) {
	exporter := &JSONExporter{}
	if got := exporter.Extension(); got != "json" {
		t.Errorf("JSONExporter.Extension() = %v, want json", got)
	}
}
