package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/iksnae/taskchat/internal"
)

// JSONLExporter exports transcripts in JSONL format: one record per message,
// followed by one record per task of the task view
type JSONLExporter struct{}

type jsonlRecord struct {
	Kind      string         `json:"kind"`
	Role      internal.Role  `json:"role,omitempty"`
	Content   string         `json:"content,omitempty"`
	Timestamp *time.Time     `json:"timestamp,omitempty"`
	Task      *internal.Task `json:"task,omitempty"`
}

// Export exports a transcript to JSONL format
func (e *JSONLExporter) Export(transcript *internal.Transcript, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	for _, msg := range transcript.Messages {
		rec := jsonlRecord{Kind: "message", Role: msg.Role, Content: msg.Content}
		if !msg.Timestamp.IsZero() {
			ts := msg.Timestamp
			rec.Timestamp = &ts
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
	}

	for i := range transcript.Tasks {
		if err := enc.Encode(jsonlRecord{Kind: "task", Task: &transcript.Tasks[i]}); err != nil {
			return fmt.Errorf("failed to encode task: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
