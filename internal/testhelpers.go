package internal

import (
	"time"
)

// testTime is the fixed clock used by the transcript helpers
var testTime = time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)

// CreateTestTranscript creates a transcript with a short exchange and a task list
func CreateTestTranscript(id string) *Transcript {
	parser := NewBulletParser()
	return &Transcript{
		ID:         id,
		BaseURL:    "http://localhost:8001",
		ExportedAt: testTime,
		Messages: []Message{
			{ID: id + "-1", Seq: 1, Role: RoleUser, Content: "/task list", Timestamp: testTime},
			{ID: id + "-2", Seq: 2, Role: RoleAssistant, Content: "• Buy milk\n✔ Pay rent", Timestamp: testTime.Add(time.Second)},
		},
		Tasks: parser.ParseTaskList("• Buy milk\n✔ Pay rent [prio 2] (due 2025-01-31)"),
	}
}

// CreateTestTranscriptWithMessages creates a transcript with custom messages and no tasks
func CreateTestTranscriptWithMessages(id string, messages []Message) *Transcript {
	return &Transcript{
		ID:         id,
		ExportedAt: testTime,
		Messages:   messages,
		Tasks:      []Task{},
	}
}
