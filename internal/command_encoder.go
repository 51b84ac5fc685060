package internal

import (
	"fmt"
	"strconv"
	"strings"
)

// Encoder turns task intents into the command text the assistant
// understands. Implementations must be deterministic.
type Encoder interface {
	Version() string
	Encode(intent Intent) (string, error)
	// IsListCommand reports whether text, as typed or encoded, asks for the
	// task list, meaning its reply is expected to carry one
	IsListCommand(text string) bool
}

const (
	listCommand = "/task list"
	addCommand  = "/task add"
	doneCommand = "/task done"
)

// TextEncoderV1 produces the slash-command syntax of the original backend:
//
//	/task list
//	/task add "Title" --desc "..." --cat "..." --due "..." --priority N --tags a,b
//	/task done <id>
//
// Field contents are not escaped; an embedded quote produces a command the
// backend will misread.
type TextEncoderV1 struct{}

// NewTextEncoder returns the current command encoder
func NewTextEncoder() *TextEncoderV1 {
	return &TextEncoderV1{}
}

// Version returns the protocol version this encoder speaks
func (e *TextEncoderV1) Version() string {
	return "text/v1"
}

// Encode encodes a single intent
func (e *TextEncoderV1) Encode(intent Intent) (string, error) {
	switch in := intent.(type) {
	case ListIntent:
		return listCommand, nil
	case AddIntent:
		return encodeAdd(in), nil
	case CompleteIntent:
		return doneCommand + " " + in.TaskID, nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnknownIntent, intent)
	}
}

func encodeAdd(in AddIntent) string {
	var b strings.Builder
	b.WriteString(addCommand)
	b.WriteString(` "`)
	b.WriteString(in.Title)
	b.WriteString(`"`)

	opts := in.Options
	if opts.Description != "" {
		b.WriteString(` --desc "` + opts.Description + `"`)
	}
	if opts.Category != "" {
		b.WriteString(` --cat "` + opts.Category + `"`)
	}
	if opts.DueDate != "" {
		b.WriteString(` --due "` + opts.DueDate + `"`)
	}
	if opts.Priority != 0 {
		b.WriteString(" --priority " + strconv.Itoa(opts.Priority))
	}
	if len(opts.Tags) > 0 {
		b.WriteString(" --tags " + strings.Join(opts.Tags, ","))
	}
	return b.String()
}

// IsListCommand matches "/task list" case-insensitively on the subcommand,
// the way the backend dispatches it
func (e *TextEncoderV1) IsListCommand(text string) bool {
	fields := strings.Fields(text)
	return len(fields) >= 2 && fields[0] == "/task" && strings.EqualFold(fields[1], "list")
}
