package internal

import (
	"errors"
	"strings"
)

var errMissingReply = errors.New("response has no reply or text field")

// Reply is a decoded assistant response
type Reply struct {
	Text   string
	Sender Role
}

// replyPayload accepts both backend variants: {"reply": ...} from the
// assistant endpoint and {"text": ..., "sender": ...} from the legacy chat
// endpoint. Pointers distinguish an empty reply from a missing one.
type replyPayload struct {
	Reply  *string `json:"reply"`
	Text   *string `json:"text"`
	Sender string  `json:"sender"`
	Role   string  `json:"role"`
}

// normalizeReply converts a decoded payload into a Reply
func normalizeReply(p replyPayload) (*Reply, error) {
	var text string
	switch {
	case p.Reply != nil:
		text = *p.Reply
	case p.Text != nil:
		text = *p.Text
	default:
		return nil, errMissingReply
	}

	sender := p.Sender
	if sender == "" {
		sender = p.Role
	}
	return &Reply{Text: text, Sender: normalizeRole(sender)}, nil
}

// normalizeRole maps backend sender strings onto transcript roles. Anything
// that is not the user is shown as the assistant.
func normalizeRole(sender string) Role {
	switch strings.ToLower(strings.TrimSpace(sender)) {
	case "user", "human":
		return RoleUser
	default:
		return RoleAssistant
	}
}
