package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// DefaultTimeout bounds every request; the backend gives no guarantee of
	// its own
	DefaultTimeout   = 10 * time.Second
	DefaultChatPath  = "/api/assistant/chat"
	DefaultStartPath = "/chat"

	maxResponseBytes = 1 << 20
	maxErrorBody     = 256
)

// Doer is the subset of *http.Client the client needs
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientOptions configures a Client. Zero values fall back to defaults.
type ClientOptions struct {
	BaseURL      string
	ChatPath     string
	StartPath    string
	Timeout      time.Duration
	HistoryLimit int
	Encoder      Encoder
	HTTPClient   Doer
}

// Client talks to the assistant backend. It issues exactly one request per
// call: no retry and no dedup (see Guard for the latter).
type Client struct {
	baseURL      string
	chatPath     string
	startPath    string
	timeout      time.Duration
	historyLimit int
	encoder      Encoder
	http         Doer
}

// NewClient creates a client from opts
func NewClient(opts ClientOptions) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		chatPath:     normalizePath(opts.ChatPath, DefaultChatPath),
		startPath:    normalizePath(opts.StartPath, DefaultStartPath),
		timeout:      opts.Timeout,
		historyLimit: opts.HistoryLimit,
		encoder:      opts.Encoder,
		http:         opts.HTTPClient,
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.historyLimit <= 0 {
		c.historyLimit = DefaultHistoryLimit
	}
	if c.encoder == nil {
		c.encoder = NewTextEncoder()
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	return c
}

func normalizePath(path, def string) string {
	if path == "" {
		return def
	}
	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Encoder returns the command encoder used by the convenience calls
func (c *Client) Encoder() Encoder {
	return c.encoder
}

// HistoryLimit returns how many trailing messages Chat sends
func (c *Client) HistoryLimit() int {
	return c.historyLimit
}

type chatRequest struct {
	Message string    `json:"message"`
	History []Message `json:"history"`
}

type startRequest struct {
	Text string `json:"text"`
}

// Chat sends message with the trailing HistoryLimit entries of history
func (c *Client) Chat(ctx context.Context, message string, history []Message) (*Reply, error) {
	if len(history) > c.historyLimit {
		history = history[len(history)-c.historyLimit:]
	}
	if history == nil {
		history = []Message{}
	}
	return c.post(ctx, "chat", c.chatPath, chatRequest{Message: message, History: history})
}

// StartConversation posts an empty message to the start endpoint and
// returns the assistant's opening line
func (c *Client) StartConversation(ctx context.Context) (*Reply, error) {
	return c.post(ctx, "start", c.startPath, startRequest{Text: ""})
}

// GetTasks asks the assistant for the task list
func (c *Client) GetTasks(ctx context.Context) (*Reply, error) {
	return c.send(ctx, ListIntent{})
}

// CreateTask adds a task
func (c *Client) CreateTask(ctx context.Context, title string, opts TaskOptions) (*Reply, error) {
	return c.send(ctx, AddIntent{Title: title, Options: opts})
}

// CompleteTask marks the task identified by id as done
func (c *Client) CompleteTask(ctx context.Context, id string) (*Reply, error) {
	return c.send(ctx, CompleteIntent{TaskID: id})
}

func (c *Client) send(ctx context.Context, intent Intent) (*Reply, error) {
	command, err := c.encoder.Encode(intent)
	if err != nil {
		return nil, err
	}
	return c.Chat(ctx, command, nil)
}

func (c *Client) post(ctx context.Context, op, path string, payload interface{}) (*Reply, error) {
	url := c.baseURL + path
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &NetworkError{Op: op, URL: url, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		LogDebug("POST %s failed after %s: %v", url, time.Since(start), err)
		return nil, &NetworkError{Op: op, URL: url, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	LogDebug("POST %s -> %d in %s", url, resp.StatusCode, time.Since(start))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &NetworkError{
			Op:         op,
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}
	if err != nil {
		return nil, &NetworkError{Op: op, URL: url, Err: err}
	}

	var decoded replyPayload
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, &ProtocolError{Op: op, Body: truncate(string(data), maxErrorBody), Err: err}
	}
	reply, err := normalizeReply(decoded)
	if err != nil {
		return nil, &ProtocolError{Op: op, Body: truncate(string(data), maxErrorBody), Err: err}
	}
	return reply, nil
}

// truncate cuts s to at most n bytes without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
