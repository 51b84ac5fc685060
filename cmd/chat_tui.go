package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/taskchat/internal"
)

const (
	taskPanelWidth = 34
	inputHeight    = 3
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	statusLineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

type (
	greetedMsg     struct{ err error }
	replyMsg       struct{ err error }
	tasksLoadedMsg struct{ err error }
)

// chatModel is the interactive session. The session owns all state; the
// model only renders it and tracks what is in flight.
type chatModel struct {
	ctx     context.Context
	cancel  context.CancelFunc
	session *internal.Session
	remote  bool

	input    textinput.Model
	viewport viewport.Model
	spin     spinner.Model

	sending  bool
	loading  bool
	rendered int
	notice   string
	width    int
	height   int
	ready    bool
}

// newChatModel starts in the loading state since Init issues the first
// task load
func newChatModel(ctx context.Context, cancel context.CancelFunc, session *internal.Session, remoteGreeting bool) chatModel {
	in := textinput.New()
	in.Placeholder = `Ask anything, or try "/task list"`
	in.Prompt = "You> "
	in.Focus()
	in.CharLimit = 0
	in.Width = 60

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))

	return chatModel{
		ctx:      ctx,
		cancel:   cancel,
		session:  session,
		remote:   remoteGreeting,
		input:    in,
		viewport: viewport.New(80, 20),
		spin:     s,
		loading:  true,
	}
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick, m.greet(), m.loadTasks())
}

func (m chatModel) greet() tea.Cmd {
	if !m.remote {
		m.session.Greet()
		return nil
	}
	return func() tea.Msg {
		_, err := m.session.GreetRemote(m.ctx)
		return greetedMsg{err: err}
	}
}

func (m chatModel) send(text string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.session.Send(m.ctx, text)
		return replyMsg{err: err}
	}
}

func (m chatModel) loadTasks() tea.Cmd {
	return func() tea.Msg {
		_, err := m.session.LoadTasks(m.ctx)
		return tasksLoadedMsg{err: err}
	}
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(msg.Width-taskPanelWidth-8, 10)
		m.viewport.Width = max(msg.Width-taskPanelWidth-4, 20)
		m.viewport.Height = max(msg.Height-inputHeight-2, 5)
		m.ready = true
		m.rendered = -1

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancel()
			return m, tea.Quit

		case "ctrl+t":
			if !m.loading {
				m.loading = true
				m.notice = ""
				cmds = append(cmds, m.loadTasks())
			}
			return m, tea.Batch(cmds...)

		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.sending {
				return m, nil
			}
			m.input.SetValue("")
			m.sending = true
			m.notice = ""
			return m, m.send(text)
		}

	case greetedMsg:
		// The session falls back to the local greeting on its own.

	case replyMsg:
		m.sending = false
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.notice = describeError(msg.err)
		}

	case tasksLoadedMsg:
		m.loading = false
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.notice = internal.LoadTasksErrorText
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.spin, cmd = m.spin.Update(msg)
	cmds = append(cmds, cmd)

	if n := len(m.session.Messages()); n != m.rendered {
		m.viewport.SetContent(renderTranscript(m.session.Messages(), max(m.viewport.Width-4, 20)))
		m.viewport.GotoBottom()
		m.rendered = n
	}
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// describeError turns a request failure into the short line shown under
// the input
func describeError(err error) string {
	if netErr, ok := internal.IsNetworkError(err); ok && netErr.StatusCode != 0 {
		return fmt.Sprintf("%s (HTTP %d)", internal.ChatErrorText, netErr.StatusCode)
	}
	if _, ok := internal.IsProtocolError(err); ok {
		return internal.ChatErrorText + " (unexpected response)"
	}
	return internal.ChatErrorText
}

func (m chatModel) View() string {
	if !m.ready {
		return m.spin.View() + " Starting..."
	}

	chat := m.viewport.View()
	panel := panelStyle.
		Width(taskPanelWidth - 2).
		Height(max(m.viewport.Height-2, 3)).
		Render(m.taskPanel())
	body := lipgloss.JoinHorizontal(lipgloss.Top, chat, " ", panel)

	status := statusLineStyle.Render("enter send • ctrl+t reload tasks • esc quit")
	if m.sending {
		status = m.spin.View() + statusLineStyle.Render(" Waiting for the assistant...")
	}
	if m.notice != "" {
		status = noticeStyle.Render(m.notice)
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, m.input.View(), status)
}

func (m chatModel) taskPanel() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Tasks"))
	if m.loading {
		b.WriteString(" " + m.spin.View())
	}
	b.WriteString("\n\n")

	projection := m.session.Projection()
	if !projection.Loaded() {
		hint := "ctrl+t to load"
		if m.loading {
			hint = "Loading..."
		}
		b.WriteString(dateStyle.Render(hint))
		return b.String()
	}
	tasks := projection.Tasks()
	if len(tasks) == 0 {
		b.WriteString(dateStyle.Render("No tasks"))
		return b.String()
	}
	for _, task := range tasks {
		line := internal.MarkerOpen + " " + task.Title
		style := openStyle
		if task.Completed {
			line = internal.MarkerCompleted + " " + task.Title
			style = doneStyle
		}
		b.WriteString(style.Render(wrapText(line, taskPanelWidth-4)))
		b.WriteString("\n")
	}
	return b.String()
}
