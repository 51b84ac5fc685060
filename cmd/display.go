package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/iksnae/taskchat/internal"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Strikethrough(true)

	openStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	userMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true)

	assistantMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Bold(true)

	messageContentStyle = lipgloss.NewStyle().
				Padding(0, 2)

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// displayTasks prints the task view as an aligned table. Cells are padded
// by visible width so styling escapes do not shift the columns.
func displayTasks(out io.Writer, tasks []internal.Task) {
	if len(tasks) == 0 {
		_, _ = fmt.Fprintln(out, headerStyle.Render("📋 No tasks"))
		return
	}

	_, _ = fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📋 %d task(s)", len(tasks))))
	_, _ = fmt.Fprintln(out)

	header := []string{"#", "Status", "Title", "Due", "Prio"}
	rows := make([][]string, 0, len(tasks))
	for _, task := range tasks {
		status := internal.MarkerOpen
		if task.Completed {
			status = internal.MarkerCompleted
		}
		due := "—"
		if task.Due != "" {
			due = formatDue(task.Due)
		}
		prio := "—"
		if task.Priority > 0 {
			prio = strconv.Itoa(task.Priority)
		}
		rows = append(rows, []string{strconv.Itoa(task.ID), status, task.Title, due, prio})
	}

	widths := make([]int, len(header))
	for _, row := range append([][]string{header}, rows...) {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	_, _ = fmt.Fprintln(out, tableRow(widths, header, func(int) lipgloss.Style { return titleStyle }))
	for i, row := range rows {
		textStyle := openStyle
		if tasks[i].Completed {
			textStyle = doneStyle
		}
		_, _ = fmt.Fprintln(out, tableRow(widths, row, func(col int) lipgloss.Style {
			switch col {
			case 0:
				return idStyle
			case 1, 2:
				return textStyle
			default:
				return dateStyle
			}
		}))
	}
}

// tableRow pads every cell to its column width before styling it
func tableRow(widths []int, cells []string, style func(col int) lipgloss.Style) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		pad := strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
		parts[i] = style(i).Render(cell) + pad
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}

// formatDue renders a due date relative to now when it parses
func formatDue(due string) string {
	t, err := time.Parse(time.DateOnly, due)
	if err != nil {
		return due
	}
	return fmt.Sprintf("%s (%s)", due, humanize.Time(t))
}

// displayMessage prints one transcript entry
func displayMessage(out io.Writer, msg internal.Message, width int) {
	var label string
	var style lipgloss.Style
	switch msg.Role {
	case internal.RoleUser:
		label, style = "👤 You", userMessageStyle
	default:
		label, style = "🤖 Assistant", assistantMessageStyle
	}

	header := style.Render(label)
	if !msg.Timestamp.IsZero() {
		header += " " + timestampStyle.Render(humanize.Time(msg.Timestamp))
	}
	_, _ = fmt.Fprintln(out, header)

	content := strings.TrimSpace(msg.Content)
	if content == "" {
		content = "(empty message)"
	}
	_, _ = fmt.Fprintln(out, messageContentStyle.Render(wrapText(content, width)))
	_, _ = fmt.Fprintln(out)
}

// renderTranscript returns the messages as the chat view shows them
func renderTranscript(messages []internal.Message, width int) string {
	var b strings.Builder
	for _, msg := range messages {
		displayMessage(&b, msg, width)
	}
	return b.String()
}

func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	var wrapped []string

	for _, line := range lines {
		if len(line) <= width {
			wrapped = append(wrapped, line)
			continue
		}

		words := strings.Fields(line)
		currentLine := ""
		for _, word := range words {
			if len(currentLine)+len(word)+1 > width {
				if currentLine != "" {
					wrapped = append(wrapped, currentLine)
				}
				currentLine = word
			} else if currentLine == "" {
				currentLine = word
			} else {
				currentLine += " " + word
			}
		}
		if currentLine != "" {
			wrapped = append(wrapped, currentLine)
		}
	}

	return strings.Join(wrapped, "\n")
}
