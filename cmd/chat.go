package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/iksnae/taskchat/internal"
	"github.com/iksnae/taskchat/internal/export"
	"github.com/spf13/cobra"
)

var (
	chatExportPath   string
	chatExportFormat string
	chatRemoteGreet  bool
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat [message...]",
	Short: "Chat with the assistant",
	Long: `Chat with the task assistant.

With a message, it is sent once and the reply is printed. Without one, an
interactive session starts:

  enter    send the message
  ctrl+t   reload the task list
  ctrl+c   quit (esc also quits); in-flight requests are canceled

Slash commands such as /task list, /task add "Title" --due 2025-02-01 and
/task done <id> are passed to the assistant as typed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		session := newSession()

		if len(args) > 0 {
			if err := sendOnce(cmd.Context(), cmd.OutOrStdout(), session, strings.Join(args, " ")); err != nil {
				return err
			}
		} else if err := runChatTUI(cmd.Context(), session); err != nil {
			return err
		}

		if chatExportPath != "" {
			return writeTranscript(cmd.OutOrStdout(), session.Transcript(), chatExportFormat, chatExportPath)
		}
		return nil
	},
}

// sendOnce sends text and prints the reply. A list command also prints the
// parsed task view.
func sendOnce(ctx context.Context, out io.Writer, session *internal.Session, text string) error {
	var reply internal.Message
	err := internal.ShowProgress(ctx, "Waiting for the assistant", func() error {
		var err error
		reply, err = session.Send(ctx, text)
		return err
	})
	if err != nil {
		if errors.Is(err, internal.ErrEmptyMessage) {
			return err
		}
		internal.PrintError(internal.ChatErrorText)
		return fmt.Errorf("chat failed: %w", err)
	}

	displayMessage(out, reply, 80)
	if session.Projection().Loaded() {
		displayTasks(out, session.Tasks())
	}
	return nil
}

// runChatTUI runs the interactive session until the user quits. Logging is
// silenced while the program owns the terminal.
func runChatTUI(ctx context.Context, session *internal.Session) error {
	if !verbose {
		internal.SetLogOutput(io.Discard)
		defer internal.SetLogOutput(os.Stderr)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := newChatModel(ctx, cancel, session, chatRemoteGreet)
	program := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("chat session failed: %w", err)
	}
	return nil
}

// writeTranscript exports transcript to path, or to out when path is "-"
func writeTranscript(out io.Writer, transcript *internal.Transcript, format, path string) error {
	exporter, err := export.NewExporter(format)
	if err != nil {
		return err
	}

	if path == "-" {
		if err := exporter.Export(transcript, out); err != nil {
			return &internal.ExportError{Format: format, Path: path, Err: err}
		}
		return nil
	}

	file, err := os.Create(path)
	if err != nil {
		return &internal.ExportError{Format: format, Path: path, Err: err}
	}
	if err := exporter.Export(transcript, file); err != nil {
		_ = file.Close()
		return &internal.ExportError{Format: format, Path: path, Err: err}
	}
	if err := file.Close(); err != nil {
		return &internal.ExportError{Format: format, Path: path, Err: err}
	}

	internal.PrintSuccess(fmt.Sprintf("Transcript exported to %s (%d message(s), %d task(s))",
		path, len(transcript.Messages), len(transcript.Tasks)))
	return nil
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVar(&chatExportPath, "export", "", "Write the transcript to this file on exit (- for stdout)")
	chatCmd.Flags().StringVarP(&chatExportFormat, "format", "f", "md", "Transcript format (json, jsonl, md, yaml, sqlite)")
	chatCmd.Flags().BoolVar(&chatRemoteGreet, "remote-greeting", false, "Ask the backend for the opening line instead of the built-in greeting")
}
