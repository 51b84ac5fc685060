package cmd

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/iksnae/taskchat/internal"
	"github.com/iksnae/taskchat/internal/export"
	"github.com/spf13/cobra"
)

var (
	format      string
	outputPath  string
	withTasks   bool
	remoteGreet bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export [message...]",
	Short: "Run a scripted conversation and export the transcript",
	Long: `Send each argument as one message, in order, and write the resulting
transcript in the chosen format (jsonl, md, yaml, json, sqlite).

A failed message is recorded in the transcript with the assistant's apology
and the remaining messages are still sent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		session := newSession()
		if remoteGreet {
			_, _ = session.GreetRemote(ctx)
		} else {
			session.Greet()
		}

		var steps []internal.ProgressStep
		for _, text := range args {
			text := text
			steps = append(steps, internal.ProgressStep{
				Message: fmt.Sprintf("Sending %q", truncateLabel(text, 40)),
				Fn: func() error {
					if _, err := session.Send(ctx, text); err != nil {
						internal.LogWarn("Message %q failed: %v", text, err)
					}
					return ctx.Err()
				},
			})
		}
		if withTasks {
			steps = append(steps, internal.ProgressStep{
				Message: "Loading tasks",
				Fn: func() error {
					if _, err := session.LoadTasks(ctx); err != nil {
						internal.PrintWarning(internal.LoadTasksErrorText)
					}
					return ctx.Err()
				},
			})
		}
		if err := internal.ShowProgressWithSteps(ctx, steps); err != nil {
			return err
		}

		path := outputPath
		if path == "" {
			path = fmt.Sprintf("session_%s.%s", session.ID(), exporter.Extension())
		}
		return writeTranscript(cmd.OutOrStdout(), session.Transcript(), format, path)
	},
}

func truncateLabel(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	cut := n - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Export format (jsonl, md, yaml, json, sqlite)")
	exportCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file, - for stdout (default session_<id>.<ext>)")
	exportCmd.Flags().BoolVar(&withTasks, "tasks", true, "Load the task list before exporting")
	exportCmd.Flags().BoolVar(&remoteGreet, "remote-greeting", false, "Ask the backend for the opening line")
}
