package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/taskchat/internal"
	"github.com/spf13/cobra"
)

var (
	healthcheckDetails bool
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that the assistant backend is reachable and understood",
	Long: `Check the health of the client setup by verifying:
  • Configuration resolution
  • The conversation start endpoint
  • The chat endpoint and the task list command
  • That the task list reply can be parsed

This command is useful for debugging connectivity before starting a session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		ctx := cmd.Context()

		_, _ = fmt.Fprintln(out, sectionStyle.Render("🔍 Task Assistant Health Check"))
		_, _ = fmt.Fprintln(out)

		// Step 1: Configuration
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 1: Resolving configuration..."))
		_, _ = fmt.Fprintln(out, successStyle.Render("✅ Configuration loaded"))
		if healthcheckDetails {
			_, _ = fmt.Fprintf(out, "   Environment: %s\n", cfg.Env)
			_, _ = fmt.Fprintf(out, "   Backend: %s\n", cfg.BaseURL)
			_, _ = fmt.Fprintf(out, "   Chat path: %s\n", cfg.ChatPath)
			_, _ = fmt.Fprintf(out, "   Start path: %s\n", cfg.StartPath)
			_, _ = fmt.Fprintf(out, "   Timeout: %s\n", cfg.Timeout)
		}
		_, _ = fmt.Fprintln(out)

		session := newSession()

		// Step 2: Start endpoint
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 2: Checking the conversation start endpoint..."))
		startOK := true
		greeting, err := session.GreetRemote(ctx)
		if err != nil {
			startOK = false
			_, _ = fmt.Fprintln(out, warningStyle.Render("⚠️  Start endpoint unavailable:"), err)
			if healthcheckDetails {
				_, _ = fmt.Fprintln(out, "   Sessions will open with the built-in greeting")
			}
		} else {
			_, _ = fmt.Fprintln(out, successStyle.Render("✅ Start endpoint answered"))
			if healthcheckDetails {
				_, _ = fmt.Fprintf(out, "   Greeting: %s\n", truncateLabel(greeting.Content, 60))
			}
		}
		_, _ = fmt.Fprintln(out)

		// Step 3: Chat endpoint
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 3: Sending the task list command..."))
		tasks, err := session.LoadTasks(ctx)
		if err != nil {
			_, _ = fmt.Fprintln(out, errorStyle.Render("❌ Chat endpoint failed:"), err)
			if netErr, ok := internal.IsNetworkError(err); ok && netErr.StatusCode == 0 {
				_, _ = fmt.Fprintf(out, "   Is the backend running at %s?\n", cfg.BaseURL)
			}
			_, _ = fmt.Fprintln(out)
			_, _ = fmt.Fprintln(out, errorStyle.Render("❌ Health check failed"))
			return fmt.Errorf("health check failed: %w", err)
		}
		_, _ = fmt.Fprintln(out, successStyle.Render("✅ Chat endpoint answered"))
		_, _ = fmt.Fprintln(out)

		// Step 4: Parsing
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 4: Parsing the task list..."))
		withRef := 0
		for _, task := range tasks {
			if task.Ref != "" {
				withRef++
			}
		}
		_, _ = fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Parsed %d task line(s)", len(tasks))))
		if withRef < len(tasks) {
			_, _ = fmt.Fprintln(out, warningStyle.Render(fmt.Sprintf("⚠️  %d line(s) carry no task reference; completion falls back to list position", len(tasks)-withRef)))
		}
		if healthcheckDetails {
			for i, task := range tasks {
				if i == 5 {
					_, _ = fmt.Fprintf(out, "   ... and %d more\n", len(tasks)-5)
					break
				}
				_, _ = fmt.Fprintf(out, "   [%d] %s\n", task.ID, task.RawLine)
			}
		}
		_, _ = fmt.Fprintln(out)

		// Summary
		_, _ = fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		_, _ = fmt.Fprintln(out)
		if startOK {
			_, _ = fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
		} else {
			_, _ = fmt.Fprintln(out, warningStyle.Render("⚠️  Chat works but the start endpoint is unavailable"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVarP(&healthcheckDetails, "details", "d", false, "Show detailed diagnostic information")
}
