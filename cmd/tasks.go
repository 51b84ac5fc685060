package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iksnae/taskchat/internal"
	"github.com/spf13/cobra"
)

var (
	taskDesc     string
	taskCategory string
	taskDue      string
	taskPriority int
	taskTags     []string
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List, add and complete tasks",
	Long: `Manage tasks through the assistant's slash commands.

Task numbers are positions in the most recent list and change whenever the
list changes. Use 'taskchat tasks list' before completing by number.`,
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the current task list",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		session := newSession()
		var tasks []internal.Task
		err := internal.ShowProgress(cmd.Context(), "Loading tasks", func() error {
			var err error
			tasks, err = session.LoadTasks(cmd.Context())
			return err
		})
		if err != nil {
			internal.PrintError(internal.LoadTasksErrorText)
			return fmt.Errorf("failed to load tasks: %w", err)
		}

		displayTasks(cmd.OutOrStdout(), tasks)
		return nil
	},
}

var tasksAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a task",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := strings.TrimSpace(strings.Join(args, " "))
		if title == "" {
			return fmt.Errorf("title must not be empty")
		}
		opts := internal.TaskOptions{
			Description: taskDesc,
			Category:    taskCategory,
			DueDate:     taskDue,
			Priority:    taskPriority,
			Tags:        taskTags,
		}

		session := newSession()
		var confirmation string
		err := internal.ShowProgress(cmd.Context(), fmt.Sprintf("Adding %q", title), func() error {
			var err error
			confirmation, err = session.AddTask(cmd.Context(), title, opts)
			return err
		})
		if err != nil {
			if confirmation == "" {
				internal.PrintError(internal.CreateTaskErrorText)
				return fmt.Errorf("failed to add task: %w", err)
			}
			internal.PrintWarning(internal.LoadTasksErrorText)
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), confirmation)
		if err == nil {
			displayTasks(cmd.OutOrStdout(), session.Tasks())
		}
		return nil
	},
}

var tasksDoneCmd = &cobra.Command{
	Use:   "done <task-ref>",
	Short: "Complete a task by its backend reference",
	Long: `Send one completion command for the given reference, then reload the list.

The reference is passed to the assistant as is; use the id shown in brackets
by the assistant's list reply.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session := newSession()
		task := internal.Task{Ref: args[0]}
		return toggle(cmd, session, task)
	},
}

var tasksToggleCmd = &cobra.Command{
	Use:   "toggle <number>",
	Short: "Complete a task by its number in the current list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid task number %q: %w", args[0], err)
		}

		session := newSession()
		if _, err := session.LoadTasks(cmd.Context()); err != nil {
			internal.PrintError(internal.LoadTasksErrorText)
			return fmt.Errorf("failed to load tasks: %w", err)
		}
		for _, task := range session.Tasks() {
			if task.ID == n {
				return toggle(cmd, session, task)
			}
		}
		return fmt.Errorf("no task number %d in the current list", n)
	},
}

func toggle(cmd *cobra.Command, session *internal.Session, task internal.Task) error {
	label := task.Title
	if label == "" {
		label = task.Ref
	}
	err := internal.ShowProgress(cmd.Context(), fmt.Sprintf("Completing %s", label), func() error {
		return session.ToggleTask(cmd.Context(), task)
	})
	if err != nil {
		internal.PrintError(internal.UpdateTaskErrorText)
		return fmt.Errorf("failed to update task: %w", err)
	}

	displayTasks(cmd.OutOrStdout(), session.Tasks())
	return nil
}

func init() {
	rootCmd.AddCommand(tasksCmd)
	tasksCmd.AddCommand(tasksListCmd, tasksAddCmd, tasksDoneCmd, tasksToggleCmd)

	tasksAddCmd.Flags().StringVar(&taskDesc, "desc", "", "Task description")
	tasksAddCmd.Flags().StringVar(&taskCategory, "cat", "", "Task category")
	tasksAddCmd.Flags().StringVar(&taskDue, "due", "", "Due date (YYYY-MM-DD)")
	tasksAddCmd.Flags().IntVar(&taskPriority, "priority", 0, "Priority (1 is lowest)")
	tasksAddCmd.Flags().StringSliceVar(&taskTags, "tags", nil, "Comma-separated tags")
}
