package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ali-derogar/bujo/internal/journal/schema"
)

var doneStyle = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("8"))

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List and manage the day's tasks",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks for a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		date, _ := cmd.Flags().GetString("date")
		if date == "" {
			date = time.Now().Format("2006-01-02")
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}

		tasks, err := st.GetTasks(ctx, date, userOrDefault())
		if err != nil {
			return err
		}
		if len(tasks) == 0 {
			fmt.Printf("No tasks for %s.\n", date)
			return nil
		}

		for _, task := range tasks {
			mark := " "
			title := task.Title
			switch task.Status {
			case schema.TaskStatusDone:
				mark = "x"
				title = doneStyle.Render(title)
			case schema.TaskStatusInProgress:
				mark = ">"
			}

			line := fmt.Sprintf("[%s] %s  %s", mark, shortID(task.ID), title)
			if task.SpentTime > 0 {
				line += dimStyle.Render(fmt.Sprintf("  %dm", task.SpentTime))
			}
			if task.TimerRunning {
				line += warnStyle.Render("  (timer running)")
			}
			fmt.Println(line)
		}
		return nil
	},
}

var tasksAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		date, _ := cmd.Flags().GetString("date")
		if date == "" {
			date = time.Now().Format("2006-01-02")
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}

		task := &schema.Task{
			Title:  args[0],
			Date:   date,
			UserID: userOrDefault(),
		}
		if err := st.SaveTask(ctx, task); err != nil {
			return err
		}
		fmt.Printf("Added %s.\n", shortID(task.ID))
		return nil
	},
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

var tasksDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a task done",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}

		task, err := st.GetTaskByID(ctx, args[0])
		if err != nil {
			return err
		}
		if task == nil {
			return fmt.Errorf("no task with id %s", args[0])
		}

		task.Status = schema.TaskStatusDone
		task.UpdatedAt = time.Now().UTC()
		if err := st.SaveTask(ctx, task); err != nil {
			return err
		}
		fmt.Printf("Done: %s\n", task.Title)
		return nil
	},
}

var tasksTimerCmd = &cobra.Command{
	Use:   "timer <start|stop> <id>",
	Short: "Start or stop a task's timer",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		switch args[0] {
		case "start":
			task, err := st.StartTimer(ctx, args[1], now)
			if err != nil {
				return err
			}
			fmt.Printf("Timer running on %s.\n", task.Title)
		case "stop":
			task, err := st.StopTimer(ctx, args[1], now)
			if err != nil {
				return err
			}
			fmt.Printf("Timer stopped; %s has %dm logged.\n", task.Title, task.SpentTime)
		default:
			return fmt.Errorf("unknown timer action %q", args[0])
		}
		return nil
	},
}

func init() {
	tasksListCmd.Flags().String("date", "", "day to list (YYYY-MM-DD, default today)")
	tasksAddCmd.Flags().String("date", "", "day to add to (YYYY-MM-DD, default today)")

	tasksCmd.AddCommand(tasksListCmd, tasksAddCmd, tasksDoneCmd, tasksTimerCmd)
	rootCmd.AddCommand(tasksCmd)
}
