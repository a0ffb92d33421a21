package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mbichler/pulse/internal/models"
	"github.com/mbichler/pulse/internal/output"
	"github.com/mbichler/pulse/internal/store"
)

var (
	taskOwner    string
	taskProject  string
	taskPriority string
	taskStatus   string
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage the shared task board",
	Long:  "Manage the task board the dashboard shows alongside the agent's live status.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskListRun()
	},
}

var taskAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a new task",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskAddRun(strings.Join(args, " "))
	},
}

var taskListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskListRun()
	},
}

var taskDoneCmd = &cobra.Command{
	Use:   "done <task-id>",
	Short: "Toggle a task between done and todo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskDoneRun(args[0])
	},
}

var taskBlockCmd = &cobra.Command{
	Use:   "block <task-id>",
	Short: "Mark a task as blocked",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskSetStatusRun(args[0], models.TaskStatusBlocked)
	},
}

var taskRmCmd = &cobra.Command{
	Use:     "rm <task-id>",
	Aliases: []string{"delete"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskRmRun(args[0])
	},
}

var taskImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import tasks from a YAML file",
	Long: `Import tasks from a YAML file. The file holds a list of tasks:

  - title: Review the deploy pipeline
    owner: operator
    priority: high
  - title: Fix flaky integration test
    project: web`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskImportRun(args[0])
	},
}

func init() {
	taskAddCmd.Flags().StringVar(&taskOwner, "owner", "agent", "Task owner: agent or operator")
	taskAddCmd.Flags().StringVar(&taskProject, "project", "", "Project key")
	taskAddCmd.Flags().StringVar(&taskPriority, "priority", "medium", "Priority: low, medium, high")

	taskListCmd.Flags().StringVar(&taskOwner, "owner", "", "Filter by owner: agent or operator")
	taskListCmd.Flags().StringVar(&taskProject, "project", "", "Filter by project key")
	taskListCmd.Flags().StringVar(&taskStatus, "status", "", "Filter by status: todo, in_progress, blocked, backlog, done")

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskDoneCmd)
	taskCmd.AddCommand(taskBlockCmd)
	taskCmd.AddCommand(taskRmCmd)
	taskCmd.AddCommand(taskImportCmd)
	rootCmd.AddCommand(taskCmd)
}

func taskAddRun(title string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	task := &models.Task{
		Title:    title,
		Owner:    taskOwner,
		Project:  taskProject,
		Priority: models.TaskPriority(taskPriority),
	}

	if dryRun {
		ui.DryRunMsg("Would add task: %s [%s/%s]", title, taskOwner, taskPriority)
		return nil
	}

	if err := s.CreateTask(ctx, task); err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	ui.Success("Created task %s: %s", output.Cyan(shortID(task.ID)), title)
	return nil
}

func taskListRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	tasks, err := s.ListTasks(ctx, store.TaskListFilter{
		Owner:   taskOwner,
		Project: taskProject,
		Status:  models.TaskStatus(taskStatus),
	})
	if err != nil {
		return err
	}

	if len(tasks) == 0 {
		ui.Info("No tasks. Use 'pulse task add <title>' to get started.")
		return nil
	}

	table := ui.Table([]string{"ID", "Title", "Owner", "Project", "Status", "Priority"})
	for _, task := range tasks {
		table.Append([]string{
			output.Cyan(shortID(task.ID)),
			task.Title,
			task.Owner,
			task.Project,
			output.TaskStatusColor(string(task.Status)),
			string(task.Priority),
		})
	}
	table.Render()
	return nil
}

func taskDoneRun(id string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	task, err := findTask(ctx, s, id)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would toggle task %s", shortID(task.ID))
		return nil
	}

	toggled, err := s.ToggleTask(ctx, task.ID)
	if err != nil {
		return fmt.Errorf("toggle task: %w", err)
	}

	ui.Success("Task %s is now %s", output.Cyan(shortID(toggled.ID)), toggled.Status)
	return nil
}

func taskSetStatusRun(id string, status models.TaskStatus) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	task, err := findTask(ctx, s, id)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would set task %s to %s", shortID(task.ID), status)
		return nil
	}

	task.Status = status
	if err := s.UpdateTask(ctx, task); err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	ui.Success("Task %s is now %s", output.Cyan(shortID(task.ID)), status)
	return nil
}

func taskRmRun(id string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	task, err := findTask(ctx, s, id)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would delete task %s: %s", shortID(task.ID), task.Title)
		return nil
	}

	if err := s.DeleteTask(ctx, task.ID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	ui.Success("Deleted task %s: %s", output.Cyan(shortID(task.ID)), task.Title)
	return nil
}

// importedTask is the YAML shape accepted by 'pulse task import'.
type importedTask struct {
	Title    string `yaml:"title"`
	Owner    string `yaml:"owner"`
	Project  string `yaml:"project"`
	Priority string `yaml:"priority"`
	Status   string `yaml:"status"`
}

func taskImportRun(file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	var imported []importedTask
	if err := yaml.Unmarshal(data, &imported); err != nil {
		return fmt.Errorf("parse YAML: %w", err)
	}
	if len(imported) == 0 {
		ui.Info("No tasks found in file.")
		return nil
	}

	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	table := ui.Table([]string{"#", "Title", "Owner", "Project", "Priority"})
	for i, e := range imported {
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			e.Title,
			e.Owner,
			e.Project,
			e.Priority,
		})
	}
	table.Render()

	if dryRun {
		ui.DryRunMsg("Would create %d tasks", len(imported))
		return nil
	}

	created := 0
	skipped := 0
	for _, e := range imported {
		if strings.TrimSpace(e.Title) == "" {
			ui.Warning("Skipping task with empty title")
			skipped++
			continue
		}
		task := &models.Task{
			Title:    e.Title,
			Owner:    e.Owner,
			Project:  e.Project,
			Priority: models.TaskPriority(e.Priority),
			Status:   models.TaskStatus(e.Status),
		}
		if err := s.CreateTask(ctx, task); err != nil {
			ui.Warning("Failed to create task %q: %v", e.Title, err)
			skipped++
			continue
		}
		created++
	}

	ui.Success("Created %d tasks", created)
	if skipped > 0 {
		ui.Warning("Skipped %d tasks", skipped)
	}
	return nil
}

// findTask finds a task by full ID or unique prefix.
func findTask(ctx context.Context, s store.Store, id string) (*models.Task, error) {
	if task, err := s.GetTask(ctx, id); err == nil {
		return task, nil
	}

	upper := strings.ToUpper(id)
	tasks, err := s.ListTasks(ctx, store.TaskListFilter{})
	if err != nil {
		return nil, err
	}

	var matches []*models.Task
	for _, task := range tasks {
		if strings.HasPrefix(task.ID, upper) {
			matches = append(matches, task)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("task not found: %s", id)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("ambiguous task ID %s: matches %d tasks", id, len(matches))
	}
}

// shortID returns the first 8 characters of an ID for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
