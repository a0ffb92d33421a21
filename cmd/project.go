package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mbichler/pulse/internal/models"
	"github.com/mbichler/pulse/internal/output"
)

var (
	projectName     string
	projectColor    string
	projectProgress int
	projectStatus   string
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage dashboard projects",
	Long:  "Manage the projects shown on the dashboard's board.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectListRun()
	},
}

var projectAddCmd = &cobra.Command{
	Use:   "add <key>",
	Short: "Add a new project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectAddRun(args[0])
	},
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectListRun()
	},
}

var projectSetCmd = &cobra.Command{
	Use:   "set <key>",
	Short: "Update a project's fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectSetRun(args[0], cmd)
	},
}

var projectRmCmd = &cobra.Command{
	Use:     "rm <key>",
	Aliases: []string{"delete"},
	Short:   "Delete a project",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectRmRun(args[0])
	},
}

func init() {
	projectAddCmd.Flags().StringVar(&projectName, "name", "", "Display name (defaults to the key)")
	projectAddCmd.Flags().StringVar(&projectColor, "color", "", "Accent color, e.g. #4f9cf9")

	projectSetCmd.Flags().StringVar(&projectName, "name", "", "New display name")
	projectSetCmd.Flags().StringVar(&projectColor, "color", "", "New accent color")
	projectSetCmd.Flags().IntVar(&projectProgress, "progress", -1, "Progress percentage 0-100")
	projectSetCmd.Flags().StringVar(&projectStatus, "status", "", "Project status label")

	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectSetCmd)
	projectCmd.AddCommand(projectRmCmd)
	rootCmd.AddCommand(projectCmd)
}

func projectAddRun(key string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	name := projectName
	if name == "" {
		name = key
	}

	if dryRun {
		ui.DryRunMsg("Would add project %s (%s)", key, name)
		return nil
	}

	p := &models.Project{
		Key:   key,
		Name:  name,
		Color: projectColor,
	}
	if err := s.CreateProject(ctx, p); err != nil {
		return fmt.Errorf("create project: %w", err)
	}

	ui.Success("Created project %s: %s", output.Cyan(key), name)
	return nil
}

func projectListRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	projects, err := s.ListProjects(ctx)
	if err != nil {
		return err
	}

	if len(projects) == 0 {
		ui.Info("No projects. Use 'pulse project add <key>' to get started.")
		return nil
	}

	table := ui.Table([]string{"Key", "Name", "Progress", "Status"})
	for _, p := range projects {
		table.Append([]string{
			output.Cyan(p.Key),
			p.Name,
			output.ProgressColor(p.Progress),
			p.Status,
		})
	}
	table.Render()
	return nil
}

func projectSetRun(key string, cmd *cobra.Command) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	p, err := s.GetProject(ctx, key)
	if err != nil {
		return err
	}

	changed := false
	if projectName != "" {
		p.Name = projectName
		changed = true
	}
	if projectColor != "" {
		p.Color = projectColor
		changed = true
	}
	if cmd.Flags().Changed("progress") {
		if projectProgress < 0 || projectProgress > 100 {
			return fmt.Errorf("progress must be between 0 and 100")
		}
		p.Progress = projectProgress
		changed = true
	}
	if projectStatus != "" {
		p.Status = projectStatus
		changed = true
	}

	if !changed {
		return fmt.Errorf("nothing to update; specify at least one of --name, --color, --progress, --status")
	}

	if dryRun {
		ui.DryRunMsg("Would update project %s", key)
		return nil
	}

	if err := s.UpdateProject(ctx, p); err != nil {
		return fmt.Errorf("update project: %w", err)
	}

	ui.Success("Updated project %s", output.Cyan(key))
	return nil
}

func projectRmRun(key string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	p, err := s.GetProject(ctx, key)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would delete project %s: %s", key, p.Name)
		return nil
	}

	if err := s.DeleteProject(ctx, key); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	ui.Success("Deleted project %s: %s", output.Cyan(key), p.Name)
	return nil
}
