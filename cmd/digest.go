package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mbichler/pulse/internal/llm"
	"github.com/mbichler/pulse/internal/models"
	"github.com/mbichler/pulse/internal/output"
	"github.com/mbichler/pulse/internal/status"
)

var digestSuggest bool

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Summarize the agent's recent activity with Claude",
	Long: `Generate a fresh status snapshot from the transcript and ask Claude for
a short prose digest of what the agent has been doing.

With --suggest, Claude also proposes follow-up tasks for the board.

Requires an Anthropic API key via the anthropic.api_key config value or the
ANTHROPIC_API_KEY environment variable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return digestRun(cmd.Context())
	},
}

func init() {
	digestCmd.Flags().BoolVar(&digestSuggest, "suggest", false, "Also suggest follow-up tasks and add them to the board")
	rootCmd.AddCommand(digestCmd)
}

func anthropicClient() (*llm.Client, error) {
	apiKey := viper.GetString("anthropic.api_key")
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("no Anthropic API key configured; set anthropic.api_key or ANTHROPIC_API_KEY")
	}
	return llm.NewClient(apiKey, viper.GetString("anthropic.model")), nil
}

func digestRun(ctx context.Context) error {
	client, err := anthropicClient()
	if err != nil {
		return err
	}

	gen := status.NewGenerator(viper.GetString("session_dir"), viper.GetString("session_slot"))
	snap := gen.Generate(time.Now().UTC())

	ui.Info("Asking %s for a digest...", viper.GetString("anthropic.model"))

	text, err := client.Digest(ctx, snap)
	if err != nil {
		return fmt.Errorf("digest: %w", err)
	}

	fmt.Println()
	fmt.Println(text)

	if !digestSuggest {
		return nil
	}

	suggestions, err := client.SuggestTasks(ctx, snap)
	if err != nil {
		return fmt.Errorf("suggest tasks: %w", err)
	}
	if len(suggestions) == 0 {
		ui.Info("No task suggestions.")
		return nil
	}

	fmt.Println()
	table := ui.Table([]string{"Title", "Owner", "Priority", "Reason"})
	for _, s := range suggestions {
		table.Append([]string{s.Title, s.Owner, s.Priority, s.Reason})
	}
	table.Render()

	if dryRun {
		ui.DryRunMsg("Would add %d suggested tasks", len(suggestions))
		return nil
	}

	store, err := getStore()
	if err != nil {
		return err
	}

	added := 0
	for _, s := range suggestions {
		if s.Title == "" {
			continue
		}
		task := &models.Task{
			Title:    s.Title,
			Owner:    s.Owner,
			Priority: models.TaskPriority(s.Priority),
		}
		if err := store.CreateTask(ctx, task); err != nil {
			ui.Warning("Skipping %q: %v", s.Title, err)
			continue
		}
		added++
	}

	ui.Success("Added %s suggested tasks to the board", output.Cyan(fmt.Sprintf("%d", added)))
	return nil
}
