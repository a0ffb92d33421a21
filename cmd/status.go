package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mbichler/pulse/internal/dashboard"
	"github.com/mbichler/pulse/internal/models"
	"github.com/mbichler/pulse/internal/output"
	"github.com/mbichler/pulse/internal/status"
)

var (
	statusJSON   bool
	statusFollow bool
	statusURL    string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the agent's live status",
	Long: `Show the agent's current status derived from its session transcript.

With --follow, polls a running 'pulse serve' endpoint and re-renders on
every snapshot update instead of deriving locally.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if statusFollow {
			return statusFollowRun(cmd.Context())
		}
		return statusRun()
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print the snapshot as JSON")
	statusCmd.Flags().BoolVarP(&statusFollow, "follow", "f", false, "Poll a serve endpoint and re-render on updates")
	statusCmd.Flags().StringVar(&statusURL, "url", "http://localhost:8080", "Base URL of the serve endpoint (with --follow)")
	rootCmd.AddCommand(statusCmd)
}

func statusRun() error {
	sessionDir := viper.GetString("session_dir")
	slot := viper.GetString("session_slot")

	gen := status.NewGenerator(sessionDir, slot)
	snap := gen.Generate(time.Now().UTC())

	if statusJSON {
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(ui.Out, string(data))
		return nil
	}

	renderSnapshot(snap)
	return nil
}

func statusFollowRun(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	ui.Info("Following %s (every %s, Ctrl-C to stop)", statusURL, dashboard.PollInterval)

	syncer := dashboard.NewSyncer(statusURL, func(vm dashboard.ViewModel) {
		fmt.Fprintln(ui.Out)
		renderSnapshot(vm.Status)
	})
	syncer.Run(ctx)
	return nil
}

func renderSnapshot(snap *models.StatusSnapshot) {
	fmt.Fprintf(ui.Out, "Status:  %s\n", output.AgentStatusColor(string(snap.Status)))
	if snap.CurrentTask != nil {
		fmt.Fprintf(ui.Out, "Task:    %s\n", *snap.CurrentTask)
	}
	if snap.Model != "" {
		fmt.Fprintf(ui.Out, "Model:   %s\n", snap.Model)
	}
	if snap.ContextUsage > 0 {
		fmt.Fprintf(ui.Out, "Context: %s\n", output.ProgressColor(snap.ContextUsage))
	}
	if snap.SubAgents > 0 {
		fmt.Fprintf(ui.Out, "Agents:  %d sub-agents\n", snap.SubAgents)
	}
	fmt.Fprintf(ui.Out, "Updated: %s\n", snap.LastUpdate.Local().Format("2006-01-02 15:04:05"))

	if len(snap.Activities) == 0 {
		return
	}

	fmt.Fprintln(ui.Out)
	table := ui.Table([]string{"Time", "Kind", "Description", "Details"})
	for _, act := range snap.Activities {
		table.Append([]string{
			act.Timestamp.Local().Format("15:04:05"),
			string(act.Kind),
			act.Description,
			act.Details,
		})
	}
	table.Render()
}
