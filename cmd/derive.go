package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mbichler/pulse/internal/snapshot"
	"github.com/mbichler/pulse/internal/status"
)

var deriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Derive the live status snapshot and publish it",
	Long: `Derive the agent's live status from its current session transcript and
atomically publish it to the snapshot file the dashboard polls.

Missing or corrupt session data degrades to an offline snapshot; only a
failure to write the snapshot file is an error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return deriveRun()
	},
}

func init() {
	rootCmd.AddCommand(deriveCmd)
}

func deriveRun() error {
	sessionDir := viper.GetString("session_dir")
	slot := viper.GetString("session_slot")
	snapshotPath := viper.GetString("snapshot_path")

	gen := status.NewGenerator(sessionDir, slot)
	snap := gen.Generate(time.Now().UTC())

	if dryRun {
		ui.DryRunMsg("Would publish %s snapshot to %s", snap.Status, snapshotPath)
		return nil
	}

	pub := snapshot.NewPublisher(snapshotPath)
	if err := pub.Publish(snap); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}

	ui.VerboseLog("Published %s snapshot (%d activities) to %s",
		snap.Status, len(snap.Activities), snapshotPath)
	return nil
}
