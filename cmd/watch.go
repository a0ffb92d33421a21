package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mbichler/pulse/internal/snapshot"
	"github.com/mbichler/pulse/internal/status"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Continuously derive and publish the status snapshot",
	Long: `Watch the session directory and republish the status snapshot whenever
a transcript changes. A periodic timer also republishes so the
Active/WaitingForInput/Idle thresholds advance even without new writes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchRun(cmd.Context())
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Republish interval (default from config, 10s)")
	rootCmd.AddCommand(watchCmd)
}

func watchRun(ctx context.Context) error {
	sessionDir := viper.GetString("session_dir")
	slot := viper.GetString("session_slot")
	snapshotPath := viper.GetString("snapshot_path")

	interval := watchInterval
	if interval <= 0 {
		interval = viper.GetDuration("watch.interval")
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}

	gen := status.NewGenerator(sessionDir, slot)
	pub := snapshot.NewPublisher(snapshotPath)

	publish := func() error {
		snap := gen.Generate(time.Now().UTC())
		if err := pub.Publish(snap); err != nil {
			return fmt.Errorf("publish snapshot: %w", err)
		}
		ui.VerboseLog("Published %s snapshot (%d activities)", snap.Status, len(snap.Activities))
		return nil
	}

	if err := publish(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch is best-effort: the session dir may not exist yet, and the
	// ticker covers that case.
	if err := watcher.Add(sessionDir); err != nil {
		ui.Warning("Cannot watch %s: %v (falling back to polling)", sessionDir, err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ui.Info("Watching %s (republish every %s)", sessionDir, interval)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := publish(); err != nil {
				return err
			}
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if err := publish(); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			ui.Warning("Watcher error: %v", err)
		}
	}
}
