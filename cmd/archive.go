package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mbichler/pulse/internal/archive"
)

var archiveKeep bool

var archiveCmd = &cobra.Command{
	Use:   "archive <session-id>",
	Short: "Compress a finished session transcript",
	Long: `Compress a session transcript from the session directory into the
archive directory. The original transcript is removed unless --keep is set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return archiveRun(args[0])
	},
}

var archiveRestoreCmd = &cobra.Command{
	Use:   "restore <session-id>",
	Short: "Restore an archived transcript into the session directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return archiveRestoreRun(args[0])
	},
}

var archiveListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List archived transcripts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return archiveListRun()
	},
}

func init() {
	archiveCmd.Flags().BoolVar(&archiveKeep, "keep", false, "Keep the original transcript after archiving")
	archiveCmd.AddCommand(archiveRestoreCmd)
	archiveCmd.AddCommand(archiveListCmd)
	rootCmd.AddCommand(archiveCmd)
}

func archiveRun(sessionID string) error {
	sessionDir := viper.GetString("session_dir")
	archiveDir := viper.GetString("archive_dir")

	src := filepath.Join(sessionDir, sessionID+".jsonl")
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("transcript for session %s not found in %s", sessionID, sessionDir)
	}

	if archive.IsArchived(sessionID, archiveDir) {
		return fmt.Errorf("session %s is already archived", sessionID)
	}

	if dryRun {
		ui.DryRunMsg("Would archive %s to %s", src, archive.Path(sessionID, archiveDir))
		return nil
	}

	dst, err := archive.Archive(src, archiveDir)
	if err != nil {
		return fmt.Errorf("archive session: %w", err)
	}

	if !archiveKeep {
		if err := os.Remove(src); err != nil {
			ui.Warning("Archived but could not remove original: %v", err)
		}
	}

	ui.Success("Archived session %s to %s", sessionID, dst)
	return nil
}

func archiveRestoreRun(sessionID string) error {
	sessionDir := viper.GetString("session_dir")
	archiveDir := viper.GetString("archive_dir")

	src := archive.Path(sessionID, archiveDir)
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("no archive found for session %s", sessionID)
	}

	if dryRun {
		ui.DryRunMsg("Would restore %s into %s", src, sessionDir)
		return nil
	}

	dst, err := archive.Restore(src, sessionDir)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	ui.Success("Restored session %s to %s", sessionID, dst)
	return nil
}

func archiveListRun() error {
	archiveDir := viper.GetString("archive_dir")

	entries, err := os.ReadDir(archiveDir)
	if err != nil {
		if os.IsNotExist(err) {
			ui.Info("No archived sessions.")
			return nil
		}
		return err
	}

	table := ui.Table([]string{"Session", "Size"})
	count := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl.zst") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".jsonl.zst")
		table.Append([]string{id, fmt.Sprintf("%d KB", info.Size()/1024)})
		count++
	}

	if count == 0 {
		ui.Info("No archived sessions.")
		return nil
	}
	table.Render()
	return nil
}
