package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mbichler/pulse/internal/api"
	"github.com/mbichler/pulse/internal/daemon"
)

var serveForeground bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard HTTP server",
	Long: `Run the HTTP server the dashboard polls: the published snapshot at
/data/live-status.json, the tasks/projects document at /data/tasks.json,
and the task board API under /api/v1.

'pulse serve' starts a background daemon by default. Use --foreground to
run in the current terminal, and 'pulse serve stop' / 'pulse serve status'
to manage the daemon.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveForeground {
			return serveForegroundRun(cmd.Context())
		}
		return serveStartRun()
	},
}

var serveStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveStopRun()
	},
}

var serveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the background server is running",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveStatusRun()
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveForeground, "foreground", false, "Run in the foreground instead of daemonizing")
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	viper.SetDefault("port", 8080)
	_ = viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))

	serveCmd.AddCommand(serveStopCmd)
	serveCmd.AddCommand(serveStatusCmd)
	rootCmd.AddCommand(serveCmd)
}

func pidFile() *daemon.PIDFile {
	return daemon.NewPIDFile(filepath.Join(viper.GetString("state_dir"), "pulse-serve.pid"))
}

func serveLogPath() string {
	return filepath.Join(viper.GetString("state_dir"), "pulse-serve.log")
}

// serveForegroundRun runs the HTTP server in the current process until
// interrupted.
func serveForegroundRun(ctx context.Context) error {
	s, err := getStore()
	if err != nil {
		return err
	}

	srv := api.NewServer(s, viper.GetString("snapshot_path"))
	addr := fmt.Sprintf(":%d", viper.GetInt("port"))

	httpSrv := &http.Server{
		Addr:    addr,
		Handler: srv.Router(),
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, shutdownSignals()...)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()

	ui.Info("Serving dashboard at http://localhost%s", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// serveStartRun launches the server as a detached background process and
// records its PID.
func serveStartRun() error {
	pf := pidFile()
	pf.ClearStale()

	if pid, running := pf.IsRunning(); running {
		return fmt.Errorf("server already running (pid %d)", pid)
	}

	if dryRun {
		ui.DryRunMsg("Would start background server on port %d", viper.GetInt("port"))
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	logPath := serveLogPath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	child := exec.Command(exe, "serve", "--foreground",
		"--port", fmt.Sprintf("%d", viper.GetInt("port")))
	child.Stdout = logFile
	child.Stderr = logFile
	setDaemonAttrs(child)

	if err := child.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	if err := pf.WritePID(child.Process.Pid); err != nil {
		_ = child.Process.Kill()
		return fmt.Errorf("write PID file: %w", err)
	}

	ui.Success("Server started (pid %d), logs at %s", child.Process.Pid, logPath)
	return nil
}

func serveStopRun() error {
	pf := pidFile()

	pid, running := pf.IsRunning()
	if !running {
		pf.ClearStale()
		return fmt.Errorf("server not running")
	}

	if dryRun {
		ui.DryRunMsg("Would stop server (pid %d)", pid)
		return nil
	}

	if err := pf.Signal(sigTERM()); err != nil {
		return fmt.Errorf("stop server: %w", err)
	}

	// Give it a moment; escalate if it ignores SIGTERM.
	for i := 0; i < 20; i++ {
		if _, still := pf.IsRunning(); !still {
			_ = pf.Remove()
			ui.Success("Server stopped (pid %d)", pid)
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}

	_ = pf.Signal(sigKILL())
	_ = pf.Remove()
	ui.Warning("Server killed (pid %d)", pid)
	return nil
}

func serveStatusRun() error {
	pf := pidFile()

	if pid, running := pf.IsRunning(); running {
		ui.Success("Server running (pid %d) on port %d", pid, viper.GetInt("port"))
		return nil
	}

	ui.Info("Server not running")
	return nil
}
