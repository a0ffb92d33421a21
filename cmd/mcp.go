package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mbichler/pulse/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server over stdio",
	Long: `Run pulse as an MCP (Model Context Protocol) server over stdio.

This exposes the status snapshot and the task/project board as MCP tools so
Claude Code and other MCP clients can query and update them directly.

To register with Claude Code, add to your MCP configuration:

  {
    "mcpServers": {
      "pulse": {
        "command": "pulse",
        "args": ["mcp"]
      }
    }
  }`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mcpRun(cmd)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func mcpRun(cmd *cobra.Command) error {
	s, err := getStore()
	if err != nil {
		return err
	}

	srv := mcp.NewServer(s, viper.GetString("snapshot_path"))
	return srv.ServeStdio(cmd.Context())
}
