package cmd

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jcdickinson/rsdocmd/internal/config"
	"github.com/jcdickinson/rsdocmd/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run as an MCP server on stdio",
	Long: `Serve the render_crate and list_renders tools and the rsdocmd://{crate}/{version}
resource over stdio. Logs go to the log file under the cache directory.`,
	Args: cobra.NoArgs,
	Run:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) {
	// stdout carries the protocol, so logs go to a file.
	logPath := config.LogPath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		slog.Error("failed to create log directory", "error", err)
		os.Exit(1)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()
	slog.SetDefault(slog.New(slog.NewTextHandler(logFile, nil)))

	cfg := loadConfig()
	svc, database, closeService := openService(cfg)
	defer closeService()

	server := mcp.NewServer(svc, database, version)

	errCh := make(chan error)
	go func() { errCh <- server.Run() }()

	if err := waitForSignal(errCh); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
