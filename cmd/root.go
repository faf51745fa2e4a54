package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jcdickinson/rsdocmd/internal/cas"
	"github.com/jcdickinson/rsdocmd/internal/config"
	"github.com/jcdickinson/rsdocmd/internal/db"
	"github.com/jcdickinson/rsdocmd/internal/docs"
	"github.com/jcdickinson/rsdocmd/internal/service"
)

var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:     "rsdocmd",
	Short:   "Render rustdoc JSON as a single Markdown document",
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("command failed: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug records (unresolved references, cache hits)")
	rootCmd.PersistentFlags().String("format", "", "output format: markdown or html")
	rootCmd.PersistentFlags().Bool("public-only", false, "skip items that are not pub")
	rootCmd.PersistentFlags().Bool("documented-only", false, "skip items without documentation")
	rootCmd.PersistentFlags().Bool("front-matter", false, "prepend YAML front matter (markdown only)")

	viper.BindPFlag("render.format", rootCmd.PersistentFlags().Lookup("format"))
	viper.BindPFlag("render.public_only", rootCmd.PersistentFlags().Lookup("public-only"))
	viper.BindPFlag("render.documented_only", rootCmd.PersistentFlags().Lookup("documented-only"))
	viper.BindPFlag("render.front_matter", rootCmd.PersistentFlags().Lookup("front-matter"))

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(clearCacheCmd)
	rootCmd.AddCommand(mcpCmd)
}

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	return cfg
}

// openService builds the docs.rs-backed service over the on-disk caches.
// The returned close function releases the catalog.
func openService(cfg *config.Config) (*service.Service, *db.DB, func()) {
	database, err := db.New(config.DBPath())
	if err != nil {
		// The catalog only saves re-renders; carry on without it.
		slog.Warn("failed to open catalog, renders will not be recorded", "error", err)
		database = nil
	}

	svc, err := service.New(cfg, docs.NewFetcher(cfg.Fetch), cas.Open(), database, slog.Default())
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	return svc, database, func() {
		if database != nil {
			database.Close()
		}
	}
}

func extension(f config.Format) string {
	if f == config.FormatHTML {
		return ".html"
	}
	return ".md"
}

func waitForSignal(errCh chan error) error {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		slog.Info("received signal", "signal", sig)
		return nil
	case err := <-errCh:
		return err
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func writeOutput(path, content string) error {
	if path == "" || path == "-" {
		_, err := fmt.Fprint(os.Stdout, content)
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}
