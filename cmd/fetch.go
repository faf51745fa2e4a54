package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jcdickinson/rsdocmd/internal/service"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <crate[@version]> [crate[@version] ...]",
	Short: "Download rustdoc JSON from docs.rs and render it",
	Long: `Download rustdoc JSON from docs.rs, render it and record the result in the
local catalog. Version defaults to "latest". Already rendered crates are served
from the catalog unless --refresh is given.`,
	Example: `  rsdocmd fetch serde
  rsdocmd fetch serde@1.0.219 tokio --output docs/
  rsdocmd fetch --format html geo@0.29.0`,
	Args: cobra.MinimumNArgs(1),
	Run:  runFetch,
}

var (
	fetchOutput  string
	fetchRefresh bool
	fetchJobs    int
)

func init() {
	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "", "output directory (default: stdout)")
	fetchCmd.Flags().BoolVar(&fetchRefresh, "refresh", false, "download and render again even if cached")
	fetchCmd.Flags().IntVarP(&fetchJobs, "jobs", "j", 4, "crates fetched concurrently")
}

// parseCrateArgs splits crate[@version] arguments.
func parseCrateArgs(args []string, refresh bool) []service.Request {
	reqs := make([]service.Request, 0, len(args))
	for _, arg := range args {
		name, version, _ := strings.Cut(arg, "@")
		reqs = append(reqs, service.Request{Name: name, Version: version, Refresh: refresh})
	}
	return reqs
}

func runFetch(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	svc, _, closeService := openService(cfg)

	ctx, cancel := signalContext()
	defer cancel()

	results := svc.RenderAll(ctx, parseCrateArgs(args, fetchRefresh), fetchJobs)

	if fetchOutput != "" {
		if err := os.MkdirAll(fetchOutput, 0755); err != nil {
			slog.Error("failed to create output directory", "error", err)
			closeService()
			os.Exit(1)
		}
	}

	failed := false
	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(os.Stderr, "  %s@%s: error: %s\n", r.Name, r.Version, r.Error)
			failed = true
			continue
		}

		path := ""
		if fetchOutput != "" {
			path = filepath.Join(fetchOutput, r.Name+"-"+r.Version+extension(r.Format))
		}
		if err := writeOutput(path, r.Document); err != nil {
			slog.Error("failed to write output", "crate", r.Name, "error", err)
			failed = true
			continue
		}

		source := "rendered"
		if r.Cached {
			source = "cached"
		}
		fmt.Fprintf(os.Stderr, "  %s@%s: %d items (%s)\n", r.Name, r.Version, r.Items, source)
	}
	closeService()

	if failed {
		os.Exit(1)
	}
}
