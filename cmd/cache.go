package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jcdickinson/rsdocmd/internal/cas"
	"github.com/jcdickinson/rsdocmd/internal/config"
	"github.com/jcdickinson/rsdocmd/internal/db"
	"github.com/jcdickinson/rsdocmd/internal/docs"
)

var clearCacheCmd = &cobra.Command{
	Use:   "clear-cache [crate]",
	Short: "Remove cached rustdoc JSON and rendered documents",
	Long: `Remove the downloaded rustdoc JSON, the rendered documents and the catalog
entries. With a crate name only that crate's catalog entries are removed.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runClearCache,
}

var clearJSONOnly bool

func init() {
	clearCacheCmd.Flags().BoolVar(&clearJSONOnly, "json-only", false, "only remove downloaded rustdoc JSON")
}

func runClearCache(cmd *cobra.Command, args []string) {
	if len(args) == 0 {
		if err := docs.ClearCrateCache(); err != nil {
			slog.Error("failed to clear JSON cache", "error", err)
			os.Exit(1)
		}
		fmt.Println("JSON cache cleared")
		if clearJSONOnly {
			return
		}
	}

	var name string
	if len(args) == 1 {
		name = args[0]
	}

	database, err := db.New(config.DBPath())
	if err != nil {
		slog.Error("failed to open catalog", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	n, err := database.DeleteRenders(context.Background(), name)
	if err != nil {
		slog.Error("failed to clear catalog", "error", err)
		os.Exit(1)
	}
	fmt.Printf("%d catalog entries removed\n", n)

	// Blobs may be shared between crates, so the CAS is only cleared wholesale.
	if name == "" {
		if err := cas.Open().Clear(); err != nil {
			slog.Error("failed to clear rendered documents", "error", err)
			os.Exit(1)
		}
		fmt.Println("rendered documents cleared")
	}
}
