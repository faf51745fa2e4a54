package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jcdickinson/rsdocmd/internal/config"
	"github.com/jcdickinson/rsdocmd/internal/db"
	"github.com/jcdickinson/rsdocmd/internal/docs"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached rustdoc JSON and rendered documents",
	Args:  cobra.NoArgs,
	Run:   runList,
}

func runList(cmd *cobra.Command, args []string) {
	cached, err := docs.ListCrateCache()
	if err != nil {
		slog.Error("failed to list JSON cache", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CACHED JSON\tVERSION\tSIZE")
	for _, c := range cached {
		fmt.Fprintf(w, "%s\t%s\t%d\n", c.Name, c.Version, c.Size)
	}
	w.Flush()

	database, err := db.New(config.DBPath())
	if err != nil {
		slog.Error("failed to open catalog", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	renders, err := database.ListRenders(context.Background())
	if err != nil {
		slog.Error("failed to list renders", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Fprintln(w, "RENDERED\tVERSION\tFORMAT\tITEMS\tHASH\tRENDERED AT")
	for _, r := range renders {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			r.Name, r.Version, r.Format, r.ItemCount, r.ContentHash[:12], r.RenderedAt.Format("2006-01-02 15:04"))
	}
	w.Flush()
}
