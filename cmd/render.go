package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jcdickinson/rsdocmd/internal/config"
	"github.com/jcdickinson/rsdocmd/internal/docs"
	"github.com/jcdickinson/rsdocmd/internal/rustdoc"
	"github.com/jcdickinson/rsdocmd/internal/service"
)

var renderCmd = &cobra.Command{
	Use:   "render <file.json> [file.json ...]",
	Short: "Render rustdoc JSON files",
	Long: `Render rustdoc JSON (optionally zstd-compressed) to Markdown. Use "-" to read
from stdin. A single input is written to stdout unless --output is set; several
inputs are rendered concurrently and written into the --output directory, or
concatenated to stdout in argument order.`,
	Example: `  rsdocmd render target/doc/geo.json
  rsdocmd render --output docs/ target/doc/*.json
  curl -s https://docs.rs/crate/serde/latest/json | rsdocmd render -`,
	Args: cobra.MinimumNArgs(1),
	Run:  runRender,
}

var (
	renderOutput string
	renderJobs   int
)

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "output file (single input) or directory")
	renderCmd.Flags().IntVarP(&renderJobs, "jobs", "j", 4, "files rendered concurrently")
}

type rendered struct {
	input string
	crate *rustdoc.Crate
	out   *service.Output
}

func runRender(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	results := make([]rendered, len(args))
	g := new(errgroup.Group)
	g.SetLimit(max(renderJobs, 1))
	for i, path := range args {
		g.Go(func() error {
			data, err := docs.ReadFile(path)
			if err != nil {
				return err
			}
			c, out, err := service.ParseAndProduce(data, cfg.Render, slog.Default().With("input", path))
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = rendered{input: path, crate: c, out: out}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var schemaErr *rustdoc.SchemaError
		if errors.As(err, &schemaErr) {
			slog.Error("malformed rustdoc JSON", "item", schemaErr.ID, "shape", schemaErr.Shape)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := writeRendered(results); err != nil {
		slog.Error("failed to write output", "error", err)
		os.Exit(1)
	}
}

func writeRendered(results []rendered) error {
	if len(results) == 1 && !isDir(renderOutput) {
		return writeOutput(renderOutput, results[0].out.Document)
	}

	if renderOutput == "" || renderOutput == "-" {
		parts := make([]string, len(results))
		for i, r := range results {
			parts[i] = r.out.Document
		}
		return writeOutput("", strings.Join(parts, "\n"))
	}

	if err := os.MkdirAll(renderOutput, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	for _, r := range results {
		path := filepath.Join(renderOutput, outputName(r.crate, r.out.Format))
		if err := writeOutput(path, r.out.Document); err != nil {
			return err
		}
		slog.Info("wrote document", "input", r.input, "output", path, "items", r.out.Items)
	}
	return nil
}

// outputName is <crate>-<version>.<ext>, or <crate>.<ext> without a version.
func outputName(c *rustdoc.Crate, f config.Format) string {
	name := c.Name()
	if c.CrateVersion != "" {
		name += "-" + c.CrateVersion
	}
	return name + extension(f)
}

func isDir(path string) bool {
	if strings.HasSuffix(path, "/") {
		return true
	}
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
