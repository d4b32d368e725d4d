package app

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/prodmap/prodmap/internal/imagery"
	"github.com/prodmap/prodmap/pkg/batch"
	"github.com/prodmap/prodmap/pkg/catalog"
	"github.com/prodmap/prodmap/pkg/export"
	"github.com/prodmap/prodmap/pkg/logging"
)

// NewExtractCommand creates the extract command: run the pipeline for one
// product folder.
func (a *App) NewExtractCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "extract <image-folder>",
		Short: "Extract attributes for a single product",
		Long: `Extract runs the full pipeline for one product: image analysis, search
enrichment, and merge. The folder should contain the product's images; the
product name defaults to the folder name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := a.logger.With().Str("command", "extract").Logger()
			ctx = logging.WithLogger(ctx, &logger)

			folder := args[0]
			if name == "" {
				name = filepath.Base(filepath.Clean(folder))
			}

			seq, cat, err := a.Sequencer(ctx)
			if err != nil {
				return err
			}

			profile := seq.Run(ctx, catalog.Item{Name: name, Folder: folder})

			exporter := export.New(cat)
			report := exporter.BuildReport([]*catalog.Profile{profile}, time.Now())
			paths, err := exporter.WriteFiles(a.config.OutputDir, []*catalog.Profile{profile}, report)
			if err != nil {
				return err
			}

			logger.Info().
				Str("status", string(profile.Status)).
				Int("filled", profile.Filled()).
				Strs("files", paths).
				Msg("extraction complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "product name (default is the folder name)")
	cmd.Flags().StringVar(&a.config.OutputDir, "output", a.config.OutputDir, "output directory")

	return cmd
}

// NewBatchCommand creates the batch command: process every product folder
// under a base directory.
func (a *App) NewBatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <base-folder>",
		Short: "Extract attributes for every product folder under a directory",
		Long: `Batch treats every direct subdirectory of the base folder as one product
and processes them concurrently. Per-item failures never stop the batch;
they appear as failed entries in the results and the report.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := a.logger.With().Str("command", "batch").Logger()
			ctx = logging.WithLogger(ctx, &logger)

			items, err := imagery.Discover(args[0])
			if err != nil {
				return err
			}
			if len(items) == 0 {
				logger.Warn().Str("folder", args[0]).Msg("no product folders found")
				return nil
			}

			seq, cat, err := a.Sequencer(ctx)
			if err != nil {
				return err
			}

			runner := batch.NewRunner(seq,
				batch.WithConcurrency(a.config.Concurrency),
				batch.WithItemTimeout(a.config.Timeout))
			profiles := runner.Run(ctx, items)

			exporter := export.New(cat)
			report := exporter.BuildReport(profiles, time.Now())
			paths, err := exporter.WriteFiles(a.config.OutputDir, profiles, report)
			if err != nil {
				return err
			}

			logger.Info().
				Int("total", report.TotalProducts).
				Int("successful", report.Successful).
				Int("partial", report.Partial).
				Int("failed", report.Failed).
				Strs("files", paths).
				Msg("batch complete")
			return nil
		},
	}

	cmd.Flags().IntVar(&a.config.Concurrency, "concurrency", a.config.Concurrency, "number of products processed in parallel")
	cmd.Flags().StringVar(&a.config.OutputDir, "output", a.config.OutputDir, "output directory")

	return cmd
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("prodmap %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit: %s\n", a.commit)
				cmd.Printf("  built:  %s\n", a.date)
			}
		},
	}
}
