package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/pubsite"
	"github.com/eringen/pubsite/logger"
)

func (a *app) buildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the site into the output directory",
		Long: `build loads every Markdown file under the source directory, renders
the site into the output directory, and exports the index to site.db.
Files that fail to load are reported and the command exits non-zero, but
every valid page is still written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b := pubsite.NewBuilder(a.cfg, pubsite.WithLogger(a.log))
			report, err := b.Build(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Built %d posts and %d pages into %s in %s\n",
				report.Posts, report.Pages, b.Config().OutputDir, report.Duration.Round(time.Millisecond))
			if err := report.Err(); err != nil {
				return fmt.Errorf("%d file(s) failed: %w", len(report.Errors), err)
			}
			return nil
		},
	}
	addBuildFlags(cmd)
	return cmd
}

func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().String("source", "", "content directory (default \"content\")")
	cmd.Flags().String("output", "", "output directory (default \"public\")")
	cmd.Flags().Int("workers", 0, "concurrent loads and renders (default NumCPU)")
	cmd.Flags().Bool("skip-db", false, "do not write site.db")
}

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Build, serve and rebuild the site on changes",
		Long: `serve builds the site, serves the output directory, and watches the
content and assets directories, rebuilding after each burst of changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b := pubsite.NewBuilder(a.cfg, pubsite.WithLogger(a.log))
			cfg := b.Config()
			rebuild := func(ctx context.Context) {
				report, err := b.Build(ctx)
				if err != nil {
					a.log.Error("build failed", logger.Error(err))
					return
				}
				if len(report.Errors) > 0 {
					failed := make([]string, len(report.Errors))
					for i, fe := range report.Errors {
						failed[i] = fe.Path
					}
					a.log.Warn("build finished with errors",
						logger.Int("errors", len(report.Errors)),
						logger.Strings("files", failed),
					)
				}
			}
			rebuild(cmd.Context())

			w := &pubsite.Watcher{
				Dirs: []string{cfg.SourceDir, cfg.AssetsDir},
				Ignore: []string{
					cfg.OutputDir,
					cfg.DatabasePath,
					cfg.DatabasePath + "-wal",
					cfg.DatabasePath + "-shm",
				},
				Debounce: 200 * time.Millisecond,
				Log:      a.log,
			}
			srv := pubsite.NewServer(cfg, a.log)

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error { return w.Run(ctx, rebuild) })
			g.Go(func() error { return srv.Start(ctx) })
			return g.Wait()
		},
	}
	addBuildFlags(cmd)
	cmd.Flags().String("addr", "", "listen address (default \":4000\")")
	return cmd
}
