// Package main provides the mongoes-admin CLI for search index maintenance.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/digitalbridge/mongoes"
	"github.com/digitalbridge/mongoes/internal/config"
	logpkg "github.com/digitalbridge/mongoes/internal/logger"
	"github.com/digitalbridge/mongoes/internal/version"
)

type cli struct {
	env     string
	connect func(cfg config.Config, env string) (*mongoes.Client, error)
}

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	_ = godotenv.Load()

	c := &cli{connect: connect}
	if err := c.rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mongoes-admin",
		Short: "Search index maintenance for mongoes",
		Long: `Maintains the Elasticsearch mirror of the mongoes assets.

Configuration is read from config/<env>.yaml; ${VAR} references are expanded
from the environment and an optional .env file.`,
		SilenceUsage: true,
		Version:      version.String(),
	}
	root.PersistentFlags().StringVar(&c.env, "env", config.GetEnv(), "configuration environment (config/<env>.yaml)")

	root.AddCommand(
		c.reindexCmd(),
		c.indexCmd("create-index", "Create an empty index (5 shards, 1 replica)", true,
			func(ctx context.Context, s *mongoes.SearchService, name string) error { return s.CreateIndex(ctx, name) }),
		c.indexCmd("drop-index", "Delete an index, or every index when no name is given", false,
			func(ctx context.Context, s *mongoes.SearchService, name string) error { return s.DropIndex(ctx, name) }),
		c.indexCmd("refresh", "Refresh an index, or every index when no name is given", false,
			func(ctx context.Context, s *mongoes.SearchService, name string) error { return s.Refresh(ctx, name) }),
		c.simpleCmd("mapping", "Map the asset location as geo_point on the alias index",
			func(ctx context.Context, s *mongoes.SearchService) error { return s.CreateGeoPointMapping(ctx) }),
		c.simpleCmd("optimize", "Force-merge the indices down to one segment",
			func(ctx context.Context, s *mongoes.SearchService) error { return s.Optimize(ctx) }),
		c.statsCmd(),
	)
	return root
}

func (c *cli) reindexCmd() *cobra.Command {
	var req mongoes.ReindexRequest
	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Copy the asset index into the alias index",
		Long: `Scrolls the source index page by page and bulk-writes every page to the
destination, flattening address.location into a geo_point.

Unset flags fall back to the search section of the configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withClient(cmd, func(ctx context.Context, client *mongoes.Client) error {
				res, err := client.Reindex(ctx, req)
				if res != nil {
					printReindex(cmd, res)
				}
				return err
			})
		},
	}
	cmd.Flags().StringVar(&req.SourceIndex, "source", "", "source index")
	cmd.Flags().StringVar(&req.SourceType, "source-type", "", "source mapping type (ignored by typeless clusters)")
	cmd.Flags().StringVar(&req.DestIndex, "dest", "", "destination index")
	cmd.Flags().StringVar(&req.DestType, "dest-type", "", "destination mapping type (ignored by typeless clusters)")
	cmd.Flags().IntVar(&req.PageSize, "page-size", 0, "hits per scroll page")
	cmd.Flags().DurationVar(&req.KeepAlive, "keep-alive", 0, "scroll keep-alive")
	return cmd
}

func printReindex(cmd *cobra.Command, res *mongoes.ReindexResult) {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Reindex run %s\n", res.RunID)
	_, _ = fmt.Fprintf(out, "  Pages:   %d (%d failed)\n", res.Pages, res.FailedPages)
	_, _ = fmt.Fprintf(out, "  Hits:    %d\n", res.Hits)
	_, _ = fmt.Fprintf(out, "  Indexed: %d\n", res.Indexed)
	_, _ = fmt.Fprintf(out, "  Failed:  %d\n", res.Failed)
	_, _ = fmt.Fprintf(out, "  Duration: %s\n", res.Duration.Round(time.Millisecond))
}

func (c *cli) indexCmd(use, short string, required bool,
	run func(ctx context.Context, s *mongoes.SearchService, name string) error,
) *cobra.Command {
	args := cobra.MaximumNArgs(1)
	if required {
		args = cobra.ExactArgs(1)
	}
	return &cobra.Command{
		Use:   use + " [index]",
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, argv []string) error {
			name := ""
			if len(argv) == 1 {
				name = argv[0]
			}
			return c.withClient(cmd, func(ctx context.Context, client *mongoes.Client) error {
				if err := run(ctx, client.Search(), name); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", use)
				return nil
			})
		},
	}
}

func (c *cli) simpleCmd(use, short string, run func(ctx context.Context, s *mongoes.SearchService) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withClient(cmd, func(ctx context.Context, client *mongoes.Client) error {
				if err := run(ctx, client.Search()); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", use)
				return nil
			})
		},
	}
}

func (c *cli) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the total statistics of the asset index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withClient(cmd, func(ctx context.Context, client *mongoes.Client) error {
				stats, err := client.Search().Stats(ctx)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			})
		},
	}
}

// withClient loads the configuration, connects and runs fn until it returns
// or the process is interrupted.
func (c *cli) withClient(cmd *cobra.Command, fn func(ctx context.Context, client *mongoes.Client) error) error {
	cfg, err := config.Load(c.env)
	if err != nil {
		return err //nolint:wrapcheck // config errors name the file
	}
	if !cfg.Search.Enabled() {
		return mongoes.ErrSearchDisabled
	}
	client, err := c.connect(cfg, c.env)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return fn(ctx, client)
}

func connect(cfg config.Config, env string) (*mongoes.Client, error) {
	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return mongoes.New(clientOptions(cfg, mongoes.WithLogger(logger))...) //nolint:wrapcheck // client errors are prefixed
}

// clientOptions maps the configuration onto client options.
func clientOptions(cfg config.Config, extra ...mongoes.Option) []mongoes.Option {
	opts := []mongoes.Option{
		mongoes.WithReadinessTimeout(time.Duration(cfg.Database.ReadinessTimeout) * time.Second),
		mongoes.WithElasticsearch(cfg.Search.Username, cfg.Search.Password, cfg.Search.Addrs...),
		mongoes.WithSearchRetries(cfg.Search.MaxRetries),
		mongoes.WithIndex(cfg.Search.Index, cfg.Search.Alias),
		mongoes.WithDateFields(cfg.Search.DateFields...),
		mongoes.WithScroll(cfg.Search.PageSize, time.Duration(cfg.Search.ScrollKeepAliveSec)*time.Second),
		mongoes.WithPagination(cfg.HTTP.DefaultPageSize, cfg.HTTP.MaxPageSize),
	}
	switch cfg.Database.Driver {
	case config.DriverRedis:
		opts = append(opts,
			mongoes.WithRedis(cfg.Database.Password, cfg.Database.Addrs...),
			mongoes.WithKeyPrefix(cfg.Database.KeyPrefix))
	default:
		opts = append(opts, mongoes.WithMongo(cfg.Database.URI, cfg.Database.Name))
	}
	if cfg.Search.LegacyTermination() {
		opts = append(opts, mongoes.WithLegacyTermination())
	}
	if cfg.Cache.Enabled {
		opts = append(opts, mongoes.WithReferenceCache(cfg.Cache.Password,
			time.Duration(cfg.Cache.TTLSec)*time.Second, cfg.Cache.Addrs...))
	}
	return append(opts, extra...)
}
