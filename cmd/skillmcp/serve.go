package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/skillstack/skillmcp/pkg/logger"
	"github.com/skillstack/skillmcp/pkg/mcpserver"
	"github.com/skillstack/skillmcp/pkg/search"
	"github.com/skillstack/skillmcp/pkg/stats"
	"github.com/skillstack/skillmcp/pkg/watcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the skill index over MCP stdio",
	Long: `Start the MCP server on stdin/stdout. The skill index is built once at
startup and then kept current by watching the skills directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		// Protocol frames own stdout.
		logger.SetLogOutput(os.Stderr)

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		shutdownTracing, err := initTracing(ctx)
		if err != nil {
			return err
		}
		defer shutdownTracing(ctx)

		store, err := buildStore(ctx, cfg)
		if err != nil {
			return err
		}

		var opts []stats.Option
		if cfg.StatsDB != "" {
			searchLog, err := stats.OpenSearchLog(ctx, cfg.StatsDB)
			if err != nil {
				return err
			}
			defer searchLog.Close()
			opts = append(opts, stats.WithSearchLog(searchLog))
		}
		collector := stats.NewCollector(opts...)

		w, err := watcher.New(store)
		if err != nil {
			return err
		}
		if err := w.Watch(cfg.SkillsDir); err != nil {
			return err
		}
		w.Start(ctx)
		defer w.Close()

		srv := mcpserver.New(store, search.NewEngine(store), collector)
		logger.G(ctx).WithField("skills_dir", cfg.SkillsDir).Info("serving MCP over stdio")
		return srv.ServeStdio(ctx)
	},
}
