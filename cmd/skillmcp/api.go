package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skillstack/skillmcp/pkg/api"
	"github.com/skillstack/skillmcp/pkg/search"
	"github.com/skillstack/skillmcp/pkg/stats"
	"github.com/skillstack/skillmcp/pkg/watcher"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Serve the HTTP management API",
	Long: `Start the REST API server for managing skills: create, update, delete,
search, validate, and reload. The index follows filesystem changes while
the server runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

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

		srv, err := api.NewServer(&api.ServerConfig{
			Host: cfg.API.Host,
			Port: cfg.API.Port,
		}, store, search.NewEngine(store), collector)
		if err != nil {
			return err
		}
		return srv.Start(ctx)
	},
}

func init() {
	apiCmd.Flags().String("host", "127.0.0.1", "Host to bind the API server to")
	apiCmd.Flags().Int("port", 8391, "Port to bind the API server to")

	viper.BindPFlag("api.host", apiCmd.Flags().Lookup("host"))
	viper.BindPFlag("api.port", apiCmd.Flags().Lookup("port"))
}
