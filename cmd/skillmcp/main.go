package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skillstack/skillmcp/pkg/config"
	"github.com/skillstack/skillmcp/pkg/index"
	"github.com/skillstack/skillmcp/pkg/logger"
	"github.com/skillstack/skillmcp/pkg/presenter"
)

func init() {
	viper.SetEnvPrefix("SKILLMCP")
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.skillmcp")
	viper.AddConfigPath(".")

	// Load config file if it exists (ignore errors if it doesn't)
	_ = viper.ReadInConfig()

	config.SetDefaults()
}

var rootCmd = &cobra.Command{
	Use:   "skillmcp",
	Short: "Searchable skill library served over MCP and HTTP",
	Long: `skillmcp indexes a directory tree of skill definitions and serves them
to AI assistants over the Model Context Protocol, with an HTTP API for
management. The index follows filesystem changes automatically.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.SetLogLevel(viper.GetString("log_level")); err != nil {
			return err
		}
		logger.SetLogFormat(viper.GetString("log_format"))
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
		os.Exit(1)
	},
}

// loadConfig decodes and validates the effective configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildStore creates the index store and performs the initial build.
func buildStore(ctx context.Context, cfg *config.Config) (*index.Store, error) {
	store := index.NewStore(cfg.SkillsDir)
	if err := store.Rebuild(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func main() {
	rootCmd.PersistentFlags().String("skills-dir", "", "Root directory of skill definitions")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text or json)")
	rootCmd.PersistentFlags().String("stats-db", "", "SQLite path for persisted search history")

	viper.BindPFlag("skills_dir", rootCmd.PersistentFlags().Lookup("skills-dir"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("stats_db", rootCmd.PersistentFlags().Lookup("stats-db"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		presenter.Error(err, "command failed")
		fmt.Fprintln(os.Stderr)
		os.Exit(1)
	}
}
