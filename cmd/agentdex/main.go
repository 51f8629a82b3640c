package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/agentdex/pkg/logger"
	"github.com/jingkaihe/agentdex/pkg/presenter"
)

var rootCmd = &cobra.Command{
	Use:   "agentdex",
	Short: "Catalog indexer for agent persona documents",
	Long: `agentdex maintains a catalog of agent persona documents: markdown files
describing roles for an AI coding assistant, grouped into topical clusters.

It imports and exports AGENT_CLUSTERS.md-shaped index documents, answers
membership queries, computes catalog statistics, and audits the catalog
for consistency problems.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if level, err := cmd.Flags().GetString("log-level"); err == nil && level != "" {
			if err := logger.SetLogLevel(level); err != nil {
				return err
			}
		}
		if format, err := cmd.Flags().GetString("log-format"); err == nil {
			logger.SetLogFormat(format)
		}
		if quiet, err := cmd.Flags().GetBool("quiet"); err == nil {
			presenter.SetQuiet(quiet)
		}
		return nil
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

func init() {
	viper.SetEnvPrefix("AGENTDEX")
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.agentdex")
	viper.AddConfigPath(".")

	// Load config file if it exists (ignore errors if it doesn't)
	_ = viper.ReadInConfig()
}

func main() {
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "fmt", "Log format (fmt or json)")
	rootCmd.PersistentFlags().Bool("quiet", false, "Suppress non-error output")
	rootCmd.PersistentFlags().String("store-backend", "", "Store backend (json, bbolt or sqlite)")
	rootCmd.PersistentFlags().String("store-path", "", "Directory holding the catalog store")

	viper.BindPFlag("store.backend", rootCmd.PersistentFlags().Lookup("store-backend"))
	viper.BindPFlag("store.path", rootCmd.PersistentFlags().Lookup("store-path"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		presenter.Error(err, "")
		os.Exit(1)
	}
}
