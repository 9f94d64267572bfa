package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/darkstats/metallyrics/internal/config"
	"github.com/darkstats/metallyrics/internal/logging"
)

var cfgFile string

// runtimeKeyType is the key for storing the runtime in the context.
type runtimeKeyType string

const runtimeKey runtimeKeyType = "runtime"

// runtime bundles the services every subcommand needs. Built once in the
// root command's PersistentPreRunE and passed down via the context, which
// lets tests inject their own.
type runtime struct {
	cfg    config.Config
	logger *zap.Logger
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metallyrics",
		Short: "Crawl darklyrics.com and chart the collected lyrics.",
		Long: `metallyrics collects every artist, album and song from the
darklyrics.com index, splits the work into resumable quarters so several
people can share a full crawl, and renders descriptive charts over the
merged datasets.`,

		// Runs AFTER viper is initialized but BEFORE the subcommand's RunE.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(viper.GetViper())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.New(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), runtimeKey, &runtime{cfg: cfg, logger: logger})
			cmd.SetContext(ctx)
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if rt, ok := cmd.Context().Value(runtimeKey).(*runtime); ok && rt != nil {
				_ = rt.logger.Sync()
			}
		},
	}

	cobra.OnInitialize(func() { config.Init(cfgFile) })

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is ./config.yaml, then $HOME/.metallyrics/config.yaml)")

	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newAnalyzeCmd())

	return cmd
}

// resolveRuntime pulls the runtime out of the command context.
func resolveRuntime(ctx context.Context) (*runtime, error) {
	rt, ok := ctx.Value(runtimeKey).(*runtime)
	if !ok || rt == nil {
		return nil, errors.New("application services not initialized")
	}
	return rt, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
