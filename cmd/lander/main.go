// Command lander runs, evaluates and plots lunar lander experiments.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/samuelfneumann/golander/environment/envconfig"
)

// configEnv names the environment variable holding the default config
// file
const configEnv = "LANDER_CONFIG"

var (
	configPath string
	logLevel   string
)

func main() {
	for _, envFile := range []string{
		".env",
		"../../.env",
	} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "lander",
		Short:        "Lander runs lunar lander environments and scores reward functions.",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c",
		os.Getenv(configEnv), "YAML environment config, defaults to $"+
			configEnv)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newRunCmd(),
		newRolloutCmd(),
		newPlotCmd(),
		newRewardsCmd(),
	)
	return rootCmd
}

// newLogger returns a development logger at the configured level
func newLogger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = level
	return cfg.Build()
}

// loadConfig loads the environment config, falling back to the
// default config if no file was given
func loadConfig(logger *zap.Logger) (envconfig.Config, error) {
	if configPath == "" {
		logger.Debug("no config file given, using defaults")
		return envconfig.Default(), nil
	}

	c, err := envconfig.Load(configPath)
	if err != nil {
		return envconfig.Config{}, err
	}
	logger.Debug("loaded config", zap.String("path", configPath))
	return c, nil
}
