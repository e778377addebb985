// Package cmd wires the shopgraph subcommands: sync runs the pipeline once,
// serve exposes the liveness endpoint, version prints the build version.
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/SARx613/shopgraph/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           "shopgraph",
	Short:         "Mirror a relational e-commerce dataset into a Neo4j property graph.",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
}

// Execute runs the root command under ctx. Cancelling ctx (SIGINT/SIGTERM
// from main) stops whichever subcommand is running.
func Execute(ctx context.Context) error {
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd.ExecuteContext(ctx)
}

// loadConfig builds the configuration value from defaults, an optional config
// file, and the environment. A local .env file is folded into the environment
// first so development setups need no exported variables. The returned config
// is passed down by parameter; nothing reads the environment after this.
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	config.SetDefaults(v)
	if err := config.BindEnv(v); err != nil {
		return nil, err
	}
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		// A missing default config file is fine; an explicitly named one
		// must exist, and parse errors are always reported.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	return config.Load(v)
}
