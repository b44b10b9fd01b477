/*
Copyright © 2025 riad@rsworld.eu

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"togglepace/config"
	"togglepace/internal/logger"
	"togglepace/internal/telemetry"
)

var (
	cfgFile  string
	envFile  string
	debugLog bool

	shutdownTracing = func(context.Context) error { return nil }
)

const defaultEnvFile = ".env"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "togglepace",
	Short: "Mirror a week of Toggl Track time entries into 7pace Timetracker.",
	Long: `
**********************************************
*               TOGGLE PACE                  *
**********************************************

This CLI reads the time entries of one Toggl Track project for the current (or previous)
week, clears the same week in 7pace Timetracker and publishes one 7pace worklog per entry.
Each worklog is classified into an activity type by keywords and linked to the work item
number found in its description.

Entries whose work item id is above sync.legacy_threshold belong to the legacy tracker:
they are listed but never published.
`,
	Example: `
  # Create configuration file
  togglepace config create

  # Store API tokens in the OS keyring
  togglepace auth set toggl
  togglepace auth set sevenpace

  # Preview the current week without writing anything
  togglepace sync --dry-run

  # Sync the previous week
  togglepace sync --last-week

  # Sync from a Toggl detailed report export instead of the API
  togglepace sync --input ./Toggl_time_entries.csv

  # Show recent sync runs
  togglepace history
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logDir := strings.TrimSpace(viper.GetString(config.KeyLogDir))
		if logDir == "" {
			dir, err := logger.DefaultDir()
			if err != nil {
				return err
			}
			logDir = dir
		}
		if err := logger.Init(logger.Config{Debug: debugLog, Dir: logDir}); err != nil {
			return err
		}

		shutdown, err := telemetry.Setup(cmd.Context(), "togglepace")
		if err != nil {
			logger.Warn("tracing disabled", "err", err)
		}
		shutdownTracing = shutdown
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return shutdownTracing(context.Background())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.togglepace.yaml, then ./.togglepace.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", defaultEnvFile, "Dotenv file loaded before the configuration (values override the environment)")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "Mirror debug logs to stderr")
}

// initConfig reads in the dotenv file, the config file and ENV variables if set.
func initConfig() {
	if err := loadEnvFile(envFile, rootCmd.PersistentFlags().Changed("env-file")); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".togglepace" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".togglepace")
	}

	cobra.CheckErr(config.BindEnv(viper.GetViper()))

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found. Create one first with: togglepace config create")
	}
}

// loadEnvFile applies a dotenv file on top of the process environment. A
// missing default file is not an error; a missing explicit one is.
func loadEnvFile(path string, explicit bool) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("read env file %s: %w", path, err)
	}
	if err := gotenv.OverLoad(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}
