/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/gamestate/pkg/config"
	"github.com/ssargent/gamestate/pkg/di"
	"github.com/ssargent/gamestate/pkg/logging"
)

type contextKey string

const (
	configKey contextKey = "config"
	loggerKey contextKey = "logger"
)

var container *di.Container

// SetContainer injects the dependency container used by the commands
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gamestate",
	Short: "Encode, decode and capture UDP gamestate datagrams",
	Long: `gamestate packs and unpacks the 18-byte big-endian gamestate record
(eight int16 fields followed by two uint8 flags) and the companion input and
whoami packets.

It can also listen on a UDP port and print, store, stream and count every
datagram it receives.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		logger := logging.New(cmd.ErrOrStderr(), cfg.Logging.Level)

		// Store in command context
		ctx := context.WithValue(cmd.Context(), configKey, cfg)
		ctx = context.WithValue(ctx, loggerKey, logger)
		cmd.SetContext(ctx)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to config file (default: OS-specific location)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level override (debug, info, warn, error)")
}

// loadConfig reads the file named by --config, or the default config file
// when it exists. Without either the built-in defaults apply.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath != "" {
		return config.LoadConfig(configPath)
	}

	configPath = config.GetDefaultConfigPath()
	if config.ConfigExists(configPath) {
		return config.LoadConfig(configPath)
	}
	return config.DefaultConfig(), nil
}

func configFrom(cmd *cobra.Command) *config.Config {
	if cfg, ok := cmd.Context().Value(configKey).(*config.Config); ok {
		return cfg
	}
	return config.DefaultConfig()
}

func loggerFrom(cmd *cobra.Command) *slog.Logger {
	if logger, ok := cmd.Context().Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

func requireContainer() (*di.Container, error) {
	if container == nil {
		return nil, fmt.Errorf("dependency container not initialized")
	}
	return container, nil
}
