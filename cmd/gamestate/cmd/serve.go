/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssargent/gamestate/pkg/api"
	"github.com/ssargent/gamestate/pkg/config"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the REST API server without a UDP listener. The server exposes
the codec, stored captures (when capture is enabled) and Prometheus metrics.

Examples:
  gamestate serve
  gamestate serve --http-addr 0.0.0.0:9000 --api-key mysecretkey`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireContainer()
		if err != nil {
			return err
		}

		cfg := configFrom(cmd)
		if err := applyHTTPAddr(cmd, cfg); err != nil {
			return err
		}
		if cmd.Flags().Changed("api-key") {
			cfg.HTTP.APIKey, _ = cmd.Flags().GetString("api-key")
		}
		if cmd.Flags().Changed("data-dir") {
			cfg.Capture.Enabled = true
			cfg.Capture.DataDir, _ = cmd.Flags().GetString("data-dir")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger := loggerFrom(cmd)

		var captures api.CaptureReader
		if cfg.Capture.Enabled {
			store, err := c.OpenStore(cfg.Capture.DataDir)
			if err != nil {
				return err
			}
			defer store.Close()
			captures = store
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		server := newAPIServer(c, cfg, captures, nil)
		cmd.Printf("Starting API server on %s\n", cfg.HTTPAddr())
		return c.GetServerStarter().StartServer(ctx, server, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("http-addr", "", "HTTP bind address as host:port (default from config: 127.0.0.1:8080)")
	serveCmd.Flags().String("api-key", "", "API key required in X-API-Key (empty disables the check)")
	serveCmd.Flags().StringP("data-dir", "d", "", "Capture data directory to serve")
}

// applyHTTPAddr overrides the HTTP bind address with --http-addr when set
func applyHTTPAddr(cmd *cobra.Command, cfg *config.Config) error {
	if !cmd.Flags().Changed("http-addr") {
		return nil
	}
	addr, _ := cmd.Flags().GetString("http-addr")
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid --http-addr %q: %w", addr, err)
	}
	p, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("invalid --http-addr port %q: %w", port, err)
	}
	cfg.HTTP.Bind = host
	cfg.HTTP.Port = p
	return nil
}
