/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ssargent/gamestate/pkg/api"
	"github.com/ssargent/gamestate/pkg/config"
	"github.com/ssargent/gamestate/pkg/di"
	"github.com/ssargent/gamestate/pkg/hub"
	"github.com/ssargent/gamestate/pkg/recording"
	"github.com/ssargent/gamestate/pkg/telemetry"
	"github.com/ssargent/gamestate/pkg/transport"
)

const telemetryShutdownTimeout = 5 * time.Second

// listenCmd represents the listen command
var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Receive and print gamestate datagrams",
	Long: `Bind a UDP socket and print every datagram received, verbatim and
decoded. Optionally store datagrams, echo them back to their sender and serve
the HTTP API with a live websocket stream.

The command will:
- Print each datagram to stdout
- Count datagrams in Prometheus metrics
- Store datagrams when capture is enabled
- Append datagrams to a recording file for 'gamestate replay'
- Serve /api/v1 and /metrics when HTTP is enabled

Examples:
  gamestate listen
  gamestate listen --host 0.0.0.0 --port 2018 --echo
  gamestate listen --capture --data-dir ./captures --http
  gamestate listen --record ./session.rec`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireContainer()
		if err != nil {
			return err
		}

		cfg := configFrom(cmd)
		if err := applyListenFlags(cmd, cfg); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runListener(ctx, c, cfg, cmd.OutOrStdout(), loggerFrom(cmd))
	},
}

func init() {
	rootCmd.AddCommand(listenCmd)

	listenCmd.Flags().String("host", "", "Host to bind the UDP socket to (default from config: localhost)")
	listenCmd.Flags().IntP("port", "p", 0, "UDP port to listen on (default from config: 2018)")
	listenCmd.Flags().Bool("echo", false, "Send every datagram back to its source")
	listenCmd.Flags().Bool("capture", false, "Store received datagrams")
	listenCmd.Flags().StringP("data-dir", "d", "", "Capture data directory")
	listenCmd.Flags().String("record", "", "Append datagrams to this recording file")
	listenCmd.Flags().Bool("http", false, "Serve the HTTP API, metrics and live stream")
	listenCmd.Flags().String("http-addr", "", "HTTP bind address as host:port")
}

// applyListenFlags overrides config values with explicitly set flags
func applyListenFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Listen.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		cfg.Listen.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("echo") {
		cfg.Listen.Echo, _ = flags.GetBool("echo")
	}
	if flags.Changed("capture") {
		cfg.Capture.Enabled, _ = flags.GetBool("capture")
	}
	if flags.Changed("data-dir") {
		cfg.Capture.DataDir, _ = flags.GetString("data-dir")
	}
	if flags.Changed("record") {
		cfg.Record.Path, _ = flags.GetString("record")
	}
	if flags.Changed("http") {
		cfg.HTTP.Enabled, _ = flags.GetBool("http")
	}
	return applyHTTPAddr(cmd, cfg)
}

// runListener serves datagrams, and the HTTP API when enabled, until ctx is
// cancelled or one of them fails.
func runListener(ctx context.Context, c *di.Container, cfg *config.Config, out io.Writer, logger *slog.Logger) error {
	shutdown, err := telemetry.InitTracer(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(shutdown, logger)

	listener, err := transport.Listen(transport.ListenerConfig{
		Addr:       cfg.ListenAddr(),
		BufferSize: cfg.Listen.BufferSize,
		Echo:       cfg.Listen.Echo,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	defer listener.Close()

	fmt.Fprintf(out, "listening on %s\n", listener.Addr())

	metrics := transport.NewMetrics(c.Registry())
	handlers := []transport.Handler{
		transport.PrintHandler(out),
		metrics.Handler(),
	}

	var captures api.CaptureReader
	if cfg.Capture.Enabled {
		store, err := c.OpenStore(cfg.Capture.DataDir)
		if err != nil {
			return err
		}
		defer store.Close()

		handlers = append(handlers, transport.CaptureHandler(store, logger))
		captures = store
	}

	if cfg.Record.Path != "" {
		writer, err := recording.NewWriter(recording.WriterConfig{
			FilePath:      cfg.Record.Path,
			FsyncInterval: cfg.Record.FsyncInterval,
		})
		if err != nil {
			return err
		}
		defer writer.Close()

		handlers = append(handlers, writer.Handler(logger))
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.HTTP.Enabled {
		h := hub.New(logger)
		handlers = append(handlers, h.Handler())

		server := newAPIServer(c, cfg, captures, h)
		g.Go(func() error {
			h.Run(gctx)
			return nil
		})
		g.Go(func() error {
			return c.GetServerStarter().StartServer(gctx, server, logger)
		})
	}

	g.Go(func() error {
		return listener.Serve(gctx, transport.Chain(handlers...))
	})

	return g.Wait()
}

func newAPIServer(c *di.Container, cfg *config.Config, captures api.CaptureReader, stream http.Handler) *api.Server {
	return api.NewServer(captures, stream, api.ServerConfig{
		Addr:     cfg.HTTPAddr(),
		APIKey:   cfg.HTTP.APIKey,
		Gatherer: c.Registry(),
	}, api.NewMetrics(c.Registry()))
}

func shutdownTelemetry(shutdown telemetry.ShutdownFunc, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logger.Warn("tracer shutdown failed", "error", err)
	}
}
