package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ssargent/gamestate/pkg/codec"
)

const tracerName = "github.com/ssargent/gamestate/pkg/transport"

const (
	// maxReadFailures consecutive read errors make Serve give up
	maxReadFailures = 8

	initialRetryDelay = 5 * time.Millisecond
	maxRetryDelay     = time.Second
)

// DefaultBufferSize is the largest datagram the listener reads in one call
const DefaultBufferSize = 4096

// Datagram is one received UDP payload
type Datagram struct {
	Payload    []byte
	Source     net.Addr
	ReceivedAt time.Time
}

// Kind classifies the datagram by length
func (d Datagram) Kind() codec.Kind {
	return codec.Classify(d.Payload)
}

// ListenerConfig configures a Listener
type ListenerConfig struct {
	Addr       string
	BufferSize int
	Echo       bool
	Logger     *slog.Logger
}

// Listener reads datagrams from a UDP socket and hands them to a Handler
type Listener struct {
	conn       net.PacketConn
	bufferSize int
	echo       bool
	logger     *slog.Logger
	tracer     trace.Tracer
	retryDelay time.Duration
}

// Listen binds a UDP socket on config.Addr
func Listen(config ListenerConfig) (*Listener, error) {
	conn, err := net.ListenPacket("udp", config.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", config.Addr, err)
	}

	bufferSize := config.BufferSize
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Listener{
		conn:       conn,
		bufferSize: bufferSize,
		echo:       config.Echo,
		logger:     logger,
		tracer:     otel.Tracer(tracerName),
		retryDelay: initialRetryDelay,
	}, nil
}

// Addr returns the bound local address
func (l *Listener) Addr() net.Addr {
	return l.conn.LocalAddr()
}

// Close closes the socket, unblocking Serve
func (l *Listener) Close() error {
	return l.conn.Close()
}

// Serve reads datagrams until ctx is cancelled or the socket is closed.
// It returns nil in both cases. Read errors are retried with a doubling
// delay; after maxReadFailures in a row Serve returns the last one.
func (l *Listener) Serve(ctx context.Context, h Handler) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			l.conn.Close()
		case <-done:
		}
	}()

	l.logger.Info("listening for datagrams", "addr", l.Addr().String(), "buffer_size", l.bufferSize, "echo", l.echo)

	buf := make([]byte, l.bufferSize)
	failures := 0
	delay := l.retryDelay
	for {
		n, addr, err := l.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				l.logger.Info("listener stopped", "addr", l.Addr().String())
				return nil
			}

			failures++
			if failures >= maxReadFailures {
				return fmt.Errorf("read failed %d times in a row: %w", failures, err)
			}
			l.logger.Warn("read failed", "error", err, "failures", failures, "retry_in", delay)

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				l.logger.Info("listener stopped", "addr", l.Addr().String())
				return nil
			case <-timer.C:
			}
			delay = min(delay*2, maxRetryDelay)
			continue
		}
		failures = 0
		delay = l.retryDelay

		d := Datagram{
			Payload:    append([]byte(nil), buf[:n]...),
			Source:     addr,
			ReceivedAt: time.Now(),
		}
		l.dispatch(ctx, h, d)
	}
}

func (l *Listener) dispatch(ctx context.Context, h Handler, d Datagram) {
	ctx, span := l.tracer.Start(ctx, "datagram", trace.WithAttributes(
		attribute.String("net.peer.addr", d.Source.String()),
		attribute.Int("datagram.size", len(d.Payload)),
		attribute.String("datagram.kind", d.Kind().String()),
	))
	defer span.End()

	l.logger.Debug("datagram received", "from", d.Source.String(), "bytes", len(d.Payload), "kind", d.Kind().String())

	if h != nil {
		h.HandleDatagram(ctx, d)
	}

	if l.echo {
		if _, err := l.conn.WriteTo(d.Payload, d.Source); err != nil {
			l.logger.Warn("echo failed", "to", d.Source.String(), "error", err)
		}
	}
}
