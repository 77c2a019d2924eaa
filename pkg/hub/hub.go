// Package hub fans decoded datagrams out to websocket subscribers.
//
// One goroutine (Run) owns the subscriber set. Each subscriber gets a writer
// goroutine fed by a bounded channel and a reader goroutine that only
// notices disconnects. A subscriber that cannot keep up loses messages
// rather than stalling the listener.
package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ssargent/gamestate/pkg/codec"
	"github.com/ssargent/gamestate/pkg/transport"
)

const (
	outgoingBuffer = 32
	broadcastQueue = 256
	writeTimeout   = 5 * time.Second

	// subscribers only send control frames; anything larger is hostile
	maxMessageSize = 512
)

// Event is the JSON document sent to subscribers for each datagram
type Event struct {
	Source     string         `json:"source"`
	ReceivedAt time.Time      `json:"received_at"`
	Size       int            `json:"size"`
	Message    *codec.Message `json:"message,omitempty"`
	Error      string         `json:"error,omitempty"`
}

type subscriber struct {
	id       uint32
	conn     *websocket.Conn
	outgoing chan []byte
}

// Hub tracks websocket subscribers and broadcasts events to them
type Hub struct {
	register   chan *subscriber
	unregister chan *subscriber
	broadcast  chan []byte
	done       chan struct{}

	upgrader websocket.Upgrader
	logger   *slog.Logger

	nextID  atomic.Uint32
	clients atomic.Int64
	dropped atomic.Int64
}

// New creates a hub. Run must be called for it to do anything.
func New(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		register:   make(chan *subscriber),
		unregister: make(chan *subscriber),
		broadcast:  make(chan []byte, broadcastQueue),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Run owns the subscriber set until ctx is cancelled, then disconnects
// every subscriber.
func (h *Hub) Run(ctx context.Context) {
	subscribers := make(map[*subscriber]struct{})

	for {
		select {
		case <-ctx.Done():
			h.clients.Store(0)
			for s := range subscribers {
				close(s.outgoing)
			}
			close(h.done)
			h.logger.Info("hub stopped")
			return

		case s := <-h.register:
			subscribers[s] = struct{}{}
			h.clients.Store(int64(len(subscribers)))
			h.logger.Info("subscriber connected", "id", s.id, "remote", s.conn.RemoteAddr().String())

		case s := <-h.unregister:
			if _, ok := subscribers[s]; ok {
				delete(subscribers, s)
				close(s.outgoing)
				h.clients.Store(int64(len(subscribers)))
				h.logger.Info("subscriber disconnected", "id", s.id)
			}

		case msg := <-h.broadcast:
			for s := range subscribers {
				select {
				case s.outgoing <- msg:
				default:
					h.dropped.Add(1)
				}
			}
		}
	}
}

// Clients returns the number of connected subscribers
func (h *Hub) Clients() int {
	return int(h.clients.Load())
}

// Dropped returns how many messages were discarded for slow subscribers
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// Publish queues an event for every subscriber. It never blocks; when the
// queue is full the event is dropped.
func (h *Hub) Publish(e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	select {
	case h.broadcast <- data:
	default:
		h.dropped.Add(1)
	}
	return nil
}

// Handler returns a transport handler publishing every datagram
func (h *Hub) Handler() transport.Handler {
	return transport.HandlerFunc(func(_ context.Context, d transport.Datagram) {
		e := Event{
			Source:     d.Source.String(),
			ReceivedAt: d.ReceivedAt.UTC(),
			Size:       len(d.Payload),
		}
		msg, err := codec.Describe(d.Payload)
		if err != nil {
			e.Error = err.Error()
		} else {
			e.Message = msg
		}
		if err := h.Publish(e); err != nil {
			h.logger.Warn("publish failed", "error", err)
		}
	})
}

// ServeHTTP upgrades the request to a websocket and subscribes it
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	s := &subscriber{
		id:       h.nextID.Add(1),
		conn:     conn,
		outgoing: make(chan []byte, outgoingBuffer),
	}

	select {
	case h.register <- s:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writer(s)
	go h.reader(s)
}

func (h *Hub) writer(s *subscriber) {
	defer s.conn.Close()

	for msg := range s.outgoing {
		s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.Debug("subscriber write failed", "id", s.id, "error", err)
			// closing the conn fails the reader, which unregisters s;
			// drain until Run closes the channel
			s.conn.Close()
			for range s.outgoing {
			}
			return
		}
	}

	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) reader(s *subscriber) {
	s.conn.SetReadLimit(maxMessageSize)
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if errors.Is(err, websocket.ErrReadLimit) {
				h.logger.Warn("subscriber message too large", "id", s.id, "limit", maxMessageSize)
			}
			break
		}
	}

	select {
	case h.unregister <- s:
	case <-h.done:
	}
}
