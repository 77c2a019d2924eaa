package hub

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/gamestate/pkg/transport"
)

func startHub(t *testing.T) (*Hub, *httptest.Server, context.CancelFunc) {
	t.Helper()

	h := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return h, srv, cancel
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_BroadcastsDatagrams(t *testing.T) {
	h, srv, cancel := startHub(t)
	defer cancel()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return h.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	h.Handler().HandleDatagram(context.Background(), transport.Datagram{
		Payload:    []byte{0x01, 0x00},
		Source:     &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 2018},
		ReceivedAt: time.Now(),
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var e Event
	require.NoError(t, json.Unmarshal(data, &e))
	assert.Equal(t, "127.0.0.1:2018", e.Source)
	assert.Equal(t, 2, e.Size)
	require.NotNil(t, e.Message)
	assert.Equal(t, "input", e.Message.Kind)
	require.NotNil(t, e.Message.Input)
	assert.True(t, e.Message.Input.Up)
	assert.Empty(t, e.Error)
}

func TestHub_ReportsDecodeErrors(t *testing.T) {
	h, srv, cancel := startHub(t)
	defer cancel()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return h.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	h.Handler().HandleDatagram(context.Background(), transport.Datagram{
		Payload:    []byte("hello"),
		Source:     &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 2018},
		ReceivedAt: time.Now(),
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var e Event
	require.NoError(t, json.Unmarshal(data, &e))
	assert.Nil(t, e.Message)
	assert.Contains(t, e.Error, "length matches no known packet")
}

func TestHub_Unregister(t *testing.T) {
	h, srv, cancel := startHub(t)
	defer cancel()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return h.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return h.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_StopClosesSubscribers(t *testing.T) {
	h, srv, cancel := startHub(t)

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return h.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "expected normal close, got %v", err)
	assert.Equal(t, 0, h.Clients())
}

func TestHub_PublishWithoutSubscribers(t *testing.T) {
	h := New(nil)
	// No Run loop: Publish must not block once the queue fills
	for i := 0; i < broadcastQueue+10; i++ {
		require.NoError(t, h.Publish(Event{Source: "x"}))
	}
	assert.Equal(t, int64(10), h.Dropped())
}

func TestHub_SlowSubscriberDropsMessages(t *testing.T) {
	h, srv, cancel := startHub(t)
	defer cancel()

	// Never read, so the socket buffers and then the outgoing channel fill
	dial(t, srv)
	require.Eventually(t, func() bool { return h.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	big := Event{Source: strings.Repeat("x", 64*1024)}
	total := outgoingBuffer + broadcastQueue + 200

	published := make(chan struct{})
	go func() {
		defer close(published)
		for i := 0; i < total; i++ {
			assert.NoError(t, h.Publish(big))
			// Let Run drain the queue so only the per-subscriber path drops
			for len(h.broadcast) > 0 {
				runtime.Gosched()
			}
		}
	}()

	select {
	case <-published:
	case <-time.After(10 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}

	assert.Positive(t, h.Dropped())
	assert.Less(t, h.Dropped(), int64(total))
}

func TestHub_OversizedClientMessageDisconnects(t *testing.T) {
	h, srv, cancel := startHub(t)
	defer cancel()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return h.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("ping")))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, h.Clients())

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, make([]byte, 4*maxMessageSize)))
	require.Eventually(t, func() bool { return h.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}
