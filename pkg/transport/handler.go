package transport

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/ssargent/gamestate/pkg/codec"
)

// Handler processes received datagrams. Implementations must not retain
// d.Payload beyond the call unless they copy it.
type Handler interface {
	HandleDatagram(ctx context.Context, d Datagram)
}

// HandlerFunc adapts a function to a Handler
type HandlerFunc func(ctx context.Context, d Datagram)

// HandleDatagram calls f(ctx, d)
func (f HandlerFunc) HandleDatagram(ctx context.Context, d Datagram) {
	f(ctx, d)
}

// Chain calls each non-nil handler in order
func Chain(handlers ...Handler) Handler {
	return HandlerFunc(func(ctx context.Context, d Datagram) {
		for _, h := range handlers {
			if h != nil {
				h.HandleDatagram(ctx, d)
			}
		}
	})
}

// PrintHandler writes every datagram verbatim to w, followed by its decoded
// form when the length matches a known packet.
func PrintHandler(w io.Writer) Handler {
	var mu sync.Mutex
	return HandlerFunc(func(_ context.Context, d Datagram) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Fprintf(w, "received % x (%d bytes) from %s\n", d.Payload, len(d.Payload), d.Source)

		msg, err := codec.Describe(d.Payload)
		if err != nil {
			if d.Kind() != codec.KindUnknown {
				fmt.Fprintf(w, "  %s: %v\n", d.Kind(), err)
			}
			return
		}
		fmt.Fprintf(w, "  %s\n", FormatMessage(msg))
	})
}

// FormatMessage renders a decoded message on one line
func FormatMessage(msg *codec.Message) string {
	switch {
	case msg.Gamestate != nil:
		return fmt.Sprintf("gamestate %v", msg.Values)
	case msg.Input != nil:
		return fmt.Sprintf("input up=%t down=%t", msg.Input.Up, msg.Input.Down)
	case msg.Whoami != nil:
		return fmt.Sprintf("whoami is_server=%t", msg.Whoami.IsServer)
	default:
		return msg.Kind
	}
}
