package transport

import (
	"context"
	"log/slog"
	"time"

	"github.com/ssargent/gamestate/pkg/storage"
)

// Recorder persists datagrams
type Recorder interface {
	Put(source, kind string, payload []byte, receivedAt time.Time) (*storage.Capture, error)
}

// CaptureHandler stores every datagram through r. Storage failures are
// logged and do not stop the listener.
func CaptureHandler(r Recorder, logger *slog.Logger) Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return HandlerFunc(func(_ context.Context, d Datagram) {
		c, err := r.Put(d.Source.String(), d.Kind().String(), d.Payload, d.ReceivedAt)
		if err != nil {
			logger.Error("capture failed", "from", d.Source.String(), "error", err)
			return
		}
		logger.Debug("datagram captured", "id", c.ID.String())
	})
}
