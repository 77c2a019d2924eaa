package recording

import (
	"context"
	"errors"
	"io"
	"time"
)

// Sink receives replayed payloads. *transport.Sender satisfies it.
type Sink interface {
	Send(payload []byte) error
}

// Replay sends every entry read from r to sink, keeping the recorded gaps
// between entries divided by speed. A speed of zero or less sends entries
// back to back. It returns the number of entries sent; cancelling ctx stops
// the replay without an error.
func Replay(ctx context.Context, r *Reader, sink Sink, speed float64) (int, error) {
	sent := 0
	var previous time.Time

	for {
		e, err := r.ReadNext()
		if errors.Is(err, io.EOF) {
			return sent, nil
		}
		if err != nil {
			return sent, err
		}

		if speed > 0 && !previous.IsZero() {
			if gap := e.ReceivedAt.Sub(previous); gap > 0 {
				timer := time.NewTimer(time.Duration(float64(gap) / speed))
				select {
				case <-ctx.Done():
					timer.Stop()
					return sent, nil
				case <-timer.C:
				}
			}
		}
		previous = e.ReceivedAt

		if ctx.Err() != nil {
			return sent, nil
		}
		if err := sink.Send(e.Payload); err != nil {
			return sent, err
		}
		sent++
	}
}
