package transport

import (
	"context"
	"fmt"
	"net"
	"time"
)

// Sender writes datagrams to a single remote peer
type Sender struct {
	conn net.Conn
}

// Dial resolves addr and prepares a UDP socket for sending to it
func Dial(ctx context.Context, addr string) (*Sender, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	return &Sender{conn: conn}, nil
}

// RemoteAddr returns the peer address
func (s *Sender) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

// Send writes one datagram
func (s *Sender) Send(payload []byte) error {
	if _, err := s.conn.Write(payload); err != nil {
		return fmt.Errorf("failed to send datagram: %w", err)
	}
	return nil
}

// Repeat sends payload count times, waiting interval between sends. A
// count of zero or less repeats until ctx is cancelled and then requires a
// positive interval. It returns the number of datagrams sent.
func (s *Sender) Repeat(ctx context.Context, payload []byte, count int, interval time.Duration) (int, error) {
	if count <= 0 && interval <= 0 {
		return 0, fmt.Errorf("repeating without a count requires an interval")
	}

	sent := 0
	for {
		if ctx.Err() != nil {
			return sent, nil
		}
		if err := s.Send(payload); err != nil {
			return sent, err
		}
		sent++
		if count > 0 && sent >= count {
			return sent, nil
		}
		if interval <= 0 {
			continue
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return sent, nil
		case <-timer.C:
		}
	}
}

// Receive waits up to timeout for one datagram from the peer
func (s *Sender) Receive(timeout time.Duration) ([]byte, error) {
	if err := s.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, fmt.Errorf("failed to set read deadline: %w", err)
	}
	buf := make([]byte, DefaultBufferSize)
	n, err := s.conn.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to receive datagram: %w", err)
	}
	return buf[:n], nil
}

// Close closes the socket
func (s *Sender) Close() error {
	return s.conn.Close()
}
