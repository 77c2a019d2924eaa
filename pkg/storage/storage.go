package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
)

// ErrNotFound is returned when no capture exists for an id
var ErrNotFound = errors.New("capture not found")

// Capture is one received datagram as it was seen on the wire
type Capture struct {
	ID         ksuid.KSUID `json:"id"`
	ReceivedAt time.Time   `json:"received_at"`
	Source     string      `json:"source"`
	Kind       string      `json:"kind"`
	Payload    []byte      `json:"payload"`
}

// CaptureStore persists captures in pebble keyed by KSUID. IDs are
// issued in increasing order so key order is arrival order.
type CaptureStore struct {
	db   *pebble.DB
	mu   sync.Mutex
	last ksuid.KSUID
}

// Open opens or creates a capture store in dir
func Open(dir string) (*CaptureStore, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open capture store: %w", err)
	}

	s := &CaptureStore{db: db}

	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to scan capture store: %w", err)
	}
	if iter.Last() {
		if id, err := ksuid.FromBytes(iter.Key()); err == nil {
			s.last = id
		}
	}
	if err := iter.Close(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to scan capture store: %w", err)
	}

	return s, nil
}

// Put stores a datagram and returns the stored capture
func (s *CaptureStore) Put(source, kind string, payload []byte, receivedAt time.Time) (*Capture, error) {
	id, err := s.nextID(receivedAt)
	if err != nil {
		return nil, err
	}

	c := &Capture{
		ID:         id,
		ReceivedAt: receivedAt.UTC(),
		Source:     source,
		Kind:       kind,
		Payload:    append([]byte(nil), payload...),
	}

	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal capture: %w", err)
	}

	if err := s.db.Set(id.Bytes(), data, pebble.NoSync); err != nil {
		return nil, fmt.Errorf("failed to write capture: %w", err)
	}

	return c, nil
}

// Get returns the capture with the given id
func (s *CaptureStore) Get(id ksuid.KSUID) (*Capture, error) {
	data, closer, err := s.db.Get(id.Bytes())
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read capture: %w", err)
	}
	defer closer.Close()

	// data is only valid until closer.Close
	var c Capture
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal capture %s: %w", id, err)
	}

	return &c, nil
}

// List returns the most recent captures, oldest first. A limit of zero or
// less returns everything.
func (s *CaptureStore) List(limit int) ([]*Capture, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create iterator: %w", err)
	}

	var captures []*Capture
	for valid := iter.Last(); valid; valid = iter.Prev() {
		if limit > 0 && len(captures) >= limit {
			break
		}
		var c Capture
		if err := json.Unmarshal(iter.Value(), &c); err != nil {
			iter.Close()
			return nil, fmt.Errorf("failed to unmarshal capture: %w", err)
		}
		captures = append(captures, &c)
	}

	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to close iterator: %w", err)
	}

	for i, j := 0, len(captures)-1; i < j; i, j = i+1, j-1 {
		captures[i], captures[j] = captures[j], captures[i]
	}

	return captures, nil
}

// Delete removes a capture. Deleting an unknown id is not an error.
func (s *CaptureStore) Delete(id ksuid.KSUID) error {
	if err := s.db.Delete(id.Bytes(), pebble.NoSync); err != nil {
		return fmt.Errorf("failed to delete capture: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying database
func (s *CaptureStore) Close() error {
	if err := s.db.Flush(); err != nil {
		s.db.Close()
		return fmt.Errorf("failed to flush capture store: %w", err)
	}
	return s.db.Close()
}

func (s *CaptureStore) nextID(t time.Time) (ksuid.KSUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := ksuid.NewRandomWithTime(t)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("failed to generate capture id: %w", err)
	}
	if ksuid.Compare(id, s.last) <= 0 {
		id = s.last.Next()
	}
	s.last = id

	return id, nil
}
