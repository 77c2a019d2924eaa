package api

import (
	"github.com/segmentio/ksuid"

	"github.com/ssargent/gamestate/pkg/storage"
)

// CaptureReader is the read side of the capture store
type CaptureReader interface {
	Get(id ksuid.KSUID) (*storage.Capture, error)
	List(limit int) ([]*storage.Capture, error)
}
