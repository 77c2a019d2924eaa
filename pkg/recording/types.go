// Package recording stores received datagrams in an append-only file and
// plays them back.
//
// Each entry is framed as:
//
//	[CRC32(4)][Timestamp(8)][SourceSize(2)][PayloadSize(4)][Source][Payload]
//
// All integers are big-endian. The CRC32 (IEEE) covers everything after
// itself. A torn final entry or a checksum mismatch is reported as
// ErrCorruption.
package recording

import (
	"errors"
	"time"
)

const (
	headerSize = 18

	// MaxPayloadSize bounds a single entry's payload; larger values in a
	// header are treated as corruption.
	MaxPayloadSize = 64 << 10

	defaultBufferSize = 32 << 10
)

// ErrCorruption is returned when an entry fails its checksum or is truncated
var ErrCorruption = errors.New("recording: corrupt entry")

// Entry is one recorded datagram
type Entry struct {
	ReceivedAt time.Time
	Source     string
	Payload    []byte
}

// WriterConfig holds configuration for the recording writer
type WriterConfig struct {
	FilePath      string        // Path to the recording file
	FsyncInterval time.Duration // How long after a write to fsync (0 = every write)
	BufferSize    int           // Write buffer size
}

// ReaderConfig holds configuration for the recording reader
type ReaderConfig struct {
	FilePath    string // Path to the recording file
	StartOffset int64  // Offset to start reading from
}
