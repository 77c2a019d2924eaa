package recording

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"
	"time"
)

// encodeEntry serializes e into its framed form
func encodeEntry(e Entry) ([]byte, error) {
	if len(e.Source) > math.MaxUint16 {
		return nil, fmt.Errorf("source too long: %d bytes", len(e.Source))
	}
	if len(e.Payload) > MaxPayloadSize {
		return nil, fmt.Errorf("payload too large: %d bytes", len(e.Payload))
	}

	buf := make([]byte, headerSize+len(e.Source)+len(e.Payload))
	binary.BigEndian.PutUint64(buf[4:], uint64(e.ReceivedAt.UnixNano()))
	binary.BigEndian.PutUint16(buf[12:], uint16(len(e.Source)))
	binary.BigEndian.PutUint32(buf[14:], uint32(len(e.Payload)))
	copy(buf[headerSize:], e.Source)
	copy(buf[headerSize+len(e.Source):], e.Payload)

	binary.BigEndian.PutUint32(buf[0:], crc32.ChecksumIEEE(buf[4:]))
	return buf, nil
}

// header is the fixed part of a frame
type header struct {
	crc         uint32
	timestamp   int64
	sourceSize  int
	payloadSize int
}

func decodeHeader(buf []byte) (header, error) {
	h := header{
		crc:         binary.BigEndian.Uint32(buf[0:4]),
		timestamp:   int64(binary.BigEndian.Uint64(buf[4:12])),
		sourceSize:  int(binary.BigEndian.Uint16(buf[12:14])),
		payloadSize: int(binary.BigEndian.Uint32(buf[14:18])),
	}
	if h.payloadSize > MaxPayloadSize {
		return h, fmt.Errorf("%w: payload size %d", ErrCorruption, h.payloadSize)
	}
	return h, nil
}

// decodeBody validates the checksum over header and body and builds the entry
func decodeBody(h header, headerBuf, body []byte) (*Entry, error) {
	sum := crc32.NewIEEE()
	sum.Write(headerBuf[4:])
	sum.Write(body)
	if got := sum.Sum32(); got != h.crc {
		return nil, fmt.Errorf("%w: CRC32 mismatch: %d != %d", ErrCorruption, h.crc, got)
	}

	return &Entry{
		ReceivedAt: time.Unix(0, h.timestamp),
		Source:     string(body[:h.sourceSize]),
		Payload:    append([]byte(nil), body[h.sourceSize:]...),
	}, nil
}
