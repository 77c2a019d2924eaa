package recording

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// Reader provides sequential access to the entries of a recording
type Reader struct {
	file   *os.File
	reader *bufio.Reader
	offset int64
}

// NewReader opens a recording for reading
func NewReader(config ReaderConfig) (*Reader, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open recording: %w", err)
	}

	if config.StartOffset > 0 {
		if _, err := file.Seek(config.StartOffset, io.SeekStart); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to seek recording: %w", err)
		}
	}

	return &Reader{
		file:   file,
		reader: bufio.NewReader(file),
		offset: config.StartOffset,
	}, nil
}

// ReadNext returns the next entry, io.EOF at a clean end of file, or
// ErrCorruption for a torn or damaged entry
func (r *Reader) ReadNext() (*Entry, error) {
	headerBuf := make([]byte, headerSize)
	n, err := io.ReadFull(r.reader, headerBuf)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: truncated header at offset %d", ErrCorruption, r.offset)
		}
		return nil, err
	}

	h, err := decodeHeader(headerBuf)
	if err != nil {
		return nil, err
	}

	body := make([]byte, h.sourceSize+h.payloadSize)
	m, err := io.ReadFull(r.reader, body)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: truncated entry at offset %d", ErrCorruption, r.offset)
		}
		return nil, err
	}

	e, err := decodeBody(h, headerBuf, body)
	if err != nil {
		return nil, err
	}

	r.offset += int64(n + m)
	return e, nil
}

// Offset returns the offset of the next entry
func (r *Reader) Offset() int64 {
	return r.offset
}

// Close closes the underlying file
func (r *Reader) Close() error {
	return r.file.Close()
}

// ReadAll reads every entry of the recording at path
func ReadAll(path string) ([]*Entry, error) {
	r, err := NewReader(ReaderConfig{FilePath: path})
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var entries []*Entry
	for {
		e, err := r.ReadNext()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return entries, err
		}
		entries = append(entries, e)
	}
}
