package recording

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ssargent/gamestate/pkg/transport"
)

// Writer appends entries to a recording file
type Writer struct {
	file       *os.File
	writer     *bufio.Writer
	fsyncTimer *time.Timer
	config     WriterConfig
	mutex      sync.Mutex
	offset     int64 // Current write offset
}

// NewWriter opens config.FilePath for appending, creating it and its
// directory when missing
func NewWriter(config WriterConfig) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create recording directory: %w", err)
	}

	file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open recording: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat recording: %w", err)
	}

	bufferSize := config.BufferSize
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}

	w := &Writer{
		file:   file,
		writer: bufio.NewWriterSize(file, bufferSize),
		config: config,
		offset: stat.Size(),
	}

	if config.FsyncInterval > 0 {
		w.fsyncTimer = time.AfterFunc(config.FsyncInterval, func() {
			w.mutex.Lock()
			defer w.mutex.Unlock()
			_ = w.sync()
		})
	}

	return w, nil
}

// Append writes e and returns the offset the entry starts at
func (w *Writer) Append(e Entry) (int64, error) {
	data, err := encodeEntry(e)
	if err != nil {
		return 0, err
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()

	n, err := w.writer.Write(data)
	if err != nil {
		return 0, fmt.Errorf("failed to write entry: %w", err)
	}

	entryOffset := w.offset
	w.offset += int64(n)

	if w.config.FsyncInterval == 0 {
		if err := w.sync(); err != nil {
			return 0, err
		}
	} else if w.fsyncTimer != nil {
		w.fsyncTimer.Reset(w.config.FsyncInterval)
	}

	return entryOffset, nil
}

// Sync flushes buffered entries and fsyncs the file
func (w *Writer) Sync() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.sync()
}

func (w *Writer) sync() error {
	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush recording: %w", err)
	}
	return w.file.Sync()
}

// Close syncs and closes the file
func (w *Writer) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.fsyncTimer != nil {
		w.fsyncTimer.Stop()
	}

	if err := w.sync(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// Size returns the current size of the recording in bytes
func (w *Writer) Size() int64 {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.offset
}

// Path returns the file path
func (w *Writer) Path() string {
	return w.config.FilePath
}

// Handler returns a transport handler appending every datagram. Write
// failures are logged and do not stop the listener.
func (w *Writer) Handler(logger *slog.Logger) transport.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return transport.HandlerFunc(func(_ context.Context, d transport.Datagram) {
		_, err := w.Append(Entry{
			ReceivedAt: d.ReceivedAt,
			Source:     d.Source.String(),
			Payload:    d.Payload,
		})
		if err != nil {
			logger.Error("recording failed", "from", d.Source.String(), "error", err)
		}
	})
}
