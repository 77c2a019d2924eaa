package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/gamestate/pkg/codec"
	"github.com/ssargent/gamestate/pkg/storage"
)

const (
	defaultCaptureLimit = 50
	maxCaptureLimit     = 1000
	maxRequestBody      = 64 << 10
)

// Server holds the API server state
type Server struct {
	captures CaptureReader
	stream   http.Handler
	config   ServerConfig
	metrics  *Metrics
	codec    *codec.RecordCodec
}

// NewServer creates a new API server. captures and stream may be nil, in
// which case their routes answer 404.
func NewServer(captures CaptureReader, stream http.Handler, config ServerConfig, metrics *Metrics) *Server {
	return &Server{
		captures: captures,
		stream:   stream,
		config:   config,
		metrics:  metrics,
		codec:    codec.NewRecordCodec(),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]interface{}{
		"status":       "healthy",
		"captures":     s.captures != nil,
		"stream":       s.stream != nil,
		"record_bytes": codec.RecordSize,
	})
}

// handleDecode decodes a hex datagram into its packet fields
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req DecodeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		s.metrics.RecordCodecOperation("decode", false, time.Since(start))
		sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}

	data, err := codec.ParseHex(req.Hex)
	if err != nil {
		s.metrics.RecordCodecOperation("decode", false, time.Since(start))
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	msg, err := codec.Describe(data)
	if err != nil {
		s.metrics.RecordCodecOperation("decode", false, time.Since(start))
		sendError(w, err.Error(), statusForError(err))
		return
	}

	s.metrics.RecordCodecOperation("decode", true, time.Since(start))
	sendSuccess(w, msg)
}

// handleEncode encodes a gamestate tuple or a companion packet
func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req EncodeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		s.metrics.RecordCodecOperation("encode", false, time.Since(start))
		sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}

	var (
		kind codec.Kind
		data []byte
		err  error
	)
	switch {
	case req.Input != nil:
		kind, data = codec.KindInput, codec.EncodeInput(*req.Input)
	case req.Whoami != nil:
		kind, data = codec.KindWhoami, codec.EncodeWhoami(*req.Whoami)
	default:
		kind = codec.KindGamestate
		data, err = s.codec.EncodeValues(req.Values...)
	}
	if err != nil {
		s.metrics.RecordCodecOperation("encode", false, time.Since(start))
		sendError(w, err.Error(), statusForError(err))
		return
	}

	s.metrics.RecordCodecOperation("encode", true, time.Since(start))
	sendSuccess(w, EncodeResponse{
		Kind: kind.String(),
		Hex:  codec.FormatHex(data),
		Size: len(data),
	})
}

func (s *Server) handleListCaptures(w http.ResponseWriter, r *http.Request) {
	if s.captures == nil {
		sendError(w, "Capture storage is disabled", http.StatusNotFound)
		return
	}

	limit := defaultCaptureLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			sendError(w, fmt.Sprintf("Invalid limit: %q", v), http.StatusBadRequest)
			return
		}
		switch {
		case n == 0:
			// keep the default; List treats 0 as unbounded
		case n > maxCaptureLimit:
			limit = maxCaptureLimit
		default:
			limit = n
		}
	}

	captures, err := s.captures.List(limit)
	if err != nil {
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	views := make([]CaptureView, 0, len(captures))
	for _, c := range captures {
		views = append(views, newCaptureView(c))
	}
	sendSuccess(w, views)
}

func (s *Server) handleGetCapture(w http.ResponseWriter, r *http.Request) {
	if s.captures == nil {
		sendError(w, "Capture storage is disabled", http.StatusNotFound)
		return
	}

	id, err := ksuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, "Invalid capture id", http.StatusBadRequest)
		return
	}

	c, err := s.captures.Get(id)
	if errors.Is(err, storage.ErrNotFound) {
		sendError(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sendSuccess(w, newCaptureView(c))
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.stream == nil {
		sendError(w, "Live stream is disabled", http.StatusNotFound)
		return
	}
	s.stream.ServeHTTP(w, r)
}

func newCaptureView(c *storage.Capture) CaptureView {
	v := CaptureView{
		ID:         c.ID.String(),
		ReceivedAt: c.ReceivedAt,
		Source:     c.Source,
		Kind:       c.Kind,
		Hex:        codec.FormatHex(c.Payload),
	}
	msg, err := codec.Describe(c.Payload)
	if err != nil {
		v.Error = err.Error()
	} else {
		v.Message = msg
	}
	return v
}

func statusForError(err error) int {
	if errors.Is(err, codec.ErrFormat) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
