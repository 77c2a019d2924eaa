package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ssargent/gamestate/pkg/codec"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// DecodeRequest carries a datagram as a hex dump
type DecodeRequest struct {
	Hex string `json:"hex"`
}

// EncodeRequest carries exactly one packet to encode. Values is the flat
// gamestate tuple; Input and Whoami select the companion packets instead.
type EncodeRequest struct {
	Values []int               `json:"values,omitempty"`
	Input  *codec.InputPacket  `json:"input,omitempty"`
	Whoami *codec.WhoamiPacket `json:"whoami,omitempty"`
}

// EncodeResponse is the wire form of an encoded packet
type EncodeResponse struct {
	Kind string `json:"kind"`
	Hex  string `json:"hex"`
	Size int    `json:"size"`
}

// CaptureView is a stored capture with its payload decoded where possible
type CaptureView struct {
	ID         string         `json:"id"`
	ReceivedAt time.Time      `json:"received_at"`
	Source     string         `json:"source"`
	Kind       string         `json:"kind"`
	Hex        string         `json:"hex"`
	Message    *codec.Message `json:"message,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Addr     string
	APIKey   string              // empty disables the X-API-Key check
	Gatherer prometheus.Gatherer // source for /metrics; defaults to prometheus.DefaultGatherer
}
