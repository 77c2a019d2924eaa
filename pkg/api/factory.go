package api

import (
	"context"
	"log/slog"
)

// ServerStarter runs an API server until its context ends
type ServerStarter interface {
	StartServer(ctx context.Context, s *Server, logger *slog.Logger) error
}

// DefaultServerStarter is the default implementation of ServerStarter
type DefaultServerStarter struct{}

// NewServerStarter creates the default server starter
func NewServerStarter() ServerStarter {
	return &DefaultServerStarter{}
}

// StartServer starts the API server and blocks until ctx is cancelled
func (DefaultServerStarter) StartServer(ctx context.Context, s *Server, logger *slog.Logger) error {
	return StartServer(ctx, s, logger)
}
