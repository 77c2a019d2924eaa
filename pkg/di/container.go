// Package di provides dependency injection container
package di

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ssargent/gamestate/pkg/api"
	"github.com/ssargent/gamestate/pkg/storage"
)

// StoreOpener opens the capture store rooted at dir
type StoreOpener func(dir string) (*storage.CaptureStore, error)

// Container holds all the dependencies for the application
type Container struct {
	registry      *prometheus.Registry
	storeOpener   StoreOpener
	serverStarter api.ServerStarter
}

// NewContainer creates a new dependency injection container with a fresh
// metrics registry
func NewContainer() *Container {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Container{
		registry:      registry,
		storeOpener:   storage.Open,
		serverStarter: api.NewServerStarter(),
	}
}

// Registry returns the registry every collector is registered with
func (c *Container) Registry() *prometheus.Registry {
	return c.registry
}

// OpenStore opens the capture store through the configured opener
func (c *Container) OpenStore(dir string) (*storage.CaptureStore, error) {
	return c.storeOpener(dir)
}

// GetServerStarter returns the server starter
func (c *Container) GetServerStarter() api.ServerStarter {
	return c.serverStarter
}

// SetStoreOpener allows overriding the store opener (for testing)
func (c *Container) SetStoreOpener(opener StoreOpener) {
	c.storeOpener = opener
}

// SetServerStarter allows overriding the server starter (for testing)
func (c *Container) SetServerStarter(starter api.ServerStarter) {
	c.serverStarter = starter
}
