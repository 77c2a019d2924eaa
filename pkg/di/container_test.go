package di

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/gamestate/pkg/api"
	"github.com/ssargent/gamestate/pkg/storage"
)

type fakeStarter struct{ calls int }

func (f *fakeStarter) StartServer(ctx context.Context, s *api.Server, logger *slog.Logger) error {
	f.calls++
	return nil
}

func TestNewContainer(t *testing.T) {
	c := NewContainer()

	require.NotNil(t, c.Registry())
	assert.IsType(t, &api.DefaultServerStarter{}, c.GetServerStarter())

	store, err := c.OpenStore(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}

func TestContainerOverrides(t *testing.T) {
	c := NewContainer()

	c.SetStoreOpener(func(dir string) (*storage.CaptureStore, error) {
		return nil, errors.New("disk on fire")
	})
	_, err := c.OpenStore("ignored")
	assert.EqualError(t, err, "disk on fire")

	starter := &fakeStarter{}
	c.SetServerStarter(starter)
	require.NoError(t, c.GetServerStarter().StartServer(context.Background(), nil, nil))
	assert.Equal(t, 1, starter.calls)
}
