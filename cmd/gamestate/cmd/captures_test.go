package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/gamestate/pkg/di"
	"github.com/ssargent/gamestate/pkg/storage"
)

func seedCaptures(t *testing.T, dir string) []*storage.Capture {
	t.Helper()

	store, err := storage.Open(dir)
	require.NoError(t, err)
	defer store.Close()

	whoami, err := store.Put("127.0.0.1:40000", "whoami", []byte{0x01}, time.Now())
	require.NoError(t, err)
	input, err := store.Put("127.0.0.1:40000", "input", []byte{0x00, 0x01}, time.Now())
	require.NoError(t, err)

	return []*storage.Capture{whoami, input}
}

func TestCapturesCommands(t *testing.T) {
	SetContainer(di.NewContainer())
	defer SetContainer(nil)

	dataDir := t.TempDir()
	seeded := seedCaptures(t, dataDir)

	t.Run("list", func(t *testing.T) {
		out, err := executeCommand(t, "captures", "list", "--data-dir", dataDir)
		require.NoError(t, err)
		assert.Contains(t, out, seeded[0].ID.String())
		assert.Contains(t, out, seeded[1].ID.String())
		assert.Contains(t, out, "00 01")
	})

	t.Run("list with limit", func(t *testing.T) {
		out, err := executeCommand(t, "captures", "list", "--data-dir", dataDir, "--limit", "1")
		require.NoError(t, err)
		assert.NotContains(t, out, seeded[0].ID.String())
		assert.Contains(t, out, seeded[1].ID.String())
	})

	t.Run("show", func(t *testing.T) {
		out, err := executeCommand(t, "captures", "show", seeded[0].ID.String(), "--data-dir", dataDir)
		require.NoError(t, err)
		assert.Contains(t, out, "source:   127.0.0.1:40000")
		assert.Contains(t, out, "decoded:  whoami is_server=true")
	})

	t.Run("show invalid id", func(t *testing.T) {
		_, err := executeCommand(t, "captures", "show", "nope", "--data-dir", dataDir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid capture id")
	})

	t.Run("delete", func(t *testing.T) {
		out, err := executeCommand(t, "captures", "delete", seeded[0].ID.String(), seeded[1].ID.String(), "--data-dir", dataDir)
		require.NoError(t, err)
		assert.Contains(t, out, "deleted "+seeded[0].ID.String())

		out, err = executeCommand(t, "captures", "list", "--data-dir", dataDir)
		require.NoError(t, err)
		assert.Equal(t, "no captures\n", out)
	})

	t.Run("show deleted", func(t *testing.T) {
		_, err := executeCommand(t, "captures", "show", seeded[0].ID.String(), "--data-dir", dataDir)
		require.Error(t, err)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestCapturesCommands_NoContainer(t *testing.T) {
	SetContainer(nil)

	_, err := executeCommand(t, "captures", "list", "--data-dir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dependency container not initialized")
}
