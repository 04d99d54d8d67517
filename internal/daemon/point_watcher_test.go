package daemon

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pointwatch/internal/daemon/events"
)

func TestPointFileWatcherCloseIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.yaml")
	w, err := NewPointFileWatcher(path, events.NewBus())
	require.NoError(t, err)

	// Run's deferred close and the daemon teardown close may both fire.
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}
