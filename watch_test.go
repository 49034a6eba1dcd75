// FILE: lixenwraith/datacast/watch_test.go
package datacast

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastWatchOptions() WatchOptions {
	return WatchOptions{
		PollInterval: 100 * time.Millisecond,
		Debounce:     50 * time.Millisecond,
		MaxWatchers:  10,
	}
}

func watchSchema() *Schema {
	return MustSchema(
		Required("server.port", Int),
		Optional("server.host", "localhost", String),
		Optional("enabled", false, ParseBool),
	)
}

func TestWatchFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "input.toml")

	initial := "enabled = \"yes\"\n[server]\nport = 8080\n"
	require.NoError(t, os.WriteFile(path, []byte(initial), 0644))

	w, err := WatchFile(path, watchSchema(), fastWatchOptions())
	require.NoError(t, err)
	defer w.Stop()

	port, err := w.Current().Int64("server.port")
	require.NoError(t, err)
	assert.Equal(t, int64(8080), port)

	changes := w.Subscribe()

	var mu sync.Mutex
	changed := make(map[string]bool)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for name := range changes {
			mu.Lock()
			changed[name] = true
			mu.Unlock()
		}
	}()

	// Ensure the modification is observable through size as well as mtime
	updated := "enabled = \"off\"\n[server]\nport = 9090\nhost = \"example.com\"\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return changed["server.port"] && changed["server.host"] && changed["enabled"]
	}, 3*time.Second, 50*time.Millisecond)

	current := w.Current()
	port, _ = current.Int64("server.port")
	assert.Equal(t, int64(9090), port)
	host, _ := current.String("server.host")
	assert.Equal(t, "example.com", host)
	enabled, _ := current.Bool("enabled")
	assert.False(t, enabled)
	assert.NoError(t, w.Err())

	w.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("subscriber channel not closed after Stop")
	}
	assert.False(t, w.IsWatching())
}

func TestWatchFileReloadError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 1\n"), 0644))

	w, err := WatchFile(path, watchSchema(), fastWatchOptions())
	require.NoError(t, err)
	defer w.Stop()
	changes := w.Subscribe()

	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = \"not a number\"\n"), 0644))

	select {
	case event := <-changes:
		assert.True(t, strings.HasPrefix(event, EventReloadError), event)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload error event")
	}

	assert.ErrorIs(t, w.Err(), ErrCast)
	port, _ := w.Current().Int64("server.port")
	assert.Equal(t, int64(1), port, "previous result kept")
}

func TestWatchFileDeleted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 1\n"), 0644))

	w, err := WatchFile(path, watchSchema(), fastWatchOptions())
	require.NoError(t, err)
	defer w.Stop()
	changes := w.Subscribe()

	require.NoError(t, os.Remove(path))

	select {
	case event := <-changes:
		assert.Equal(t, EventFileDeleted, event)
	case <-time.After(3 * time.Second):
		t.Fatal("no deletion event")
	}
}

func TestWatchFileInitialCastMustSucceed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nhost = \"h\"\n"), 0644))

	_, err := WatchFile(path, watchSchema(), fastWatchOptions())
	assert.ErrorIs(t, err, ErrRequiredField)

	_, err = WatchFile(filepath.Join(t.TempDir(), "absent.toml"), watchSchema(), fastWatchOptions())
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestWatchSubscriberLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 1\n"), 0644))

	opts := fastWatchOptions()
	opts.MaxWatchers = 2
	w, err := WatchFile(path, watchSchema(), opts)
	require.NoError(t, err)
	defer w.Stop()

	w.Subscribe()
	w.Subscribe()
	assert.Equal(t, 2, w.SubscriberCount())

	overflow := w.Subscribe()
	_, open := <-overflow
	assert.False(t, open, "channel beyond the limit is closed")
	assert.Equal(t, 2, w.SubscriberCount())
}

func TestWatchOptionsDefaults(t *testing.T) {
	opts := DefaultWatchOptions()
	assert.Equal(t, DefaultPollInterval, opts.PollInterval)
	assert.Equal(t, DefaultDebounce, opts.Debounce)
	assert.Equal(t, DefaultMaxWatchers, opts.MaxWatchers)
	assert.Equal(t, DefaultReloadTimeout, opts.ReloadTimeout)

	path := filepath.Join(t.TempDir(), "input.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 1\n"), 0644))

	w, err := WatchFile(path, watchSchema(), WatchOptions{PollInterval: time.Millisecond})
	require.NoError(t, err)
	defer w.Stop()
	assert.Equal(t, MinPollInterval, w.opts.PollInterval)
	assert.Equal(t, DefaultMaxWatchers, w.opts.MaxWatchers)
}
