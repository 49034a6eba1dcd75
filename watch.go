// FILE: lixenwraith/datacast/watch.go
package datacast

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

const DefaultMaxWatchers = 100 // Prevent resource exhaustion

// Watch events sent to subscribers besides changed field names
const (
	EventFileDeleted   = "file_deleted"
	EventReloadError   = "reload_error"
	EventReloadTimeout = "reload_timeout"
)

// WatchOptions configures input file watching behavior
type WatchOptions struct {
	// PollInterval for file stat checks (minimum 100ms)
	PollInterval time.Duration

	// Debounce duration to avoid rapid reloads
	Debounce time.Duration

	// MaxWatchers limits concurrent subscriber channels
	MaxWatchers int

	// ReloadTimeout for file reload operations
	ReloadTimeout time.Duration
}

// DefaultWatchOptions returns sensible defaults for file watching
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		PollInterval:  DefaultPollInterval,
		Debounce:      DefaultDebounce,
		MaxWatchers:   DefaultMaxWatchers,
		ReloadTimeout: DefaultReloadTimeout,
	}
}

// Watcher keeps the cast of an input document current.
// When the file changes it is read and cast again; subscribers receive the
// names of the fields whose values changed. A failed cast keeps the previous result.
type Watcher struct {
	mu               sync.RWMutex
	ctx              context.Context
	cancel           context.CancelFunc
	opts             WatchOptions
	filePath         string
	processor        *Processor
	current          *Config
	lastErr          error
	lastModTime      time.Time
	lastSize         int64
	watching         atomic.Bool
	reloadInProgress atomic.Bool
	subscribers      map[int64]chan string
	subscriberID     atomic.Int64
	debounceTimer    *time.Timer
}

// WatchFile casts the document at path against schema and keeps watching it.
// The initial cast must succeed.
func WatchFile(path string, schema *Schema, opts WatchOptions, castOpts ...CastOption) (*Watcher, error) {
	if opts.PollInterval < MinPollInterval {
		opts.PollInterval = MinPollInterval
	}
	if opts.MaxWatchers <= 0 {
		opts.MaxWatchers = DefaultMaxWatchers
	}
	if opts.ReloadTimeout <= 0 {
		opts.ReloadTimeout = DefaultReloadTimeout
	}

	processor, err := NewProcessor(schema, castOpts...)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		opts:        opts,
		filePath:    path,
		processor:   processor,
		subscribers: make(map[int64]chan string),
	}

	cfg, err := w.cast()
	if err != nil {
		return nil, err
	}
	w.current = cfg

	if info, err := os.Stat(path); err == nil {
		w.lastModTime = info.ModTime()
		w.lastSize = info.Size()
	}

	w.ctx, w.cancel = context.WithCancel(context.Background())
	go w.watchLoop()

	return w, nil
}

// Current returns the latest successful cast
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Err returns the error of the latest reload, nil if it succeeded
func (w *Watcher) Err() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastErr
}

// IsWatching returns true while the watch loop runs
func (w *Watcher) IsWatching() bool {
	return w.watching.Load()
}

// SubscriberCount returns the number of active subscriber channels
func (w *Watcher) SubscriberCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.subscribers)
}

// cast reads the file and runs the processor
func (w *Watcher) cast() (*Config, error) {
	input, err := LoadInputFile(w.filePath)
	if err != nil {
		return nil, err
	}
	result, err := w.processor.Run(input)
	if err != nil {
		return nil, err
	}
	return FromResult(result), nil
}

// watchLoop is the main file watching loop
func (w *Watcher) watchLoop() {
	if !w.watching.CompareAndSwap(false, true) {
		return // Already watching
	}
	defer w.watching.Store(false)

	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.checkAndReload()
		}
	}
}

// checkAndReload checks if file changed and triggers reload
func (w *Watcher) checkAndReload() {
	info, err := os.Stat(w.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			w.notify(EventFileDeleted)
		}
		return
	}

	if info.ModTime().Equal(w.lastModTime) && info.Size() == w.lastSize {
		return
	}
	w.lastModTime = info.ModTime()
	w.lastSize = info.Size()

	// Debounce rapid changes
	w.mu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.opts.Debounce, w.performReload)
	w.mu.Unlock()
}

// performReload casts the file again and notifies the changed field names
func (w *Watcher) performReload() {
	// Prevent concurrent reloads
	if !w.reloadInProgress.CompareAndSwap(false, true) {
		return
	}
	defer w.reloadInProgress.Store(false)

	ctx, cancel := context.WithTimeout(w.ctx, w.opts.ReloadTimeout)
	defer cancel()

	type outcome struct {
		cfg *Config
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		cfg, err := w.cast()
		done <- outcome{cfg, err}
	}()

	select {
	case out := <-done:
		w.mu.Lock()
		w.lastErr = out.err
		previous := w.current
		if out.err == nil {
			w.current = out.cfg
		}
		w.mu.Unlock()

		if out.err != nil {
			w.notify(fmt.Sprintf("%s:%v", EventReloadError, out.err))
			return
		}
		for _, name := range out.cfg.Diff(previous) {
			w.notify(name)
		}

	case <-ctx.Done():
		if w.ctx.Err() != nil {
			return // Stopped
		}
		w.mu.Lock()
		w.lastErr = fmt.Errorf("reload of %s timed out", w.filePath)
		w.mu.Unlock()
		w.notify(EventReloadTimeout)
	}
}

// Subscribe returns a channel receiving changed field names and watch events.
// The channel is closed when the watcher stops.
func (w *Watcher) Subscribe() <-chan string {
	w.mu.Lock()
	defer w.mu.Unlock()

	// Return closed channel to prevent resource exhaustion
	if len(w.subscribers) >= w.opts.MaxWatchers || w.ctx.Err() != nil {
		ch := make(chan string)
		close(ch)
		return ch
	}

	// Buffered to prevent blocking
	ch := make(chan string, 10)
	id := w.subscriberID.Add(1)
	w.subscribers[id] = ch

	go func() {
		<-w.ctx.Done()
		w.mu.Lock()
		delete(w.subscribers, id)
		close(ch)
		w.mu.Unlock()
	}()

	return ch
}

// notify sends a notification to all subscribers, dropping it for full channels
func (w *Watcher) notify(event string) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, ch := range w.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// Stop terminates the watcher and closes all subscriber channels
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}

	w.mu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.mu.Unlock()

	// Wait for watch loop to exit with timeout
	deadline := time.Now().Add(ShutdownTimeout)
	for w.watching.Load() && time.Now().Before(deadline) {
		time.Sleep(SpinWaitInterval)
	}
}
