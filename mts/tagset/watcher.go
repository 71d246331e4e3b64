package tagset

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/teranos/tagx/errors"
	"github.com/teranos/tagx/logger"
)

// ReloadCallback receives the freshly loaded index after a watched file
// changes, or the load error when the files no longer parse. Exactly one of
// the two is non-nil.
type ReloadCallback func(*Index, error)

// Watcher re-loads tag-set definition files when they change on disk.
// Editor write bursts are debounced into a single reload, and reloads are
// rate limited so a runaway writer cannot spin the loader.
type Watcher struct {
	paths   []string
	watcher *fsnotify.Watcher
	limiter *rate.Limiter

	mu            sync.Mutex
	callbacks     []ReloadCallback
	debounceTimer *time.Timer

	debouncePeriod time.Duration
}

// NewWatcher watches the given tag-set files. Call Start to begin receiving
// reloads and Stop to release the underlying file watcher.
func NewWatcher(paths ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "cannot create file watcher")
	}
	w := &Watcher{
		paths:          append([]string(nil), paths...),
		watcher:        fsw,
		limiter:        rate.NewLimiter(rate.Limit(2), 2),
		debouncePeriod: 500 * time.Millisecond,
	}
	for _, path := range paths {
		if err := fsw.Add(path); err != nil {
			fsw.Close()
			return nil, errors.Wrapf(err, "cannot watch tag-set file %s", path)
		}
	}
	return w, nil
}

// SetDebounce overrides the quiet period between the last file event and
// the reload. Call before Start.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if d > 0 {
		w.debouncePeriod = d
	}
}

// OnReload registers a callback invoked after every reload attempt.
func (w *Watcher) OnReload(cb ReloadCallback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start() {
	go w.watchLoop()
}

// Stop stops watching. A pending debounced reload may still fire.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			logger.Debugw("Tag-set file changed",
				logger.FieldFile, filepath.Base(event.Name),
				"op", event.Op.String())
			w.scheduleReload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warnw("Tag-set watcher error",
				logger.FieldError, err)
		}
	}
}

// scheduleReload coalesces rapid successive events into one reload.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debouncePeriod, w.reload)
}

func (w *Watcher) reload() {
	if !w.limiter.Allow() {
		logger.Debugw("Tag-set reload rate limited",
			logger.FieldCount, len(w.paths))
		return
	}

	idx, err := Load(w.paths...)
	if err != nil {
		logger.Errorw("Tag-set reload failed",
			logger.FieldError, err)
	} else {
		logger.Infow("Tag set reloaded",
			logger.FieldCount, idx.Size(),
			"files", len(w.paths))
	}

	w.mu.Lock()
	callbacks := make([]ReloadCallback, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	for _, cb := range callbacks {
		cb(idx, err)
	}
}
