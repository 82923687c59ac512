package observer

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeCallback is called once per burst of changes to a watched file
type ChangeCallback func(path string)

// FileWatcher reports writes to a set of files. It watches the parent
// directories so files replaced by rename (as editors and generators
// do) keep being tracked.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	callback ChangeCallback
	debounce time.Duration
	logger   *slog.Logger

	files   map[string]struct{}
	dirs    map[string]struct{}
	pending map[string]struct{}
	timer   *time.Timer
	mu      sync.Mutex

	cancel context.CancelFunc
}

// NewFileWatcher creates a new watcher
func NewFileWatcher(callback ChangeCallback, logger *slog.Logger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &FileWatcher{
		watcher:  watcher,
		callback: callback,
		debounce: 500 * time.Millisecond,
		logger:   logger,
		files:    make(map[string]struct{}),
		dirs:     make(map[string]struct{}),
		pending:  make(map[string]struct{}),
	}, nil
}

// SetDebounce changes the quiet period before the callback fires
func (fw *FileWatcher) SetDebounce(d time.Duration) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.debounce = d
}

// Add starts watching path
func (fw *FileWatcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if _, exists := fw.files[abs]; exists {
		return nil
	}

	dir := filepath.Dir(abs)
	if _, exists := fw.dirs[dir]; !exists {
		if err := fw.watcher.Add(dir); err != nil {
			return err
		}
		fw.dirs[dir] = struct{}{}
	}

	fw.files[abs] = struct{}{}
	return nil
}

// Start begins watching for file changes
func (fw *FileWatcher) Start(ctx context.Context) {
	ctx, fw.cancel = context.WithCancel(ctx)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fw.watcher.Events:
				if !ok {
					return
				}
				fw.handleEvent(event)
			case err, ok := <-fw.watcher.Errors:
				if !ok {
					return
				}
				fw.logger.Warn("watch error", "err", err)
			}
		}
	}()
}

// Stop stops watching for file changes
func (fw *FileWatcher) Stop() {
	if fw.cancel != nil {
		fw.cancel()
	}
	fw.watcher.Close()

	fw.mu.Lock()
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.mu.Unlock()
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	// Only care about writes and creates
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	name, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if _, watched := fw.files[name]; !watched {
		return
	}
	fw.pending[name] = struct{}{}

	// Reset or start debounce timer
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(fw.debounce, fw.flush)
}

func (fw *FileWatcher) flush() {
	fw.mu.Lock()
	pending := fw.pending
	fw.pending = make(map[string]struct{})
	fw.mu.Unlock()

	if fw.callback == nil {
		return
	}
	for path := range pending {
		fw.callback(path)
	}
}
