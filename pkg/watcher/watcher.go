package watcher

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches session and series files and calls back once per burst
// of writes to a file.
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	mu        sync.Mutex
	callbacks map[string]func(string)
	debounce  time.Duration
	timers    map[string]*Debouncer
	logger    *slog.Logger
	done      chan struct{}
}

// NewFileWatcher creates a new file watcher. A nil logger discards output.
func NewFileWatcher(debounce time.Duration, logger *slog.Logger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &FileWatcher{
		watcher:   watcher,
		callbacks: make(map[string]func(string)),
		debounce:  debounce,
		timers:    make(map[string]*Debouncer),
		logger:    logger,
		done:      make(chan struct{}),
	}, nil
}

// Watch registers callback for the given files. Their parent directories are
// watched so that atomic rename-on-save is seen as a create.
func (fw *FileWatcher) Watch(files []string, callback func(string)) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	for _, file := range files {
		absPath, err := filepath.Abs(file)
		if err != nil {
			return fmt.Errorf("failed to resolve path %s: %w", file, err)
		}

		if err := fw.watcher.Add(filepath.Dir(absPath)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", absPath, err)
		}

		fw.callbacks[absPath] = callback
	}

	return nil
}

// Start begins watching for file changes
func (fw *FileWatcher) Start() {
	go func() {
		defer close(fw.done)
		for {
			select {
			case event, ok := <-fw.watcher.Events:
				if !ok {
					return
				}

				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					fw.handleFileChange(event.Name)
				}

			case err, ok := <-fw.watcher.Errors:
				if !ok {
					return
				}
				fw.logger.Warn("watcher error", "error", err)
			}
		}
	}()
}

func (fw *FileWatcher) handleFileChange(filePath string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	callback, exists := fw.callbacks[filePath]
	if !exists {
		return
	}

	d, exists := fw.timers[filePath]
	if !exists {
		d = NewDebouncer(fw.debounce, func() {
			fw.logger.Debug("file changed", "path", filePath)
			callback(filePath)
		})
		fw.timers[filePath] = d
	}
	d.Trigger()
}

// Close stops the watcher and cancels pending callbacks
func (fw *FileWatcher) Close() error {
	fw.mu.Lock()
	for _, d := range fw.timers {
		d.Stop()
	}
	fw.mu.Unlock()
	return fw.watcher.Close()
}

// Done is closed when the event loop has exited
func (fw *FileWatcher) Done() <-chan struct{} {
	return fw.done
}

// RemoveAll forgets all watched files
func (fw *FileWatcher) RemoveAll() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	dirs := make(map[string]bool)
	for file := range fw.callbacks {
		dirs[filepath.Dir(file)] = true
	}
	for dir := range dirs {
		if err := fw.watcher.Remove(dir); err != nil {
			return err
		}
	}
	for _, d := range fw.timers {
		d.Stop()
	}

	fw.callbacks = make(map[string]func(string))
	fw.timers = make(map[string]*Debouncer)
	return nil
}
