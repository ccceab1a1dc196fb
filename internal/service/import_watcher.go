package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/bookbuddy/bookbuddy-server/internal/watcher"
)

// Suffixes appended to a processed import file.
const (
	importedSuffix = ".imported"
	failedSuffix   = ".failed"
)

// ImportWatcher imports catalog files dropped into a directory.
// Each processed file is renamed so it is never imported twice.
type ImportWatcher struct {
	dir     string
	books   *BookService
	watcher *watcher.Watcher
	logger  *slog.Logger

	stop     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewImportWatcher watches dir for *.json files. The directory is created if missing.
func NewImportWatcher(dir string, books *BookService, logger *slog.Logger) (*ImportWatcher, error) {
	logger = loggerOrDiscard(logger)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create import dir: %w", err)
	}

	w, err := watcher.New(logger, watcher.Options{Include: []string{"*.json"}})
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Watch(dir); err != nil {
		_ = w.Stop()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &ImportWatcher{
		dir:     dir,
		books:   books,
		watcher: w,
		logger:  logger,
		stop:    make(chan struct{}),
	}, nil
}

// Start imports files already waiting in the directory, then follows new ones
// until ctx ends or Stop is called.
func (iw *ImportWatcher) Start(ctx context.Context) {
	iw.importPending(ctx)

	iw.wg.Add(2)
	go func() {
		defer iw.wg.Done()
		if err := iw.watcher.Start(ctx); err != nil {
			iw.logger.Error("Import watcher stopped", "error", err)
		}
	}()
	go func() {
		defer iw.wg.Done()
		iw.loop(ctx)
	}()

	iw.logger.Info("Watching catalog import directory", "dir", iw.dir)
}

// Stop ends watching and waits for the in-flight import.
func (iw *ImportWatcher) Stop() error {
	var err error
	iw.stopOnce.Do(func() {
		close(iw.stop)
		err = iw.watcher.Stop()
		iw.wg.Wait()
	})
	return err
}

func (iw *ImportWatcher) loop(ctx context.Context) {
	events := iw.watcher.Events()
	errs := iw.watcher.Errors()
	for {
		select {
		case <-ctx.Done():
			return
		case <-iw.stop:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Type == watcher.EventAdded {
				iw.importFile(ctx, ev.Path)
			}
		case err, ok := <-errs:
			if !ok {
				return
			}
			iw.logger.Warn("Import watcher error", "error", err)
		}
	}
}

func (iw *ImportWatcher) importPending(ctx context.Context) {
	matches, err := filepath.Glob(filepath.Join(iw.dir, "*.json"))
	if err != nil {
		iw.logger.Warn("Listing pending imports failed", "error", err)
		return
	}
	for _, path := range matches {
		iw.importFile(ctx, path)
	}
}

func (iw *ImportWatcher) importFile(ctx context.Context, path string) {
	suffix := importedSuffix
	if _, err := iw.books.ImportFile(ctx, path); err != nil {
		iw.logger.Error("Catalog import failed", "path", path, "error", err)
		suffix = failedSuffix
	}

	if err := os.Rename(path, path+suffix); err != nil {
		iw.logger.Warn("Could not mark import file as processed", "path", path, "error", err)
	}
}
