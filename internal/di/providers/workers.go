package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/bookbuddy/bookbuddy-server/internal/config"
	"github.com/bookbuddy/bookbuddy-server/internal/logger"
	"github.com/bookbuddy/bookbuddy-server/internal/media/covers"
	"github.com/bookbuddy/bookbuddy-server/internal/service"
)

// sessionCleanupInterval is how often expired sessions are purged.
const sessionCleanupInterval = time.Hour

// CoverWorkerHandle wraps the cover placeholder worker. Worker is nil when
// cover fetching is disabled.
type CoverWorkerHandle struct {
	*covers.Worker
}

// Shutdown implements do.Shutdownable.
func (h *CoverWorkerHandle) Shutdown() error {
	if h.Worker != nil {
		h.Stop()
	}
	return nil
}

// ProvideCoverWorker provides the background BlurHash worker.
func ProvideCoverWorker(i do.Injector) (*CoverWorkerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Catalog.FetchCovers {
		log.Info("Cover placeholders disabled by configuration")
		return &CoverWorkerHandle{}, nil
	}

	w := covers.NewWorker(covers.NewFetcher(), storeHandle.Store, log.Logger)
	w.Start(context.Background())

	log.Info("Cover worker started")

	return &CoverWorkerHandle{Worker: w}, nil
}

// ImportWatcherHandle wraps the catalog import watcher. Watcher is nil when no
// import directory is configured.
type ImportWatcherHandle struct {
	*service.ImportWatcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *ImportWatcherHandle) Shutdown() error {
	if h.ImportWatcher == nil {
		return nil
	}
	h.cancel()
	return h.Stop()
}

// ProvideImportWatcher provides the watcher that imports catalog JSON files.
func ProvideImportWatcher(i do.Injector) (*ImportWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	bookService := do.MustInvoke[*service.BookService](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Catalog.ImportDir == "" {
		log.Info("Catalog import directory not configured")
		return &ImportWatcherHandle{}, nil
	}

	iw, err := service.NewImportWatcher(cfg.Catalog.ImportDir, bookService, log.Logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	iw.Start(ctx)

	return &ImportWatcherHandle{ImportWatcher: iw, cancel: cancel}, nil
}

// SessionCleanupJob runs periodic session cleanup.
type SessionCleanupJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *SessionCleanupJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideSessionCleanupJob provides the periodic session cleanup job.
func ProvideSessionCleanupJob(i do.Injector) (*SessionCleanupJob, error) {
	sessionService := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(sessionCleanupInterval)
		defer ticker.Stop()

		// Initial cleanup on startup
		if count, err := sessionService.DeleteExpiredSessions(ctx); err != nil {
			log.Warn("Initial session cleanup failed", "error", err)
		} else if count > 0 {
			log.Info("Initial session cleanup completed", "deleted", count)
		}

		for {
			select {
			case <-ticker.C:
				if count, err := sessionService.DeleteExpiredSessions(ctx); err != nil {
					log.Warn("Session cleanup failed", "error", err)
				} else if count > 0 {
					log.Info("Session cleanup completed", "deleted", count)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Session cleanup job started")

	return &SessionCleanupJob{cancel: cancel}, nil
}

// SeedCatalogIfConfigured inserts the sample catalog when seeding on start is enabled.
func SeedCatalogIfConfigured(i do.Injector) {
	cfg := do.MustInvoke[*config.Config](i)
	if !cfg.Catalog.SeedOnStart {
		return
	}

	bookService := do.MustInvoke[*service.BookService](i)
	log := do.MustInvoke[*logger.Logger](i)

	if _, err := bookService.SeedBooks(context.Background()); err != nil {
		log.Error("Failed to seed sample catalog", "error", err)
	}
}
