package providers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/bookbuddy/bookbuddy-server/internal/config"
	"github.com/bookbuddy/bookbuddy-server/internal/logger"
	"github.com/bookbuddy/bookbuddy-server/internal/store"
	"github.com/bookbuddy/bookbuddy-server/internal/store/sqlite"
)

// StoreHandle wraps the relational store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the SQLite store for users, books, reviews, lists and orders.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Data.BasePath, 0o750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.Data.BasePath, "bookbuddy.db")
	db, err := sqlite.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// ChatStoreHandle wraps the chat session store with shutdown capability.
type ChatStoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *ChatStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideChatStore provides the Badger store holding chat sessions.
func ProvideChatStore(i do.Injector) (*ChatStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	path := filepath.Join(cfg.Data.BasePath, "chat")
	chats, err := store.New(path, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Chat store initialized", "path", path)

	return &ChatStoreHandle{Store: chats}, nil
}
