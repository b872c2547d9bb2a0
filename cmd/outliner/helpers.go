package main

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/outliner/internal/autosave"
	"github.com/at-ishikawa/outliner/internal/config"
	"github.com/at-ishikawa/outliner/internal/database"
	"github.com/at-ishikawa/outliner/internal/editor"
	"github.com/at-ishikawa/outliner/internal/note"
	"github.com/at-ishikawa/outliner/internal/outline"
)

// defaultUserID partitions the notes of a single-user installation.
const defaultUserID = "local"

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

// app holds what every note command needs.
type app struct {
	cfg    *config.Config
	engine *outline.Engine
	store  note.Repository
	userID string
	db     *sqlx.DB
}

func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	var db *sqlx.DB
	if cfg.Store.Driver == config.StoreDriverMySQL {
		if db, err = database.Open(cfg.Database); err != nil {
			return nil, fmt.Errorf("database.Open() > %w", err)
		}
	}
	engine := editor.NewEngine()
	store, err := note.NewRepository(cfg.Store, db, engine)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, fmt.Errorf("note.NewRepository() > %w", err)
	}

	userID := cfg.Editor.UserID
	if userID == "" {
		userID = defaultUserID
	}
	return &app{cfg: cfg, engine: engine, store: store, userID: userID, db: db}, nil
}

func (a *app) workspace() *editor.Workspace {
	return editor.NewWorkspace(a.store, a.engine, a.userID, autosave.WithDelay(a.cfg.Editor.SaveDebounce()))
}

func (a *app) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
