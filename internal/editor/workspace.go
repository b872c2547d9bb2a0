package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/at-ishikawa/outliner/internal/autosave"
	"github.com/at-ishikawa/outliner/internal/note"
	"github.com/at-ishikawa/outliner/internal/outline"
)

// ErrStaleLoad is returned by Open when another note was selected while the load was running.
var ErrStaleLoad = errors.New("note is no longer selected")

// Workspace tracks the selected note of one user and its editing session.
type Workspace struct {
	store  note.Repository
	engine *outline.Engine
	userID string
	opts   []autosave.Option
	now    func() time.Time
	newID  func() string

	mu       sync.Mutex
	selected string
	session  *Session
}

func NewWorkspace(store note.Repository, engine *outline.Engine, userID string, opts ...autosave.Option) *Workspace {
	return &Workspace{
		store:  store,
		engine: engine,
		userID: userID,
		opts:   opts,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Open selects noteID, closes the previous session and loads the note. A note that cannot be
// loaded is replaced by a fresh one with a single empty node.
func (w *Workspace) Open(ctx context.Context, noteID string) (*Session, error) {
	w.mu.Lock()
	w.selected = noteID
	previous := w.session
	w.session = nil
	w.mu.Unlock()

	if previous != nil {
		if err := previous.Close(ctx); err != nil {
			slog.Default().Warn("saving the previous note failed", "error", err)
		}
	}

	loaded, err := w.store.LoadNote(ctx, w.userID, noteID)
	if err != nil {
		if errors.Is(err, note.ErrNotFound) {
			slog.Default().Info("note not found, starting a new one", "noteID", noteID)
		} else {
			slog.Default().Warn("loading note failed, starting a new one", "noteID", noteID, "error", err)
		}
		loaded = note.New(noteID, w.userID, "", w.engine, w.now())
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.selected != noteID {
		return nil, fmt.Errorf("open %s: %w", noteID, ErrStaleLoad)
	}
	w.session = NewSession(loaded, w.userID, w.store, w.engine, w.opts...)
	return w.session, nil
}

// Create starts a new note, saves it and selects it.
func (w *Workspace) Create(ctx context.Context, title string) (*Session, error) {
	n := note.New(w.newID(), w.userID, title, w.engine, w.now())
	if err := w.store.SaveNote(ctx, w.userID, n.ID, n); err != nil {
		return nil, fmt.Errorf("store.SaveNote(%s) > %w", n.ID, err)
	}

	w.mu.Lock()
	w.selected = n.ID
	previous := w.session
	w.session = NewSession(n, w.userID, w.store, w.engine, w.opts...)
	session := w.session
	w.mu.Unlock()

	if previous != nil {
		if err := previous.Close(ctx); err != nil {
			slog.Default().Warn("saving the previous note failed", "error", err)
		}
	}
	return session, nil
}

// Current returns the open session, or nil.
func (w *Workspace) Current() *Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session
}

// Close flushes the open session.
func (w *Workspace) Close(ctx context.Context) error {
	w.mu.Lock()
	session := w.session
	w.session = nil
	w.selected = ""
	w.mu.Unlock()

	if session == nil {
		return nil
	}
	return session.Close(ctx)
}
