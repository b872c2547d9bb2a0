// Package note provides the note and notebook domain models and the persistence service
// the editor saves them through.
package note

//go:generate mockgen -source=note.go -destination=../mocks/note/mock_repository.go -package=mock_note

import (
	"context"
	"errors"
	"time"

	"github.com/at-ishikawa/outliner/internal/outline"
)

// ErrNotFound is returned when a note or notebook does not exist for the user.
var ErrNotFound = errors.New("not found")

// Note is the persisted aggregate: metadata plus the whole outline forest.
type Note struct {
	ID     string `json:"id" yaml:"id"`
	UserID string `json:"userId" yaml:"user_id"`
	Title  string `json:"title" yaml:"title"`
	// NotebookID is a weak reference; empty means the note is not in a notebook.
	NotebookID string         `json:"notebookId,omitempty" yaml:"notebook_id,omitempty"`
	Tags       []string       `json:"tags" yaml:"tags"`
	RootNodes  outline.Forest `json:"rootNodes" yaml:"root_nodes"`
	CreatedAt  time.Time      `json:"createdAt" yaml:"created_at"`
	UpdatedAt  time.Time      `json:"updatedAt" yaml:"updated_at"`
}

// Notebook groups notes by label. Deleting one never touches its notes.
type Notebook struct {
	ID        string    `db:"id" json:"id" yaml:"id"`
	UserID    string    `db:"user_id" json:"userId" yaml:"user_id"`
	Name      string    `db:"name" json:"name" yaml:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt" yaml:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt" yaml:"updated_at"`
}

// MetaPatch is a partial metadata update. Nil fields are left alone.
type MetaPatch struct {
	Title *string `json:"title,omitempty"`
	// Tags replaces the tag set when SetTags is true, so an empty set can be written.
	Tags    []string `json:"tags,omitempty"`
	SetTags bool     `json:"setTags,omitempty"`
	// NotebookID set to "" removes the note from its notebook.
	NotebookID *string `json:"notebookId,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p MetaPatch) Empty() bool {
	return p.Title == nil && !p.SetTags && p.NotebookID == nil
}

// Apply writes the patch into n.
func (p MetaPatch) Apply(n *Note) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.SetTags {
		n.Tags = NormalizeTags(p.Tags)
	}
	if p.NotebookID != nil {
		n.NotebookID = *p.NotebookID
	}
}

// New returns a note holding one empty node.
func New(id, userID, title string, engine *outline.Engine, now time.Time) *Note {
	return &Note{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Tags:      []string{},
		RootNodes: engine.NewForest(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Normalize restores the invariants of data coming from storage or the network: the forest
// is never empty and tags are a set.
func (n *Note) Normalize(engine *outline.Engine) {
	n.RootNodes = n.RootNodes.Normalize()
	if len(n.RootNodes) == 0 {
		n.RootNodes = engine.NewForest()
	}
	n.Tags = NormalizeTags(n.Tags)
}

// NormalizeTags drops empty and duplicate tags, keeping the first occurrence order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// Repository is the persistence service. Every call is partitioned by the user id.
type Repository interface {
	LoadNote(ctx context.Context, userID, noteID string) (*Note, error)
	// SaveNote overwrites the whole note; the last write wins.
	SaveNote(ctx context.Context, userID, noteID string, n *Note) error
	UpdateNoteMeta(ctx context.Context, userID, noteID string, patch MetaPatch) error
	DeleteNote(ctx context.Context, userID, noteID string) error
	ListNotes(ctx context.Context, userID string) ([]Note, error)
	ListNotebooks(ctx context.Context, userID string) ([]Notebook, error)
	CreateNotebook(ctx context.Context, userID, name string) (*Notebook, error)
	DeleteNotebook(ctx context.Context, userID, notebookID string) error
}
