package note

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/peterbourgon/diskv/v3"
	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/outliner/internal/config"
	"github.com/at-ishikawa/outliner/internal/outline"
)

const (
	notesCollection     = "notes"
	notebooksCollection = "notebooks"
	documentExtension   = ".yml"
)

// LocalRepository implements Repository on a directory of YAML documents.
// Keys look like <user>/notes/<id> and map to <base>/<user>/notes/<id>.yml.
type LocalRepository struct {
	d      *diskv.Diskv
	engine *outline.Engine
	now    func() time.Time
	newID  func() string
	// mu serializes read-modify-write cycles such as metadata patches.
	mu sync.Mutex
}

// NewLocalRepository creates a LocalRepository rooted at baseDir.
func NewLocalRepository(baseDir string, engine *outline.Engine) *LocalRepository {
	return &LocalRepository{
		d: diskv.New(diskv.Options{
			BasePath:          baseDir,
			AdvancedTransform: keyToPath,
			InverseTransform:  pathToKey,
			CacheSizeMax:      1024 * 1024,
		}),
		engine: engine,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

func keyToPath(key string) *diskv.PathKey {
	parts := strings.Split(key, "/")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1] + documentExtension,
	}
}

func pathToKey(pathKey *diskv.PathKey) string {
	return strings.Join(append(append([]string{}, pathKey.Path...), strings.TrimSuffix(pathKey.FileName, documentExtension)), "/")
}

func documentKey(userID, collection, id string) (string, error) {
	if !config.KeySafe(userID) {
		return "", fmt.Errorf("invalid user id %q", userID)
	}
	if !config.KeySafe(id) {
		return "", fmt.Errorf("invalid %s id %q", collection, id)
	}
	return userID + "/" + collection + "/" + id, nil
}

func (r *LocalRepository) read(key string, v any) error {
	if !r.d.Has(key) {
		return ErrNotFound
	}
	data, err := r.d.Read(key)
	if err != nil {
		return fmt.Errorf("diskv.Read(%s) > %w", key, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("yaml.Unmarshal(%s) > %w", key, err)
	}
	return nil
}

func (r *LocalRepository) write(key string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("yaml.Marshal(%s) > %w", key, err)
	}
	if err := r.d.Write(key, data); err != nil {
		return fmt.Errorf("diskv.Write(%s) > %w", key, err)
	}
	return nil
}

func (r *LocalRepository) LoadNote(_ context.Context, userID, noteID string) (*Note, error) {
	key, err := documentKey(userID, notesCollection, noteID)
	if err != nil {
		return nil, err
	}
	var n Note
	if err := r.read(key, &n); err != nil {
		return nil, fmt.Errorf("note %s: %w", noteID, err)
	}
	n.Normalize(r.engine)
	return &n, nil
}

func (r *LocalRepository) SaveNote(_ context.Context, userID, noteID string, n *Note) error {
	key, err := documentKey(userID, notesCollection, noteID)
	if err != nil {
		return err
	}
	saved := *n
	saved.ID = noteID
	saved.UserID = userID
	saved.Normalize(r.engine)
	now := r.now()
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = now
	}
	if saved.UpdatedAt.IsZero() {
		saved.UpdatedAt = now
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.write(key, &saved)
}

func (r *LocalRepository) UpdateNoteMeta(_ context.Context, userID, noteID string, patch MetaPatch) error {
	key, err := documentKey(userID, notesCollection, noteID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	var n Note
	if err := r.read(key, &n); err != nil {
		return fmt.Errorf("note %s: %w", noteID, err)
	}
	if patch.Empty() {
		return nil
	}
	patch.Apply(&n)
	n.UpdatedAt = r.now()
	return r.write(key, &n)
}

func (r *LocalRepository) DeleteNote(_ context.Context, userID, noteID string) error {
	return r.erase(userID, notesCollection, noteID)
}

func (r *LocalRepository) erase(userID, collection, id string) error {
	key, err := documentKey(userID, collection, id)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.d.Has(key) {
		return fmt.Errorf("%s %s: %w", collection, id, ErrNotFound)
	}
	if err := r.d.Erase(key); err != nil {
		return fmt.Errorf("diskv.Erase(%s) > %w", key, err)
	}
	return nil
}

// keys lists the document keys of one collection of the user.
func (r *LocalRepository) keys(ctx context.Context, userID, collection string) ([]string, error) {
	if !config.KeySafe(userID) {
		return nil, fmt.Errorf("invalid user id %q", userID)
	}
	prefix := userID + "/" + collection + "/"
	var keys []string
	for key := range r.d.KeysPrefix(prefix, ctx.Done()) {
		keys = append(keys, key)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *LocalRepository) ListNotes(ctx context.Context, userID string) ([]Note, error) {
	keys, err := r.keys(ctx, userID, notesCollection)
	if err != nil {
		return nil, err
	}
	notes := make([]Note, 0, len(keys))
	for _, key := range keys {
		var n Note
		if err := r.read(key, &n); err != nil {
			return nil, err
		}
		n.Normalize(r.engine)
		notes = append(notes, n)
	}
	sort.SliceStable(notes, func(i, j int) bool {
		if !notes[i].UpdatedAt.Equal(notes[j].UpdatedAt) {
			return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
		}
		return notes[i].ID < notes[j].ID
	})
	return notes, nil
}

func (r *LocalRepository) ListNotebooks(ctx context.Context, userID string) ([]Notebook, error) {
	keys, err := r.keys(ctx, userID, notebooksCollection)
	if err != nil {
		return nil, err
	}
	notebooks := make([]Notebook, 0, len(keys))
	for _, key := range keys {
		var nb Notebook
		if err := r.read(key, &nb); err != nil {
			return nil, err
		}
		notebooks = append(notebooks, nb)
	}
	sort.SliceStable(notebooks, func(i, j int) bool {
		if notebooks[i].Name != notebooks[j].Name {
			return notebooks[i].Name < notebooks[j].Name
		}
		return notebooks[i].ID < notebooks[j].ID
	})
	return notebooks, nil
}

func (r *LocalRepository) CreateNotebook(_ context.Context, userID, name string) (*Notebook, error) {
	now := r.now()
	nb := &Notebook{
		ID:        r.newID(),
		UserID:    userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	key, err := documentKey(userID, notebooksCollection, nb.ID)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.write(key, nb); err != nil {
		return nil, err
	}
	return nb, nil
}

func (r *LocalRepository) DeleteNotebook(_ context.Context, userID, notebookID string) error {
	return r.erase(userID, notebooksCollection, notebookID)
}
