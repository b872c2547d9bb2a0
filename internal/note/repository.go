package note

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/outliner/internal/database"
	"github.com/at-ishikawa/outliner/internal/outline"
)

// noteRecord is the row shape of the notes table. Tags and nodes are JSON columns.
type noteRecord struct {
	ID         string         `db:"id"`
	UserID     string         `db:"user_id"`
	Title      string         `db:"title"`
	NotebookID sql.NullString `db:"notebook_id"`
	Tags       []byte         `db:"tags"`
	RootNodes  []byte         `db:"root_nodes"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

func (r noteRecord) toNote(engine *outline.Engine) (*Note, error) {
	n := &Note{
		ID:         r.ID,
		UserID:     r.UserID,
		Title:      r.Title,
		NotebookID: r.NotebookID.String,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if len(r.Tags) > 0 {
		if err := json.Unmarshal(r.Tags, &n.Tags); err != nil {
			return nil, fmt.Errorf("json.Unmarshal(tags of %s) > %w", r.ID, err)
		}
	}
	if len(r.RootNodes) > 0 {
		if err := json.Unmarshal(r.RootNodes, &n.RootNodes); err != nil {
			return nil, fmt.Errorf("json.Unmarshal(root_nodes of %s) > %w", r.ID, err)
		}
	}
	n.Normalize(engine)
	return n, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	db     *sqlx.DB
	engine *outline.Engine
	now    func() time.Time
	newID  func() string
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB, engine *outline.Engine) *DBRepository {
	return &DBRepository{
		db:     db,
		engine: engine,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// LoadNote returns the note, or ErrNotFound.
func (r *DBRepository) LoadNote(ctx context.Context, userID, noteID string) (*Note, error) {
	var record noteRecord
	err := r.db.GetContext(ctx, &record, "SELECT * FROM notes WHERE user_id = ? AND id = ?", userID, noteID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("note %s: %w", noteID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(note) > %w", err)
	}
	return record.toNote(r.engine)
}

// SaveNote upserts the whole note. A note id owned by another user is reported as not found.
func (r *DBRepository) SaveNote(ctx context.Context, userID, noteID string, n *Note) error {
	saved := *n
	saved.Normalize(r.engine)
	tags, err := json.Marshal(saved.Tags)
	if err != nil {
		return fmt.Errorf("json.Marshal(tags) > %w", err)
	}
	nodes, err := json.Marshal(saved.RootNodes)
	if err != nil {
		return fmt.Errorf("json.Marshal(root_nodes) > %w", err)
	}
	now := r.now()
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = now
	}
	if saved.UpdatedAt.IsZero() {
		saved.UpdatedAt = now
	}

	return database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		var owner string
		err := tx.GetContext(ctx, &owner, "SELECT user_id FROM notes WHERE id = ? FOR UPDATE", noteID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("tx.GetContext(note owner) > %w", err)
		}
		if err == nil && owner != userID {
			return fmt.Errorf("note %s: %w", noteID, ErrNotFound)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO notes (id, user_id, title, notebook_id, tags, root_nodes, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE title = VALUES(title), notebook_id = VALUES(notebook_id),
				tags = VALUES(tags), root_nodes = VALUES(root_nodes), updated_at = VALUES(updated_at)`,
			noteID, userID, saved.Title, nullString(saved.NotebookID), tags, nodes, saved.CreatedAt, saved.UpdatedAt); err != nil {
			return fmt.Errorf("tx.ExecContext(upsert note) > %w", err)
		}
		return nil
	})
}

// UpdateNoteMeta writes only the fields set in patch.
func (r *DBRepository) UpdateNoteMeta(ctx context.Context, userID, noteID string, patch MetaPatch) error {
	if patch.Empty() {
		return nil
	}
	var sets []string
	var args []any
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.SetTags {
		tags, err := json.Marshal(NormalizeTags(patch.Tags))
		if err != nil {
			return fmt.Errorf("json.Marshal(tags) > %w", err)
		}
		sets = append(sets, "tags = ?")
		args = append(args, tags)
	}
	if patch.NotebookID != nil {
		sets = append(sets, "notebook_id = ?")
		args = append(args, nullString(*patch.NotebookID))
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, r.now(), userID, noteID)

	result, err := r.db.ExecContext(ctx,
		"UPDATE notes SET "+strings.Join(sets, ", ")+" WHERE user_id = ? AND id = ?", args...)
	if err != nil {
		return fmt.Errorf("db.ExecContext(update note meta) > %w", err)
	}
	return requireAffected(result, "note", noteID)
}

// DeleteNote removes the note.
func (r *DBRepository) DeleteNote(ctx context.Context, userID, noteID string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM notes WHERE user_id = ? AND id = ?", userID, noteID)
	if err != nil {
		return fmt.Errorf("db.ExecContext(delete note) > %w", err)
	}
	return requireAffected(result, "note", noteID)
}

// ListNotes returns the user's notes, most recently updated first.
func (r *DBRepository) ListNotes(ctx context.Context, userID string) ([]Note, error) {
	var records []noteRecord
	if err := r.db.SelectContext(ctx, &records,
		"SELECT * FROM notes WHERE user_id = ? ORDER BY updated_at DESC, id", userID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(notes) > %w", err)
	}
	notes := make([]Note, 0, len(records))
	for _, record := range records {
		n, err := record.toNote(r.engine)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *n)
	}
	return notes, nil
}

// ListNotebooks returns the user's notebooks ordered by name.
func (r *DBRepository) ListNotebooks(ctx context.Context, userID string) ([]Notebook, error) {
	var notebooks []Notebook
	if err := r.db.SelectContext(ctx, &notebooks,
		"SELECT * FROM notebooks WHERE user_id = ? ORDER BY name, id", userID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(notebooks) > %w", err)
	}
	return notebooks, nil
}

// CreateNotebook inserts a notebook with a fresh id.
func (r *DBRepository) CreateNotebook(ctx context.Context, userID, name string) (*Notebook, error) {
	now := r.now()
	nb := &Notebook{
		ID:        r.newID(),
		UserID:    userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.db.NamedExecContext(ctx,
		`INSERT INTO notebooks (id, user_id, name, created_at, updated_at)
		VALUES (:id, :user_id, :name, :created_at, :updated_at)`, nb); err != nil {
		return nil, fmt.Errorf("db.NamedExecContext(insert notebook) > %w", err)
	}
	return nb, nil
}

// DeleteNotebook removes the notebook only; notes keep their now dangling notebook id.
func (r *DBRepository) DeleteNotebook(ctx context.Context, userID, notebookID string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM notebooks WHERE user_id = ? AND id = ?", userID, notebookID)
	if err != nil {
		return fmt.Errorf("db.ExecContext(delete notebook) > %w", err)
	}
	return requireAffected(result, "notebook", notebookID)
}

func requireAffected(result sql.Result, kind, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("result.RowsAffected() > %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}
