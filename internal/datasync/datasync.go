// Package datasync copies notes and notebooks of one user between two stores, such as the
// local YAML directory and the MySQL database.
package datasync

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/at-ishikawa/outliner/internal/note"
)

// ImportResult tracks counts for each import operation.
type ImportResult struct {
	NotesNew         int
	NotesSkipped     int
	NotesUpdated     int
	NotebooksNew     int
	NotebooksSkipped int
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun bool
	// UpdateExisting overwrites a target note when the source copy was updated later.
	UpdateExisting bool
}

// Importer reads notes from one repository and writes them to another.
type Importer struct {
	source note.Repository
	target note.Repository
	writer io.Writer
}

func NewImporter(source, target note.Repository, writer io.Writer) *Importer {
	return &Importer{
		source: source,
		target: target,
		writer: writer,
	}
}

// Import copies the notebooks, then the notes of userID. Notebooks are matched by name since
// a repository assigns its own notebook ids; note references are rewritten accordingly.
func (imp *Importer) Import(ctx context.Context, userID string, opts ImportOptions) (*ImportResult, error) {
	var result ImportResult

	notebookIDs, err := imp.importNotebooks(ctx, userID, opts, &result)
	if err != nil {
		return nil, err
	}

	notes, err := imp.source.ListNotes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("source.ListNotes() > %w", err)
	}
	for _, summary := range notes {
		n, err := imp.source.LoadNote(ctx, userID, summary.ID)
		if err != nil {
			return nil, fmt.Errorf("source.LoadNote(%s) > %w", summary.ID, err)
		}
		if n.NotebookID != "" {
			if id, ok := notebookIDs[n.NotebookID]; ok {
				n.NotebookID = id
			}
		}
		if err := imp.importNote(ctx, userID, n, opts, &result); err != nil {
			return nil, fmt.Errorf("importNote() > %w", err)
		}
	}
	return &result, nil
}

// importNotebooks returns the target notebook id of each source notebook id.
func (imp *Importer) importNotebooks(ctx context.Context, userID string, opts ImportOptions, result *ImportResult) (map[string]string, error) {
	sourceNotebooks, err := imp.source.ListNotebooks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("source.ListNotebooks() > %w", err)
	}
	targetNotebooks, err := imp.target.ListNotebooks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("target.ListNotebooks() > %w", err)
	}
	byName := make(map[string]string, len(targetNotebooks))
	for _, nb := range targetNotebooks {
		if _, ok := byName[nb.Name]; !ok {
			byName[nb.Name] = nb.ID
		}
	}

	ids := make(map[string]string, len(sourceNotebooks))
	for _, nb := range sourceNotebooks {
		if id, ok := byName[nb.Name]; ok {
			ids[nb.ID] = id
			result.NotebooksSkipped++
			continue
		}
		if !opts.DryRun {
			created, err := imp.target.CreateNotebook(ctx, userID, nb.Name)
			if err != nil {
				return nil, fmt.Errorf("target.CreateNotebook(%s) > %w", nb.Name, err)
			}
			ids[nb.ID] = created.ID
			byName[nb.Name] = created.ID
		}
		fmt.Fprintf(imp.writer, "  [NEW]  notebook %q\n", nb.Name)
		result.NotebooksNew++
	}
	return ids, nil
}

func (imp *Importer) importNote(ctx context.Context, userID string, n *note.Note, opts ImportOptions, result *ImportResult) error {
	existing, err := imp.target.LoadNote(ctx, userID, n.ID)
	if err != nil && !errors.Is(err, note.ErrNotFound) {
		return fmt.Errorf("target.LoadNote(%s) > %w", n.ID, err)
	}

	if existing != nil {
		if !opts.UpdateExisting || !n.UpdatedAt.After(existing.UpdatedAt) {
			fmt.Fprintf(imp.writer, "  [SKIP]  %q (%s)\n", n.Title, n.ID)
			result.NotesSkipped++
			return nil
		}
		if !opts.DryRun {
			if err := imp.target.SaveNote(ctx, userID, n.ID, n); err != nil {
				return fmt.Errorf("target.SaveNote(%s) > %w", n.ID, err)
			}
		}
		fmt.Fprintf(imp.writer, "  [UPDATE]  %q (%s)\n", n.Title, n.ID)
		result.NotesUpdated++
		return nil
	}

	if !opts.DryRun {
		if err := imp.target.SaveNote(ctx, userID, n.ID, n); err != nil {
			return fmt.Errorf("target.SaveNote(%s) > %w", n.ID, err)
		}
	}
	fmt.Fprintf(imp.writer, "  [NEW]  %q (%s)\n", n.Title, n.ID)
	result.NotesNew++
	return nil
}
