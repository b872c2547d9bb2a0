package datasync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_note "github.com/at-ishikawa/outliner/internal/mocks/note"
	"github.com/at-ishikawa/outliner/internal/note"
	"github.com/at-ishikawa/outliner/internal/outline"
)

func TestImporter_Import(t *testing.T) {
	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)
	sourceNote := func(updatedAt time.Time, notebookID string) *note.Note {
		return &note.Note{
			ID:         "n1",
			Title:      "Plan",
			NotebookID: notebookID,
			RootNodes:  outline.Forest{{ID: "A", Content: "alpha"}},
			UpdatedAt:  updatedAt,
		}
	}

	tests := []struct {
		name       string
		opts       ImportOptions
		setup      func(source, target *mock_note.MockRepository)
		want       *ImportResult
		wantOutput string
	}{
		{
			name: "new note is saved",
			setup: func(source, target *mock_note.MockRepository) {
				source.EXPECT().ListNotebooks(gomock.Any(), "alice").Return(nil, nil)
				target.EXPECT().ListNotebooks(gomock.Any(), "alice").Return(nil, nil)
				source.EXPECT().ListNotes(gomock.Any(), "alice").Return([]note.Note{{ID: "n1"}}, nil)
				source.EXPECT().LoadNote(gomock.Any(), "alice", "n1").Return(sourceNote(newer, ""), nil)
				target.EXPECT().LoadNote(gomock.Any(), "alice", "n1").Return(nil, fmt.Errorf("note n1: %w", note.ErrNotFound))
				target.EXPECT().SaveNote(gomock.Any(), "alice", "n1", sourceNote(newer, "")).Return(nil)
			},
			want:       &ImportResult{NotesNew: 1},
			wantOutput: "  [NEW]  \"Plan\" (n1)\n",
		},
		{
			name: "existing note is skipped",
			setup: func(source, target *mock_note.MockRepository) {
				source.EXPECT().ListNotebooks(gomock.Any(), "alice").Return(nil, nil)
				target.EXPECT().ListNotebooks(gomock.Any(), "alice").Return(nil, nil)
				source.EXPECT().ListNotes(gomock.Any(), "alice").Return([]note.Note{{ID: "n1"}}, nil)
				source.EXPECT().LoadNote(gomock.Any(), "alice", "n1").Return(sourceNote(newer, ""), nil)
				target.EXPECT().LoadNote(gomock.Any(), "alice", "n1").Return(sourceNote(older, ""), nil)
			},
			want:       &ImportResult{NotesSkipped: 1},
			wantOutput: "  [SKIP]  \"Plan\" (n1)\n",
		},
		{
			name: "newer source note updates the target",
			opts: ImportOptions{UpdateExisting: true},
			setup: func(source, target *mock_note.MockRepository) {
				source.EXPECT().ListNotebooks(gomock.Any(), "alice").Return(nil, nil)
				target.EXPECT().ListNotebooks(gomock.Any(), "alice").Return(nil, nil)
				source.EXPECT().ListNotes(gomock.Any(), "alice").Return([]note.Note{{ID: "n1"}}, nil)
				source.EXPECT().LoadNote(gomock.Any(), "alice", "n1").Return(sourceNote(newer, ""), nil)
				target.EXPECT().LoadNote(gomock.Any(), "alice", "n1").Return(sourceNote(older, ""), nil)
				target.EXPECT().SaveNote(gomock.Any(), "alice", "n1", sourceNote(newer, "")).Return(nil)
			},
			want:       &ImportResult{NotesUpdated: 1},
			wantOutput: "  [UPDATE]  \"Plan\" (n1)\n",
		},
		{
			name: "older source note does not overwrite the target",
			opts: ImportOptions{UpdateExisting: true},
			setup: func(source, target *mock_note.MockRepository) {
				source.EXPECT().ListNotebooks(gomock.Any(), "alice").Return(nil, nil)
				target.EXPECT().ListNotebooks(gomock.Any(), "alice").Return(nil, nil)
				source.EXPECT().ListNotes(gomock.Any(), "alice").Return([]note.Note{{ID: "n1"}}, nil)
				source.EXPECT().LoadNote(gomock.Any(), "alice", "n1").Return(sourceNote(older, ""), nil)
				target.EXPECT().LoadNote(gomock.Any(), "alice", "n1").Return(sourceNote(newer, ""), nil)
			},
			want:       &ImportResult{NotesSkipped: 1},
			wantOutput: "  [SKIP]  \"Plan\" (n1)\n",
		},
		{
			name: "notebooks are matched by name and references rewritten",
			setup: func(source, target *mock_note.MockRepository) {
				source.EXPECT().ListNotebooks(gomock.Any(), "alice").Return([]note.Notebook{
					{ID: "src-work", Name: "Work"},
					{ID: "src-home", Name: "Home"},
				}, nil)
				target.EXPECT().ListNotebooks(gomock.Any(), "alice").Return([]note.Notebook{
					{ID: "dst-work", Name: "Work"},
				}, nil)
				target.EXPECT().CreateNotebook(gomock.Any(), "alice", "Home").Return(&note.Notebook{ID: "dst-home", Name: "Home"}, nil)
				source.EXPECT().ListNotes(gomock.Any(), "alice").Return([]note.Note{{ID: "n1"}}, nil)
				source.EXPECT().LoadNote(gomock.Any(), "alice", "n1").Return(sourceNote(newer, "src-home"), nil)
				target.EXPECT().LoadNote(gomock.Any(), "alice", "n1").Return(nil, note.ErrNotFound)
				target.EXPECT().SaveNote(gomock.Any(), "alice", "n1", sourceNote(newer, "dst-home")).Return(nil)
			},
			want:       &ImportResult{NotesNew: 1, NotebooksNew: 1, NotebooksSkipped: 1},
			wantOutput: "  [NEW]  notebook \"Home\"\n  [NEW]  \"Plan\" (n1)\n",
		},
		{
			name: "dry run writes nothing",
			opts: ImportOptions{DryRun: true},
			setup: func(source, target *mock_note.MockRepository) {
				source.EXPECT().ListNotebooks(gomock.Any(), "alice").Return([]note.Notebook{{ID: "src-home", Name: "Home"}}, nil)
				target.EXPECT().ListNotebooks(gomock.Any(), "alice").Return(nil, nil)
				source.EXPECT().ListNotes(gomock.Any(), "alice").Return([]note.Note{{ID: "n1"}}, nil)
				source.EXPECT().LoadNote(gomock.Any(), "alice", "n1").Return(sourceNote(newer, "src-home"), nil)
				target.EXPECT().LoadNote(gomock.Any(), "alice", "n1").Return(nil, note.ErrNotFound)
			},
			want:       &ImportResult{NotesNew: 1, NotebooksNew: 1},
			wantOutput: "  [NEW]  notebook \"Home\"\n  [NEW]  \"Plan\" (n1)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			source := mock_note.NewMockRepository(ctrl)
			target := mock_note.NewMockRepository(ctrl)
			tt.setup(source, target)

			var out bytes.Buffer
			got, err := NewImporter(source, target, &out).Import(context.Background(), "alice", tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOutput, out.String())
		})
	}
}

func TestImporter_Import_Errors(t *testing.T) {
	errBroken := errors.New("broken")

	tests := []struct {
		name    string
		setup   func(source, target *mock_note.MockRepository)
		wantErr string
	}{
		{
			name: "source notebooks",
			setup: func(source, target *mock_note.MockRepository) {
				source.EXPECT().ListNotebooks(gomock.Any(), "alice").Return(nil, errBroken)
			},
			wantErr: "source.ListNotebooks()",
		},
		{
			name: "target load",
			setup: func(source, target *mock_note.MockRepository) {
				source.EXPECT().ListNotebooks(gomock.Any(), "alice").Return(nil, nil)
				target.EXPECT().ListNotebooks(gomock.Any(), "alice").Return(nil, nil)
				source.EXPECT().ListNotes(gomock.Any(), "alice").Return([]note.Note{{ID: "n1"}}, nil)
				source.EXPECT().LoadNote(gomock.Any(), "alice", "n1").Return(&note.Note{ID: "n1"}, nil)
				target.EXPECT().LoadNote(gomock.Any(), "alice", "n1").Return(nil, errBroken)
			},
			wantErr: "target.LoadNote(n1)",
		},
		{
			name: "target save",
			setup: func(source, target *mock_note.MockRepository) {
				source.EXPECT().ListNotebooks(gomock.Any(), "alice").Return(nil, nil)
				target.EXPECT().ListNotebooks(gomock.Any(), "alice").Return(nil, nil)
				source.EXPECT().ListNotes(gomock.Any(), "alice").Return([]note.Note{{ID: "n1"}}, nil)
				source.EXPECT().LoadNote(gomock.Any(), "alice", "n1").Return(&note.Note{ID: "n1"}, nil)
				target.EXPECT().LoadNote(gomock.Any(), "alice", "n1").Return(nil, note.ErrNotFound)
				target.EXPECT().SaveNote(gomock.Any(), "alice", "n1", gomock.Any()).Return(errBroken)
			},
			wantErr: "target.SaveNote(n1)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			source := mock_note.NewMockRepository(ctrl)
			target := mock_note.NewMockRepository(ctrl)
			tt.setup(source, target)

			_, err := NewImporter(source, target, &bytes.Buffer{}).Import(context.Background(), "alice", ImportOptions{})
			require.Error(t, err)
			assert.ErrorIs(t, err, errBroken)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
