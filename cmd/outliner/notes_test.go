package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/outliner/internal/note"
	"github.com/at-ishikawa/outliner/internal/outline"
	"github.com/at-ishikawa/outliner/internal/testutil"
)

func seedGroceries(t *testing.T, tmpDir string) {
	t.Helper()
	testutil.SeedNote(t, tmpDir, &note.Note{
		ID:    "n1",
		Title: "Groceries",
		Tags:  []string{"home"},
		RootNodes: outline.Forest{
			{
				ID:      "A",
				Content: "fruit",
				Children: []*outline.Node{
					{ID: "B", Content: "<b>apples</b>"},
				},
			},
			{ID: "C", Content: "bread", Collapsed: true, Children: []*outline.Node{{ID: "D", Content: "rye"}}},
		},
	})
}

func TestNotesCommand(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		want     string
		wantNote func(t *testing.T, n *note.Note)
	}{
		{
			name: "list",
			args: []string{"notes", "list"},
			want: "n1  Groceries  #home\n",
		},
		{
			name: "show",
			args: []string{"notes", "show", "n1"},
			want: "Groceries\n#home\n  • fruit\n    • apples\n  ▸ bread (+1)\n",
		},
		{
			name: "show all with ids",
			args: []string{"notes", "show", "n1", "--all", "--ids"},
			want: "Groceries\n#home\n  • fruit  #A\n    • apples  #B\n  ▸ bread  #C\n    • rye  #D\n",
		},
		{
			name: "title",
			args: []string{"notes", "title", "n1", "Weekly", "shop"},
			wantNote: func(t *testing.T, n *note.Note) {
				assert.Equal(t, "Weekly shop", n.Title)
			},
		},
		{
			name: "tag replaces tags",
			args: []string{"notes", "tag", "n1", "food", "food", "weekly"},
			wantNote: func(t *testing.T, n *note.Note) {
				assert.Equal(t, []string{"food", "weekly"}, n.Tags)
			},
		},
		{
			name: "tag without tags clears them",
			args: []string{"notes", "tag", "n1"},
			wantNote: func(t *testing.T, n *note.Note) {
				assert.Empty(t, n.Tags)
			},
		},
		{
			name: "move into a notebook",
			args: []string{"notes", "move", "n1", "nb1"},
			wantNote: func(t *testing.T, n *note.Note) {
				assert.Equal(t, "nb1", n.NotebookID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			setConfigFile(t, testutil.SetupTestConfig(t, tmpDir))
			seedGroceries(t, tmpDir)

			got, err := runCommand(t, "", tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if tt.wantNote != nil {
				tt.wantNote(t, testutil.LoadNote(t, tmpDir, "n1"))
			}
		})
	}
}

func TestNotesCommand_MoveOutOfNotebook(t *testing.T) {
	tmpDir := t.TempDir()
	setConfigFile(t, testutil.SetupTestConfig(t, tmpDir))
	testutil.SeedNote(t, tmpDir, &note.Note{ID: "n1", NotebookID: "nb1"})

	_, err := runCommand(t, "", "notes", "move", "n1")
	require.NoError(t, err)
	assert.Empty(t, testutil.LoadNote(t, tmpDir, "n1").NotebookID)
}

func TestNotesCommand_New(t *testing.T) {
	tmpDir := t.TempDir()
	setConfigFile(t, testutil.SetupTestConfig(t, tmpDir))

	got, err := runCommand(t, "", "notes", "new", "Reading", "list")
	require.NoError(t, err)

	notes, err := testutil.Store(tmpDir).ListNotes(context.Background(), testutil.TestUserID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, notes[0].ID+"\n", got)
	assert.Equal(t, "Reading list", notes[0].Title)
	require.Len(t, notes[0].RootNodes, 1)
	assert.Empty(t, notes[0].RootNodes[0].Content)
}

func TestNotesCommand_Delete(t *testing.T) {
	tmpDir := t.TempDir()
	setConfigFile(t, testutil.SetupTestConfig(t, tmpDir))
	seedGroceries(t, tmpDir)

	_, err := runCommand(t, "", "notes", "delete", "n1")
	require.NoError(t, err)

	_, err = testutil.Store(tmpDir).LoadNote(context.Background(), testutil.TestUserID, "n1")
	assert.ErrorIs(t, err, note.ErrNotFound)
}

func TestNotesCommand_NotFound(t *testing.T) {
	tmpDir := t.TempDir()
	setConfigFile(t, testutil.SetupTestConfig(t, tmpDir))

	tests := []struct {
		name string
		args []string
	}{
		{name: "show", args: []string{"notes", "show", "missing"}},
		{name: "delete", args: []string{"notes", "delete", "missing"}},
		{name: "title", args: []string{"notes", "title", "missing", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCommand(t, "", tt.args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, note.ErrNotFound)
		})
	}
}

func TestNotebooksCommand(t *testing.T) {
	tmpDir := t.TempDir()
	setConfigFile(t, testutil.SetupTestConfig(t, tmpDir))
	work := testutil.SeedNotebook(t, tmpDir, "Work")
	testutil.SeedNote(t, tmpDir, &note.Note{ID: "n1", NotebookID: work.ID})

	got, err := runCommand(t, "", "notebooks", "create", "Home", "projects")
	require.NoError(t, err)
	notebooks, err := testutil.Store(tmpDir).ListNotebooks(context.Background(), testutil.TestUserID)
	require.NoError(t, err)
	require.Len(t, notebooks, 2)
	home := notebooks[0]
	assert.Equal(t, "Home projects", home.Name)
	assert.Equal(t, home.ID+"\n", got)

	got, err = runCommand(t, "", "notebooks", "list")
	require.NoError(t, err)
	assert.Equal(t, home.ID+"  Home projects\n"+work.ID+"  Work\n", got)

	_, err = runCommand(t, "", "notebooks", "delete", work.ID)
	require.NoError(t, err)
	assert.Equal(t, work.ID, testutil.LoadNote(t, tmpDir, "n1").NotebookID)

	_, err = runCommand(t, "", "notebooks", "delete", work.ID)
	assert.ErrorIs(t, err, note.ErrNotFound)
}

func TestNotesCommand_Stats(t *testing.T) {
	tmpDir := t.TempDir()
	setConfigFile(t, testutil.SetupTestConfig(t, tmpDir))
	jan := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	testutil.SeedNote(t, tmpDir, &note.Note{
		ID:        "n1",
		CreatedAt: jan,
		UpdatedAt: jan,
		RootNodes: outline.Forest{
			{ID: "A", Content: "pack bags", Check: outline.CheckDone},
			{ID: "B", Content: "book hotel", Check: outline.CheckOpen},
		},
	})

	got, err := runCommand(t, "", "notes", "stats", "--year", "2025")
	require.NoError(t, err)
	assert.Equal(t, "Period      Created  Updated\n"+
		"2025-01           1        1\n"+
		"\nNotes: 1, nodes: 2, words: 4, deepest level: 1\n"+
		"Checklist: 1/2 done\n", got)

	_, err = runCommand(t, "", "notes", "stats", "--month", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--month requires --year")
}
