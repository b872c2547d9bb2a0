package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/outliner/internal/database"
	"github.com/at-ishikawa/outliner/internal/datasync"
	"github.com/at-ishikawa/outliner/internal/editor"
	"github.com/at-ishikawa/outliner/internal/note"
)

func newMigrateCommand() *cobra.Command {
	migrateCommand := &cobra.Command{
		Use:   "migrate",
		Short: "Migration commands",
	}
	migrateCommand.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending database migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				version, err := database.Migrate(cfg.Database)
				if err != nil {
					return fmt.Errorf("database.Migrate() > %w", err)
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "schema version: %d\n", version)
				return err
			},
		},
		newCopyNotesCommand("import-db", "Copy notes from the local directory into the database", false),
		newCopyNotesCommand("export-local", "Copy notes from the database into the local directory", true),
	)
	return migrateCommand
}

func newCopyNotesCommand(use, short string, toLocal bool) *cobra.Command {
	var dryRun bool
	var updateExisting bool

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := database.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("database.Open() > %w", err)
			}
			defer func() {
				_ = db.Close()
			}()

			engine := editor.NewEngine()
			var source, target note.Repository = note.NewLocalRepository(cfg.Store.LocalDirectory, engine), note.NewDBRepository(db, engine)
			if toLocal {
				source, target = target, source
			}
			userID := cfg.Editor.UserID
			if userID == "" {
				userID = defaultUserID
			}

			out := cmd.OutOrStdout()
			opts := datasync.ImportOptions{
				DryRun:         dryRun,
				UpdateExisting: updateExisting,
			}
			result, err := datasync.NewImporter(source, target, out).Import(cmd.Context(), userID, opts)
			if err != nil {
				return fmt.Errorf("importer.Import() > %w", err)
			}
			return writeImportSummary(out, result, opts)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview changes without writing them")
	cmd.Flags().BoolVar(&updateExisting, "update-existing", false, "Overwrite notes whose source copy is newer")
	return cmd
}

func writeImportSummary(w io.Writer, result *datasync.ImportResult, opts datasync.ImportOptions) error {
	summary := "\nImport Summary:\n"
	if opts.DryRun {
		summary += "  (dry-run mode, no changes made)\n"
	}
	summary += fmt.Sprintf("  Notes:      %d new, %d skipped, %d updated\n", result.NotesNew, result.NotesSkipped, result.NotesUpdated)
	summary += fmt.Sprintf("  Notebooks:  %d new, %d skipped\n", result.NotebooksNew, result.NotebooksSkipped)
	_, err := io.WriteString(w, summary)
	return err
}
