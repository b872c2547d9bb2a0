package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/outliner/internal/cli"
	"github.com/at-ishikawa/outliner/internal/note"
	"github.com/at-ishikawa/outliner/internal/statistics"
)

func newNotesCommand() *cobra.Command {
	notesCommand := &cobra.Command{
		Use:   "notes",
		Short: "List and manage notes",
	}

	notesCommand.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List notes, most recently updated first",
			Args:  cobra.NoArgs,
			RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
				notes, err := a.store.ListNotes(cmd.Context(), a.userID)
				if err != nil {
					return fmt.Errorf("store.ListNotes() > %w", err)
				}
				return writeNoteList(cmd.OutOrStdout(), notes)
			}),
		},
		newShowNoteCommand(),
		newNotesStatsCommand(),
		&cobra.Command{
			Use:   "new <title>",
			Short: "Create a note with one empty node",
			Args:  cobra.ArbitraryArgs,
			RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
				w := a.workspace()
				session, err := w.Create(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				if err := w.Close(cmd.Context()); err != nil {
					return fmt.Errorf("workspace.Close() > %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), session.Note().ID)
				return err
			}),
		},
		&cobra.Command{
			Use:   "delete <note id>",
			Short: "Delete a note",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
				if err := a.store.DeleteNote(cmd.Context(), a.userID, args[0]); err != nil {
					return fmt.Errorf("store.DeleteNote(%s) > %w", args[0], err)
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "title <note id> <title>",
			Short: "Rename a note",
			Args:  cobra.MinimumNArgs(1),
			RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
				title := strings.Join(args[1:], " ")
				return updateMeta(cmd, a, args[0], note.MetaPatch{Title: &title})
			}),
		},
		&cobra.Command{
			Use:   "tag <note id> [tags...]",
			Short: "Replace the tags of a note",
			Args:  cobra.MinimumNArgs(1),
			RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
				return updateMeta(cmd, a, args[0], note.MetaPatch{Tags: args[1:], SetTags: true})
			}),
		},
		&cobra.Command{
			Use:   "move <note id> [notebook id]",
			Short: "Move a note into a notebook, or out of it without a notebook id",
			Args:  cobra.RangeArgs(1, 2),
			RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
				notebookID := ""
				if len(args) > 1 {
					notebookID = args[1]
				}
				return updateMeta(cmd, a, args[0], note.MetaPatch{NotebookID: &notebookID})
			}),
		},
	)
	return notesCommand
}

func newShowNoteCommand() *cobra.Command {
	var all, ids bool
	showCommand := &cobra.Command{
		Use:   "show <note id>",
		Short: "Print a note as a tree",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			n, err := a.store.LoadNote(cmd.Context(), a.userID, args[0])
			if err != nil {
				return fmt.Errorf("store.LoadNote(%s) > %w", args[0], err)
			}
			out := cmd.OutOrStdout()
			if n.Title != "" {
				if _, err := color.New(color.Bold, color.Underline).Fprintln(out, n.Title); err != nil {
					return err
				}
			}
			if len(n.Tags) > 0 {
				if _, err := color.New(color.Faint).Fprintln(out, "#"+strings.Join(n.Tags, " #")); err != nil {
					return err
				}
			}
			return cli.NewTreeRenderer().Render(out, n.RootNodes, cli.RenderOptions{All: all, ShowIDs: ids})
		}),
	}
	showCommand.Flags().BoolVar(&all, "all", false, "Also print the children of collapsed nodes")
	showCommand.Flags().BoolVar(&ids, "ids", false, "Print node ids")
	return showCommand
}

func newNotesStatsCommand() *cobra.Command {
	var year, month int
	statsCommand := &cobra.Command{
		Use:   "stats",
		Short: "Show monthly note activity and outline totals",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if month != 0 && year == 0 {
				return fmt.Errorf("--month requires --year")
			}
			notes, err := a.store.ListNotes(cmd.Context(), a.userID)
			if err != nil {
				return fmt.Errorf("store.ListNotes() > %w", err)
			}
			return writeStatistics(cmd.OutOrStdout(), statistics.CalculateStatistics(notes, year, month))
		}),
	}
	statsCommand.Flags().IntVar(&year, "year", 0, "Filter by year")
	statsCommand.Flags().IntVar(&month, "month", 0, "Filter by month (1-12), requires --year")
	return statsCommand
}

func writeStatistics(w io.Writer, result statistics.StatisticsResult) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%-10s %8s %8s\n", "Period", "Created", "Updated")
	for _, p := range result.Periods {
		fmt.Fprintf(&b, "%-10s %8d %8d\n", p.Period, p.NotesCreated, p.NotesUpdated)
	}
	total := result.Aggregate
	fmt.Fprintf(&b, "\nNotes: %d, nodes: %d, words: %d, deepest level: %d\n", total.Notes, total.Nodes, total.Words, total.MaxDepth)
	if total.ChecklistItems > 0 {
		fmt.Fprintf(&b, "Checklist: %d/%d done\n", total.ChecklistDone, total.ChecklistItems)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeNoteList(w io.Writer, notes []note.Note) error {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	for _, n := range notes {
		title := n.Title
		if title == "" {
			title = "(untitled)"
		}
		line := fmt.Sprintf("%s  %s", n.ID, bold.Sprint(title))
		if n.NotebookID != "" {
			line += faint.Sprintf("  [%s]", n.NotebookID)
		}
		if len(n.Tags) > 0 {
			line += faint.Sprint("  #" + strings.Join(n.Tags, " #"))
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("fmt.Fprintln() > %w", err)
		}
	}
	return nil
}

func updateMeta(cmd *cobra.Command, a *app, noteID string, patch note.MetaPatch) error {
	if err := a.store.UpdateNoteMeta(cmd.Context(), a.userID, noteID, patch); err != nil {
		return fmt.Errorf("store.UpdateNoteMeta(%s) > %w", noteID, err)
	}
	return nil
}

// withApp opens the configured store for the duration of one command.
func withApp(run func(cmd *cobra.Command, a *app, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer func() {
			_ = a.Close()
		}()
		return run(cmd, a, args)
	}
}
