package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/outliner/internal/cli"
	"github.com/at-ishikawa/outliner/internal/editor"
)

func newEditCommand() *cobra.Command {
	var title string
	editCommand := &cobra.Command{
		Use:   "edit [note id]",
		Short: "Edit a note interactively. Without a note id a new note is created.",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			w := a.workspace()
			var session *editor.Session
			var err error
			if len(args) == 0 {
				session, err = w.Create(cmd.Context(), title)
			} else {
				session, err = w.Open(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}

			if err := cli.NewEditCLI(session, cmd.InOrStdin(), cmd.OutOrStdout()).Run(cmd.Context()); err != nil {
				return fmt.Errorf("editCLI.Run() > %w", err)
			}
			return w.Close(cmd.Context())
		}),
	}
	editCommand.Flags().StringVar(&title, "title", "", "Title of a new note")
	return editCommand
}
