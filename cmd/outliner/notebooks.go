package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newNotebooksCommand() *cobra.Command {
	notebooksCommand := &cobra.Command{
		Use:   "notebooks",
		Short: "List and manage notebooks",
	}

	notebooksCommand.AddCommand(
		&cobra.Command{
			Use:  "list",
			Args: cobra.NoArgs,
			RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
				notebooks, err := a.store.ListNotebooks(cmd.Context(), a.userID)
				if err != nil {
					return fmt.Errorf("store.ListNotebooks() > %w", err)
				}
				for _, nb := range notebooks {
					if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", nb.ID, nb.Name); err != nil {
						return err
					}
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:  "create <name>",
			Args: cobra.MinimumNArgs(1),
			RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
				nb, err := a.store.CreateNotebook(cmd.Context(), a.userID, strings.Join(args, " "))
				if err != nil {
					return fmt.Errorf("store.CreateNotebook() > %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), nb.ID)
				return err
			}),
		},
		&cobra.Command{
			Use:   "delete <notebook id>",
			Short: "Delete a notebook. Its notes are kept.",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
				if err := a.store.DeleteNotebook(cmd.Context(), a.userID, args[0]); err != nil {
					return fmt.Errorf("store.DeleteNotebook(%s) > %w", args[0], err)
				}
				return nil
			}),
		},
	)
	return notebooksCommand
}
