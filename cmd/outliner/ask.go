package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/outliner/internal/inference"
	"github.com/at-ishikawa/outliner/internal/inference/openai"
)

func newAskCommand() *cobra.Command {
	var skill string
	askCommand := &cobra.Command{
		Use:   "ask <message>",
		Short: "Ask the writing assistant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			skillID, err := inference.ParseSkill(skill)
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.OpenAI.APIKey == "" {
				return errors.New("OPENAI_API_KEY environment variable or openai.api_key configuration is required")
			}

			client := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL, inference.DefaultMaxRetryAttempts)
			defer func() {
				_ = client.Close()
			}()

			reply := inference.NewChat(client).Send(cmd.Context(), strings.Join(args, " "), skillID)
			if reply.Failed {
				_, err := color.New(color.FgRed).Fprintln(cmd.OutOrStdout(), reply.Content)
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), reply.Content)
			return err
		},
	}
	askCommand.Flags().StringVar(&skill, "skill", "", "Skill of the assistant. Options: summarize, expand, outline, proofread")
	return askCommand
}
