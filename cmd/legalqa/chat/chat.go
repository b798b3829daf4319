// Package chatcmder provides the chat command: an interactive terminal
// session that sends each question to a running legalqa API server.
package chatcmder

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/legalqa/pkg/client"
	"github.com/papercomputeco/legalqa/pkg/config"
)

type chatCommander struct {
	apiTarget string
	cfg       *config.Config
}

const chatLongDesc string = `Start an interactive question session.

Each question is sent to a running legalqa API server and recorded in its
history. Answers are rendered as Markdown with their sources.

Keys:
  enter        Send the question
  pgup/pgdown  Scroll the conversation
  esc, ctrl+c  Quit

Examples:
  legalqa chat
  legalqa chat --api-target http://localhost:8001`

const chatShortDesc string = "Interactive question session"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Registry, []string{config.FlagAPITarget})
			cmder.cfg = config.FromViper(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Registry, config.FlagAPITarget, &cmder.apiTarget)

	return cmd
}

func (c *chatCommander) run(ctx context.Context) error {
	cl, err := client.New(c.cfg.Client.APITarget)
	if err != nil {
		return err
	}

	if _, err := cl.Health(ctx); err != nil {
		return fmt.Errorf("legalqa API is not reachable: %w", err)
	}

	p := tea.NewProgram(newModel(ctx, cl, cl.Target()), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
