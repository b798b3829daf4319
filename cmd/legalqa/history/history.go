// Package historycmder provides the history command for listing and clearing
// the exchanges recorded by a running API server.
package historycmder

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/legalqa/pkg/cliui"
	"github.com/papercomputeco/legalqa/pkg/client"
	"github.com/papercomputeco/legalqa/pkg/config"
	"github.com/papercomputeco/legalqa/pkg/utils"
)

const (
	defaultLimit = 10
	rowWidth     = 80
)

type historyCommander struct {
	apiTarget string
	limit     int
	cfg       *config.Config
	out       io.Writer
}

const historyLongDesc string = `Inspect the question/answer history of a running legalqa API server.

Examples:
  legalqa history list
  legalqa history list --limit 50
  legalqa history clear`

const historyShortDesc string = "Inspect the question history"

func NewHistoryCmd() *cobra.Command {
	cmder := &historyCommander{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: historyShortDesc,
		Long:  historyLongDesc,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Registry, []string{config.FlagAPITarget})
			cmder.cfg = config.FromViper(v)
			cmder.out = cmd.OutOrStdout()
			return nil
		},
	}

	target := config.Registry[config.FlagAPITarget]
	cmd.PersistentFlags().StringVarP(&cmder.apiTarget, target.Name, target.Shorthand,
		config.NewDefaultConfig().Client.APITarget, target.Description)

	cmd.AddCommand(cmder.newListCmd())
	cmd.AddCommand(cmder.newClearCmd())

	return cmd
}

func (c *historyCommander) newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent exchanges, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runList(cmd.Context())
		},
	}
	cmd.Flags().IntVarP(&c.limit, "limit", "n", defaultLimit, "Number of exchanges to show")
	return cmd
}

func (c *historyCommander) newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget every recorded exchange",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runClear(cmd.Context())
		},
	}
}

func (c *historyCommander) client() (*client.Client, error) {
	return client.New(c.cfg.Client.APITarget)
}

func (c *historyCommander) runList(ctx context.Context) error {
	if c.limit <= 0 {
		return fmt.Errorf("invalid --limit %d: must be positive", c.limit)
	}

	cl, err := c.client()
	if err != nil {
		return err
	}

	resp, err := cl.History(ctx, c.limit)
	if err != nil {
		return err
	}

	if resp.Count == 0 {
		fmt.Fprintln(c.out, cliui.DimStyle.Render("Historique vide."))
		return nil
	}

	for _, item := range resp.History {
		fmt.Fprintf(c.out, "%s  %s  %s\n",
			cliui.KeyStyle.Render(fmt.Sprintf("#%d", item.ID)),
			cliui.DimStyle.Render(item.Timestamp),
			cliui.ValueStyle.Render(utils.Truncate(utils.OneLine(item.Question), rowWidth)),
		)
		fmt.Fprintf(c.out, "    %s\n", cliui.StepStyle.Render(utils.Truncate(utils.OneLine(item.Answer), rowWidth)))
	}
	return nil
}

func (c *historyCommander) runClear(ctx context.Context) error {
	cl, err := c.client()
	if err != nil {
		return err
	}

	resp, err := cl.ClearHistory(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "%s %s\n", cliui.SuccessMark, resp.Message)
	return nil
}
