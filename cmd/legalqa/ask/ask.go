// Package askcmder provides the ask command, which answers one question
// either through a running API server or in process.
package askcmder

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/legalqa/api"
	"github.com/papercomputeco/legalqa/cmd/legalqa/bootstrap"
	"github.com/papercomputeco/legalqa/pkg/cliui"
	"github.com/papercomputeco/legalqa/pkg/client"
	"github.com/papercomputeco/legalqa/pkg/config"
	"github.com/papercomputeco/legalqa/pkg/logger"
	"github.com/papercomputeco/legalqa/pkg/qa"
)

type askCommander struct {
	question string
	local    bool
	raw      bool

	apiTarget string
	dataDir   string

	cfg       *config.Config
	configDir string
	debug     bool
	out       io.Writer
	markdown  bool
}

const askLongDesc string = `Ask a question about French labor law.

By default the question is sent to a running legalqa API server. With --local
the corpus is loaded in process and nothing is recorded in the history.

The answer is rendered as Markdown when stdout is a terminal. Use --raw to
print it as plain text.

Examples:
  legalqa ask "Quelle est la durée du préavis de démission ?"
  legalqa ask "congés payés" --api-target http://localhost:8001
  legalqa ask "salaire minimum" --local --data-dir ./data`

const askShortDesc string = "Ask a question"

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Registry, []string{
				config.FlagAPITarget,
				config.FlagDataDir,
			})
			cmder.cfg = config.FromViper(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.question = args[0]

			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			cmder.out = cmd.OutOrStdout()
			cmder.markdown = !cmder.raw && cmder.out == os.Stdout && cliui.IsTerminal(os.Stdout)

			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&cmder.local, "local", false, "Answer in process instead of calling the API server")
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print the answer without Markdown rendering")
	config.AddStringFlag(cmd, config.Registry, config.FlagAPITarget, &cmder.apiTarget)
	config.AddStringFlag(cmd, config.Registry, config.FlagDataDir, &cmder.dataDir)

	return cmd
}

func (c *askCommander) run(ctx context.Context) error {
	if _, err := qa.ValidateQuestion(c.question); err != nil {
		return err
	}

	var (
		answer string
		err    error
	)
	if c.local {
		answer, err = c.askLocal(ctx)
	} else {
		answer, err = c.askRemote(ctx)
	}
	if err != nil {
		return err
	}

	if c.markdown {
		rendered, renderErr := cliui.RenderMarkdown(answer, 0)
		if renderErr == nil {
			answer = rendered
		}
	}

	_, err = fmt.Fprintln(c.out, answer)
	return err
}

func (c *askCommander) askRemote(ctx context.Context) (string, error) {
	cl, err := client.New(c.cfg.Client.APITarget)
	if err != nil {
		return "", err
	}

	resp, err := cl.Ask(ctx, c.question)
	if err != nil {
		return "", err
	}
	return resp.Answer, nil
}

func (c *askCommander) askLocal(ctx context.Context) (string, error) {
	log := logger.Nop()
	if c.debug {
		log = logger.New(logger.WithDebug(true), logger.WithPretty(true), logger.WithWriter(os.Stderr))
	}

	svc, _, err := bootstrap.NewService(ctx, &bootstrap.Options{
		Config:    c.cfg,
		ConfigDir: c.configDir,
		Logger:    log,
		NoHistory: true,
		NoEvents:  true,
	})
	if err != nil {
		return "", fmt.Errorf("building service: %w", err)
	}
	defer svc.Close()

	answer, err := svc.Ask(ctx, c.question, qa.WithoutHistory())
	if err != nil {
		return "", err
	}

	sources, err := svc.Retrieve(ctx, c.question)
	if err != nil {
		return "", err
	}

	return api.WithSourceLine(answer, api.NewSourceViews(sources, svc.RelevantFloor())), nil
}
