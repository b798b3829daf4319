// Package searchcmder provides the search command, which lists the articles
// a question retrieves without recording an exchange.
package searchcmder

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/legalqa/api"
	"github.com/papercomputeco/legalqa/pkg/client"
	"github.com/papercomputeco/legalqa/pkg/config"
	"github.com/papercomputeco/legalqa/pkg/utils"
)

var (
	rankStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	scoreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	highStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	mediumStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	previewStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const previewWidth = 100

type searchCommander struct {
	query     string
	quiet     bool
	apiTarget string
	out       io.Writer
	cfg       *config.Config
}

const searchLongDesc string = `Search the corpus via the legalqa API.

Lists the articles retrieved for a question with their score and relevance,
without recording anything in the history. Requires a running legalqa API
server.

Use --quiet to output only record ids, one per line.

Examples:
  legalqa search "préavis de démission"
  legalqa search "congés payés" --api-target http://localhost:8001
  legalqa search "licenciement" --quiet`

const searchShortDesc string = "Search the corpus"

func NewSearchCmd() *cobra.Command {
	cmder := &searchCommander{}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: searchShortDesc,
		Long:  searchLongDesc,
		Args:  cobra.ExactArgs(1),
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
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.query = args[0]
			cmder.out = cmd.OutOrStdout()
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().BoolVarP(&cmder.quiet, "quiet", "q", false, "Output only record ids, one per line (for piping)")
	config.AddStringFlag(cmd, config.Registry, config.FlagAPITarget, &cmder.apiTarget)

	return cmd
}

func (c *searchCommander) run(ctx context.Context) error {
	cl, err := client.New(c.cfg.Client.APITarget)
	if err != nil {
		return err
	}

	output, err := cl.Retrieve(ctx, c.query)
	if err != nil {
		return err
	}

	if output.SourceCount == 0 {
		if !c.quiet {
			fmt.Fprintln(c.out, "Aucun article trouvé.")
		}
		return nil
	}

	if c.quiet {
		for _, src := range output.Sources {
			fmt.Fprintln(c.out, src.RecordID)
		}
		return nil
	}

	fmt.Fprintf(c.out, "\n%s %s\n\n",
		headerStyle.Render("Résultats pour :"),
		titleStyle.Render(fmt.Sprintf("%q", output.Question)),
	)

	for _, src := range output.Sources {
		c.printSource(src)
	}

	return nil
}

func (c *searchCommander) printSource(src api.SourceView) {
	relevance := mediumStyle.Render(src.Relevance)
	if src.Relevance == "Haut" {
		relevance = highStyle.Render(src.Relevance)
	}

	fmt.Fprintf(c.out, "  %s  %s  %s  %s\n",
		rankStyle.Render(fmt.Sprintf("#%d", src.ID)),
		scoreStyle.Render(fmt.Sprintf("score: %.4f", src.Score)),
		relevance,
		titleStyle.Render(src.Title),
	)
	fmt.Fprintf(c.out, "  %s\n", dimStyle.Render(src.Name+" · "+src.RecordID))
	fmt.Fprintf(c.out, "  %s\n\n", previewStyle.Render(utils.Truncate(utils.OneLine(src.Excerpt), previewWidth)))
}
