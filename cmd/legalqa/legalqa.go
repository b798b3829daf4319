// Package legalqacmder is the root of the legalqa command tree.
package legalqacmder

import (
	"os"

	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/legalqa/cmd/legalqa/ask"
	chatcmder "github.com/papercomputeco/legalqa/cmd/legalqa/chat"
	configcmder "github.com/papercomputeco/legalqa/cmd/legalqa/config"
	corpuscmder "github.com/papercomputeco/legalqa/cmd/legalqa/corpus"
	historycmder "github.com/papercomputeco/legalqa/cmd/legalqa/history"
	indexcmder "github.com/papercomputeco/legalqa/cmd/legalqa/index"
	initcmder "github.com/papercomputeco/legalqa/cmd/legalqa/init"
	searchcmder "github.com/papercomputeco/legalqa/cmd/legalqa/search"
	servecmder "github.com/papercomputeco/legalqa/cmd/legalqa/serve"
	versioncmder "github.com/papercomputeco/legalqa/cmd/version"
	"github.com/papercomputeco/legalqa/pkg/cliui"
)

const legalqaLongDesc string = `legalqa answers questions about French labor law from a local corpus of
Code du travail articles.

Run the server, then ask from the terminal:
  legalqa serve                     Run the API server (with MCP at /mcp)
  legalqa ask "<question>"          Ask one question
  legalqa chat                      Interactive session
  legalqa search "<question>"       List matching articles
  legalqa history list|clear        Inspect recorded exchanges

Prepare the corpus:
  legalqa corpus inspect [--watch]  Check what the loader reads
  legalqa index                     Embed the corpus for the embedding engine`

const legalqaShortDesc string = "legalqa - French labor law questions"

func NewLegalQACmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "legalqa",
		Short:         legalqaShortDesc,
		Long:          legalqaLongDesc,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if cmd.OutOrStdout() == os.Stdout {
				cliui.SetupColor(os.Stdout)
			}
		},
	}

	// Global flags
	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Directory holding config.toml (default: ./.legalqa or ~/.legalqa)")

	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(searchcmder.NewSearchCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(historycmder.NewHistoryCmd())
	cmd.AddCommand(corpuscmder.NewCorpusCmd())
	cmd.AddCommand(indexcmder.NewIndexCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
