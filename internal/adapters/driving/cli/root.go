// Package cli provides the askdoc command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/arcline-labs/askdoc/internal/core/ports/driven"
	"github.com/arcline-labs/askdoc/internal/core/ports/driving"
	"github.com/arcline-labs/askdoc/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services injected by the entrypoint before Execute.
var (
	qaService   driving.QAService
	requestLog  driven.RequestLogStore
	configStore driven.ConfigStore
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "askdoc",
	Short: "Answer questions about documents",
	Long: `askdoc downloads a document, indexes it for retrieval and answers
natural-language questions about its content.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// SetServices injects the service implementations used by the commands.
func SetServices(qa driving.QAService, log driven.RequestLogStore, cfg driven.ConfigStore) {
	qaService = qa
	requestLog = log
	configStore = cfg
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
