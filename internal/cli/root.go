package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kb/config"
	"kb/internal/logger"
)

var (
	cfgFile   string
	cfg       *config.Config
	workspace string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "kb",
	Short: "Workspace-scoped knowledge base with lexical, vector and hybrid search",
	Long: `kb maintains a versioned knowledge base per workspace: documents are
chunked, embedded and stored locally, every mutation creates a new
version, and any past version can be restored.

Example usage:
  kb init                          # Create the knowledge base
  kb ingest --text "..."           # Ingest raw text
  kb ingest --dir ./docs           # Ingest a directory of documents
  kb search -q "rollback" -m fts   # Search the live version`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetVerbose(verbose)

		var err error
		if workspace == "" {
			workspace, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("resolve working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(workspace)
		}
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return nil
	},
}

// Execute runs the CLI. Errors are printed as JSON envelopes on stdout
// and the process exits non-zero.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		writeError(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./kb.yaml)")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "C", "", "workspace directory (default is current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose diagnostics on stderr")
}
