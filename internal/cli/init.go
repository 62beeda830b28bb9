package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"kb/config"
	"kb/internal/usecase"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the workspace's knowledge base",
	Long: `Create the knowledge base for the current workspace. The embedding
model and dimensionality are fixed at creation time; when the model's
dimensionality is unknown it is discovered with a probe request.

Running init on an existing knowledge base is a no-op and reports the
current state.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if err := config.EnsureStoreDir(workspace); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	embedder, err := newEmbedder(configuredSettings())
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	result, err := usecase.NewInitUseCase(st, embedder).Init()
	if err != nil {
		return err
	}
	return writeOK(result)
}
