package cli

import (
	"os"

	"github.com/spf13/cobra"

	"kb/config"
	"kb/internal/domain"
	"kb/internal/usecase"
)

var clearConfirm bool

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Compact the store and rebuild the full-text index",
	Long: `Rewrite the live version into a fresh one and rebuild the full-text
index from its rows. Useful after many deletes, or when lexical search
has been degraded.`,
	RunE: runReindex,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge base statistics",
	Long: `Report the live row count, current version, size on disk and the
per-source chunk distribution.`,
	RunE: runStats,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the entire knowledge base",
	Long: `Remove the knowledge base directory, including all versions and
history. Irreversible; requires --confirm.`,
	RunE: runClear,
}

func init() {
	rootCmd.AddCommand(reindexCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(clearCmd)
	clearCmd.Flags().BoolVar(&clearConfirm, "confirm", false, "confirm removal")
}

func runReindex(cmd *cobra.Command, args []string) error {
	st, err := openExistingStore()
	if err != nil {
		return err
	}
	defer st.Close()

	result, err := usecase.NewAdminUseCase(st, config.StoreDir(workspace)).Reindex()
	if err != nil {
		return err
	}
	return writeOK(result)
}

func runStats(cmd *cobra.Command, args []string) error {
	// An absent knowledge base is a reportable state, not an error.
	if _, err := os.Stat(config.StorePath(workspace)); os.IsNotExist(err) {
		return writeOK(&domain.Stats{Initialized: false})
	}

	st, err := openExistingStore()
	if err != nil {
		return err
	}
	defer st.Close()

	result, err := usecase.NewAdminUseCase(st, config.StoreDir(workspace)).Stats()
	if err != nil {
		return err
	}
	return writeOK(result)
}

func runClear(cmd *cobra.Command, args []string) error {
	st, err := openExistingStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := usecase.NewAdminUseCase(st, config.StoreDir(workspace)).Clear(clearConfirm); err != nil {
		return err
	}
	return writeOK(map[string]interface{}{"cleared": true})
}
