package cli

import (
	"github.com/spf13/cobra"

	"kb/config"
	"kb/internal/domain"
	"kb/internal/usecase"
)

var (
	deleteID     string
	deleteSource string
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove records by id or source file",
	Long: `Delete records from the live version. Requires --id or --source; the
removed rows stay reachable through earlier versions and can come back
with restore.

Examples:
  kb delete --source old-notes.md
  kb delete --id 6f1c...`,
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().StringVar(&deleteID, "id", "", "record id to delete")
	deleteCmd.Flags().StringVar(&deleteSource, "source", "", "source file whose records to delete")
}

func runDelete(cmd *cobra.Command, args []string) error {
	st, err := openExistingStore()
	if err != nil {
		return err
	}
	defer st.Close()

	result, err := usecase.NewAdminUseCase(st, config.StoreDir(workspace)).
		Delete(domain.Filter{ID: deleteID, SourceFile: deleteSource})
	if err != nil {
		return err
	}
	return writeOK(result)
}
