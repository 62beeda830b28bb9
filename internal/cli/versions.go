package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"kb/config"
	"kb/internal/domain"
	"kb/internal/usecase"
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List the version history",
	Long: `List every version of the knowledge base, oldest first, with the
operation that created it and its row count.`,
	RunE: runVersions,
}

var restoreCmd = &cobra.Command{
	Use:   "restore <version>",
	Short: "Bring back a historical version",
	Long: `Restore the content of a past version. The restored content becomes a
new version on top of the history; nothing is rewritten or lost.

Example:
  kb restore 3`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

func init() {
	rootCmd.AddCommand(versionsCmd)
	rootCmd.AddCommand(restoreCmd)
}

func runVersions(cmd *cobra.Command, args []string) error {
	st, err := openExistingStore()
	if err != nil {
		return err
	}
	defer st.Close()

	versions, err := usecase.NewAdminUseCase(st, config.StoreDir(workspace)).Versions()
	if err != nil {
		return err
	}
	current, err := st.CurrentVersion()
	if err != nil {
		return err
	}
	return writeOK(map[string]interface{}{
		"versions":        versions,
		"current_version": current,
	})
}

func runRestore(cmd *cobra.Command, args []string) error {
	v, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil || v == 0 {
		return fmt.Errorf("%w: version must be a positive integer, got %q", domain.ErrInvalidArgument, args[0])
	}

	st, err := openExistingStore()
	if err != nil {
		return err
	}
	defer st.Close()

	result, err := usecase.NewAdminUseCase(st, config.StoreDir(workspace)).Restore(v)
	if err != nil {
		return err
	}
	return writeOK(result)
}
