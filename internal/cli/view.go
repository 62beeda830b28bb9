package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"kb/config"
	"kb/internal/domain"
	"kb/internal/usecase"
)

var (
	viewID     string
	viewSource string
	viewLimit  int
	viewOffset int
	viewFormat string
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Inspect stored records without ranking",
	Long: `List live records ordered by source file and chunk index. Formats:
json (the standard envelope), table (aligned columns) and summary
(the envelope with truncated text and per-source counts).

Examples:
  kb view --limit 5
  kb view --source runbook.md --format table
  kb view --id 6f1c...`,
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
	viewCmd.Flags().StringVar(&viewID, "id", "", "show a single record by id")
	viewCmd.Flags().StringVar(&viewSource, "source", "", "restrict to one source file")
	viewCmd.Flags().IntVar(&viewLimit, "limit", 100, "maximum records")
	viewCmd.Flags().IntVar(&viewOffset, "offset", 0, "records to skip")
	viewCmd.Flags().StringVar(&viewFormat, "format", "json", "output format: json, table or summary")
}

func runView(cmd *cobra.Command, args []string) error {
	// An absent knowledge base is a reportable state, not an error.
	if _, err := os.Stat(config.StorePath(workspace)); os.IsNotExist(err) {
		return writeOK(&usecase.ViewResult{Records: []domain.ChunkRecord{}})
	}

	st, err := openExistingStore()
	if err != nil {
		return err
	}
	defer st.Close()

	result, err := usecase.NewViewUseCase(st).View(
		domain.Filter{ID: viewID, SourceFile: viewSource},
		viewLimit, viewOffset,
	)
	if err != nil {
		return err
	}

	switch viewFormat {
	case "json":
		return writeOK(result)
	case "table":
		rows := [][]string{{"ID", "SOURCE", "PAGE", "CHUNK", "TEXT"}}
		for _, rec := range result.Records {
			rows = append(rows, []string{
				rec.ID,
				rec.SourceFile,
				strconv.Itoa(rec.Page),
				strconv.Itoa(rec.ChunkIndex),
				truncate(rec.Text, 60),
			})
		}
		fprintTable(rows)
		return nil
	case "summary":
		// Same envelope as json with record text shortened; the source
		// aggregates carry the detail.
		for i := range result.Records {
			result.Records[i].Text = truncate(result.Records[i].Text, 200)
		}
		return writeOK(result)
	default:
		return fmt.Errorf("%w: unknown format %q", domain.ErrInvalidArgument, viewFormat)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
