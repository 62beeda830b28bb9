package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"kb/internal/domain"
	"kb/internal/port"
	"kb/internal/usecase"
)

var (
	searchQuery  string
	searchMode   string
	searchLimit  int
	searchSource string
	searchID     string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the live version",
	Long: `Search the knowledge base. Modes: fts (BM25 lexical), vector (cosine
over embeddings) and hybrid (reciprocal rank fusion of both). fts works
without embedding credentials.

Examples:
  kb search -q "connection pooling" -m fts
  kb search -q "how do we roll back" -m hybrid --limit 5
  kb search -q "retries" --source runbook.md`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "search query (required)")
	searchCmd.Flags().StringVarP(&searchMode, "mode", "m", "", "search mode: fts, vector or hybrid (default from config)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "maximum results (default from config)")
	searchCmd.Flags().StringVar(&searchSource, "source", "", "restrict to one source file")
	searchCmd.Flags().StringVar(&searchID, "id", "", "restrict to one record id")
	searchCmd.MarkFlagRequired("query")
}

func runSearch(cmd *cobra.Command, args []string) error {
	mode := domain.SearchMode(searchMode)
	if searchMode == "" {
		mode = domain.SearchMode(cfg.Search.Mode)
	}
	if !mode.Valid() {
		return fmt.Errorf("%w: unknown search mode %q", domain.ErrInvalidArgument, mode)
	}
	limit := searchLimit
	if limit <= 0 {
		limit = cfg.Search.Limit
	}

	st, err := openExistingStore()
	if err != nil {
		return err
	}
	defer st.Close()

	// fts runs without credentials; the other modes need the embedder.
	var embedder port.Embedder
	if mode != domain.SearchFTS {
		embedder, err = storeEmbedder(st)
		if err != nil {
			return err
		}
	}

	fts, semantic, hybrid := newRetrievers(st, embedder)
	searchUC := usecase.NewSearchUseCase(st, fts, semantic, hybrid)

	result, err := searchUC.Search(searchQuery, mode, limit, domain.Filter{SourceFile: searchSource, ID: searchID})
	if err != nil {
		return err
	}
	return writeOK(result)
}
