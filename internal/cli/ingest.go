package cli

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"kb/internal/adapter/chunker"
	"kb/internal/adapter/fs"
	"kb/internal/domain"
	"kb/internal/usecase"
)

var (
	ingestText      string
	ingestFile      string
	ingestDir       string
	ingestSource    string
	ingestPage      int
	ingestChunkSize int
	ingestOverlap   int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Chunk, embed and store documents",
	Long: `Ingest text into the knowledge base. Exactly one input source must be
given: --text for raw text, --text-file for a single file, or --dir for
a directory of documents. Every ingest commits a new version;
re-ingesting a source replaces its previous chunks.

Examples:
  kb ingest --text "postgres replication notes" --source notes.md
  kb ingest --text-file ./runbook.md
  kb ingest --dir ./docs --chunk-size 300 --overlap 50`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVar(&ingestText, "text", "", "raw text to ingest")
	ingestCmd.Flags().StringVar(&ingestFile, "text-file", "", "file to ingest")
	ingestCmd.Flags().StringVar(&ingestDir, "dir", "", "directory to ingest")
	ingestCmd.Flags().StringVar(&ingestSource, "source", "", "source name for --text (default \"inline\")")
	ingestCmd.Flags().IntVar(&ingestPage, "page", 0, "page number recorded on the chunks (default 1)")
	ingestCmd.Flags().IntVar(&ingestChunkSize, "chunk-size", 0, "words per chunk (default from config)")
	ingestCmd.Flags().IntVar(&ingestOverlap, "overlap", -1, "overlapping words between chunks (default from config)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	// An explicit --text "" still selects text input so the empty
	// content surfaces as no_content, not a missing-input error.
	textSet := cmd.Flags().Changed("text")
	inputs := 0
	for _, set := range []bool{textSet, ingestFile != "", ingestDir != ""} {
		if set {
			inputs++
		}
	}
	if inputs != 1 {
		return fmt.Errorf("%w: exactly one of --text, --text-file or --dir is required", domain.ErrInvalidArgument)
	}

	st, err := openExistingStore()
	if err != nil {
		return err
	}
	defer st.Close()

	embedder, err := storeEmbedder(st)
	if err != nil {
		return err
	}

	chunkSize := cfg.Chunk.MaxWords
	if ingestChunkSize > 0 {
		chunkSize = ingestChunkSize
	}
	overlap := cfg.Chunk.Overlap
	if ingestOverlap >= 0 {
		overlap = ingestOverlap
	}

	walker := fs.NewWalker(cfg.Ingest.Includes, cfg.Ingest.Excludes)
	ingestUC := usecase.NewIngestUseCase(
		st, chunker.NewWordChunker(), embedder, walker,
		chunkSize, overlap,
	)

	var result *usecase.IngestResult
	switch {
	case textSet:
		result, err = ingestUC.IngestText(ingestText, ingestSource, ingestPage)
	case ingestFile != "":
		result, err = ingestUC.IngestFile(ingestFile, ingestPage)
	case ingestDir != "":
		result, err = ingestUC.IngestDir(ingestDir, ingestProgress())
	}
	if err != nil {
		return err
	}
	return writeOK(result)
}

// ingestProgress returns a progress callback rendering a bar on stderr,
// keeping stdout parseable.
func ingestProgress() func(done, total int, path string) {
	var bar *progressbar.ProgressBar
	return func(done, total int, path string) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("Ingesting"),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(os.Stderr)
				}),
			)
		}
		bar.Set(done)
	}
}
