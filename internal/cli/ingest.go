package cli

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"knowbase/internal/adapter/chunker"
	"knowbase/internal/adapter/extract"
	"knowbase/internal/domain"
	"knowbase/internal/usecase"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file|glob>...",
	Short: "Ingest documents into the knowledge base",
	Long: `Extract text from the given documents (PDF, .txt, .md), chunk and
embed it, and store the result for retrieval. Arguments may be file paths
or glob patterns (** is supported).

Examples:
  knowbase ingest manual.pdf
  knowbase ingest "docs/**/*.md" notes.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	files, err := expandPatterns(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files match the given patterns")
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	st, err := openStore(GetRootDir(), cfg, embedder)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	extractor := extract.NewExtractor()
	ingest := usecase.NewIngestUseCase(st, chunker.NewParagraphChunker(cfg.Chunking.MaxChars), embedder, GetLogger())

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Ingesting[reset]"),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)

	ingested := 0
	var failures []string

	for _, file := range files {
		content, err := extractor.Extract(file)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", file, err))
			bar.Add(1)
			continue
		}

		if _, err := ingest.CreateResource(usecase.NewResource{
			Name:    filepath.Base(file),
			Content: content,
		}); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %s", file, domain.Describe(err)))
			bar.Add(1)
			continue
		}

		ingested++
		bar.Add(1)
	}

	fmt.Printf("\nIngestion complete:\n")
	fmt.Printf("  Documents ingested: %d\n", ingested)
	fmt.Printf("  Failures:           %d\n", len(failures))

	if len(failures) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, f := range failures {
			fmt.Printf("  - %s\n", f)
		}
		fmt.Println("\nRun 'knowbase doctor' to find resources left without embeddings.")
	}

	return nil
}

// expandPatterns resolves each argument as a doublestar glob, keeping
// literal paths that match nothing as-is so missing files are reported
// per-file.
func expandPatterns(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			files = append(files, arg)
			continue
		}
		files = append(files, matches...)
	}
	return files, nil
}
