package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"knowbase/internal/usecase"
)

var (
	queryText   string
	queryLimit  int
	queryMinSim float64
	queryJSON   bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Find stored passages relevant to a question",
	Long: `Embed the query and return the stored passages most similar to it,
ranked by cosine similarity.

Examples:
  knowbase query -q "what is the refund policy"
  knowbase query -q "shipping times" --limit 10 --json`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "query text (required)")
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "k", 0, "max passages (default from config)")
	queryCmd.Flags().Float64Var(&queryMinSim, "min-similarity", -1, "similarity threshold (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.MarkFlagRequired("query")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	rootDir := GetRootDir()

	if err := requireStore(rootDir); err != nil {
		return err
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	st, err := openStore(rootDir, cfg, embedder)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	minSim := cfg.Retrieve.MinSimilarity
	if queryMinSim >= 0 {
		minSim = queryMinSim
	}
	limit := cfg.Retrieve.Limit
	if queryLimit > 0 {
		limit = queryLimit
	}

	retrieve := usecase.NewRetrieveUseCase(st, embedder, minSim, limit, GetLogger())

	passages, err := retrieve.FindRelevantContent(queryText)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		output, _ := json.MarshalIndent(passages, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(passages) == 0 {
		fmt.Println("No relevant passages found.")
		return nil
	}

	fmt.Printf("Found %d passages for: %s\n\n", len(passages), queryText)
	for i, p := range passages {
		fmt.Printf("--- [%d] (similarity: %.2f) ---\n", i+1, p.Similarity)
		text := p.Content
		if len(text) > 500 {
			text = text[:500] + "..."
		}
		fmt.Println(text)
		fmt.Println()
	}

	return nil
}
