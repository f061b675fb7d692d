package cli

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"knowbase/internal/adapter/chunker"
	"knowbase/internal/domain"
	"knowbase/internal/usecase"
)

var doctorRepair bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Detect and repair resources left without embeddings",
	Long: `A resource whose embedding step failed after the resource itself was
stored has zero embedding rows and cannot be found by queries. doctor
lists such resources; with --repair it re-chunks and re-embeds them.

Examples:
  knowbase doctor
  knowbase doctor --repair`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorRepair, "repair", false, "re-embed resources without embeddings")
}

func runDoctor(cmd *cobra.Command, args []string) error {
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

	ingest := usecase.NewIngestUseCase(st, chunker.NewParagraphChunker(cfg.Chunking.MaxChars), embedder, GetLogger())
	doctor := usecase.NewDoctorUseCase(st, ingest, GetLogger())

	stuck, err := doctor.Unembedded()
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	if len(stuck) == 0 {
		fmt.Println("All resources have embeddings.")
		return nil
	}

	fmt.Printf("%d resource(s) without embeddings:\n", len(stuck))
	for _, r := range stuck {
		fmt.Printf("  - %s (%s)\n", r.Name, r.ID)
	}

	if !doctorRepair {
		fmt.Println("\nRun 'knowbase doctor --repair' to re-embed them.")
		return nil
	}

	bar := progressbar.NewOptions(len(stuck),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Repairing[reset]"),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)

	repaired := 0
	var failures []string

	for _, r := range stuck {
		if err := doctor.Repair(r.ID); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %s", r.Name, domain.Describe(err)))
			bar.Add(1)
			continue
		}
		repaired++
		bar.Add(1)
	}

	fmt.Printf("\nRepaired %d of %d resource(s).\n", repaired, len(stuck))
	for _, f := range failures {
		fmt.Printf("  - %s\n", f)
	}

	return nil
}
