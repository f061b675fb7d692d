package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"knowbase/internal/usecase"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored resources",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
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

	doctor := usecase.NewDoctorUseCase(st, nil, GetLogger())
	health, err := doctor.Check()
	if err != nil {
		return fmt.Errorf("failed to list resources: %w", err)
	}

	if len(health) == 0 {
		fmt.Println("No resources stored.")
		return nil
	}

	fmt.Printf("%-38s %-30s %-10s %s\n", "ID", "NAME", "CHUNKS", "CREATED")
	for _, h := range health {
		fmt.Printf("%-38s %-30s %-10d %s\n",
			h.Resource.ID,
			h.Resource.Name,
			h.EmbeddingCount,
			h.Resource.CreatedAt.Format("2006-01-02 15:04"))
	}

	return nil
}
