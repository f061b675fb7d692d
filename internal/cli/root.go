package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"knowbase/config"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "knowbase",
	Short: "Knowbase - Ingest documents and retrieve relevant passages",
	Long: `Knowbase turns documents (PDF, text, markdown) into a searchable
knowledge base: text is chunked, embedded, and stored, and natural-language
queries return the most semantically similar passages.

Example usage:
  knowbase ingest docs/*.pdf          # Ingest documents
  knowbase query -q "refund policy"   # Find relevant passages
  knowbase doctor --repair            # Re-embed resources left without embeddings`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		// .env may hold the embedding API key; missing file is fine.
		godotenv.Load()

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, err = newLogger(cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Sync()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./knowbase.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "data directory (default is current directory)")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.OutputPaths = []string{"stderr"}
	return zcfg.Build()
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}

func GetLogger() *zap.Logger {
	return logger
}
