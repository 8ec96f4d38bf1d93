// Package cli defines the docchat command tree.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"docchat/internal/answerer"
	"docchat/internal/chunker"
	"docchat/internal/config"
	"docchat/internal/domain"
	embopenai "docchat/internal/embedding/openai"
	llmopenai "docchat/internal/llm/openai"
	"docchat/internal/loader"
	"docchat/internal/retriever"
	"docchat/internal/service"
	"docchat/internal/vectorstore/memory"
	"docchat/internal/vectorstore/sqlite"
)

var (
	cfgPath string
	cfg     *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Chat with your documents",
	Long: `docchat ingests text, PDF and CSV documents, indexes them by
semantic vector, and answers questions grounded in the indexed content.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfgPath != "" {
			cfg, err = config.Load(cfgPath)
		} else {
			cfg, _, err = config.LoadDefault()
		}
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config file")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// newIndex opens the configured vector index backend.
func newIndex() (domain.VectorIndex, error) {
	switch cfg.Store.Type {
	case "sqlite", "":
		return sqlite.Open(cfg.Store.DataDir, cfg.Store.Collection)
	case "memory":
		return memory.New(cfg.Store.Collection), nil
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Store.Type)
	}
}

// newSession assembles the full pipeline from the loaded config.
func newSession() (*service.Session, error) {
	ch, err := chunker.NewRecursive(cfg.Chunking.ChunkSize, cfg.Chunking.Overlap)
	if err != nil {
		return nil, err
	}
	emb, err := embopenai.NewClient(embopenai.Config{
		BaseURL:   cfg.Embedding.BaseURL,
		APIKeyEnv: cfg.Embedding.APIKeyEnv,
		Model:     cfg.Embedding.Model,
	})
	if err != nil {
		return nil, err
	}
	gen, err := llmopenai.NewClient(llmopenai.Config{
		BaseURL:   cfg.Generation.BaseURL,
		APIKeyEnv: cfg.Generation.APIKeyEnv,
		Model:     cfg.Generation.Model,
	})
	if err != nil {
		return nil, err
	}
	index, err := newIndex()
	if err != nil {
		return nil, err
	}
	ans := answerer.New(retriever.New(emb, index), gen, domain.GenerateOptions{
		Temperature: cfg.Generation.Temperature,
		MaxTokens:   cfg.Generation.MaxTokens,
	})
	return service.NewSession(loader.New(), ch, emb, index, ans, cfg.TopK), nil
}

// askTimeout bounds one answer round trip: embedding plus generation.
func askTimeout() time.Duration {
	return time.Duration(cfg.Embedding.TimeoutSecs+cfg.Generation.TimeoutSecs) * time.Second
}
