package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/docketdive/docketdive/internal/db"
	"github.com/docketdive/docketdive/internal/ingest"
	"github.com/docketdive/docketdive/internal/vectordb"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [corpus-dir]",
	Short: "Ingest a Markdown corpus into the vector store",
	Long: `Walks the corpus directory, chunks each Markdown document at heading
boundaries, embeds the chunks, and stores them for retrieval. Files whose
content is unchanged since the last run are skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().Bool("force", false, "re-ingest unchanged files")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	corpusDir := cfg.Ingest.CorpusDir
	if len(args) == 1 {
		corpusDir = args[0]
	}
	force, _ := cmd.Flags().GetBool("force")

	embedder, err := createDocumentEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}

	// The query embedder is only exercised at search time; ingestion passes
	// precomputed document vectors.
	queryEmbedder, err := createQueryEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}

	store, err := vectordb.NewChromemStore(queryEmbedder)
	if err != nil {
		return fmt.Errorf("creating vector store: %w", err)
	}
	if err := os.MkdirAll(cfg.Store.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := store.Load(context.Background(), cfg.Store.DataDir); err != nil {
		fmt.Fprintf(os.Stderr, "Starting with an empty vector store: %v\n", err)
	}

	registry, err := db.Open(filepath.Join(cfg.Store.DataDir, "docketdive.db"))
	if err != nil {
		return fmt.Errorf("opening registry: %w", err)
	}
	defer registry.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline := ingest.NewPipeline(embedder, store, registry)
	stats, err := pipeline.Run(ctx, ingest.Config{
		CorpusDir: corpusDir,
		DataDir:   cfg.Store.DataDir,
		Include:   cfg.Ingest.Include,
		Exclude:   cfg.Ingest.Exclude,
		ChunkSize: cfg.Ingest.ChunkSize,
		Force:     force,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Ingested %d file(s), skipped %d unchanged, %d passage(s) total.\n",
		stats.FilesIngested, stats.FilesSkipped, stats.Passages)
	fmt.Printf("Store now holds %d passage(s).\n", store.Count())
	return nil
}
