package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docketdive/docketdive/internal/vectordb"
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Semantically search the ingested corpus",
	Long:  `Searches the vector store with a natural language query and returns ranked passages with citations. No generation is involved.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().Int("limit", 8, "maximum number of results")
	queryCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	queryText := args[0]

	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	queryEmbedder, err := createQueryEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}

	store, err := vectordb.NewChromemStore(queryEmbedder)
	if err != nil {
		return fmt.Errorf("creating vector store: %w", err)
	}
	if err := store.Load(ctx, cfg.Store.DataDir); err != nil {
		return fmt.Errorf("loading vector store from %s: %w\nRun `docketdive ingest` first to build the index", cfg.Store.DataDir, err)
	}

	if store.Count() == 0 {
		fmt.Println("Vector store is empty. Run `docketdive ingest` first.")
		return nil
	}

	results, err := store.Search(ctx, queryText, limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	if jsonOutput {
		return printQueryResultsJSON(results)
	}

	printQueryResultsTable(results)
	return nil
}

type queryResultJSON struct {
	Rank       int     `json:"rank"`
	Similarity float64 `json:"similarity"`
	Title      string  `json:"title"`
	Citation   string  `json:"citation,omitempty"`
	Court      string  `json:"court,omitempty"`
	SourceURL  string  `json:"source_url"`
	Type       string  `json:"type"`
	Summary    string  `json:"summary"`
}

func printQueryResultsJSON(results []vectordb.SearchResult) error {
	var out []queryResultJSON
	for i, r := range results {
		md := r.Passage.Metadata
		out = append(out, queryResultJSON{
			Rank:       i + 1,
			Similarity: float64(r.Similarity),
			Title:      md.Title,
			Citation:   md.Citation,
			Court:      md.Court,
			SourceURL:  md.SourceURL,
			Type:       string(md.Type),
			Summary:    truncate(r.Passage.Content, 200),
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printQueryResultsTable(results []vectordb.SearchResult) {
	fmt.Printf("Found %d results:\n\n", len(results))
	for i, r := range results {
		md := r.Passage.Metadata

		title := md.Title
		if md.Citation != "" {
			title = fmt.Sprintf("%s %s", title, md.Citation)
		}

		fmt.Printf("  %d. [%.1f%%] %s\n", i+1, r.Similarity*100, title)
		if md.Court != "" {
			fmt.Printf("     Court: %s\n", md.Court)
		}
		if md.SourceURL != "" {
			fmt.Printf("     URL: %s\n", md.SourceURL)
		}
		fmt.Printf("     %s\n\n", truncate(r.Passage.Content, 120))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
