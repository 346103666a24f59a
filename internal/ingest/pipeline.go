package ingest

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/docketdive/docketdive/internal/db"
	"github.com/docketdive/docketdive/internal/embeddings"
	"github.com/docketdive/docketdive/internal/vectordb"
)

// Config controls one ingestion run.
type Config struct {
	CorpusDir string
	DataDir   string // directory the vector store persists into
	Include   []string
	Exclude   []string
	ChunkSize int
	Force     bool // re-ingest files even when their hash is unchanged
	Quiet     bool // suppress the progress bar
}

// Stats summarizes an ingestion run.
type Stats struct {
	FilesSeen     int
	FilesSkipped  int
	FilesIngested int
	Passages      int
}

// Pipeline ingests a Markdown corpus into the vector store. The embedder
// must apply the document prefix; queries use a separate embedder.
type Pipeline struct {
	embedder embeddings.Embedder
	store    vectordb.Store
	registry *db.DB
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(embedder embeddings.Embedder, store vectordb.Store, registry *db.DB) *Pipeline {
	return &Pipeline{
		embedder: embedder,
		store:    store,
		registry: registry,
	}
}

// Run walks the corpus, ingests changed files, and persists the store.
// Unchanged files (same content hash as the registry row) are skipped unless
// cfg.Force is set.
func (p *Pipeline) Run(ctx context.Context, cfg Config) (*Stats, error) {
	files, err := Walk(WalkConfig{
		RootDir: cfg.CorpusDir,
		Include: cfg.Include,
		Exclude: cfg.Exclude,
	})
	if err != nil {
		return nil, err
	}

	stats := &Stats{FilesSeen: len(files)}

	var bar *progressbar.ProgressBar
	if !cfg.Quiet {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription("Ingesting corpus"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if bar != nil {
			bar.Describe(file.RelPath)
		}

		existing, err := p.registry.GetDocument(ctx, file.RelPath)
		if err != nil {
			return stats, err
		}
		if existing != nil && existing.ContentHash == file.ContentHash && !cfg.Force {
			stats.FilesSkipped++
			if bar != nil {
				_ = bar.Add(1)
			}
			continue
		}

		count, err := p.ingestFile(ctx, file, cfg.ChunkSize)
		if err != nil {
			// One bad file should not abort the whole corpus.
			log.Printf("ingest: %s: %v", file.RelPath, err)
			if bar != nil {
				_ = bar.Add(1)
			}
			continue
		}

		stats.FilesIngested++
		stats.Passages += count
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}

	if err := p.store.Persist(ctx, cfg.DataDir); err != nil {
		return stats, fmt.Errorf("persisting store: %w", err)
	}
	return stats, nil
}

// ingestFile chunks, embeds, and stores one corpus file, replacing any
// passages from a previous version of the same source.
func (p *Pipeline) ingestFile(ctx context.Context, file FileInfo, chunkSize int) (int, error) {
	source, err := os.ReadFile(file.Path)
	if err != nil {
		return 0, fmt.Errorf("reading: %w", err)
	}

	meta, body, err := ParseDocument(source)
	if err != nil {
		return 0, err
	}

	chunks := ChunkMarkdown(body, chunkSize)
	if len(chunks) == 0 {
		return 0, nil
	}

	sourceURL := meta.SourceURL
	if sourceURL == "" {
		sourceURL = "file://" + file.RelPath
	}

	// Drop passages from the previous version of this source before adding
	// the new ones.
	if err := p.store.DeleteBySourceURL(ctx, sourceURL); err != nil {
		return 0, fmt.Errorf("deleting stale passages: %w", err)
	}

	passages := make([]vectordb.Passage, 0, len(chunks))
	texts := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		content := chunk.Content
		if chunk.Heading != "" {
			content = chunk.Heading + "\n\n" + content
		}
		passages = append(passages, vectordb.Passage{
			ID:      fmt.Sprintf("%s#%d", file.RelPath, i),
			Content: content,
			Metadata: vectordb.PassageMetadata{
				Title:       titleFor(meta, file),
				Citation:    meta.Citation,
				Court:       meta.Court,
				SourceURL:   sourceURL,
				Language:    meta.Language,
				Type:        sourceTypeFor(meta),
				ContentHash: file.ContentHash,
				IngestedAt:  time.Now().UTC(),
			},
		})
		texts = append(texts, content)
	}

	vectors, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding: %w", err)
	}

	if err := p.store.AddPassages(ctx, passages, vectors); err != nil {
		return 0, fmt.Errorf("storing passages: %w", err)
	}

	if err := p.registry.UpsertDocument(ctx, db.Document{
		Path:         file.RelPath,
		ContentHash:  file.ContentHash,
		SourceURL:    sourceURL,
		PassageCount: len(passages),
		IngestedAt:   time.Now().UTC(),
	}); err != nil {
		return 0, fmt.Errorf("recording document: %w", err)
	}

	return len(passages), nil
}

func titleFor(meta DocumentMeta, file FileInfo) string {
	if meta.Title != "" {
		return meta.Title
	}
	base := filepath.Base(file.RelPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func sourceTypeFor(meta DocumentMeta) vectordb.SourceType {
	switch vectordb.SourceType(meta.Type) {
	case vectordb.SourceCaseLaw, vectordb.SourceLegislation, vectordb.SourceCommentary:
		return vectordb.SourceType(meta.Type)
	default:
		return vectordb.SourceCaseLaw
	}
}
