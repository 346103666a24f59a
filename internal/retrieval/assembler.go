package retrieval

import (
	"sort"

	"github.com/docketdive/docketdive/internal/vectordb"
)

// Config controls how raw search hits are filtered into a context bundle.
type Config struct {
	// MinSimilarity drops passages scoring below it. Low enough that related
	// legal topics survive, high enough that unrelated ones are excluded.
	MinSimilarity float32
	// MaxPassages caps the number of passages in a bundle.
	MaxPassages int
	// CharBudget bounds the cumulative passage text admitted into a prompt.
	CharBudget int
}

// DefaultConfig returns the assembler defaults.
func DefaultConfig() Config {
	return Config{
		MinSimilarity: 0.35,
		MaxPassages:   6,
		CharBudget:    8000,
	}
}

// ContextBundle is the ordered set of passages selected for prompting. An
// empty bundle is a meaningful value: it tells the prompt builder that no
// grounding is available, which switches the guardrails from
// answer-with-citations to refuse.
type ContextBundle struct {
	Passages   []vectordb.SearchResult
	TotalChars int
}

// Empty reports whether no passages survived filtering.
func (b ContextBundle) Empty() bool {
	return len(b.Passages) == 0
}

// Assembler turns raw vector search hits into a bounded, deduplicated
// context bundle.
type Assembler struct {
	cfg Config
}

// NewAssembler creates an assembler. Zero-valued config fields fall back to
// defaults.
func NewAssembler(cfg Config) *Assembler {
	def := DefaultConfig()
	if cfg.MinSimilarity <= 0 {
		cfg.MinSimilarity = def.MinSimilarity
	}
	if cfg.MaxPassages <= 0 {
		cfg.MaxPassages = def.MaxPassages
	}
	if cfg.CharBudget <= 0 {
		cfg.CharBudget = def.CharBudget
	}
	return &Assembler{cfg: cfg}
}

// Assemble filters hits below the similarity threshold, deduplicates by
// source URL keeping the highest-scoring passage per source, and greedily
// packs passages in descending score order under the character budget.
// Zero survivors produce an explicitly empty bundle, never an error.
func (a *Assembler) Assemble(results []vectordb.SearchResult) ContextBundle {
	// Threshold filter.
	kept := make([]vectordb.SearchResult, 0, len(results))
	for _, r := range results {
		if r.Similarity >= a.cfg.MinSimilarity {
			kept = append(kept, r)
		}
	}

	// Deterministic order: descending score, passage ID as tie-break so
	// identical inputs always produce identical bundles.
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Similarity != kept[j].Similarity {
			return kept[i].Similarity > kept[j].Similarity
		}
		return kept[i].Passage.ID < kept[j].Passage.ID
	})

	// Dedupe by source URL; the first hit per URL is the highest-scoring one.
	seen := make(map[string]bool, len(kept))
	deduped := kept[:0]
	for _, r := range kept {
		url := r.Passage.Metadata.SourceURL
		if url != "" {
			if seen[url] {
				continue
			}
			seen[url] = true
		}
		deduped = append(deduped, r)
	}

	// Greedy packing under the budget. The top passage is always admitted so
	// that surviving evidence is never silently discarded.
	var bundle ContextBundle
	for _, r := range deduped {
		if len(bundle.Passages) >= a.cfg.MaxPassages {
			break
		}
		size := len(r.Passage.Content)
		if len(bundle.Passages) > 0 && bundle.TotalChars+size > a.cfg.CharBudget {
			break
		}
		bundle.Passages = append(bundle.Passages, r)
		bundle.TotalChars += size
	}

	return bundle
}
