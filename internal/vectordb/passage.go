package vectordb

import "time"

// SourceType categorizes the kind of legal document a passage comes from.
type SourceType string

const (
	SourceCaseLaw     SourceType = "case_law"
	SourceLegislation SourceType = "legislation"
	SourceCommentary  SourceType = "commentary"
)

// Passage is a chunk of a legal document stored for retrieval.
type Passage struct {
	ID       string
	Content  string
	Metadata PassageMetadata
}

// PassageMetadata holds citation information used to attribute claims.
type PassageMetadata struct {
	Title       string
	Citation    string
	Court       string
	SourceURL   string
	Language    string
	Type        SourceType
	ContentHash string
	IngestedAt  time.Time
}

// SearchResult pairs a passage with its similarity score in [0,1].
type SearchResult struct {
	Passage    Passage
	Similarity float32
}
