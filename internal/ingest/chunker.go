package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// DefaultChunkSize is the target chunk length in characters. Sections longer
// than this are split at block boundaries.
const DefaultChunkSize = 1500

// DocumentMeta is the YAML front matter of a corpus file.
type DocumentMeta struct {
	Title     string `yaml:"title"`
	Citation  string `yaml:"citation"`
	Court     string `yaml:"court"`
	SourceURL string `yaml:"source_url"`
	Language  string `yaml:"language"`
	Type      string `yaml:"type"`
}

// Chunk is one retrievable passage cut from a corpus document.
type Chunk struct {
	Heading string
	Content string
}

var frontMatterDelim = []byte("---")

// ParseDocument splits a corpus file into its front matter and body.
// A missing front matter block is not an error; the meta is zero.
func ParseDocument(source []byte) (DocumentMeta, []byte, error) {
	var meta DocumentMeta

	trimmed := bytes.TrimLeft(source, "\ufeff")
	if !bytes.HasPrefix(trimmed, frontMatterDelim) {
		return meta, source, nil
	}

	rest := trimmed[len(frontMatterDelim):]
	rest = bytes.TrimPrefix(rest, []byte("\r"))
	if len(rest) == 0 || rest[0] != '\n' {
		return meta, source, nil
	}
	rest = rest[1:]

	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return meta, source, nil
	}

	block := rest[:end]
	if err := yaml.Unmarshal(block, &meta); err != nil {
		return DocumentMeta{}, nil, fmt.Errorf("parsing front matter: %w", err)
	}

	body := rest[end+len("\n---"):]
	body = bytes.TrimLeft(body, "-")
	body = bytes.TrimLeft(body, "\r\n")
	return meta, body, nil
}

// ChunkMarkdown cuts a Markdown body into heading-aware chunks. Every heading
// starts a new section; sections longer than chunkSize are split at block
// boundaries, with the section heading repeated on each continuation so no
// passage loses its context.
func ChunkMarkdown(body []byte, chunkSize int) []Chunk {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(body))

	var chunks []Chunk
	var heading string
	var blocks []string

	flush := func() {
		if len(blocks) == 0 {
			return
		}
		for _, content := range packBlocks(blocks, chunkSize) {
			chunks = append(chunks, Chunk{Heading: heading, Content: content})
		}
		blocks = nil
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			flush()
			heading = strings.TrimSpace(nodeText(h, body))
			continue
		}
		if txt := strings.TrimSpace(nodeText(n, body)); txt != "" {
			blocks = append(blocks, txt)
		}
	}
	flush()

	return chunks
}

// packBlocks joins consecutive blocks into chunks no longer than chunkSize.
// A single oversize block becomes a chunk on its own.
func packBlocks(blocks []string, chunkSize int) []string {
	var out []string
	var current []string
	currentLen := 0

	for _, block := range blocks {
		blockLen := len(block) + 2
		if currentLen+blockLen > chunkSize && len(current) > 0 {
			out = append(out, strings.Join(current, "\n\n"))
			current = nil
			currentLen = 0
		}
		current = append(current, block)
		currentLen += blockLen
	}
	if len(current) > 0 {
		out = append(out, strings.Join(current, "\n\n"))
	}
	return out
}

// nodeText collects the raw source text covered by a block node and its
// descendants.
func nodeText(n ast.Node, source []byte) string {
	var sb strings.Builder
	collectText(n, source, &sb)
	return sb.String()
}

func collectText(n ast.Node, source []byte, sb *strings.Builder) {
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		for i := 0; i < n.Lines().Len(); i++ {
			seg := n.Lines().At(i)
			sb.Write(seg.Value(source))
		}
		return
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		collectText(c, source, sb)
		if c.Type() == ast.TypeBlock && c.NextSibling() != nil {
			sb.WriteString("\n")
		}
	}
}
