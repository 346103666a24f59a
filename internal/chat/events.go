package chat

import (
	"encoding/json"
	"fmt"

	"github.com/docketdive/docketdive/internal/retrieval"
)

// EventType tags the variants of the response stream.
type EventType string

const (
	// EventSources carries the citation list. Emitted exactly once, before
	// any text delta, possibly with an empty list.
	EventSources EventType = "sources"
	// EventTextDelta carries one increment of generated text.
	EventTextDelta EventType = "text_delta"
	// EventMetadata summarizes the completed response. Terminal on success.
	EventMetadata EventType = "metadata"
	// EventError reports a mid-stream failure. Terminal; partial text
	// already emitted is not retracted.
	EventError EventType = "error"
)

// Source is the citation payload of a sources event.
type Source struct {
	Title      string  `json:"title"`
	Citation   string  `json:"citation,omitempty"`
	Court      string  `json:"court,omitempty"`
	SourceURL  string  `json:"sourceUrl"`
	Similarity float32 `json:"similarity"`
}

// Metadata is the payload of the terminal metadata event.
type Metadata struct {
	RequestID    string `json:"requestId"`
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	InputTokens  int    `json:"inputTokens"`
	OutputTokens int    `json:"outputTokens"`
	PassageCount int    `json:"passageCount"`
	DurationMS   int64  `json:"durationMs"`
}

// Event is a tagged variant over {sources, text_delta, metadata, error}.
// Exactly one payload field is meaningful for a given Type; consumers
// pattern-match on Type. The wire shape is {"type": ..., "content": ...}.
type Event struct {
	Type    EventType
	Sources []Source
	Delta   string
	Meta    *Metadata
	Err     string
}

type eventEnvelope struct {
	Type    EventType       `json:"type"`
	Content json.RawMessage `json:"content"`
}

// MarshalJSON renders the tagged variant as its line-delimited wire form.
func (e Event) MarshalJSON() ([]byte, error) {
	var content any
	switch e.Type {
	case EventSources:
		sources := e.Sources
		if sources == nil {
			sources = []Source{}
		}
		content = sources
	case EventTextDelta:
		content = e.Delta
	case EventMetadata:
		content = e.Meta
	case EventError:
		content = e.Err
	default:
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}

	raw, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(eventEnvelope{Type: e.Type, Content: raw})
}

// UnmarshalJSON parses the wire form back into the tagged variant.
func (e *Event) UnmarshalJSON(data []byte) error {
	var env eventEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	e.Type = env.Type
	switch env.Type {
	case EventSources:
		return json.Unmarshal(env.Content, &e.Sources)
	case EventTextDelta:
		return json.Unmarshal(env.Content, &e.Delta)
	case EventMetadata:
		return json.Unmarshal(env.Content, &e.Meta)
	case EventError:
		return json.Unmarshal(env.Content, &e.Err)
	default:
		return fmt.Errorf("unknown event type %q", env.Type)
	}
}

// sourcesFromBundle converts assembled passages into the sources payload.
func sourcesFromBundle(bundle retrieval.ContextBundle) []Source {
	sources := make([]Source, 0, len(bundle.Passages))
	for _, r := range bundle.Passages {
		md := r.Passage.Metadata
		sources = append(sources, Source{
			Title:      md.Title,
			Citation:   md.Citation,
			Court:      md.Court,
			SourceURL:  md.SourceURL,
			Similarity: r.Similarity,
		})
	}
	return sources
}
