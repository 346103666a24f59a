package prompt

import (
	"fmt"
	"strings"

	"github.com/docketdive/docketdive/internal/llm"
	"github.com/docketdive/docketdive/internal/retrieval"
)

// Request carries everything the builder needs for one prompt.
type Request struct {
	Query    string
	History  []llm.Message // oldest first
	Bundle   retrieval.ContextBundle
	Language string
	LegalAid bool
}

// Builder composes model-ready message lists. The composition order is
// fixed: preamble, language directive, legal-aid addition, serialized
// context, history, current query.
type Builder struct {
	defaultLanguage string
}

// NewBuilder creates a builder. An empty defaultLanguage selects English.
func NewBuilder(defaultLanguage string) *Builder {
	if defaultLanguage == "" {
		defaultLanguage = DefaultLanguage
	}
	return &Builder{defaultLanguage: defaultLanguage}
}

// Build produces the ordered message list for a completion request. When the
// bundle is explicitly empty the system message instructs the model to state
// it lacks grounding rather than answer freely.
func (b *Builder) Build(req Request) []llm.Message {
	var sys strings.Builder
	sys.WriteString(systemPreamble)
	sys.WriteString("\n\n")

	lang := req.Language
	if lang == "" {
		lang = b.defaultLanguage
	}
	sys.WriteString(directiveForLanguage(lang))
	sys.WriteString("\n")

	if req.LegalAid {
		sys.WriteString("\n")
		sys.WriteString(legalAidDirective)
		sys.WriteString("\n")
	}

	sys.WriteString("\n")
	if req.Bundle.Empty() {
		sys.WriteString(noGroundingDirective)
	} else {
		sys.WriteString(groundedDirective)
		sys.WriteString("\n\n")
		sys.WriteString(serializeBundle(req.Bundle))
	}

	messages := make([]llm.Message, 0, len(req.History)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: sys.String()})
	messages = append(messages, req.History...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: req.Query})
	return messages
}

// serializeBundle renders each passage with its citation metadata so the
// model can attribute claims to [Source N].
func serializeBundle(bundle retrieval.ContextBundle) string {
	var sb strings.Builder
	for i, r := range bundle.Passages {
		md := r.Passage.Metadata

		header := md.Title
		if header == "" {
			header = "Untitled source"
		}
		var attrs []string
		if md.Citation != "" {
			attrs = append(attrs, md.Citation)
		}
		if md.Court != "" {
			attrs = append(attrs, md.Court)
		}
		if len(attrs) > 0 {
			header += " (" + strings.Join(attrs, ", ") + ")"
		}

		fmt.Fprintf(&sb, "[Source %d] %s\n", i+1, header)
		if md.SourceURL != "" {
			fmt.Fprintf(&sb, "URL: %s\n", md.SourceURL)
		}
		sb.WriteString(r.Passage.Content)
		sb.WriteString("\n\n")
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}
