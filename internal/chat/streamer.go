package chat

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/docketdive/docketdive/internal/llm"
	"github.com/docketdive/docketdive/internal/retrieval"
)

const defaultFirstTokenTimeout = 30 * time.Second

// StreamJob carries everything the streamer needs for one response.
type StreamJob struct {
	RequestID   string
	Provider    string
	Model       string
	Bundle      retrieval.ContextBundle
	TokenStream llm.Stream
	Started     time.Time
}

// Streamer converts a provider token stream into the ordered event stream:
// one sources event first, one text_delta per chunk, then exactly one
// terminal metadata event, or a terminal error event on failure.
type Streamer struct {
	firstTokenTimeout time.Duration
}

// NewStreamer creates a streamer. firstTokenTimeout <= 0 selects the 30s
// default.
func NewStreamer(firstTokenTimeout time.Duration) *Streamer {
	if firstTokenTimeout <= 0 {
		firstTokenTimeout = defaultFirstTokenTimeout
	}
	return &Streamer{firstTokenTimeout: firstTokenTimeout}
}

// Stream starts consuming the job's token stream and returns the event
// channel. The channel is closed when the response completes, fails, or the
// caller's context is cancelled; in all cases the upstream stream is closed
// so no orphaned provider connection remains.
func (s *Streamer) Stream(ctx context.Context, job StreamJob) <-chan Event {
	out := make(chan Event)

	go func() {
		defer close(out)
		defer job.TokenStream.Close()

		if !send(ctx, out, Event{Type: EventSources, Sources: sourcesFromBundle(job.Bundle)}) {
			return
		}

		chunks := make(chan llm.Chunk)
		recvErr := make(chan error, 1)
		go func() {
			for {
				chunk, err := job.TokenStream.Recv()
				if err != nil {
					select {
					case recvErr <- err:
					case <-ctx.Done():
					}
					return
				}
				select {
				case chunks <- chunk:
				case <-ctx.Done():
					return
				}
			}
		}()

		timeout := time.NewTimer(s.firstTokenTimeout)
		defer timeout.Stop()

		var usage llm.Usage
		first := true
		for {
			select {
			case <-ctx.Done():
				// Caller disconnected: stop consuming and release upstream.
				return

			case <-timeout.C:
				send(ctx, out, Event{
					Type: EventError,
					Err:  llm.ErrTimeout.Error(),
				})
				return

			case err := <-recvErr:
				if errors.Is(err, io.EOF) {
					send(ctx, out, Event{Type: EventMetadata, Meta: &Metadata{
						RequestID:    job.RequestID,
						Provider:     job.Provider,
						Model:        job.Model,
						InputTokens:  usage.InputTokens,
						OutputTokens: usage.OutputTokens,
						PassageCount: len(job.Bundle.Passages),
						DurationMS:   time.Since(job.Started).Milliseconds(),
					}})
					return
				}
				send(ctx, out, Event{Type: EventError, Err: err.Error()})
				return

			case chunk := <-chunks:
				if first {
					first = false
					timeout.Stop()
				}
				if chunk.Usage != nil {
					usage = *chunk.Usage
				}
				if chunk.Content != "" {
					if !send(ctx, out, Event{Type: EventTextDelta, Delta: chunk.Content}) {
						return
					}
				}
			}
		}
	}()

	return out
}

func send(ctx context.Context, out chan<- Event, ev Event) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
