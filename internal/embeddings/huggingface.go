package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// HFEmbedder generates embeddings via a Hugging Face inference endpoint.
// The endpoint accepts {"inputs": "..."} and returns either a vector or an
// array of vectors; authentication is a bearer token.
type HFEmbedder struct {
	endpoint   string
	token      string
	model      string
	dimensions int
	httpClient *http.Client
}

// NewHFEmbedder creates a Hugging Face embedder for the given endpoint URL.
func NewHFEmbedder(endpoint, token, model string, dimensions int) *HFEmbedder {
	return &HFEmbedder{
		endpoint:   endpoint,
		token:      token,
		model:      model,
		dimensions: dimensions,
		httpClient: &http.Client{},
	}
}

func (e *HFEmbedder) Name() string {
	return "huggingface/" + e.model
}

func (e *HFEmbedder) Dimensions() int {
	return e.dimensions
}

type hfEmbedRequest struct {
	Inputs string `json:"inputs"`
}

func (e *HFEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([][]float32, 0, len(texts))
	for _, text := range texts {
		emb, err := e.embedSingle(ctx, text)
		if err != nil {
			return nil, err
		}
		results = append(results, emb)
	}
	return results, nil
}

func (e *HFEmbedder) embedSingle(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(hfEmbedRequest{Inputs: text})
	if err != nil {
		return nil, fmt.Errorf("marshal huggingface request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create huggingface request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.token)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: huggingface: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: huggingface returned status %d: %s", ErrUnavailable, resp.StatusCode, string(respBody))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read huggingface response: %w", err)
	}

	return parseHFVector(raw)
}

// parseHFVector accepts both response shapes the inference API produces:
// a bare vector ([0.1, ...]) or an array of vectors ([[0.1, ...]]).
func parseHFVector(raw []byte) ([]float32, error) {
	var vector []float32
	if err := json.Unmarshal(raw, &vector); err == nil {
		return vector, nil
	}

	var vectors [][]float32
	if err := json.Unmarshal(raw, &vectors); err == nil {
		if len(vectors) == 0 {
			return nil, fmt.Errorf("%w: huggingface returned no embeddings", ErrUnavailable)
		}
		return vectors[0], nil
	}

	return nil, fmt.Errorf("%w: unexpected huggingface response shape", ErrUnavailable)
}
