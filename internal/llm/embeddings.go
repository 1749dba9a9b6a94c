package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// EmbeddingsClient is a client for an OpenAI-compatible embeddings API
// (llama.cpp, Ollama, vLLM and similar servers). One client serves both
// index time and query time, so every vector in a collection comes from
// the same embedding function.
type EmbeddingsClient struct {
	BaseURL    string
	APIKey     string
	Model      string
	VectorSize int
	client     *http.Client
}

// NewEmbeddingsClient creates a new embeddings client. vectorSize is the
// dimensionality of the target collection; vectors of any other size are
// rejected rather than written to the store.
func NewEmbeddingsClient(baseURL, apiKey, model string, vectorSize int) *EmbeddingsClient {
	return &EmbeddingsClient{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		Model:      model,
		VectorSize: vectorSize,
		client:     http.DefaultClient,
	}
}

// embeddingsRequest represents the request payload for the embeddings API.
type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embeddingsResponse represents the response from the embeddings API.
// The API returns float64 vectors; they are narrowed to float32 for the
// vector store.
type embeddingsResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// EmbedTexts embeds the given texts in a single request and returns one
// vector per input, in input order. Every vector is checked against the
// configured collection size.
func (c *EmbeddingsClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no texts to embed")
	}

	url := fmt.Sprintf("%s/v1/embeddings", c.BaseURL)

	body, err := json.Marshal(embeddingsRequest{
		Model: c.Model,
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var embResp embeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&embResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(embResp.Data) != len(texts) {
		return nil, fmt.Errorf("embedded %d of %d texts", len(embResp.Data), len(texts))
	}

	vectors := make([][]float32, len(embResp.Data))
	for i, item := range embResp.Data {
		if len(item.Embedding) != c.VectorSize {
			return nil, fmt.Errorf("vector %d has %d components, collection expects %d", i, len(item.Embedding), c.VectorSize)
		}

		vec := make([]float32, len(item.Embedding))
		for j, v := range item.Embedding {
			vec[j] = float32(v)
		}
		vectors[i] = vec
	}

	return vectors, nil
}
