package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"
)

const simpleEmbeddingDim = 128

// Embedder is the contract the search core needs from an embedding provider:
// a readiness probe, single-text embedding, and order-preserving batch embedding.
type Embedder interface {
	Load(ctx context.Context) error
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// OllamaEmbedder generates embeddings via the Ollama HTTP API. The special
// model name "simple" switches to a local hashed bag-of-words embedding so the
// service runs with no Ollama instance at all.
type OllamaEmbedder struct {
	BaseURL string
	Model   string
	Client  *http.Client
}

func NewOllamaEmbedder(baseURL, model string, timeout time.Duration) *OllamaEmbedder {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OllamaEmbedder{
		BaseURL: baseURL,
		Model:   model,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

type ollamaBatchEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaBatchEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Load verifies the provider is reachable. Simple mode runs locally and is
// always ready.
func (e *OllamaEmbedder) Load(ctx context.Context) error {
	if e.Model == "simple" {
		return nil
	}

	url := fmt.Sprintf("%s/api/tags", e.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to Ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama API returned status %d", resp.StatusCode)
	}

	return nil
}

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.Model == "simple" {
		return e.simpleEmbedding(text), nil
	}

	reqBody := ollamaEmbedRequest{
		Model:  e.Model,
		Prompt: text,
	}

	var embedResp ollamaEmbedResponse
	if err := e.post(ctx, "/api/embeddings", reqBody, &embedResp); err != nil {
		return nil, err
	}

	if len(embedResp.Embedding) == 0 {
		return nil, fmt.Errorf("received empty embedding from ollama")
	}

	return embedResp.Embedding, nil
}

// EmbedBatch embeds all texts in one round trip via Ollama's /api/embed
// endpoint. The response carries one vector per input, same order.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	if e.Model == "simple" {
		return e.simpleEmbeddingBatch(texts), nil
	}

	log.Printf("Requesting batch embeddings for %d texts (model: %s)", len(texts), e.Model)
	startTime := time.Now()

	reqBody := ollamaBatchEmbedRequest{
		Model: e.Model,
		Input: texts,
	}

	var embedResp ollamaBatchEmbedResponse
	if err := e.post(ctx, "/api/embed", reqBody, &embedResp); err != nil {
		return nil, err
	}

	if len(embedResp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama returned %d embeddings for %d texts", len(embedResp.Embeddings), len(texts))
	}

	log.Printf("Batch of %d embeddings generated in %v", len(texts), time.Since(startTime))
	return embedResp.Embeddings, nil
}

func (e *OllamaEmbedder) post(ctx context.Context, path string, reqBody, out interface{}) error {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s%s", e.BaseURL, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call Ollama API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ollama API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// simpleEmbedding creates a lightweight embedding using word frequency. Same
// text always yields the same vector, normalized to unit length.
func (e *OllamaEmbedder) simpleEmbedding(text string) []float32 {
	words := strings.Fields(strings.ToLower(text))

	embedding := make([]float32, simpleEmbeddingDim)

	wordCounts := make(map[string]int)
	for _, word := range words {
		word = strings.Trim(word, ".,!?;:\"'()[]{}")
		if len(word) > 0 {
			wordCounts[word]++
		}
	}

	for word, count := range wordCounts {
		hash := 0
		for _, char := range word {
			hash = hash*31 + int(char)
		}
		pos := (hash & 0x7FFFFFFF) % simpleEmbeddingDim
		embedding[pos] += float32(count) / float32(len(words))
	}

	var norm float64
	for _, val := range embedding {
		norm += float64(val) * float64(val)
	}
	if norm > 0 {
		n := float32(math.Sqrt(norm))
		for i := range embedding {
			embedding[i] /= n
		}
	}

	return embedding
}

// simpleEmbeddingBatch computes local embeddings in parallel, no api calls.
func (e *OllamaEmbedder) simpleEmbeddingBatch(texts []string) [][]float32 {
	embeddings := make([][]float32, len(texts))

	var wg sync.WaitGroup
	for i := range texts {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			embeddings[idx] = e.simpleEmbedding(texts[idx])
		}(i)
	}
	wg.Wait()

	return embeddings
}

// GetEmbeddingDimension returns the dimension of embeddings for this model.
func (e *OllamaEmbedder) GetEmbeddingDimension(ctx context.Context) (int, error) {
	testEmbed, err := e.Embed(ctx, "test")
	if err != nil {
		return 0, err
	}
	return len(testEmbed), nil
}
