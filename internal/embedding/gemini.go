package embedding

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	// defaultEmbedModel is the Gemini embedding model used when none is
	// configured.
	defaultEmbedModel = "text-embedding-004"
	// maxEmbedChars bounds the text sent to the provider per request.
	maxEmbedChars = 40000
)

// GeminiProvider implements Provider using the Gemini embedding API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a Gemini-backed embedding provider.
// An empty model selects the default embedding model.
func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		model = defaultEmbedModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{client: client, model: model}, nil
}

// Embed converts a single text into a vector.
func (p *GeminiProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &EmbeddingError{Message: "text is empty"}
	}

	em := p.client.EmbeddingModel(p.model)
	res, err := em.EmbedContent(ctx, genai.Text(truncate(text, maxEmbedChars)))
	if err != nil {
		return nil, &EmbeddingError{Message: "provider call failed", Cause: err}
	}
	if res == nil || res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, &EmbeddingError{Message: "provider returned an empty embedding"}
	}

	return res.Embedding.Values, nil
}

// EmbedBatch converts a batch of texts in one call, preserving input order
// and length.
func (p *GeminiProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	em := p.client.EmbeddingModel(p.model)
	batch := em.NewBatch()
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, &EmbeddingError{Message: fmt.Sprintf("text at index %d is empty", i)}
		}
		batch.AddContent(genai.Text(truncate(text, maxEmbedChars)))
	}

	res, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, &EmbeddingError{Message: "provider call failed", Cause: err}
	}
	if res == nil || len(res.Embeddings) != len(texts) {
		return nil, &EmbeddingError{
			Message: fmt.Sprintf("provider returned %d embeddings for %d texts", countEmbeddings(res), len(texts)),
		}
	}

	vectors := make([][]float32, len(texts))
	for i, emb := range res.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, &EmbeddingError{Message: fmt.Sprintf("provider returned an empty embedding at index %d", i)}
		}
		vectors[i] = emb.Values
	}

	return vectors, nil
}

// Close releases resources held by the underlying client.
func (p *GeminiProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

// truncate cuts text to at most limit bytes without splitting a rune.
func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}

func countEmbeddings(res *genai.BatchEmbedContentsResponse) int {
	if res == nil {
		return 0
	}
	return len(res.Embeddings)
}
