package decomposer

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/jonathan/cv-match-engine/internal/logger"
	"github.com/jonathan/cv-match-engine/internal/prompts"
)

// defaultExtractionModel handles structured extraction well at low cost.
const defaultExtractionModel = "gemini-2.5-flash"

// GeminiDecomposer implements Decomposer using Gemini JSON-mode
// extraction.
type GeminiDecomposer struct {
	client *genai.Client
	model  string
	log    *zap.Logger
}

// NewGeminiDecomposer creates a Gemini-backed decomposer. An empty model
// selects the default extraction model.
func NewGeminiDecomposer(ctx context.Context, apiKey, model string, log *zap.Logger) (*GeminiDecomposer, error) {
	if apiKey == "" {
		return nil, &DecompositionError{Message: "API key is required"}
	}
	if model == "" {
		model = defaultExtractionModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, &DecompositionError{Message: "failed to create Gemini client", Cause: err}
	}

	return &GeminiDecomposer{
		client: client,
		model:  model,
		log:    logger.OrNop(log),
	}, nil
}

// Extract implements Decomposer.
func (d *GeminiDecomposer) Extract(ctx context.Context, text string) (*Decomposition, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &DecompositionError{Message: "job description text is empty"}
	}

	template := prompts.MustGet("decomposer.json", "extract-job-description")
	prompt := prompts.Format(template, map[string]string{"JobText": text})

	model := d.client.GenerativeModel(d.model)
	model.SetTemperature(0.1) // Low temperature for consistent output
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, &DecompositionError{Message: "failed to generate content", Cause: err}
	}

	raw, err := extractTextFromResponse(resp)
	if err != nil {
		return nil, &DecompositionError{Message: "unusable extractor response", Cause: err}
	}

	dec, err := parseDecomposition(cleanJSONBlock(raw))
	if err != nil {
		return nil, err
	}

	d.log.Debug("decomposed job description",
		zap.String("title", dec.Metadata.Title),
		zap.Int("skill_groups", len(dec.Metadata.GroupedSkills)),
		zap.Int("requirements", len(dec.Requirements)),
	)
	return dec, nil
}

// Close releases resources held by the underlying client.
func (d *GeminiDecomposer) Close() error {
	if d.client != nil {
		return d.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from a Gemini API response.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", &DecompositionError{Message: "no candidates in response"}
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", &DecompositionError{Message: "no content in response"}
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", &DecompositionError{Message: "no text parts in response"}
	}

	return strings.Join(parts, ""), nil
}

// cleanJSONBlock removes markdown code block wrappers from JSON.
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
