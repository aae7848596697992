package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"prakriti-darpan/models"

	"google.golang.org/genai"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.5-flash"

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini classifies images with the Gemini API.
type Gemini struct {
	models  contentGenerator
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewGemini creates a Gemini API client. An empty apiKey yields ErrMissingAPIKey.
func NewGemini(ctx context.Context, apiKey, model string, logger *slog.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("classifier: create gemini client: %w", err)
	}
	return newGemini(client.Models, model, logger), nil
}

func newGemini(gen contentGenerator, model string, logger *slog.Logger) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{models: gen, model: model, timeout: 60 * time.Second, logger: logger}
}

// Classify sends the image inline with the analysis prompt and decodes the
// structured answer.
func (g *Gemini) Classify(ctx context.Context, image []byte, mimeType string) (models.Analysis, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	parts := []*genai.Part{
		genai.NewPartFromBytes(image, mimeType),
		genai.NewPartFromText(Prompt),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	start := time.Now()
	resp, err := g.models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema(),
	})
	if err != nil {
		return models.Analysis{}, fmt.Errorf("classifier: gemini generate: %w", err)
	}

	text := resp.Text()
	g.logger.Debug("gemini response", "model", g.model, "elapsed", time.Since(start), "bytes", len(text))
	return ParseAnalysis(text)
}

func responseSchema() *genai.Schema {
	trashTypes := make([]string, len(models.TrashTypes))
	for i, t := range models.TrashTypes {
		trashTypes[i] = t.String()
	}
	severities := make([]string, len(models.Severities))
	for i, s := range models.Severities {
		severities[i] = s.String()
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"isGarbage": {
				Type:        genai.TypeBoolean,
				Description: "Whether the image contains visible garbage, litter, or waste.",
			},
			"trashType": {
				Type:        genai.TypeString,
				Enum:        trashTypes,
				Description: "The primary type of garbage detected.",
			},
			"severity": {
				Type:        genai.TypeString,
				Enum:        severities,
				Description: "The severity or amount of the garbage shown.",
			},
			"description": {
				Type:        genai.TypeString,
				Description: "A short, one-sentence description of the garbage.",
			},
			"suggestedLocationType": {
				Type:        genai.TypeString,
				Description: "Guess the location type based on visual cues (e.g., Park, Street, Beach, Indoors).",
			},
		},
		Required: []string{"isGarbage", "trashType", "severity", "description", "suggestedLocationType"},
	}
}
