// Package classifier asks a vision model whether a photo shows litter and,
// if so, what kind and how much.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"prakriti-darpan/models"

	"github.com/goccy/go-json"
)

var (
	// ErrNotGarbage means the model found no litter in the image.
	ErrNotGarbage = errors.New("classifier: no garbage detected in image")
	// ErrMissingAPIKey is returned when no model API key is configured.
	ErrMissingAPIKey = errors.New("classifier: API key is missing")
	// ErrEmptyResponse is returned when the model answers with no text.
	ErrEmptyResponse = errors.New("classifier: empty response from model")
)

// Classifier turns an image into an Analysis.
type Classifier interface {
	Classify(ctx context.Context, image []byte, mimeType string) (models.Analysis, error)
}

// Prompt is the instruction sent alongside every image.
const Prompt = "Analyze this image. Does it contain any garbage, trash, litter, or waste? " +
	"Even if it's a small amount, mark isGarbage as true. Identify the type, severity, and describe it."

// rawAnalysis mirrors the model's JSON answer with enums left as strings, so an
// off-list value degrades to an unusable Analysis instead of a decode error.
type rawAnalysis struct {
	IsGarbage             bool   `json:"isGarbage"`
	TrashType             string `json:"trashType"`
	Severity              string `json:"severity"`
	Description           string `json:"description"`
	SuggestedLocationType string `json:"suggestedLocationType"`
}

// ParseAnalysis decodes a model answer. Unknown trash types or severities are
// left unset; callers check Analysis.Usable.
func ParseAnalysis(text string) (models.Analysis, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Analysis{}, ErrEmptyResponse
	}
	text = stripCodeFence(text)

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return models.Analysis{}, fmt.Errorf("classifier: decode model response: %w", err)
	}

	a := models.Analysis{
		IsGarbage:             raw.IsGarbage,
		Description:           strings.TrimSpace(raw.Description),
		SuggestedLocationType: strings.TrimSpace(raw.SuggestedLocationType),
	}
	if t, err := models.ParseTrashType(strings.TrimSpace(raw.TrashType)); err == nil {
		a.TrashType = t
	}
	if s, err := models.ParseSeverity(strings.TrimSpace(raw.Severity)); err == nil {
		a.Severity = s
	}
	return a, nil
}

// stripCodeFence removes a ```json ... ``` wrapper some models add even when
// asked for bare JSON.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))
}
