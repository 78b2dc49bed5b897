package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/TheGringo-ai/LineSmart-sub000/models"
	"github.com/xeipuuv/gojsonschema"
)

// trainingSchema validates the shape promised by the prompt's instruction
// block before the reply is trusted
const trainingSchema = `{
	"type": "object",
	"required": ["training", "quiz"],
	"properties": {
		"training": {
			"type": "object",
			"required": ["introduction", "sections"],
			"properties": {
				"introduction": {"type": "string", "minLength": 1},
				"sections": {
					"type": "array",
					"minItems": 1,
					"items": {
						"type": "object",
						"required": ["title", "content"],
						"properties": {
							"title": {"type": "string", "minLength": 1},
							"content": {"type": "string", "minLength": 1},
							"keyPoints": {"type": "array", "items": {"type": "string"}}
						}
					}
				},
				"safetyNotes": {"type": "array", "items": {"type": "string"}},
				"bestPractices": {"type": "array", "items": {"type": "string"}},
				"commonMistakes": {"type": "array", "items": {"type": "string"}}
			}
		},
		"quiz": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["question", "options", "correct"],
				"properties": {
					"question": {"type": "string", "minLength": 1},
					"options": {"type": "array", "minItems": 2, "maxItems": 4, "items": {"type": "string"}},
					"correct": {"type": "integer", "minimum": 0, "maximum": 3},
					"explanation": {"type": "string"}
				}
			}
		}
	}
}`

var codeFencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ParserService turns raw provider replies into validated training content
type ParserService struct {
	schema *gojsonschema.Schema
}

func NewParserService() (*ParserService, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(trainingSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile training schema: %w", err)
	}
	return &ParserService{schema: schema}, nil
}

// Parse extracts the JSON payload from a reply, validates its shape and
// decodes it. questionCount caps the quiz length; replies with more
// questions are trimmed, replies with fewer are kept as-is.
func (s *ParserService) Parse(raw string, questionCount int) (*models.GeneratedTraining, error) {
	jsonString, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	result, err := s.schema.Validate(gojsonschema.NewStringLoader(jsonString))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if !result.Valid() {
		for _, desc := range result.Errors() {
			slog.Warn("Training reply failed validation", "field", desc.Field(), "detail", desc.Description())
		}
		return nil, fmt.Errorf("%w: %d schema violations", ErrInvalidResponse, len(result.Errors()))
	}

	var training models.GeneratedTraining
	if err := json.Unmarshal([]byte(jsonString), &training); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	// The schema bounds correct at [0,3]; it must also index into the
	// options that actually came back
	for i, question := range training.Quiz {
		if question.Correct < 0 || question.Correct >= len(question.Options) {
			return nil, fmt.Errorf("%w: question %d answer index %d out of range", ErrInvalidResponse, i, question.Correct)
		}
	}

	if questionCount > 0 && len(training.Quiz) > questionCount {
		training.Quiz = training.Quiz[:questionCount]
	}

	return &training, nil
}

// extractJSON pulls the JSON object out of a reply that may wrap it in
// markdown code fences or surrounding prose
func extractJSON(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%w: empty reply", ErrInvalidResponse)
	}

	if match := codeFencePattern.FindStringSubmatch(raw); match != nil {
		return strings.TrimSpace(match[1]), nil
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return "", fmt.Errorf("%w: no JSON object in reply", ErrInvalidResponse)
	}
	return raw[start : end+1], nil
}
