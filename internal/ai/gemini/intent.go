package gemini

import (
	"context"
	_ "embed"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/alumni-matcher/internal/ai"
	"github.com/spigell/alumni-matcher/internal/logger"
)

//go:embed intent_prompt.md
var intentPromptTemplate string

var intentSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"location":            {Type: genai.TypeString},
		"industry":            {Type: genai.TypeString},
		"role":                {Type: genai.TypeString},
		"graduationYearRange": {Type: genai.TypeString},
	},
}

// IntentExtractor parses directory queries into an ai.ExtractedIntent.
type IntentExtractor struct {
	generator contentGenerator
	logger    *zap.Logger
}

func NewIntentExtractor(generator contentGenerator, log *zap.Logger) *IntentExtractor {
	return &IntentExtractor{
		generator: generator,
		logger:    logger.WithFields(log),
	}
}

// Extract never fails. Any problem is logged and reported as a nil intent,
// which callers treat as "no constraint".
func (e *IntentExtractor) Extract(ctx context.Context, text string) *ai.ExtractedIntent {
	log, _ := logger.ForRequest(e.logger, "intent")

	query := sanitizeInput(text)
	if query == "" {
		log.Debug("skipping intent extraction", zap.String("reason", ai.Kind(ai.ErrEmptyInput)))
		return nil
	}

	prompt := fillTemplate(intentPromptTemplate, map[string]string{"QUERY": query})

	raw, err := e.generator.Generate(ctx, Request{Prompt: prompt, Schema: intentSchema})
	if err != nil {
		log.Warn("intent extraction failed; search continues without filters",
			zap.String("error_kind", ai.Kind(err)),
			zap.Error(err),
		)
		return nil
	}

	intent, err := parseIntent(raw)
	if err != nil {
		log.Warn("intent response rejected; search continues without filters",
			zap.String("error_kind", ai.Kind(err)),
			zap.Error(err),
		)
		return nil
	}
	if intent == nil {
		log.Debug("intent response carried no constraints")
		return nil
	}

	log.Debug("intent extracted", zap.Any("intent", intent.Fields()))
	return intent
}

type intentPayload struct {
	Location            *string `json:"location"`
	Industry            *string `json:"industry"`
	Role                *string `json:"role"`
	GraduationYearRange *string `json:"graduationYearRange"`
}

func parseIntent(raw string) (*ai.ExtractedIntent, error) {
	object, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	// older prompts used the short key
	if _, ok := object["graduationYearRange"]; !ok {
		if legacy, ok := object["gradYearRange"]; ok {
			object["graduationYearRange"] = legacy
		}
	}
	delete(object, "gradYearRange")

	known := make(map[string]any, 4)
	for key, value := range object {
		name := strings.TrimSpace(key)
		if _, exact := object[name]; exact && name != key {
			continue
		}
		switch name {
		case "location", "industry", "role", "graduationYearRange":
			known[name] = value
		}
	}

	var payload intentPayload
	if err := decodeStrict(known, &payload); err != nil {
		return nil, err
	}

	intent := &ai.ExtractedIntent{
		Location:            payload.Location,
		Industry:            payload.Industry,
		Role:                payload.Role,
		GraduationYearRange: payload.GraduationYearRange,
	}
	return intent.Normalize(), nil
}
