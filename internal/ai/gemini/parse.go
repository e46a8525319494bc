package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/alumni-matcher/internal/ai"
)

const maxInputRunes = 2000

// decodeObject parses raw model output into a JSON object.
func decodeObject(raw string) (map[string]any, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return nil, ai.Errorf(ai.ErrSchemaValidation, "empty response")
	}

	var data any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, ai.Errorf(ai.ErrSchemaValidation, "parse gemini response: %v", err)
	}

	object, ok := data.(map[string]any)
	if !ok {
		return nil, ai.Errorf(ai.ErrSchemaValidation, "expected json object, got %T", data)
	}
	return object, nil
}

// decodeStrict copies the object into target without any weak type conversion.
func decodeStrict(object map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "json",
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	if err := decoder.Decode(object); err != nil {
		return ai.Errorf(ai.ErrSchemaValidation, "%v", err)
	}
	return nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

// sanitizeInput flattens user text into a single line that cannot pose as a
// prompt section header, and caps its length.
func sanitizeInput(s string) string {
	s = strings.NewReplacer("[", "(", "]", ")", "\"", "'").Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) > maxInputRunes {
		s = string(runes[:maxInputRunes])
	}
	return s
}

func fillTemplate(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for key, value := range values {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
