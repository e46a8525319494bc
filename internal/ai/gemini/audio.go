package gemini

import (
	"context"
	_ "embed"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/alumni-matcher/internal/ai"
	"github.com/spigell/alumni-matcher/internal/audio"
	"github.com/spigell/alumni-matcher/internal/logger"
)

//go:embed audio_prompt.md
var audioPrompt string

var audioSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"transcript":        {Type: genai.TypeString},
		"keywords":          {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"personalityTraits": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"matchingScoreHint": {Type: genai.TypeNumber},
	},
	Required: audioRequiredFields,
}

var audioRequiredFields = []string{"transcript", "keywords", "personalityTraits", "matchingScoreHint"}

var validate = validator.New()

// AudioAnalyzer transcribes and analyzes recorded mentorship requests.
type AudioAnalyzer struct {
	generator contentGenerator
	formats   []string
	logger    *zap.Logger
}

// NewAudioAnalyzer accepts clips in the given container formats; an empty list
// means audio.DefaultFormats.
func NewAudioAnalyzer(generator contentGenerator, formats []string, log *zap.Logger) *AudioAnalyzer {
	if len(formats) == 0 {
		formats = audio.DefaultFormats
	}
	return &AudioAnalyzer{
		generator: generator,
		formats:   formats,
		logger:    logger.WithFields(log),
	}
}

// Analyze returns a validated analysis or an error from the ai taxonomy.
func (a *AudioAnalyzer) Analyze(ctx context.Context, payload []byte, mimeType string) (*ai.AudioAnalysis, error) {
	log, _ := logger.ForRequest(a.logger, "audio")

	if len(payload) == 0 {
		return nil, ai.Errorf(ai.ErrEmptyInput, "audio payload is empty")
	}

	base, ok := audio.Supported(mimeType, a.formats)
	if !ok {
		return nil, ai.Errorf(ai.ErrUnsupportedCapability, "audio format %q is not one of %s", mimeType, strings.Join(a.formats, ", "))
	}

	log.Debug("analyzing audio", zap.Int("bytes", len(payload)), zap.String("mime_type", base))

	raw, err := a.generator.Generate(ctx, Request{
		Prompt:        audioPrompt,
		Media:         payload,
		MediaMIMEType: base,
		Schema:        audioSchema,
	})
	if err != nil {
		log.Warn("audio analysis request failed", zap.String("error_kind", ai.Kind(err)), zap.Error(err))
		return nil, err
	}

	analysis, err := parseAnalysis(raw)
	if err != nil {
		log.Warn("audio analysis response rejected", zap.String("error_kind", ai.Kind(err)), zap.Error(err))
		return nil, err
	}

	log.Debug("audio analyzed",
		zap.Strings("keywords", analysis.Keywords),
		zap.Strings("traits", analysis.PersonalityTraits),
		zap.Int("score_hint", analysis.MatchingScoreHint),
	)
	return analysis, nil
}

type analysisPayload struct {
	Transcript        string   `json:"transcript"`
	Keywords          []string `json:"keywords"`
	PersonalityTraits []string `json:"personalityTraits"`
	MatchingScoreHint float64  `json:"matchingScoreHint" validate:"gte=0,lte=100"`
}

func parseAnalysis(raw string) (*ai.AudioAnalysis, error) {
	object, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	for _, field := range audioRequiredFields {
		if value, ok := object[field]; !ok || value == nil {
			return nil, ai.Errorf(ai.ErrSchemaValidation, "required field %q is missing", field)
		}
	}

	var payload analysisPayload
	if err := decodeStrict(object, &payload); err != nil {
		return nil, err
	}

	if err := validate.Struct(&payload); err != nil {
		return nil, ai.Errorf(ai.ErrSchemaValidation, "%v", err)
	}

	return &ai.AudioAnalysis{
		Transcript:        strings.TrimSpace(payload.Transcript),
		Keywords:          compact(payload.Keywords),
		PersonalityTraits: compact(payload.PersonalityTraits),
		MatchingScoreHint: int(math.Round(payload.MatchingScoreHint)),
	}, nil
}

// compact drops blank entries. null array elements decode to "" and go too.
func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
