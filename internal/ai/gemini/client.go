package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/spigell/alumni-matcher/internal/ai"
	"github.com/spigell/alumni-matcher/internal/logger"
	"github.com/spigell/alumni-matcher/internal/utils"
)

const (
	defaultModel        = "gemini-2.5-flash"
	defaultTimeout      = 30 * time.Second
	defaultMaxLogLength = 200
	provider            = "gemini"
)

// modelsAPI is the subset of *genai.Models used by the generator.
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// contentGenerator is what the extractors and the writer need from a Generator.
type contentGenerator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Model() string
}

// Options tunes a Generator.
type Options struct {
	Model string
	// Timeout bounds a single model call. Zero means the default.
	Timeout time.Duration
	// RequestsPerSecond throttles calls; zero or less disables throttling.
	RequestsPerSecond float64
	MaxLogLength      int
}

// Request is one model call: a prompt, optional inline media and an optional
// response schema that switches the call to JSON output.
type Request struct {
	Prompt        string
	System        string
	Media         []byte
	MediaMIMEType string
	Schema        *genai.Schema
}

// Generator wraps the Google GenAI client. Every call is a single attempt.
type Generator struct {
	models    modelsAPI
	model     string
	timeout   time.Duration
	limiter   *rate.Limiter
	logger    *zap.Logger
	maxLogLen int
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey string, opts Options, log *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGenerator(client.Models, opts, log), nil
}

func newGenerator(models modelsAPI, opts Options, log *zap.Logger) *Generator {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	maxLogLen := opts.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return &Generator{
		models:    models,
		model:     model,
		timeout:   timeout,
		limiter:   limiter,
		logger:    logger.WithCommonFields(log, provider, model),
		maxLogLen: maxLogLen,
	}
}

// GenerateContent sends a plain text prompt and returns the textual response.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return g.Generate(ctx, Request{Prompt: prompt})
}

// Generate performs one model call.
func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", ai.Errorf(ai.ErrEmptyInput, "prompt must not be empty")
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", ai.Errorf(ai.ErrNetwork, "waiting for rate limiter: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	parts := make([]*genai.Part, 0, 2)
	if len(req.Media) > 0 {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{Data: req.Media, MIMEType: req.MediaMIMEType},
		})
	}
	parts = append(parts, &genai.Part{Text: prompt})

	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: parts,
	}}

	var config *genai.GenerateContentConfig
	if req.Schema != nil || strings.TrimSpace(req.System) != "" {
		config = &genai.GenerateContentConfig{}
		if req.Schema != nil {
			config.ResponseMIMEType = "application/json"
			config.ResponseSchema = req.Schema
		}
		if system := strings.TrimSpace(req.System); system != "" {
			config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
		}
	}

	g.logger.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, g.maxLogLen)),
		zap.Int("media_bytes", len(req.Media)),
		zap.String("media_mime_type", req.MediaMIMEType),
		zap.Bool("structured", req.Schema != nil),
	)

	resp, err := g.models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", ai.Errorf(ai.ErrNetwork, "generate content: %v", err)
	}

	output := responseText(resp)
	if output == "" {
		return "", ai.Errorf(ai.ErrSchemaValidation, "gemini api returned empty response")
	}

	g.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(output)),
		zap.String("response_preview", utils.TruncateForLog(output, g.maxLogLen)),
	)

	return output, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}
