package gemini

import (
	"context"
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/alumni-matcher/internal/ai"
	"github.com/spigell/alumni-matcher/internal/logger"
)

var (
	//go:embed bio_prompt.md
	bioPromptTemplate string
	//go:embed icebreakers_prompt.md
	icebreakersPromptTemplate string
	//go:embed briefing_prompt.md
	briefingPromptTemplate string
)

const (
	maxIcebreakers       = 3
	minIcebreakerRunes   = 6
	minBriefingRunes     = 11
	defaultBriefingField = "technology"
)

var listMarker = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)

var fallbackIcebreakers = []string{
	"Inquire about their recent achievements.",
	"Discuss shared industry trends.",
	"Ask for advice on scaling in their sector.",
}

// Writer generates networking copy. Every method falls back to a safe default.
type Writer struct {
	generator contentGenerator
	logger    *zap.Logger
}

func NewWriter(generator contentGenerator, log *zap.Logger) *Writer {
	return &Writer{generator: generator, logger: logger.WithFields(log)}
}

// EnhanceBio rewrites a bio; the original is returned when generation fails.
func (w *Writer) EnhanceBio(ctx context.Context, bio string) string {
	if strings.TrimSpace(bio) == "" {
		return bio
	}

	log, _ := logger.ForRequest(w.logger, "bio")
	prompt := fillTemplate(bioPromptTemplate, map[string]string{"BIO": sanitizeInput(bio)})

	enhanced, err := w.generator.Generate(ctx, Request{Prompt: prompt})
	if err != nil {
		log.Warn("bio enhancement failed; keeping original", zap.String("error_kind", ai.Kind(err)), zap.Error(err))
		return bio
	}
	return strings.Trim(enhanced, "\" \n")
}

// Icebreakers returns up to three conversation openers for the given person.
func (w *Writer) Icebreakers(ctx context.Context, name, bio string) []string {
	log, _ := logger.ForRequest(w.logger, "icebreakers")
	prompt := fillTemplate(icebreakersPromptTemplate, map[string]string{
		"NAME": sanitizeInput(name),
		"BIO":  sanitizeInput(bio),
	})

	raw, err := w.generator.Generate(ctx, Request{Prompt: prompt})
	if err != nil {
		log.Warn("icebreaker generation failed; using defaults", zap.String("error_kind", ai.Kind(err)), zap.Error(err))
		return append([]string(nil), fallbackIcebreakers...)
	}

	lines := splitIcebreakers(raw)
	if len(lines) == 0 {
		log.Warn("icebreaker response had no usable lines; using defaults")
		return append([]string(nil), fallbackIcebreakers...)
	}
	return lines
}

// Briefing writes a short daily briefing for the subject.
func (w *Writer) Briefing(ctx context.Context, subject ai.BriefingSubject) string {
	log, _ := logger.ForRequest(w.logger, "briefing")

	industry := strings.TrimSpace(subject.Industry)
	if industry == "" {
		industry = defaultBriefingField
	}
	interest := strings.TrimSpace(subject.Interest)
	if interest == "" {
		interest = industry
	}

	roleContext := ""
	if role := strings.TrimSpace(subject.Role); role != "" {
		roleContext = "They currently work as a " + role
		if company := strings.TrimSpace(subject.Company); company != "" {
			roleContext += " at " + company
		}
		roleContext += "."
	}
	skillsContext := ""
	if len(subject.Skills) > 0 {
		skillsContext = "Their key skills include: " + strings.Join(subject.Skills, ", ") + "."
	}

	prompt := fillTemplate(briefingPromptTemplate, map[string]string{
		"NAME":     sanitizeInput(subject.Name),
		"INDUSTRY": sanitizeInput(industry),
		"INTEREST": sanitizeInput(interest),
		"ROLE":     sanitizeInput(roleContext),
		"SKILLS":   sanitizeInput(skillsContext),
	})

	text, err := w.generator.Generate(ctx, Request{Prompt: prompt})
	if err == nil && utf8.RuneCountInString(text) >= minBriefingRunes {
		return text
	}
	if err != nil {
		log.Warn("briefing generation failed; using default", zap.String("error_kind", ai.Kind(err)), zap.Error(err))
	}
	return fallbackBriefing(industry)
}

func splitIcebreakers(raw string) []string {
	out := make([]string, 0, maxIcebreakers)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		if utf8.RuneCountInString(line) < minIcebreakerRunes {
			continue
		}
		out = append(out, line)
		if len(out) == maxIcebreakers {
			break
		}
	}
	return out
}

func fallbackBriefing(industry string) string {
	return fmt.Sprintf("The %s sector is seeing rapid AI integration across workflows, with companies prioritizing automation and data-driven decision making. "+
		"Alumni connections in cross-functional roles report higher career mobility, so consider reaching out to peers in adjacent industries. "+
		"Upskilling in emerging tools positions you ahead of industry shifts.", industry)
}
