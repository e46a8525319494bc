package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/alumni-matcher/internal/ai"
	"github.com/spigell/alumni-matcher/internal/ai/gemini"
	"github.com/spigell/alumni-matcher/internal/alumni"
	"github.com/spigell/alumni-matcher/internal/cache"
	"github.com/spigell/alumni-matcher/internal/logger"
	"github.com/spigell/alumni-matcher/internal/secrets"
	"github.com/spigell/alumni-matcher/internal/utils"
)

// env holds what every command needs: config, logger and the roster.
type environment struct {
	config *Config
	logger *zap.Logger
	roster *alumni.Roster
}

// setup builds the logger, reads the config and loads the roster. Failures
// are fatal.
func setup(ctx context.Context) *environment {
	logger, err := logger.New(logger.Options{
		JSON:  viper.GetBool("json"),
		Debug: viper.GetBool("debug"),
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	loader := alumni.NewLoader(logger)
	if config.UserAgent != "" {
		loader.UserAgent = config.UserAgent
	}

	roster, err := loader.Load(ctx, config.Roster)
	if err != nil {
		logger.Fatal("loading the roster",
			zap.Error(err),
			zap.String("hint", "set the 'roster' key, the --roster flag or the ALUMNI_ROSTER environment variable"),
		)
	}
	logger.Debug("roster loaded", zap.Int("profiles", roster.Len()), zap.Strings("industries", roster.Industries()))

	return &environment{config: config, logger: logger, roster: roster}
}

func (e *environment) generator(ctx context.Context) *gemini.Generator {
	cfg := e.config.AI
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		e.logger.Fatal("unsupported ai provider", zap.String("provider", cfg.Provider))
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		e.logger.Fatal("loading gemini api key",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY, GEMINI_API_KEY_FILE or ai.gemini.api-key-file"),
		)
	}

	genLogger := logger.WithCommonFields(e.logger, "gemini", cfg.Gemini.Model)
	genLogger.Debug("using gemini api key", zap.String("key", utils.RedactKey(apiKey)))

	generator, err := gemini.NewGenerator(ctx, apiKey, gemini.Options{
		Model:             cfg.Gemini.Model,
		Timeout:           cfg.Gemini.Timeout,
		RequestsPerSecond: cfg.Gemini.RequestsPerSecond,
		MaxLogLength:      cfg.Gemini.MaxLogLength,
	}, e.logger)
	if err != nil {
		e.logger.Fatal("creating gemini client", zap.Error(err))
	}
	return generator
}

// intentExtractor returns the Gemini extractor behind a cache. Redis is used
// when configured, otherwise entries live in memory.
func (e *environment) intentExtractor(ctx context.Context, generator *gemini.Generator) (ai.IntentExtractor, io.Closer) {
	extractor := gemini.NewIntentExtractor(generator, logger.WithCommonFields(e.logger, "gemini", generator.Model()))

	redisCfg := e.config.Cache.Redis
	if strings.TrimSpace(redisCfg.Addr) == "" {
		return cache.NewIntentCache(extractor, cache.NewMemoryStore(nil), generator.Model(), redisCfg.TTL, e.logger), nopCloser{}
	}

	store, err := cache.NewRedisStore(ctx, redisCfg.RedisOptions)
	if err != nil {
		e.logger.Warn("intent cache disabled", zap.Error(err))
		return extractor, nopCloser{}
	}
	e.logger.Info("using redis intent cache", zap.String("addr", redisCfg.Addr))
	return cache.NewIntentCache(extractor, store, generator.Model(), redisCfg.TTL, e.logger), store
}

func (e *environment) profile(id string) *alumni.Profile {
	profile := e.roster.FindByID(id)
	if profile == nil {
		e.logger.Fatal("profile not found",
			zap.String("id", id),
			zap.Strings("existing profiles", e.roster.Names()),
		)
	}
	return profile
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
