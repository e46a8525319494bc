package cmd

import (
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/alumni-matcher/internal/audio"
	"github.com/spigell/alumni-matcher/internal/cache"
	"github.com/spigell/alumni-matcher/internal/server"
)

const (
	app = "alumni-matcher"
)

type Config struct {
	Roster      string          `mapstructure:"roster"`
	ExcludeFile string          `mapstructure:"exclude-file"`
	UserAgent   string          `mapstructure:"user-agent"`
	AI          *AIConfig       `mapstructure:"ai"`
	Matching    *MatchingConfig `mapstructure:"matching"`
	Audio       *AudioConfig    `mapstructure:"audio"`
	Cache       *CacheConfig    `mapstructure:"cache"`
	Server      *ServerConfig   `mapstructure:"server"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey            string        `mapstructure:"api-key" json:"-"`
	APIKeyFile        string        `mapstructure:"api-key-file"`
	Model             string        `mapstructure:"model"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests-per-second"`
	MaxLogLength      int           `mapstructure:"max-log-length"`
}

type MatchingConfig struct {
	Top int `mapstructure:"top"`
}

type AudioConfig struct {
	Formats     []string      `mapstructure:"formats"`
	MaxDuration time.Duration `mapstructure:"max-duration"`
}

type CacheConfig struct {
	Redis *RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	cache.RedisOptions `mapstructure:",squash"`
	TTL                time.Duration `mapstructure:"ttl"`
}

type ServerConfig struct {
	Listen         string `mapstructure:"listen"`
	server.Options `mapstructure:",squash"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "alumni-matcher searches an alumni roster and matches mentors using Gemini",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	for key, env := range map[string]string{
		"ai.gemini.api-key":      "GEMINI_API_KEY",
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
		"roster":                 "ALUMNI_ROSTER",
		"cache.redis.addr":       "REDIS_ADDR",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("roster", "alumni.yaml")
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.timeout", "30s")
	viper.SetDefault("ai.gemini.requests-per-second", 2)
	viper.SetDefault("ai.gemini.max-log-length", 200)
	viper.SetDefault("matching.top", 3)
	viper.SetDefault("audio.formats", audio.DefaultFormats)
	viper.SetDefault("audio.max-duration", audio.DefaultMaxDuration.String())
	viper.SetDefault("cache.redis.ttl", cache.DefaultTTL.String())
	viper.SetDefault("server.listen", ":8080")

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is alumni-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringP("roster", "r", "", "roster file or http(s) url (overrides the config)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("roster", rootCmd.PersistentFlags().Lookup("roster"))
}

func initConfig() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// only an explicitly requested config file is mandatory
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}
	if config.Matching == nil {
		config.Matching = &MatchingConfig{}
	}
	if config.Audio == nil {
		config.Audio = &AudioConfig{}
	}
	if config.Cache == nil {
		config.Cache = &CacheConfig{}
	}
	if config.Cache.Redis == nil {
		config.Cache.Redis = &RedisConfig{}
	}
	if config.Server == nil {
		config.Server = &ServerConfig{}
	}

	return config, nil
}
