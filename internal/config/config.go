// Package config loads application settings from config.yaml, the
// environment (TALETABLE_*) and a development .env file.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"taletable/internal/database"
	"taletable/internal/llm/client"
	"taletable/internal/models"
	"taletable/internal/utils"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

type Config struct {
	DataDir           string                  `mapstructure:"data_dir"`
	DatabasePath      string                  `mapstructure:"database_path"`
	LogLevel          string                  `mapstructure:"log_level"`
	LogPretty         bool                    `mapstructure:"log_pretty"`
	TranscriptBackend string                  `mapstructure:"transcript_backend"`
	DefaultModel      string                  `mapstructure:"default_model"`
	AvailableModels   []string                `mapstructure:"available_models"`
	Generation        client.GenerationConfig `mapstructure:"generation"`
	DefaultWindow     int                     `mapstructure:"default_window"`
}

func setDefaults(v *viper.Viper) {
	gen := client.DefaultGenerationConfig()
	v.SetDefault("data_dir", database.GetDefaultDataDir())
	v.SetDefault("database_path", database.GetDefaultDBPath())
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", database.IsDevelopment())
	v.SetDefault("transcript_backend", BackendFile)
	v.SetDefault("default_model", models.DefaultModelID)
	v.SetDefault("available_models", []string{})
	v.SetDefault("generation.temperature", gen.Temperature)
	v.SetDefault("generation.top_p", gen.TopP)
	v.SetDefault("generation.top_k", gen.TopK)
	v.SetDefault("generation.max_output_tokens", gen.MaxOutputTokens)
	v.SetDefault("default_window", 5)
}

// Load reads configuration. An empty path searches the working directory and
// the user config directory for config.yaml; a missing file is not an error.
func Load(path string) (*Config, error) {
	if err := utils.LoadEnv(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}
	return load(viper.New(), path)
}

func load(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("taletable")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/taletable")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Debug().
		Str("config", v.ConfigFileUsed()).
		Str("backend", cfg.TranscriptBackend).
		Msg("loaded configuration")
	return &cfg, nil
}

func (c *Config) Validate() error {
	c.TranscriptBackend = strings.ToLower(strings.TrimSpace(c.TranscriptBackend))
	switch c.TranscriptBackend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("config: unknown transcript_backend %q", c.TranscriptBackend)
	}
	if c.DefaultWindow < 0 {
		return fmt.Errorf("config: default_window must not be negative")
	}
	if strings.TrimSpace(c.DefaultModel) == "" {
		c.DefaultModel = models.DefaultModelID
	}
	if c.TranscriptBackend == BackendFile && strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("config: data_dir is required for the file backend")
	}
	return nil
}
