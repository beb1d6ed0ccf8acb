package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional config
// file. Environment variables take precedence over file values. Returns a
// populated Config struct or an error if loading or validation fails.
//
// Environment variables use the OWLINGO_ prefix with underscores for nesting,
// e.g. OWLINGO_SERVER_PORT, OWLINGO_PROVIDERS_OPENAI_API_KEY.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; the environment carries the rest.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("OWLINGO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	// Empty defaults register the keys so AutomaticEnv can fill them during
	// Unmarshal; viper only binds environment variables for known keys.
	v.SetDefault("database.url", "")
	v.SetDefault("content_store.base_url", "")
	v.SetDefault("content_store.api_key", "")
	v.SetDefault("content_store.timeout_seconds", 10)

	v.SetDefault("providers.llm_order", []string{"openai", "gemini"})
	v.SetDefault("providers.tts_order", []string{"openai", "elevenlabs"})
	v.SetDefault("providers.attempt_timeout_seconds", 60)
	v.SetDefault("providers.max_retries", 2)
	v.SetDefault("providers.openai.api_key", "")
	v.SetDefault("providers.openai.base_url", "")
	v.SetDefault("providers.openai.model", "gpt-4o-mini")
	v.SetDefault("providers.openai.tts_model", "tts-1")
	v.SetDefault("providers.openai.voice", "alloy")
	v.SetDefault("providers.gemini.api_key", "")
	v.SetDefault("providers.gemini.model", "gemini-2.0-flash")
	v.SetDefault("providers.elevenlabs.api_key", "")
	v.SetDefault("providers.elevenlabs.base_url", "")
	v.SetDefault("providers.elevenlabs.model", "eleven_flash")
	v.SetDefault("providers.elevenlabs.voice", "")

	v.SetDefault("rate_limit.daily_cap", 50)
	v.SetDefault("rate_limit.per_request_cap", 40)

	v.SetDefault("cache.context_ttl_minutes", 15)

	v.SetDefault("worker.count", 2)
	v.SetDefault("worker.queue_size", 64)
}
