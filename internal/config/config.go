package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server       ServerConfig       `mapstructure:"server" validate:"required"`
	Database     DatabaseConfig     `mapstructure:"database"`
	ContentStore ContentStoreConfig `mapstructure:"content_store" validate:"required"`
	Providers    ProvidersConfig    `mapstructure:"providers" validate:"required"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit" validate:"required"`
	Cache        CacheConfig        `mapstructure:"cache" validate:"required"`
	Worker       WorkerConfig       `mapstructure:"worker" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains the optional usage-audit database settings. An
// empty URL selects the in-memory audit sink.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// ContentStoreConfig points at the LMS content store.
type ContentStoreConfig struct {
	BaseURL        string `mapstructure:"base_url" validate:"required,url"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gte=0"`
}

// ProvidersConfig holds per-vendor credentials and the fallback order.
type ProvidersConfig struct {
	// LLMOrder and TTSOrder list provider names primary-first. Supported LLM
	// names: openai, gemini. Supported TTS names: openai, elevenlabs.
	LLMOrder []string `mapstructure:"llm_order" validate:"required,min=1,dive,oneof=openai gemini"`
	TTSOrder []string `mapstructure:"tts_order" validate:"required,min=1,dive,oneof=openai elevenlabs"`

	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	ElevenLabs ElevenLabsConfig `mapstructure:"elevenlabs"`

	// AttemptTimeoutSeconds bounds each provider attempt; MaxRetries caps
	// transient retries per provider.
	AttemptTimeoutSeconds int `mapstructure:"attempt_timeout_seconds" validate:"gte=0"`
	MaxRetries            int `mapstructure:"max_retries" validate:"gte=0"`
}

// OpenAIConfig covers both the LLM and speech endpoints of the
// OpenAI-compatible vendor.
type OpenAIConfig struct {
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
	Model    string `mapstructure:"model"`
	TTSModel string `mapstructure:"tts_model"`
	Voice    string `mapstructure:"voice"`
}

// GeminiConfig holds the Gemini vendor settings.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// ElevenLabsConfig holds the ElevenLabs vendor settings.
type ElevenLabsConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
	Voice   string `mapstructure:"voice"`
}

// RateLimitConfig holds the per-teacher generation ceilings.
type RateLimitConfig struct {
	DailyCap      int `mapstructure:"daily_cap" validate:"required,gt=0"`
	PerRequestCap int `mapstructure:"per_request_cap" validate:"required,gt=0"`
}

// CacheConfig holds the metadata context cache settings.
type CacheConfig struct {
	ContextTTLMinutes int `mapstructure:"context_ttl_minutes" validate:"required,gt=0"`
}

// WorkerConfig holds the audio synthesis worker pool settings.
type WorkerConfig struct {
	Count     int `mapstructure:"count" validate:"required,gt=0"`
	QueueSize int `mapstructure:"queue_size" validate:"required,gt=0"`
}
