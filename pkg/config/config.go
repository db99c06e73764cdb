package config

import "time"

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Twilio     TwilioConfig     `mapstructure:"twilio"`
	ElevenLabs ElevenLabsConfig `mapstructure:"elevenlabs"`
	Dialogue   DialogueConfig   `mapstructure:"dialogue"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Retention  RetentionConfig  `mapstructure:"retention"`
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	CORS       CORSConfig       `mapstructure:"cors"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	// BaseURL is the publicly reachable root used to build the webhook
	// and audio URLs the telephony provider fetches.
	BaseURL string `mapstructure:"base_url"`
}

type HTTPConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type TwilioConfig struct {
	AccountSID string `mapstructure:"account_sid"`
	AuthToken  string `mapstructure:"auth_token"`
	FromNumber string `mapstructure:"from_number"`
	// TestNumber, when set, is dialed instead of every requested number.
	TestNumber string `mapstructure:"test_number"`
	APIBaseURL string `mapstructure:"api_base_url"`
}

type ElevenLabsConfig struct {
	APIKey     string `mapstructure:"api_key"`
	VoiceID    string `mapstructure:"voice_id"`
	APIBaseURL string `mapstructure:"api_base_url"`
}

type DialogueConfig struct {
	// Mode selects the reply policy: "rules" (default) or "generative".
	Mode         string `mapstructure:"mode"`
	OpenAIAPIKey string `mapstructure:"openai_api_key"`
	Model        string `mapstructure:"model"`
}

type CacheConfig struct {
	// Backend is "memory" (default) or "redis".
	Backend  string        `mapstructure:"backend"`
	AudioTTL time.Duration `mapstructure:"audio_ttl"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type RetentionConfig struct {
	// ContextTTL is how long finished call contexts stay queryable after
	// a terminal status is observed.
	ContextTTL    time.Duration `mapstructure:"context_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
	MaxAge         int      `mapstructure:"max_age"`
	Credentials    bool     `mapstructure:"credentials"`
}
