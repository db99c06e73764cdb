package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/app/configs")

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Allow common env vars without APP_ prefix for Docker/VM deploys
	viper.BindEnv("app.base_url", "BASE_URL", "APP_BASE_URL")
	viper.BindEnv("http.port", "HTTP_PORT", "APP_HTTP_PORT")
	viper.BindEnv("twilio.account_sid", "TWILIO_ACCOUNT_SID")
	viper.BindEnv("twilio.auth_token", "TWILIO_AUTH_TOKEN")
	viper.BindEnv("twilio.from_number", "TWILIO_PHONE_NUMBER")
	viper.BindEnv("twilio.test_number", "TEST_PHONE_NUMBER")
	viper.BindEnv("elevenlabs.api_key", "ELEVENLABS_API_KEY")
	viper.BindEnv("elevenlabs.voice_id", "ELEVENLABS_VOICE_ID")
	viper.BindEnv("dialogue.openai_api_key", "OPENAI_API_KEY")
	viper.BindEnv("redis.url", "REDIS_URL", "APP_REDIS_URL")
	viper.BindEnv("app.environment", "APP_ENVIRONMENT")
	viper.BindEnv("logging.level", "LOG_LEVEL")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// no config file is fine, env vars carry everything
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("app.name", "voxdial")
	viper.SetDefault("app.base_url", "http://localhost:8080")
	viper.SetDefault("http.port", 8080)
	viper.SetDefault("http.read_timeout", 30*time.Second)
	viper.SetDefault("http.write_timeout", 30*time.Second)
	viper.SetDefault("http.idle_timeout", time.Minute)
	viper.SetDefault("dialogue.mode", "rules")
	viper.SetDefault("cache.backend", "memory")
	viper.SetDefault("cache.audio_ttl", time.Minute)
	viper.SetDefault("retention.context_ttl", 30*time.Minute)
	viper.SetDefault("retention.sweep_interval", time.Minute)
	viper.SetDefault("prometheus.enabled", true)
	viper.SetDefault("prometheus.path", "/metrics")
	viper.SetDefault("logging.level", "info")
}
