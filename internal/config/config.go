package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type DocumentConfig struct {
	Path string `mapstructure:"path"`
}

type AgentConfig struct {
	MaxIterations int    `mapstructure:"max_iterations"`
	ProfilesDir   string `mapstructure:"profiles_dir"`
}

type TutorConfig struct {
	Model        string        `mapstructure:"model"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type Config struct {
	APIKey      string         `mapstructure:"api_key"`
	BaseURL     string         `mapstructure:"base_url"`
	Model       string         `mapstructure:"model"`
	ChatModel   string         `mapstructure:"chat_model"`
	Temperature float64        `mapstructure:"temperature"`
	MaxTokens   int64          `mapstructure:"max_tokens"`
	HistoryFile string         `mapstructure:"history_file"`
	Database    DatabaseConfig `mapstructure:"database"`
	Document    DocumentConfig `mapstructure:"document"`
	Agent       AgentConfig    `mapstructure:"agent"`
	Tutor       TutorConfig    `mapstructure:"tutor"`
}

// ErrMissingAPIKey is returned by Validate when no credential was found.
var ErrMissingAPIKey = errors.New("no API key: set OPENAI_API_KEY (or api_key in querychat.yaml)")

// Load reads configuration from defaults, an optional querychat.yaml, a
// .env file and the environment, in increasing precedence. A non-empty
// path names a config file that must exist.
func Load(path string) (*Config, error) {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load(".env")

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("querychat")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.querychat")
	}

	v.SetDefault("base_url", "https://api.openai.com/v1/")
	v.SetDefault("model", "gpt-4-1106-preview")
	v.SetDefault("chat_model", "gpt-3.5-turbo")
	v.SetDefault("temperature", 0.5)
	v.SetDefault("max_tokens", 256)
	v.SetDefault("history_file", "/tmp/querychat_history")
	v.SetDefault("database.path", "data/Chinook.db")
	v.SetDefault("document.path", "utbmat.pdf")
	v.SetDefault("agent.max_iterations", 5)
	v.SetDefault("agent.profiles_dir", "profiles")
	v.SetDefault("tutor.model", "gpt-4")
	v.SetDefault("tutor.poll_interval", time.Second)

	v.SetEnvPrefix("QUERYCHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api_key", "QUERYCHAT_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("binding env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Expand environment variables in the API key
	if strings.HasPrefix(cfg.APIKey, "${") && strings.HasSuffix(cfg.APIKey, "}") {
		cfg.APIKey = os.Getenv(cfg.APIKey[2 : len(cfg.APIKey)-1])
	}

	return &cfg, nil
}

// Validate checks what every model-backed command needs.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// MaskedAPIKey returns the key with all but the last four characters hidden.
func (c *Config) MaskedAPIKey() string {
	if len(c.APIKey) <= 4 {
		return strings.Repeat("*", len(c.APIKey))
	}
	return strings.Repeat("*", len(c.APIKey)-4) + c.APIKey[len(c.APIKey)-4:]
}
