package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultMaxFiles        = 10
	DefaultMaxFileSize     = 20 * 1024 * 1024
	DefaultMinQuestions    = 5
	DefaultMaxQuestions    = 100
	DefaultSessionTTL      = 6 * time.Hour
	DefaultLLMTimeout      = 120 * time.Second
	DefaultRateLimitPerMin = 30
)

type Config struct {
	Server    ServerConfig
	Logger    LoggerConfig
	Redis     RedisConfig
	LLM       LLMConfig
	Upload    UploadConfig
	RateLimit RateLimitConfig
	Tracing   TracingConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
}

type LoggerConfig struct {
	Level string
	Env   string
	File  string // optional rotating log file
}

type RedisConfig struct {
	Address    string `yaml:"address"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	SessionTTL time.Duration
}

// LLMConfig selects and configures the model provider.
// Provider values: "xai", "openai", "gemini", "anthropic", "ollama".
type LLMConfig struct {
	Provider string
	Model    string
	Timeout  time.Duration

	XAI       ProviderCredentials
	OpenAI    ProviderCredentials
	Gemini    ProviderCredentials
	Anthropic ProviderCredentials
	Ollama    ProviderCredentials
}

type ProviderCredentials struct {
	APIKey  string
	BaseURL string
	Model   string
}

type UploadConfig struct {
	Dir          string
	MaxFiles     int
	MaxFileBytes int64
}

type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

type TracingConfig struct {
	Enabled           bool
	ServiceName       string
	CollectorEndpoint string
}

func LoadConfig() (*Config, error) {
	// .env is optional; real environment variables always win over it.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		viper.AddConfigPath("../../config")
		viper.AddConfigPath("../../")
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if configFile := viper.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Printf("Using config file: %s\n", absPath)
	}

	config := &Config{
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout"),
			WriteTimeout: viper.GetDuration("server.write_timeout"),
			BodyLimit:    viper.GetInt("server.body_limit"),
		},
		Logger: LoggerConfig{
			Level: viper.GetString("logger.level"),
			Env:   viper.GetString("logger.env"),
			File:  viper.GetString("logger.file"),
		},
		Redis: RedisConfig{
			Address:    viper.GetString("redis.address"),
			Password:   viper.GetString("redis.password"),
			DB:         viper.GetInt("redis.db"),
			SessionTTL: viper.GetDuration("redis.session_ttl"),
		},
		LLM: LLMConfig{
			Provider:  viper.GetString("llm.provider"),
			Model:     viper.GetString("llm.model"),
			Timeout:   viper.GetDuration("llm.timeout"),
			XAI:       credentials("llm.xai"),
			OpenAI:    credentials("llm.openai"),
			Gemini:    credentials("llm.gemini"),
			Anthropic: credentials("llm.anthropic"),
			Ollama:    credentials("llm.ollama"),
		},
		Upload: UploadConfig{
			Dir:          viper.GetString("upload.dir"),
			MaxFiles:     viper.GetInt("upload.max_files"),
			MaxFileBytes: viper.GetInt64("upload.max_file_bytes"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: viper.GetInt("rate_limit.requests_per_minute"),
			Burst:             viper.GetInt("rate_limit.burst"),
		},
		Tracing: TracingConfig{
			Enabled:           viper.GetBool("tracing.enabled"),
			ServiceName:       viper.GetString("tracing.service_name"),
			CollectorEndpoint: viper.GetString("tracing.collector_endpoint"),
		},
	}

	// Override with environment variables if set
	if port := os.Getenv("SERVER_PORT"); port != "" {
		config.Server.Port = viper.GetInt("SERVER_PORT")
	}
	if env := os.Getenv("ENV"); env != "" {
		config.Logger.Env = env
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		config.Redis.Address = redisAddress
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.Redis.Password = redisPassword
	}
	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		config.LLM.Provider = provider
	}
	if key := os.Getenv("XAI_API_KEY"); key != "" {
		config.LLM.XAI.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		config.LLM.OpenAI.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.LLM.Gemini.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.LLM.Anthropic.APIKey = key
	}
	if server := os.Getenv("LLM_SERVER"); server != "" {
		config.LLM.Ollama.BaseURL = server
	}

	return config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 3001)
	viper.SetDefault("server.read_timeout", 150*time.Second)
	viper.SetDefault("server.write_timeout", 150*time.Second)
	viper.SetDefault("server.body_limit", DefaultMaxFiles*DefaultMaxFileSize+1024*1024)
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.env", "development")
	viper.SetDefault("redis.session_ttl", DefaultSessionTTL)
	viper.SetDefault("llm.provider", "xai")
	viper.SetDefault("llm.timeout", DefaultLLMTimeout)
	viper.SetDefault("llm.xai.base_url", "https://api.x.ai/v1")
	viper.SetDefault("llm.xai.model", "grok-4-1-fast-non-reasoning")
	viper.SetDefault("llm.openai.model", "gpt-4o-mini")
	viper.SetDefault("llm.gemini.model", "gemini-2.0-flash")
	viper.SetDefault("llm.anthropic.model", "claude-haiku-4-5-20251001")
	viper.SetDefault("llm.ollama.base_url", "http://localhost:11434")
	viper.SetDefault("llm.ollama.model", "qwen3:0.6b")
	viper.SetDefault("upload.dir", "uploads")
	viper.SetDefault("upload.max_files", DefaultMaxFiles)
	viper.SetDefault("upload.max_file_bytes", DefaultMaxFileSize)
	viper.SetDefault("rate_limit.requests_per_minute", DefaultRateLimitPerMin)
	viper.SetDefault("rate_limit.burst", 5)
	viper.SetDefault("tracing.service_name", "quiz-forge")
}

func credentials(prefix string) ProviderCredentials {
	return ProviderCredentials{
		APIKey:  viper.GetString(prefix + ".api_key"),
		BaseURL: viper.GetString(prefix + ".base_url"),
		Model:   viper.GetString(prefix + ".model"),
	}
}

// ActiveCredentials returns the credentials of the selected provider, with the
// top-level model override applied.
func (c LLMConfig) ActiveCredentials() ProviderCredentials {
	var creds ProviderCredentials
	switch c.Provider {
	case "xai":
		creds = c.XAI
	case "openai":
		creds = c.OpenAI
	case "gemini":
		creds = c.Gemini
	case "anthropic":
		creds = c.Anthropic
	case "ollama":
		creds = c.Ollama
	}
	if c.Model != "" {
		creds.Model = c.Model
	}
	return creds
}

// Validate checks that the selected provider has what it needs to start.
func (c LLMConfig) Validate() error {
	creds := c.ActiveCredentials()
	switch c.Provider {
	case "xai", "openai", "gemini", "anthropic":
		if creds.APIKey == "" {
			return fmt.Errorf("api key is required for the %s provider", c.Provider)
		}
	case "ollama":
		if creds.BaseURL == "" {
			return fmt.Errorf("llm.ollama.base_url is required for the ollama provider")
		}
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
