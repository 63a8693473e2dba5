// Package config loads the process configuration from defaults, an
// optional YAML file, a .env file and HOMECARE_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/urmzd/homecare/pkg/assistant"
	"github.com/urmzd/homecare/pkg/llm"
	"github.com/urmzd/homecare/pkg/logging"
	"github.com/urmzd/homecare/pkg/notify"
	"github.com/urmzd/homecare/pkg/notify/mqtt"
	"github.com/urmzd/homecare/pkg/rag"
	"github.com/urmzd/homecare/pkg/retry"
)

// LLM providers
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// RAG embedders
const (
	EmbedderHash = "hash"
	EmbedderLLM  = "llm"
)

// Config is the process configuration.
type Config struct {
	Log       logging.Config   `mapstructure:"log"`
	Database  DatabaseConfig   `mapstructure:"database"`
	Server    ServerConfig     `mapstructure:"server"`
	LLM       LLMConfig        `mapstructure:"llm"`
	RAG       RAGConfig        `mapstructure:"rag"`
	Notify    NotifyConfig     `mapstructure:"notify"`
	MQTT      mqtt.Config      `mapstructure:"mqtt"`
	State     StateConfig      `mapstructure:"state"`
	Assistant assistant.Config `mapstructure:"assistant"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig overrides the listen address stored in the database when set.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type LLMConfig struct {
	Provider   string        `mapstructure:"provider"`
	Model      string        `mapstructure:"model"`
	Host       string        `mapstructure:"host"`     // Ollama
	BaseURL    string        `mapstructure:"base_url"` // OpenAI-compatible
	APIKey     string        `mapstructure:"api_key"`
	EmbedModel string        `mapstructure:"embed_model"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Options    llm.Options   `mapstructure:"options"`
	Retry      retry.Policy  `mapstructure:"retry"`
}

type RAGConfig struct {
	Enabled       bool       `mapstructure:"enabled"`
	KnowledgeFile string     `mapstructure:"knowledge_file"`
	Embedder      string     `mapstructure:"embedder"`
	Retrieval     rag.Config `mapstructure:",squash"`
}

type NotifyConfig struct {
	Scheduler notify.Config `mapstructure:",squash"`
	Retention int           `mapstructure:"retention"`
}

type StateConfig struct {
	RestoreDevices bool `mapstructure:"restore_devices"`
}

// legacyEnv maps config keys to the environment names used by earlier
// deployments.
var legacyEnv = map[string]string{
	"llm.model":                "MODEL_NAME",
	"llm.host":                 "OLLAMA_HOST",
	"database.path":            "DATABASE_PATH",
	"assistant.compact_prompt": "USE_COMPACT_PROMPT",
}

func setDefaults(v *viper.Viper) {
	lc := logging.DefaultConfig()
	v.SetDefault("log.level", lc.Level)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", lc.MaxSizeMB)
	v.SetDefault("log.max_backups", lc.MaxBackups)
	v.SetDefault("log.max_age_days", lc.MaxAgeDays)

	v.SetDefault("database.path", "")
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 0)

	opts := llm.DefaultOptions()
	pol := retry.DefaultPolicy()
	v.SetDefault("llm.provider", ProviderOllama)
	v.SetDefault("llm.model", "qwen3:8b")
	v.SetDefault("llm.host", "http://localhost:11434")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.embed_model", "nomic-embed-text")
	v.SetDefault("llm.timeout", 2*time.Minute)
	v.SetDefault("llm.options.temperature", opts.Temperature)
	v.SetDefault("llm.options.top_p", opts.TopP)
	v.SetDefault("llm.options.num_ctx", opts.NumCtx)
	v.SetDefault("llm.options.num_predict", 0)
	v.SetDefault("llm.retry.max_attempts", pol.MaxAttempts)
	v.SetDefault("llm.retry.initial_interval", pol.InitialInterval)
	v.SetDefault("llm.retry.max_interval", pol.MaxInterval)

	rc := rag.DefaultConfig()
	v.SetDefault("rag.enabled", true)
	v.SetDefault("rag.knowledge_file", "")
	v.SetDefault("rag.embedder", EmbedderHash)
	v.SetDefault("rag.top_k", rc.TopK)
	v.SetDefault("rag.score_gap", rc.ScoreGap)

	nc := notify.DefaultConfig()
	v.SetDefault("notify.interval", nc.Interval)
	v.SetDefault("notify.tolerance", nc.Tolerance)
	v.SetDefault("notify.dwell", nc.Dwell)
	v.SetDefault("notify.retention", notify.DefaultRetention)

	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id", "homecare")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.base_topic", "homecare")
	v.SetDefault("mqtt.qos", 1)
	v.SetDefault("mqtt.timeout", 5*time.Second)

	v.SetDefault("state.restore_devices", false)

	ac := assistant.DefaultConfig()
	v.SetDefault("assistant.compact_prompt", ac.CompactPrompt)
	v.SetDefault("assistant.window", ac.Window)
	v.SetDefault("assistant.notice_window", ac.NoticeWindow)
}

// Load reads the configuration. file may be empty, in which case
// CONFIG_FILE is consulted.
func Load(file string) (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("Loaded .env")
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("homecare")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// rag.threshold has no static default; it depends on the embedder.
	if err := v.BindEnv("rag.threshold"); err != nil {
		return nil, fmt.Errorf("failed to bind rag.threshold: %w", err)
	}
	for key, env := range legacyEnv {
		prefixed := "HOMECARE_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if file == "" {
		file = os.Getenv("CONFIG_FILE")
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
		log.Info().Str("file", file).Msg("Using config file")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if !v.IsSet("rag.threshold") {
		cfg.RAG.Retrieval.Threshold = DefaultThreshold(cfg.RAG.Embedder)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultThreshold returns the retrieval cutoff calibrated for embedder.
func DefaultThreshold(embedder string) float64 {
	if embedder == EmbedderHash {
		return rag.HashThreshold
	}
	return rag.DefaultThreshold
}

// Validate checks enumerations and bounds.
func (c *Config) Validate() error {
	var errs []error
	switch c.LLM.Provider {
	case ProviderOllama, ProviderOpenAI:
	default:
		errs = append(errs, fmt.Errorf("llm.provider must be %s or %s, not %q", ProviderOllama, ProviderOpenAI, c.LLM.Provider))
	}
	switch c.RAG.Embedder {
	case EmbedderHash, EmbedderLLM:
	default:
		errs = append(errs, fmt.Errorf("rag.embedder must be %s or %s, not %q", EmbedderHash, EmbedderLLM, c.RAG.Embedder))
	}
	if c.LLM.Model == "" {
		errs = append(errs, errors.New("llm.model must be set"))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.RAG.Retrieval.Threshold < 0 || c.RAG.Retrieval.Threshold > 1 {
		errs = append(errs, fmt.Errorf("rag.threshold %.2f must be within [0, 1]", c.RAG.Retrieval.Threshold))
	}
	if c.Notify.Scheduler.Interval < time.Second {
		errs = append(errs, errors.New("notify.interval must be at least 1s"))
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		errs = append(errs, errors.New("mqtt.broker must be set when mqtt is enabled"))
	}
	return errors.Join(errs...)
}
