// Package config loads Flow settings from defaults, an optional YAML file
// and the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Now-Tiger/Flow/internal/llm"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override: FLOW_SERVER_ADDR
// sets server.addr.
const EnvPrefix = "FLOW"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Log      LogConfig      `mapstructure:"log"`
	CLI      CLIConfig      `mapstructure:"cli"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	SecureCookies   bool          `mapstructure:"secure_cookies"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout must outlast the breakdown model timeout.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LLMConfig is the file and environment view of llm.LLMConfig.
type LLMConfig struct {
	Provider      string `mapstructure:"provider"`
	Endpoint      string `mapstructure:"endpoint"`
	APIKey        string `mapstructure:"api_key"`
	Model         string `mapstructure:"model"`
	SummaryModel  string `mapstructure:"summary_model"`
	TimeoutMs     int    `mapstructure:"timeout_ms"`
	LogCalls      bool   `mapstructure:"log_calls"`
	AWSRegion     string `mapstructure:"aws_region"`
	AWSProfile    string `mapstructure:"aws_profile"`
	AnthropicKey  string `mapstructure:"anthropic_api_key"`
	OpenRouterKey string `mapstructure:"openrouter_api_key"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type CLIConfig struct {
	// UserEmail is the local account the CLI and MCP server act as.
	UserEmail string `mapstructure:"user_email"`
}

// Default returns the built-in configuration.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	llmDefaults := llm.DefaultConfig()

	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.secure_cookies", false)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 150*time.Second)

	v.SetDefault("database.path", defaultDBPath())

	v.SetDefault("llm.provider", string(llmDefaults.Provider))
	v.SetDefault("llm.endpoint", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.summary_model", llmDefaults.Tasks[llm.TaskSummary].Model)
	v.SetDefault("llm.timeout_ms", llmDefaults.TimeoutMs)
	v.SetDefault("llm.log_calls", true)
	v.SetDefault("llm.aws_region", "")
	v.SetDefault("llm.aws_profile", "")
	v.SetDefault("llm.anthropic_api_key", "")
	v.SetDefault("llm.openrouter_api_key", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("cli.user_email", "local@flow.localhost")
}

// Load reads the user config ($XDG_CONFIG_HOME/flow/config.yaml), then
// ./flow.yaml merged over it, then environment overrides.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir())
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if _, err := os.Stat("flow.yaml"); err == nil {
		local := viper.New()
		local.SetConfigFile("flow.yaml")
		if err := local.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading flow.yaml: %w", err)
		}
		if err := v.MergeConfigMap(local.AllSettings()); err != nil {
			return nil, fmt.Errorf("merging flow.yaml: %w", err)
		}
	}

	return finish(v)
}

// LoadFromPath reads configuration from a specific file. Environment
// overrides still apply.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Provider credentials keep their conventional names.
	_ = v.BindEnv("llm.openrouter_api_key", "FLOW_LLM_OPENROUTER_API_KEY", "OPENROUTER_KEY")
	_ = v.BindEnv("llm.anthropic_api_key", "FLOW_LLM_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("llm.aws_region", "FLOW_LLM_AWS_REGION", "AWS_REGION")
	_ = v.BindEnv("llm.aws_profile", "FLOW_LLM_AWS_PROFILE", "AWS_PROFILE")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.LLM.APIKey = os.ExpandEnv(cfg.LLM.APIKey)
	return cfg, nil
}

// Validate rejects settings no component can run with. Missing model
// credentials are not an error here: commands that never call the model
// still work, and generation reports the missing credential itself.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("server.addr must not be empty")
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database.path must not be empty")
	}
	switch llm.Provider(c.LLM.Provider) {
	case llm.ProviderOpenRouter, llm.ProviderAnthropic, llm.ProviderBedrock, llm.ProviderOllama:
	default:
		return fmt.Errorf("unknown llm.provider %q", c.LLM.Provider)
	}
	if c.LLM.TimeoutMs <= 0 {
		return errors.New("llm.timeout_ms must be positive")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("unknown log.format %q", c.Log.Format)
	}
	if c.CLI.UserEmail == "" {
		return errors.New("cli.user_email must not be empty")
	}
	return nil
}

// Client resolves the settings for llm.New. The API key comes from
// llm.api_key, else from the provider's own variable.
func (c LLMConfig) Client() llm.LLMConfig {
	out := llm.DefaultConfig()
	out.Provider = llm.Provider(c.Provider)
	out.Endpoint = c.Endpoint
	if out.Endpoint == "" {
		out.Endpoint = llm.DefaultEndpoint(out.Provider)
	}
	out.Model = c.Model
	if out.Model == "" {
		out.Model = llm.DefaultModel(out.Provider)
	}
	out.TimeoutMs = c.TimeoutMs
	out.LogCalls = c.LogCalls
	out.AWSRegion = c.AWSRegion
	out.AWSProfile = c.AWSProfile

	out.APIKey = c.APIKey
	if out.APIKey == "" {
		switch out.Provider {
		case llm.ProviderOpenRouter:
			out.APIKey = c.OpenRouterKey
		case llm.ProviderAnthropic:
			out.APIKey = c.AnthropicKey
		}
	}

	summary := out.Tasks[llm.TaskSummary]
	summary.Model = ""
	if out.Provider == llm.ProviderOpenRouter {
		summary.Model = c.SummaryModel
	}
	out.Tasks[llm.TaskSummary] = summary
	return out
}

// NewLogger builds the process logger writing to w.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log.level %q", s)
	}
	return level, nil
}

func userConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "flow")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "flow")
}

func defaultDBPath() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "flow", "flow.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "flow.db"
	}
	return filepath.Join(home, ".flow", "flow.db")
}
