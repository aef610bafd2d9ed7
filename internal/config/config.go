package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/tidwall/jsonc"
)

// Config is the root configuration for cta, stored in ~/.cta/config.json.
// The file is JSON with comments and trailing commas allowed.
type Config struct {
	ClickTime ClickTimeConfig `mapstructure:"clicktime"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
}

// ClickTimeConfig holds the remote time-tracking API settings.
type ClickTimeConfig struct {
	// BaseURL is the ClickTime origin. Navigation onto this host clears
	// stored page data.
	BaseURL string `mapstructure:"base_url"`
	// AuthToken is the personal API token sent as "Authorization: Token ...".
	AuthToken string `mapstructure:"auth_token"`
}

// LLMConfig selects the generative model used for suggestions.
type LLMConfig struct {
	// Provider is one of gemini, openai, anthropic, ollama.
	Provider    string  `mapstructure:"provider"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float64 `mapstructure:"temperature"`
}

// StorageConfig selects the key-value backend.
type StorageConfig struct {
	// Backend is one of dir, sqlite, memory.
	Backend string `mapstructure:"backend"`
	// Path is the directory (dir) or database file (sqlite). Empty means
	// under ~/.cta.
	Path string `mapstructure:"path"`
}

// ServerConfig configures the local relay server.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `mapstructure:"level"`
	// File receives JSON logs in addition to stderr when set.
	File string `mapstructure:"file"`
}

const (
	DefaultClickTimeURL = "https://app.clicktime.com"
	DefaultProvider     = "gemini"
	DefaultGeminiModel  = "gemini-2.5-flash"
	DefaultTemperature  = 0.2
	DefaultBackend      = "dir"
	DefaultServerAddr   = "127.0.0.1:8765"
)

// configTemplate is the annotated config written on first run.
const configTemplate = `// cta configuration – ~/.cta/config.json
//
// Every setting can also be given through the environment as CTA_<SECTION>_<KEY>,
// e.g. CTA_LLM_MODEL. Credentials additionally honour CLICKTIME_AUTH_TOKEN
// and AI_API_KEY. Prefer the environment for secrets.
{
  "clicktime": {
    // ClickTime origin.
    "base_url": "https://app.clicktime.com",

    // Personal API token. Leave empty and export CLICKTIME_AUTH_TOKEN instead.
    "auth_token": "",
  },

  "llm": {
    // gemini (default), openai, anthropic or ollama.
    "provider": "gemini",
    // Leave empty and export AI_API_KEY instead. Not needed for ollama.
    "api_key": "",
    // Empty selects the provider default.
    "model": "",
    // Override the provider endpoint, e.g. a local proxy.
    "base_url": "",
    // Low values keep suggestions close to the job catalog.
    "temperature": 0.2,
  },

  "storage": {
    // dir (one JSON file per key), sqlite, or memory (nothing persisted).
    "backend": "dir",
    // Empty means ~/.cta/data for dir and ~/.cta/cta.db for sqlite.
    "path": "",
  },

  "server": {
    // Address the page relay posts events to.
    "addr": "127.0.0.1:8765",
  },

  "log": {
    // debug, info, warn or error.
    "level": "info",
    // Optional JSON log file.
    "file": "",
  },
}
`

// DefaultPath returns the path to ~/.cta/config.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".cta", "config.json"), nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("clicktime.base_url", DefaultClickTimeURL)
	v.SetDefault("clicktime.auth_token", "")
	v.SetDefault("llm.provider", DefaultProvider)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.temperature", DefaultTemperature)
	v.SetDefault("storage.backend", DefaultBackend)
	v.SetDefault("storage.path", "")
	v.SetDefault("server.addr", DefaultServerAddr)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	v.SetConfigType("json")
	v.SetEnvPrefix("CTA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("clicktime.auth_token", "CTA_CLICKTIME_AUTH_TOKEN", "CLICKTIME_AUTH_TOKEN")
	_ = v.BindEnv("llm.api_key", "CTA_LLM_API_KEY", "AI_API_KEY")
	return v
}

// Load reads the config at path. An empty path means ~/.cta/config.json,
// which is created with annotated defaults on first run; an explicit path
// must exist.
func Load(path string) (Config, error) {
	v := newViper()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return decode(v)
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err) && !explicit:
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
	case err != nil:
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	default:
		if err := v.ReadConfig(bytes.NewReader(jsonc.ToJSON(data))); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ClickTime.BaseURL = strings.TrimRight(cfg.ClickTime.BaseURL, "/")
	cfg.ClickTime.AuthToken = strings.TrimSpace(cfg.ClickTime.AuthToken)
	cfg.LLM.APIKey = strings.TrimSpace(cfg.LLM.APIKey)
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	return cfg, nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// StoragePath resolves the backend path, defaulting under ~/.cta.
func (c StorageConfig) StoragePath(base string) string {
	if c.Path != "" {
		return c.Path
	}
	if c.Backend == "sqlite" {
		return filepath.Join(base, "cta.db")
	}
	return filepath.Join(base, "data")
}

// SlogLevel maps Level to a slog.Level, defaulting to info.
func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToUpper(c.Level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
