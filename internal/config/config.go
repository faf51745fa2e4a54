package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Format is the output format of a rendered document.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

type RenderConfig struct {
	PublicOnly     bool   `mapstructure:"public_only"`
	DocumentedOnly bool   `mapstructure:"documented_only"`
	Format         Format `mapstructure:"format"`
	FrontMatter    bool   `mapstructure:"front_matter"`
}

type FetchConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
	BaseURL        string `mapstructure:"base_url"`
}

// Timeout returns the HTTP timeout for docs.rs downloads.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

type CacheConfig struct {
	LRUSize int `mapstructure:"lru_size"`
}

type Config struct {
	Render RenderConfig `mapstructure:"render"`
	Fetch  FetchConfig  `mapstructure:"fetch"`
	Cache  CacheConfig  `mapstructure:"cache"`
}

// cacheBase returns the base cache directory for rsdocmd.
// Checks XDG_CACHE_HOME, then ~/.cache, then /tmp/rsdocmd as fallback.
func cacheBase() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "rsdocmd")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "rsdocmd")
	}
	return filepath.Join(os.TempDir(), "rsdocmd")
}

// DBPath returns the path to the DuckDB catalog of rendered documents.
func DBPath() string {
	return filepath.Join(cacheBase(), "catalog.db")
}

// CASDir returns the path to the content-addressable store of rendered documents.
func CASDir() string {
	return filepath.Join(cacheBase(), "cas")
}

// JSONCacheDir returns the path to the downloaded rustdoc JSON cache.
func JSONCacheDir() string {
	return filepath.Join(cacheBase(), "json")
}

// CacheBase returns the root of every cache directory.
func CacheBase() string {
	return cacheBase()
}

func InitializeViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("toml")

	viper.AddConfigPath(".")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		viper.AddConfigPath(filepath.Join(xdg, "rsdocmd"))
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "rsdocmd"))
	}

	viper.SetDefault("render.public_only", false)
	viper.SetDefault("render.documented_only", false)
	viper.SetDefault("render.format", string(FormatMarkdown))
	viper.SetDefault("render.front_matter", false)
	viper.SetDefault("fetch.timeout_seconds", 60)
	viper.SetDefault("fetch.user_agent", "rsdocmd (https://github.com/jcdickinson/rsdocmd)")
	viper.SetDefault("fetch.base_url", "https://docs.rs")
	viper.SetDefault("cache.lru_size", 64)

	viper.SetEnvPrefix("RSDOCMD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

func stringToFormatHookFunc() mapstructure.DecodeHookFunc {
	return func(f, t reflect.Type, data interface{}) (interface{}, error) {
		if t != reflect.TypeOf(Format("")) || f.Kind() != reflect.String {
			return data, nil
		}
		return ParseFormat(data.(string))
	}
}

// ParseFormat validates a format name. The empty string means markdown.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatMarkdown, "md":
		return FormatMarkdown, nil
	case FormatHTML:
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unknown format %q (want markdown or html)", s)
}

func Load() (*Config, error) {
	if err := InitializeViper(); err != nil {
		return nil, err
	}
	return decode(viper.AllSettings())
}

func decode(settings map[string]interface{}) (*Config, error) {
	var config Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       stringToFormatHookFunc(),
		WeaklyTypedInput: true,
		Result:           &config,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Cache.LRUSize <= 0 {
		return nil, fmt.Errorf("cache.lru_size must be positive, got %d", config.Cache.LRUSize)
	}
	if config.Fetch.TimeoutSeconds <= 0 {
		return nil, fmt.Errorf("fetch.timeout_seconds must be positive, got %d", config.Fetch.TimeoutSeconds)
	}
	return &config, nil
}

// LogPath returns the path to the MCP server log file.
func LogPath() string {
	return filepath.Join(cacheBase(), "rsdocmd.log")
}
