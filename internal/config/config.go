// Package config provides configuration management for the importer.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"devimport/internal/logger"
	"devimport/internal/post"
)

// Configuration validation errors.
var (
	ErrMissingUsername     = errors.New("username is required")
	ErrMissingBaseURL      = errors.New("api.base_url is required")
	ErrInvalidPerPage      = errors.New("api.per_page must be between 1 and 1000")
	ErrInvalidTimeout      = errors.New("api.timeout_sec must be non-negative")
	ErrInvalidMaxBody      = errors.New("api.max_body_mb must be at least 1")
	ErrMissingPostsDir     = errors.New("posts.dir is required")
	ErrMissingImagesDir    = errors.New("images.dir is required")
	ErrInvalidFrontMatter  = errors.New("posts.front_matter must be 'yaml' or 'toml'")
	ErrInvalidPublicPrefix = errors.New("images.public_prefix must start with '/'")
	ErrInvalidLogLevel     = errors.New("logging.level must be one of: debug, info, warn, warning, error")
)

// Environment variables read by ApplyEnv.
const (
	EnvUsername  = "DEVTO_USERNAME"
	EnvAPIKey    = "DEVTO_API_KEY"
	EnvAPIURL    = "DEVTO_API_URL"
	EnvPostsDir  = "DEVIMPORT_POSTS_DIR"
	EnvImagesDir = "DEVIMPORT_IMAGES_DIR"
	EnvLogLevel  = "DEVIMPORT_LOG_LEVEL"
	EnvPerPage   = "DEVIMPORT_PER_PAGE"
)

// DefaultUsername is used when neither the config nor the environment names a user.
const DefaultUsername = "meatboy"

// Config represents the complete importer configuration.
type Config struct {
	Username string        `yaml:"username"`
	API      APIConfig     `yaml:"api"`
	Posts    PostsConfig   `yaml:"posts"`
	Images   ImagesConfig  `yaml:"images"`
	Logging  LoggingConfig `yaml:"logging"`
}

// APIConfig describes how the dev.to API is reached.
type APIConfig struct {
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key,omitempty"`
	UserAgent  string `yaml:"user_agent"`
	PerPage    int    `yaml:"per_page"`
	TimeoutSec int    `yaml:"timeout_sec"`
	MaxBodyMB  int    `yaml:"max_body_mb"`
}

// PostsConfig describes the generated post files.
type PostsConfig struct {
	Dir            string `yaml:"dir"`
	Layout         string `yaml:"layout"`
	DefaultAuthor  string `yaml:"default_author"`
	FrontMatter    string `yaml:"front_matter"`
	FormatTables   bool   `yaml:"format_tables"`
	VerifyExisting bool   `yaml:"verify_existing"`
}

// ImagesConfig describes where downloaded images land and how posts link to them.
type ImagesConfig struct {
	Dir          string `yaml:"dir"`
	PublicPrefix string `yaml:"public_prefix"`
	DefaultExt   string `yaml:"default_ext"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Username: DefaultUsername,
		API: APIConfig{
			BaseURL:   "https://dev.to/api",
			UserAgent: "devto-importer/1.0",
			PerPage:   1000,
			MaxBodyMB: 50,
		},
		Posts: PostsConfig{
			Dir:           "_posts",
			Layout:        "post",
			DefaultAuthor: DefaultUsername,
			FrontMatter:   post.FormatYAML,
		},
		Images: ImagesConfig{
			Dir:          "img/posts",
			PublicPrefix: "/img/posts",
			DefaultExt:   ".jpg",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads a YAML file on top of the defaults. Missing keys keep their defaults.
func LoadConfig(filepath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return cfg, nil
}

// Load builds the effective configuration: .env file, defaults, optional YAML
// file, then environment variables. The result is validated.
func Load(filepath, dotenvPath string) (*Config, error) {
	return LoadWith(filepath, dotenvPath, nil)
}

// LoadWith is Load with a final override step, applied before validation.
// Command-line flags use it to take precedence over everything else.
func LoadWith(filepath, dotenvPath string, override func(*Config)) (*Config, error) {
	if err := LoadDotEnv(dotenvPath); err != nil {
		return nil, err
	}

	cfg := Default()

	if filepath != "" {
		loaded, err := LoadConfig(filepath)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if override != nil {
		override(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads a .env file into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}

	return nil
}

// ApplyEnv overrides fields from environment variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str(EnvUsername, &c.Username)
	str(EnvAPIKey, &c.API.APIKey)
	str(EnvAPIURL, &c.API.BaseURL)
	str(EnvPostsDir, &c.Posts.Dir)
	str(EnvImagesDir, &c.Images.Dir)
	str(EnvLogLevel, &c.Logging.Level)

	if v, ok := lookup(EnvPerPage); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPerPage, err)
		}

		c.API.PerPage = n
	}

	return nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Username) == "" {
		return ErrMissingUsername
	}

	if c.API.BaseURL == "" {
		return ErrMissingBaseURL
	}

	if c.API.PerPage < 1 || c.API.PerPage > 1000 {
		return ErrInvalidPerPage
	}

	if c.API.TimeoutSec < 0 {
		return ErrInvalidTimeout
	}

	if c.API.MaxBodyMB < 1 {
		return ErrInvalidMaxBody
	}

	if c.Posts.Dir == "" {
		return ErrMissingPostsDir
	}

	if c.Images.Dir == "" {
		return ErrMissingImagesDir
	}

	if c.Posts.FrontMatter != post.FormatYAML && c.Posts.FrontMatter != post.FormatTOML {
		return ErrInvalidFrontMatter
	}

	if !strings.HasPrefix(c.Images.PublicPrefix, "/") {
		return ErrInvalidPublicPrefix
	}

	if !logger.ValidLevel(c.Logging.Level) {
		return ErrInvalidLogLevel
	}

	return nil
}

// Timeout returns the HTTP client timeout. Zero means no timeout.
func (a *APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSec) * time.Second
}

// MaxBodyBytes returns the response size limit in bytes.
func (a *APIConfig) MaxBodyBytes() int64 {
	return int64(a.MaxBodyMB) * 1024 * 1024
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{User: %s, API: %s, Posts: %s, Images: %s}",
		c.Username,
		c.API.BaseURL,
		c.Posts.Dir,
		c.Images.Dir,
	)
}
