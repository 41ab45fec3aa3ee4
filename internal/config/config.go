// Package config loads issuescore settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/dshills/issuescore/internal/formspec"
)

// EnvPrefix prefixes every environment override, e.g. ISSUESCORE_GITHUB_TOKEN.
const EnvPrefix = "ISSUESCORE"

// GitHubConfig holds the board coordinates and credentials.
type GitHubConfig struct {
	Token     string `mapstructure:"token" yaml:"token"`
	ProjectID string `mapstructure:"project_id" yaml:"project_id"`
	FieldID   string `mapstructure:"field_id" yaml:"field_id"`
	BaseURL   string `mapstructure:"base_url" yaml:"base_url"`
}

// Config is the top-level configuration.
type Config struct {
	// Form names a built-in form table.
	Form string `mapstructure:"form" yaml:"form"`

	// FormFile points at a custom form table and takes precedence over Form.
	FormFile string `mapstructure:"form_file" yaml:"form_file"`

	GitHub GitHubConfig `mapstructure:"github" yaml:"github"`
}

// DefaultPath returns ~/.config/issuescore/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "issuescore", "config.yaml")
}

// New returns a viper instance with defaults and environment binding set up.
// Callers may bind command-line flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("form", formspec.DefaultForm)
	v.SetDefault("form_file", "")
	v.SetDefault("github.token", "")
	v.SetDefault("github.project_id", "")
	v.SetDefault("github.field_id", "")
	v.SetDefault("github.base_url", "")
	return v
}

// Load reads path into v and decodes the result. A missing file is not an
// error; defaults and environment values still apply. An empty path uses
// DefaultPath.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	// GITHUB_TOKEN is what Actions and most tooling export.
	if cfg.GitHub.Token == "" {
		cfg.GitHub.Token = os.Getenv("GITHUB_TOKEN")
	}
	return &cfg, nil
}

// LoadForm resolves the configured form table.
func (c *Config) LoadForm() (*formspec.Form, error) {
	if c.FormFile != "" {
		return formspec.LoadFile(c.FormFile)
	}
	name := c.Form
	if name == "" {
		name = formspec.DefaultForm
	}
	return formspec.LoadBuiltin(name)
}
