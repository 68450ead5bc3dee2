package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	Role           string `mapstructure:"role"`
	Model          string `mapstructure:"model"`
	APIKey         string `mapstructure:"api_key"`
	APIBase        string `mapstructure:"api_base"`
	Style          string `mapstructure:"style"`
	PromptTemplate string `mapstructure:"prompt_template"`
	MaxDiffChars   int    `mapstructure:"max_diff_chars"`
	Split          bool   `mapstructure:"split"`
	Timeout        int    `mapstructure:"timeout"`
}

const (
	DefaultRole           = "Developer"
	DefaultModel          = "gpt-4o-mini"
	DefaultStyle          = StyleConventional
	DefaultPromptTemplate = "default"
	DefaultMaxDiffChars   = 12000
	DefaultTimeout        = 30
	DefaultConfigName     = "config"
	DefaultConfigDir      = "gsc"
	EnvPrefix             = "GSC"
)

// Commit message styles.
const (
	StyleConventional = "conventional"
	StyleSimple       = "simple"
	StyleDetailed     = "detailed"
)

var (
	validStyles     = []string{StyleConventional, StyleSimple, StyleDetailed}
	suggestedModels = []string{"gpt-4o-mini", "gpt-4o", "gpt-4.1-mini", "gpt-4.1"}
	settableKeys    = []string{"role", "model", "api_key", "api_base", "style", "prompt_template", "max_diff_chars", "split", "timeout"}
)

// InitConfig loads the configuration file, creating it with defaults when missing.
// cfgFile overrides the default XDG location; GSC_CONFIG is honored when it is empty.
func InitConfig(cfgFile string) error {
	if cfgFile == "" {
		cfgFile = os.Getenv(EnvPrefix + "_CONFIG")
	}

	configPath := cfgFile
	if configPath == "" {
		dir, err := defaultConfigDir()
		if err != nil {
			return err
		}
		configPath = filepath.Join(dir, DefaultConfigName+".yaml")
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	setDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		return createConfigFile(configPath)
	}

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read configuration file: %w", err)
	}
	return ensurePermissions(configPath)
}

func setDefaults() {
	viper.SetDefault("role", DefaultRole)
	viper.SetDefault("model", DefaultModel)
	viper.SetDefault("api_key", "")
	viper.SetDefault("api_base", "")
	viper.SetDefault("style", DefaultStyle)
	viper.SetDefault("prompt_template", DefaultPromptTemplate)
	viper.SetDefault("max_diff_chars", DefaultMaxDiffChars)
	viper.SetDefault("split", false)
	viper.SetDefault("timeout", DefaultTimeout)
}

func defaultConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, DefaultConfigDir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}
	return filepath.Join(home, ".config", DefaultConfigDir), nil
}

func createConfigFile(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o700); err != nil {
		return fmt.Errorf("failed to create configuration directory: %w", err)
	}
	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return ensurePermissions(configPath)
}

// ensurePermissions keeps the file private since it may hold the API key.
func ensurePermissions(configPath string) error {
	if err := os.Chmod(configPath, 0o600); err != nil {
		return fmt.Errorf("failed to set configuration file permissions: %w", err)
	}
	return nil
}

// GetConfig returns the current configuration.
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	applyFallbacks(cfg)
	return cfg, nil
}

// MustGetConfig returns the current configuration or built-in defaults when it cannot be parsed.
func MustGetConfig() *Config {
	cfg, err := GetConfig()
	if err != nil {
		cfg = &Config{}
		applyFallbacks(cfg)
	}
	return cfg
}

func applyFallbacks(cfg *Config) {
	if cfg.Role == "" {
		cfg.Role = DefaultRole
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Style == "" {
		cfg.Style = DefaultStyle
	}
	if cfg.PromptTemplate == "" {
		cfg.PromptTemplate = DefaultPromptTemplate
	}
	if cfg.MaxDiffChars == 0 {
		cfg.MaxDiffChars = DefaultMaxDiffChars
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
}

// Validate reports configuration values the tool cannot work with.
func (c *Config) Validate() error {
	var errs []error
	if !IsValidStyle(c.Style) {
		errs = append(errs, fmt.Errorf("invalid style %q, must be one of: %s",
			c.Style, strings.Join(validStyles, ", ")))
	}
	if c.MaxDiffChars <= 0 {
		errs = append(errs, fmt.Errorf("max_diff_chars must be positive, got %d", c.MaxDiffChars))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %d", c.Timeout))
	}
	return errors.Join(errs...)
}

// SetConfigValue sets a configuration value in memory; call SaveConfig to persist it.
func SetConfigValue(key string, value any) {
	viper.Set(key, value)
}

// SaveConfig writes the current configuration back to its file.
func SaveConfig() error {
	if err := viper.WriteConfig(); err != nil {
		return err
	}
	return ensurePermissions(viper.ConfigFileUsed())
}

// ConfigFileUsed returns the path of the loaded configuration file.
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}

func IsValidStyle(style string) bool {
	return slices.Contains(validStyles, style)
}

// IsValidModel reports whether model is usable; any non-empty name is accepted.
func IsValidModel(model string) bool {
	return strings.TrimSpace(model) != ""
}

// IsSettableKey reports whether key can be changed with `gsc config set`.
func IsSettableKey(key string) bool {
	return slices.Contains(settableKeys, key)
}

func GetValidStyles() []string {
	return validStyles
}

func GetSuggestedModels() []string {
	return suggestedModels
}

func GetSettableKeys() []string {
	return settableKeys
}
