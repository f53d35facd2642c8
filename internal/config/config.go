package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"catalogadmin/internal/catalog"
	"catalogadmin/internal/eventbus"
	"catalogadmin/internal/multiselect"
)

// EnvPrefix prefixes environment overrides, e.g. CATALOG_API_URL
const EnvPrefix = "CATALOG"

// Config represents the application configuration
type Config struct {
	Version  int        `toml:"version" mapstructure:"version"`
	APIURL   string     `toml:"api_url" mapstructure:"api_url"`
	Username string     `toml:"username,omitempty" mapstructure:"username"`
	Token    string     `toml:"token,omitempty" mapstructure:"token"`
	Language string     `toml:"language" mapstructure:"language"`
	LogFile  string     `toml:"log_file" mapstructure:"log_file"`
	UI       UISettings `toml:"ui" mapstructure:"ui"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	// InvalidPolicy is "verbose" (show unknown selected values as badges)
	// or "compact" (hide them)
	InvalidPolicy string `toml:"invalid_policy" mapstructure:"invalid_policy"`
	Mouse         bool   `toml:"mouse" mapstructure:"mouse"`
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.APIURL) == "" {
		errs = append(errs, errors.New("api_url is required"))
	}
	if _, err := catalog.ParseLanguage(c.Language); err != nil {
		errs = append(errs, err)
	}
	if _, err := multiselect.ParsePolicy(c.UI.InvalidPolicy); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Lang returns the parsed display language, defaulting to Cyrillic
func (c *Config) Lang() catalog.Language {
	l, err := catalog.ParseLanguage(c.Language)
	if err != nil {
		return catalog.Cyrillic
	}
	return l
}

// Policy returns the parsed invalid-value policy, defaulting to verbose
func (c *Config) Policy() multiselect.Policy {
	p, err := multiselect.ParsePolicy(c.UI.InvalidPolicy)
	if err != nil {
		return multiselect.PolicyVerbose
	}
	return p
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// DefaultPath returns the per-user config file location
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, "catalogadmin", "config.toml")
}

// NewConfigService creates a config service for path; empty means DefaultPath
func NewConfigService(path string) ConfigService {
	if path == "" {
		path = DefaultPath()
	}
	return &configService{filePath: path}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(bus eventbus.EventBus, path string) ConfigService {
	cs := NewConfigService(path).(*configService)
	cs.bus = bus
	return cs
}

func (cs *configService) Path() string {
	return cs.filePath
}

// Load loads the configuration file, falling back to defaults when it does
// not exist. Environment overrides apply either way.
func (cs *configService) Load() (*Config, error) {
	return load(cs.filePath, false)
}

// LoadFromPath loads configuration from a path that must exist
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	return load(path, true)
}

func load(path string, mustExist bool) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("toml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if mustExist || !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config file not found: %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("api_url", d.APIURL)
	v.SetDefault("username", d.Username)
	v.SetDefault("token", d.Token)
	v.SetDefault("language", d.Language)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("ui.invalid_policy", d.UI.InvalidPolicy)
	v.SetDefault("ui.mouse", d.UI.Mouse)
}

// Save saves the configuration to the service's file
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}
	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigSavedEvent{Path: cs.filePath})
	}
	return nil
}

// SaveToPath saves configuration to a specific path. The file holds the
// API token, so it is written owner-only.
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		APIURL:   "http://localhost:8000/api/",
		Language: string(catalog.Cyrillic),
		LogFile:  "catalogadmin.log",
		UI: UISettings{
			InvalidPolicy: multiselect.PolicyVerbose.String(),
			Mouse:         true,
		},
	}
}
