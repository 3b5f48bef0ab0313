package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/hugo-lorenzo-mato/devtools/internal/fsutil"
)

// EnvPrefix prefixes environment overrides, e.g. DEVTOOLS_LOG_LEVEL.
const EnvPrefix = "DEVTOOLS"

// Loader handles configuration loading from multiple sources.
type Loader struct {
	v          *viper.Viper
	configFile string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return NewLoaderWithViper(viper.New())
}

// NewLoaderWithViper creates a loader using an existing viper instance.
// This allows integration with CLI flag bindings.
func NewLoaderWithViper(v *viper.Viper) *Loader {
	return &Loader{v: v}
}

// WithConfigFile sets an explicit config file path.
func (l *Loader) WithConfigFile(path string) *Loader {
	l.configFile = path
	return l
}

// Viper returns the underlying viper instance for flag binding.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load loads configuration from all sources.
// Precedence (highest to lowest):
// 1. CLI flags (set via viper.BindPFlag)
// 2. Environment variables (DEVTOOLS_*)
// 3. Project config (.devtools.yaml in current directory)
// 4. User config (~/.config/devtools/config.yaml)
// 5. Defaults
func (l *Loader) Load() (*Config, error) {
	l.setDefaults()

	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	configFile := l.configFile
	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		l.v.SetConfigFile(configFile)
		l.v.SetConfigType("yaml")
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := l.mergeLegacyKeys(); err != nil {
			return nil, err
		}
	}

	return l.Config()
}

// Config unmarshals the current settings, including values changed with Set.
// An unset state.db_path follows state.dir.
func (l *Loader) Config() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if cfg.State.DBPath == "" && cfg.State.Dir != "" {
		cfg.State.DBPath = filepath.Join(cfg.State.Dir, "state.db")
	}
	return &cfg, nil
}

// findConfigFile returns the first existing default config file, or "".
func findConfigFile() string {
	candidates := []string{".devtools.yaml"}
	if path, err := UserConfigPath(); err == nil {
		candidates = append(candidates, path)
	}
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// mergeLegacyKeys rereads the config file and merges it back with legacy
// keys renamed, so that older files keep working.
func (l *Loader) mergeLegacyKeys() error {
	path := l.v.ConfigFileUsed()
	if path == "" {
		return nil
	}
	data, err := fsutil.ReadFileScoped(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	normalized := normalizeLegacyConfigMap(raw)
	if len(normalized) == 0 {
		return nil
	}
	return l.v.MergeConfigMap(normalized)
}

// setDefaults configures default values.
func (l *Loader) setDefaults() {
	l.v.SetDefault("general.save_configurations", true)
	l.v.SetDefault("general.save_inputs", true)
	l.v.SetDefault("general.save_sensitive_inputs", false)
	l.v.SetDefault("general.load_examples", true)

	l.v.SetDefault("log.level", "info")
	l.v.SetDefault("log.format", "auto")

	stateDir := filepath.Join(".devtools", "state")
	if dir, err := UserConfigDir(); err == nil {
		stateDir = filepath.Join(dir, "state")
	}
	l.v.SetDefault("state.backend", "xml")
	l.v.SetDefault("state.dir", stateDir)
	l.v.SetDefault("state.backup", true)
	l.v.SetDefault("state.scope", "tool-window")
}

// ConfigFile returns the config file path if one was used.
func (l *Loader) ConfigFile() string {
	return l.v.ConfigFileUsed()
}

// Set sets a configuration value.
func (l *Loader) Set(key string, value interface{}) {
	l.v.Set(key, value)
}

