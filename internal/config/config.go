package config

import "github.com/hugo-lorenzo-mato/devtools/internal/toolconfig"

// Config holds all application configuration.
type Config struct {
	General GeneralConfig `mapstructure:"general" yaml:"general"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	State   StateConfig   `mapstructure:"state" yaml:"state"`
}

// GeneralConfig holds the persistence toggles shared by every tool.
type GeneralConfig struct {
	SaveConfigurations  bool `mapstructure:"save_configurations" yaml:"save_configurations"`
	SaveInputs          bool `mapstructure:"save_inputs" yaml:"save_inputs"`
	SaveSensitiveInputs bool `mapstructure:"save_sensitive_inputs" yaml:"save_sensitive_inputs"`
	LoadExamples        bool `mapstructure:"load_examples" yaml:"load_examples"`
}

// Settings returns the toggles as a toolconfig.Settings snapshot.
func (c GeneralConfig) Settings() toolconfig.StaticSettings {
	return toolconfig.StaticSettings{
		SaveConfigurations:  c.SaveConfigurations,
		SaveInputs:          c.SaveInputs,
		SaveSensitiveInputs: c.SaveSensitiveInputs,
		LoadExamples:        c.LoadExamples,
	}
}

// LogConfig configures logging behavior.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	File   string `mapstructure:"file" yaml:"file,omitempty"`
}

// StateConfig configures state persistence.
type StateConfig struct {
	// Backend is "xml" or "sqlite".
	Backend string `mapstructure:"backend" yaml:"backend"`
	// Dir holds one <scope>.xml document per scope for the xml backend.
	Dir string `mapstructure:"dir" yaml:"dir"`
	// DBPath is the database file of the sqlite backend, <dir>/state.db when unset.
	DBPath string `mapstructure:"db_path" yaml:"db_path,omitempty"`
	Backup bool   `mapstructure:"backup" yaml:"backup"`
	// Scope is the default scope of CLI commands.
	Scope string `mapstructure:"scope" yaml:"scope"`
}
