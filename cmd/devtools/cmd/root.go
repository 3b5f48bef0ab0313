package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hugo-lorenzo-mato/devtools/internal/config"
	"github.com/hugo-lorenzo-mato/devtools/internal/instance"
	"github.com/hugo-lorenzo-mato/devtools/internal/logging"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
	scopeName string
	noColor   bool

	// Version info - set via SetVersion()
	appVersion string
	appCommit  string
	appDate    string

	appLoader *config.Loader
	appConfig *config.Config
	appLogger *logging.Logger
	logFile   io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "devtools",
	Short: "Inspect and maintain persisted developer tool configurations",
	Long: `devtools manages the saved state of the developer tools: the named
configurations of every tool, grouped per scope (dialog, tool-window,
application), stored as XML documents or in a SQLite database.

It can show, migrate, reset and verify that state, and watch it for
external edits.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return initConfig()
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if logFile != nil {
			_ = logFile.Close()
			logFile = nil
		}
	},
}

// Execute runs the root command and prints the error, if any.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func SetVersion(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

// GetVersion returns the application version string.
func GetVersion() string {
	return appVersion
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: .devtools.yaml or ~/.config/devtools/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "auto",
		"log format (auto, text, json)")
	rootCmd.PersistentFlags().StringVar(&scopeName, "scope", "tool-window",
		"state scope (dialog, tool-window, application)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"disable colored output")

	// Bind flags to viper (errors are nil when flag exists)
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("state.scope", rootCmd.PersistentFlags().Lookup("scope"))
}

func initConfig() error {
	loader := config.NewLoaderWithViper(viper.GetViper())
	if cfgFile != "" {
		loader.WithConfigFile(cfgFile)
	}
	cfg, err := loader.Load()
	if err != nil {
		return err
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}
	appLoader, appConfig = loader, cfg

	var output io.Writer = os.Stderr
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		logFile = f
		output = f
	}
	appLogger = logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: output,
	})
	if used := loader.ConfigFile(); used != "" {
		appLogger.Debug("config loaded", "file", used)
	}
	return nil
}

// currentScope returns the scope selected by --scope or the config file.
func currentScope() (instance.Scope, error) {
	name := strings.TrimSpace(appConfig.State.Scope)
	return instance.ParseScope(name)
}
