package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hugo-lorenzo-mato/devtools/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the devtools configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting and save the configuration file",
	Long: `Change one setting, e.g. "devtools config set general.save_inputs false",
and write the complete effective configuration back to the config file.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var (
	configInitForce   bool
	configInitProject bool
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd, configSetCmd)

	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "Overwrite an existing file")
	configInitCmd.Flags().BoolVar(&configInitProject, "project", false, "Write .devtools.yaml in the current directory")
}

// configPath returns the file config commands write to.
func configPath(project bool) (string, error) {
	switch {
	case cfgFile != "":
		return cfgFile, nil
	case project:
		return ".devtools.yaml", nil
	default:
		return config.UserConfigPath()
	}
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path, err := configPath(configInitProject)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if configInitForce {
		if err := config.AtomicWrite(path, []byte(config.DefaultConfigYAML)); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
		fmt.Fprintf(out, "Wrote %s\n", path)
		return nil
	}

	created, err := config.EnsureConfigFile(path)
	if err != nil {
		return err
	}
	if !created {
		fmt.Fprintf(out, "%s already exists (use --force to overwrite)\n", path)
		return nil
	}
	fmt.Fprintf(out, "Created %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	data, err := yaml.Marshal(appConfig)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if appLoader == nil {
		return fmt.Errorf("configuration not loaded")
	}
	path := appLoader.ConfigFile()
	if path == "" {
		var err error
		if path, err = configPath(false); err != nil {
			return err
		}
	}

	appLoader.Set(args[0], args[1])
	cfg, err := appLoader.Config()
	if err != nil {
		return err
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}

	saved := *cfg
	if !appLoader.Viper().IsSet("state.db_path") {
		// An unset db_path stays derived from state.dir.
		saved.State.DBPath = ""
	}
	if err := config.Save(path, &saved); err != nil {
		return err
	}
	appConfig = cfg
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", args[0], args[1], path)
	return nil
}
