package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugo-lorenzo-mato/devtools/internal/config"
	"github.com/hugo-lorenzo-mato/devtools/internal/instance"
	"github.com/hugo-lorenzo-mato/devtools/internal/logging"
)

const legacyToolWindow = `<component name="DeveloperToolsInstanceSettings"
	lastSelectedContentNodeId="hmac-transformer"
	hmac-transformer.liveTransformation="boolean|false"
	hmac-transformer.algorithm="hmac-algorithm|HmacSHA512"
	hmac-transformer.source="string|stored input"
	retired-tool.mode="string|fast"/>`

// useStateDir points the package configuration at a temporary xml state dir.
func useStateDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	prevConfig, prevLogger, prevNoColor := appConfig, appLogger, noColor
	t.Cleanup(func() {
		appConfig, appLogger, noColor = prevConfig, prevLogger, prevNoColor
	})

	appConfig = &config.Config{
		General: config.GeneralConfig{SaveConfigurations: true, SaveInputs: true, LoadExamples: true},
		Log:     config.LogConfig{Level: "error", Format: "text"},
		State: config.StateConfig{
			Backend: "xml",
			Dir:     dir,
			Scope:   instance.ScopeToolWindow.String(),
		},
	}
	appLogger = logging.NewNop()
	noColor = true
	return dir
}

func writeScope(t *testing.T, dir string, scope instance.Scope, doc string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, scope.String()+".xml"), []byte(doc), 0o600))
}

// runCommand runs fn against a throwaway command that captures its output.
func runCommand(t *testing.T, fn func(*cobra.Command, []string) error, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	c := &cobra.Command{}
	c.SetOut(&buf)
	c.SetContext(context.Background())
	err := fn(c, args)
	return buf.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"version", "tools", "state", "config"} {
		assert.True(t, names[want], "missing %s command", want)
	}

	stateNames := make(map[string]bool)
	for _, c := range stateCmd.Commands() {
		stateNames[c.Name()] = true
	}
	for _, want := range []string{"show", "migrate", "reset", "clear", "check", "watch"} {
		assert.True(t, stateNames[want], "missing state %s command", want)
	}
}

func TestToolsList(t *testing.T) {
	prevJSON := toolsListJSON
	t.Cleanup(func() { toolsListJSON = prevJSON })

	out, err := runCommand(t, runToolsList)
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "hmac-transformer")
	assert.Contains(t, out, "sql-formatter")

	out, err = runCommand(t, runToolsList, "jwt")
	require.NoError(t, err)
	assert.Contains(t, out, "jwt-encoder-decoder")
	assert.NotContains(t, out, "sql-formatter")

	toolsListJSON = true
	out, err = runCommand(t, runToolsList, "hashing")
	require.NoError(t, err)
	var summaries []toolSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summaries))
	require.NotEmpty(t, summaries)
	assert.Equal(t, "hashing-transformer", summaries[0].ID)

	toolsListJSON = false
	out, err = runCommand(t, runToolsList, "zzzzqqq")
	require.NoError(t, err)
	assert.Contains(t, out, "No tools match")
}

func TestStateMigrate_UpgradesLegacyDocument(t *testing.T) {
	dir := useStateDir(t)
	writeScope(t, dir, instance.ScopeToolWindow, legacyToolWindow)

	prevDryRun := stateMigrateDryRun
	t.Cleanup(func() { stateMigrateDryRun = prevDryRun })
	stateMigrateDryRun = false

	out, err := runCommand(t, runStateMigrate)
	require.NoError(t, err)
	assert.Contains(t, out, "Migrated tool-window")
	assert.Contains(t, out, "retired-tool")

	data, err := os.ReadFile(filepath.Join(dir, "tool-window.xml"))
	require.NoError(t, err)
	doc := string(data)
	assert.Contains(t, doc, `<InstanceState version="7.0.0"`)
	assert.Contains(t, doc, `key="liveConversion" value="boolean|false"`)
	assert.Contains(t, doc, `value="hmac-algorithm|HmacSHA512"`)
	assert.Contains(t, doc, `value="string|stored input"`)
	assert.Contains(t, doc, `developerToolId="retired-tool"`)
	assert.NotContains(t, doc, "liveTransformation")
}

func TestStateShow_Formats(t *testing.T) {
	dir := useStateDir(t)
	writeScope(t, dir, instance.ScopeToolWindow, legacyToolWindow)

	prevTool, prevFormat := stateShowTool, stateShowFormat
	t.Cleanup(func() { stateShowTool, stateShowFormat = prevTool, prevFormat })

	stateShowTool, stateShowFormat = "", "text"
	out, err := runCommand(t, runStateShow)
	require.NoError(t, err)
	assert.Contains(t, out, "Scope tool-window")
	assert.Contains(t, out, "hmac-transformer")
	assert.Contains(t, out, "liveConversion")

	stateShowTool, stateShowFormat = "hmac-transformer", "json"
	out, err = runCommand(t, runStateShow)
	require.NoError(t, err)
	var doc instance.InstanceState
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Configurations, 1)
	assert.Equal(t, "hmac-transformer", *doc.Configurations[0].DeveloperToolID)

	stateShowTool, stateShowFormat = "", "yaml"
	out, err = runCommand(t, runStateShow)
	require.NoError(t, err)
	assert.Contains(t, out, "developerToolId: retired-tool")

	stateShowFormat = "toml"
	_, err = runCommand(t, runStateShow)
	require.Error(t, err)
}

func TestStateShow_MasksSensitiveValues(t *testing.T) {
	dir := useStateDir(t)
	appConfig.General.SaveSensitiveInputs = true
	writeScope(t, dir, instance.ScopeToolWindow, `<InstanceState version="7.0.0">
  <developerToolsConfigurations>
    <developerToolConfiguration developerToolId="hmac-transformer" id="0b6c3d0e-7a43-4d4c-9a0e-5f1f2c3b4d5e" name="Default">
      <properties>
        <property key="secretKey" value="string|hunter2" type="SENSITIVE"/>
      </properties>
    </developerToolConfiguration>
  </developerToolsConfigurations>
</InstanceState>`)

	prevTool, prevFormat := stateShowTool, stateShowFormat
	t.Cleanup(func() { stateShowTool, stateShowFormat = prevTool, prevFormat })
	stateShowTool, stateShowFormat = "", "text"

	out, err := runCommand(t, runStateShow)
	require.NoError(t, err)
	assert.Contains(t, out, "secretKey")
	assert.NotContains(t, out, "hunter2")
}

func TestStateReset_ByType(t *testing.T) {
	dir := useStateDir(t)
	writeScope(t, dir, instance.ScopeToolWindow, legacyToolWindow)

	prevTool, prevType := stateResetTool, stateResetType
	t.Cleanup(func() { stateResetTool, stateResetType = prevTool, prevType })
	stateResetTool, stateResetType = "hmac-transformer", "input"

	out, err := runCommand(t, runStateReset)
	require.NoError(t, err)
	assert.Contains(t, out, "Reset 1 configurations")

	data, err := os.ReadFile(filepath.Join(dir, "tool-window.xml"))
	require.NoError(t, err)
	doc := string(data)
	assert.Contains(t, doc, "hmac-algorithm|HmacSHA512")
	assert.NotContains(t, doc, "stored input")

	stateResetTool = "missing-tool"
	_, err = runCommand(t, runStateReset)
	require.Error(t, err)
}

func TestStateCheck(t *testing.T) {
	dir := useStateDir(t)

	out, err := runCommand(t, runStateCheck)
	require.NoError(t, err)
	assert.Contains(t, out, "dialog")
	assert.Contains(t, out, "application")

	writeScope(t, dir, instance.ScopeToolWindow, legacyToolWindow)
	writeScope(t, dir, instance.ScopeDialog, `<InstanceState>`)

	out, err = runCommand(t, runStateCheck)
	require.ErrorIs(t, err, errStateIssues)
	assert.Contains(t, out, "✗ dialog")
	assert.Contains(t, out, "✓ tool-window")
}

func TestStateCheck_Canceled(t *testing.T) {
	useStateDir(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &cobra.Command{}
	c.SetOut(&bytes.Buffer{})
	c.SetContext(ctx)

	err := runStateCheck(c, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestStateClear(t *testing.T) {
	dir := useStateDir(t)
	writeScope(t, dir, instance.ScopeToolWindow, legacyToolWindow)
	writeScope(t, dir, instance.ScopeDialog, legacyToolWindow)

	prevAll := stateClearAll
	t.Cleanup(func() { stateClearAll = prevAll })

	stateClearAll = false
	out, err := runCommand(t, runStateClear)
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared tool-window")
	assert.NoFileExists(t, filepath.Join(dir, "tool-window.xml"))
	assert.FileExists(t, filepath.Join(dir, "dialog.xml"))

	// Clearing a missing document is not an error.
	_, err = runCommand(t, runStateClear)
	require.NoError(t, err)

	stateClearAll = true
	out, err = runCommand(t, runStateClear)
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared dialog")
	assert.Contains(t, out, "Cleared application")
	assert.NoFileExists(t, filepath.Join(dir, "dialog.xml"))

	out, err = runCommand(t, runStateShow)
	require.NoError(t, err)
	assert.Contains(t, out, "No saved configurations")
}

func TestStateClear_SQLite(t *testing.T) {
	dir := useStateDir(t)
	appConfig.State.Backend = "sqlite"
	appConfig.State.DBPath = filepath.Join(dir, "state.db")

	prevAll := stateClearAll
	t.Cleanup(func() { stateClearAll = prevAll })
	stateClearAll = false

	prevDryRun := stateMigrateDryRun
	t.Cleanup(func() { stateMigrateDryRun = prevDryRun })
	stateMigrateDryRun = false

	_, err := runCommand(t, runStateMigrate)
	require.NoError(t, err)

	out, err := runCommand(t, runStateClear)
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared tool-window")
}

func TestStateVersion(t *testing.T) {
	prev := appVersion
	t.Cleanup(func() { appVersion = prev })

	appVersion = "dev"
	assert.Equal(t, "7.0.0", stateVersion())

	appVersion = "7.2.1"
	assert.Equal(t, "7.2.1", stateVersion())
}

func TestConfigInit(t *testing.T) {
	useStateDir(t)
	path := filepath.Join(t.TempDir(), "config.yaml")

	prevFile, prevForce := cfgFile, configInitForce
	t.Cleanup(func() { cfgFile, configInitForce = prevFile, prevForce })
	cfgFile, configInitForce = path, false

	out, err := runCommand(t, runConfigInit)
	require.NoError(t, err)
	assert.Contains(t, out, "Created")

	out, err = runCommand(t, runConfigInit)
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	configInitForce = true
	out, err = runCommand(t, runConfigInit)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfigYAML, string(data))
}

func TestConfigSet(t *testing.T) {
	dir := useStateDir(t)
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("state:\n  dir: "+dir+"\n"), 0o600))

	prevLoader := appLoader
	t.Cleanup(func() { appLoader = prevLoader })
	appLoader = config.NewLoader().WithConfigFile(path)
	_, err := appLoader.Load()
	require.NoError(t, err)

	out, err := runCommand(t, runConfigSet, "general.save_inputs", "false")
	require.NoError(t, err)
	assert.Contains(t, out, "Set general.save_inputs = false in "+path)
	assert.False(t, appConfig.General.SaveInputs)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "save_inputs: false")
	assert.Contains(t, string(data), "dir: "+dir)
	assert.NotContains(t, string(data), "db_path")

	_, err = runCommand(t, runConfigSet, "state.backend", "mongodb")
	require.Error(t, err)
}

func TestConfigShow(t *testing.T) {
	useStateDir(t)

	out, err := runCommand(t, runConfigShow)
	require.NoError(t, err)
	assert.Contains(t, out, "save_inputs: true")
	assert.Contains(t, out, "backend: xml")
}
