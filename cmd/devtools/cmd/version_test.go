package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionCommand(t *testing.T) {
	prevVersion, prevCommit, prevDate := appVersion, appCommit, appDate
	t.Cleanup(func() { SetVersion(prevVersion, prevCommit, prevDate) })

	SetVersion("v1.2.3", "abc123def", "2024-01-15")

	t.Run("version command output", func(t *testing.T) {
		var buf bytes.Buffer
		versionCmd.SetOut(&buf)
		defer versionCmd.SetOut(nil)

		versionCmd.Run(versionCmd, []string{})

		output := buf.String()
		assert.Contains(t, output, "devtools v1.2.3")
		assert.Contains(t, output, "commit: abc123def")
		assert.Contains(t, output, "built:  2024-01-15")
		assert.Equal(t, "v1.2.3", GetVersion())
	})

	t.Run("version with empty values", func(t *testing.T) {
		SetVersion("", "", "")

		var buf bytes.Buffer
		versionCmd.SetOut(&buf)
		defer versionCmd.SetOut(nil)

		versionCmd.Run(versionCmd, []string{})

		output := buf.String()
		assert.Contains(t, output, "devtools")
		assert.Contains(t, output, "commit:")
		assert.Contains(t, output, "built:")
	})
}
