// Package migration rewrites persisted property keys written by older
// releases into their current names.
package migration

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Cutover versions. State written by this version or later already uses the
// new key layout.
var (
	UnidirectionalCutover = semver.MustParse("6.4.0")
	EditorKeyCutover      = semver.MustParse("7.0.0")
)

// Rule rewrites one key. It returns the key unchanged when it does not apply.
type Rule interface {
	Name() string
	Apply(toolID, key string, stateVersion *semver.Version) string
}

// DefaultRules returns the rules in the order they must run.
func DefaultRules() []Rule {
	return []Rule{
		liveConversionRule{},
		editorKeyRule{},
	}
}

// MigrateKey applies DefaultRules to key. A nil stateVersion predates every
// cutover.
func MigrateKey(toolID, key string, stateVersion *semver.Version) string {
	return Apply(DefaultRules(), toolID, key, stateVersion)
}

// Apply runs rules in order, each receiving the previous result.
func Apply(rules []Rule, toolID, key string, stateVersion *semver.Version) string {
	for _, rule := range rules {
		key = rule.Apply(toolID, key, stateVersion)
	}
	return key
}

// ParseVersion parses the version attribute of a persisted state. Empty or
// unparseable input yields nil.
func ParseVersion(s string) *semver.Version {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := semver.NewVersion(s)
	if err != nil {
		return nil
	}
	return v
}

func predates(stateVersion, cutover *semver.Version) bool {
	return stateVersion == nil || stateVersion.LessThan(cutover)
}

// Tools that moved from a bidirectional to a unidirectional conversion model.
var unidirectionalTools = map[string]struct{}{
	"hmac-transformer":          {},
	"hashing-transformer":       {},
	"base32-encoder-decoder":    {},
	"base64-encoder-decoder":    {},
	"url-encoder-decoder":       {},
	"jwt-encoder-decoder":       {},
	"text-escape-unescape":      {},
	"text-case-converter":       {},
	"text-sort":                 {},
	"line-breaks-encoder":       {},
	"json-yaml-converter":       {},
	"properties-yaml-converter": {},
	"sql-formatter":             {},
	"rot13-encoder-decoder":     {},
	"ascii-encoder-decoder":     {},
	"morse-code-encoder":        {},
}

type liveConversionRule struct{}

func (liveConversionRule) Name() string { return "live-conversion" }

func (liveConversionRule) Apply(toolID, key string, stateVersion *semver.Version) string {
	if key != "liveTransformation" || !predates(stateVersion, UnidirectionalCutover) {
		return key
	}
	if _, ok := unidirectionalTools[toolID]; !ok {
		return key
	}
	return "liveConversion"
}

var editorKeySuffixes = []string{"softWraps", "showSpecialCharacters", "showWhitespaces"}

// Old editor ids per tool and their replacements. Editors not listed keep
// their id.
var editorRenames = map[string]map[string]string{
	"jwt-encoder-decoder": {
		"jwt-encoder-decoder-encoded": "encoded",
		"jwt-encoder-decoder-header":  "header",
		"jwt-encoder-decoder-payload": "payload",
	},
	"hmac-transformer": {
		"hmac-transformer-source": "source",
		"hmac-transformer-target": "target",
	},
	"hashing-transformer": {
		"hashing-transformer-source": "source",
		"hashing-transformer-target": "target",
	},
	"base64-encoder-decoder": {
		"base64-encoder-decoder-encoded": "encoded",
		"base64-encoder-decoder-decoded": "decoded",
	},
	"sql-formatter": {
		"sql-formatter-input":  "input",
		"sql-formatter-output": "output",
	},
	"text-case-converter": {
		"text-case-converter-original": "original",
		"text-case-converter-result":   "result",
	},
}

type editorKeyRule struct{}

func (editorKeyRule) Name() string { return "editor-key" }

func (editorKeyRule) Apply(toolID, key string, stateVersion *semver.Version) string {
	if !predates(stateVersion, EditorKeyCutover) {
		return key
	}
	rest, ok := strings.CutPrefix(key, toolID+"-")
	if !ok {
		return key
	}
	for _, suffix := range editorKeySuffixes {
		editorID, ok := strings.CutSuffix(rest, "-"+suffix)
		if !ok || editorID == "" {
			continue
		}
		if renamed, ok := editorRenames[toolID][editorID]; ok {
			editorID = renamed
		}
		return editorID + "-editor-" + suffix
	}
	return key
}
