package config

import (
	"reflect"
	"strings"
	"testing"
)

func TestLegacyKeyNormalization_NoUnderscoreCollisions(t *testing.T) {
	root := reflect.TypeOf(Config{})
	structs := map[reflect.Type]struct{}{}
	collectConfigStructTypes(root, structs)

	for typ := range structs {
		seen := map[string]string{}
		for i := 0; i < typ.NumField(); i++ {
			field := typ.Field(i)
			if !field.IsExported() {
				continue
			}
			name := canonicalTagName(field)
			if name == "" || name == "-" {
				continue
			}
			legacy := strings.ReplaceAll(name, "_", "")
			if prev, ok := seen[legacy]; ok && prev != name {
				t.Fatalf("legacy key collision in %s: %q and %q both map to %q",
					typ.Name(), prev, name, legacy)
			}
			seen[legacy] = name
		}
	}
}

func TestNormalizeLegacyConfigMap(t *testing.T) {
	if got := normalizeLegacyConfigMap(nil); got != nil {
		t.Errorf("normalizeLegacyConfigMap(nil) = %v, want nil", got)
	}

	data := map[string]interface{}{
		"General": map[string]interface{}{
			"loadexamples":          false,
			"save_secrets":          true,
			"save_sensitive_inputs": false,
		},
		"state": map[string]interface{}{
			"backend": " File ",
			"path":    "/var/lib/devtools",
			"dbpath":  "/var/lib/devtools/state.db",
		},
	}

	got := normalizeLegacyConfigMap(data)
	general := got["general"].(map[string]interface{})
	if general["load_examples"] != false {
		t.Errorf("general.load_examples = %v, want false", general["load_examples"])
	}
	if general["save_sensitive_inputs"] != false {
		t.Error("explicit save_sensitive_inputs must win over legacy save_secrets")
	}
	if _, ok := general["save_secrets"]; ok {
		t.Error("legacy save_secrets key must be removed")
	}

	state := got["state"].(map[string]interface{})
	if state["backend"] != "xml" {
		t.Errorf("state.backend = %v, want xml", state["backend"])
	}
	if state["dir"] != "/var/lib/devtools" {
		t.Errorf("state.dir = %v, want /var/lib/devtools", state["dir"])
	}
	if state["db_path"] != "/var/lib/devtools/state.db" {
		t.Errorf("state.db_path = %v", state["db_path"])
	}
}

func collectConfigStructTypes(t reflect.Type, seen map[reflect.Type]struct{}) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return
	}
	if _, ok := seen[t]; ok {
		return
	}
	if t.PkgPath() != reflect.TypeOf(Config{}).PkgPath() {
		return
	}

	seen[t] = struct{}{}

	for i := 0; i < t.NumField(); i++ {
		fieldType := t.Field(i).Type
		if fieldType.Kind() == reflect.Pointer {
			fieldType = fieldType.Elem()
		}
		if fieldType.Kind() == reflect.Struct {
			collectConfigStructTypes(fieldType, seen)
		}
	}
}
