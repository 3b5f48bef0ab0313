package config

import (
	"reflect"
	"strings"
)

// normalizeLegacyConfigMap maps legacy YAML keys (without underscores) to the
// canonical snake_case keys defined by mapstructure tags. It mutates and returns
// the provided map.
func normalizeLegacyConfigMap(data map[string]interface{}) map[string]interface{} {
	if data == nil {
		return nil
	}
	applyLegacyPathMappings(data)
	return normalizeMapForStruct(data, reflect.TypeOf(Config{}))
}

func applyLegacyPathMappings(data map[string]interface{}) {
	lowerKeys(data)

	if val, ok := data["persistence"]; ok {
		if _, exists := data["state"]; !exists {
			data["state"] = val
		}
		delete(data, "persistence")
	}

	if general, ok := data["general"].(map[string]interface{}); ok {
		lowerKeys(general)
		moveKey(general, "save_secrets", general, "save_sensitive_inputs")
		moveKey(general, "savesecrets", general, "save_sensitive_inputs")
	}

	if state, ok := data["state"].(map[string]interface{}); ok {
		lowerKeys(state)
		moveKey(state, "path", state, "dir")
		moveKey(state, "database", state, "db_path")
		if backend, ok := state["backend"].(string); ok {
			state["backend"] = normalizeBackend(backend)
		}
	}

	if log, ok := data["log"].(map[string]interface{}); ok {
		lowerKeys(log)
	}
}

// moveKey renames from[oldKey] to to[newKey] unless newKey is already set.
func moveKey(from map[string]interface{}, oldKey string, to map[string]interface{}, newKey string) {
	val, ok := from[oldKey]
	if !ok {
		return
	}
	if _, exists := to[newKey]; !exists {
		to[newKey] = val
	}
	delete(from, oldKey)
}

func lowerKeys(data map[string]interface{}) {
	for key, val := range data {
		lower := strings.ToLower(key)
		if lower == key {
			continue
		}
		if _, exists := data[lower]; !exists {
			data[lower] = val
		}
		delete(data, key)
	}
}

func normalizeMapForStruct(data map[string]interface{}, t reflect.Type) map[string]interface{} {
	if data == nil {
		return nil
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return data
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := canonicalTagName(field)
		if name == "" || name == "-" {
			continue
		}

		legacy := strings.ReplaceAll(name, "_", "")
		if legacy != name {
			if val, ok := data[legacy]; ok {
				if _, exists := data[name]; !exists {
					data[name] = val
				}
				delete(data, legacy)
			}
		}

		if val, ok := data[name]; ok {
			data[name] = normalizeValueForType(val, field.Type)
		}
	}

	return data
}

func normalizeValueForType(value interface{}, t reflect.Type) interface{} {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Struct:
		if m, ok := value.(map[string]interface{}); ok {
			return normalizeMapForStruct(m, t)
		}
	case reflect.Slice:
		// Only normalize slices of structs/pointers to structs.
		if t.Elem().Kind() == reflect.Struct || (t.Elem().Kind() == reflect.Pointer && t.Elem().Elem().Kind() == reflect.Struct) {
			if list, ok := value.([]interface{}); ok {
				out := make([]interface{}, 0, len(list))
				for _, item := range list {
					out = append(out, normalizeValueForType(item, t.Elem()))
				}
				return out
			}
		}
	}

	return value
}

func canonicalTagName(field reflect.StructField) string {
	if tag := field.Tag.Get("mapstructure"); tag != "" {
		return strings.Split(tag, ",")[0]
	}
	if tag := field.Tag.Get("yaml"); tag != "" {
		return strings.Split(tag, ",")[0]
	}
	return strings.ToLower(field.Name)
}

func normalizeBackend(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if mapped, ok := backendAliases[normalized]; ok {
		return mapped
	}
	return normalized
}

var backendAliases = map[string]string{
	"file":    "xml",
	"files":   "xml",
	"xmlfile": "xml",
	"db":      "sqlite",
	"sqlite3": "sqlite",
}
