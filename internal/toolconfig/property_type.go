package toolconfig

import (
	"fmt"
	"strings"

	"github.com/hugo-lorenzo-mato/devtools/internal/core"
)

// PropertyType is the persistence category of a property.
type PropertyType int

const (
	// TypeConfiguration properties control tool behavior.
	TypeConfiguration PropertyType = iota + 1
	// TypeInput properties hold user-entered data.
	TypeInput
	// TypeSensitive properties hold secrets.
	TypeSensitive
)

// PropertyTypes lists every category.
var PropertyTypes = []PropertyType{TypeConfiguration, TypeInput, TypeSensitive}

func (t PropertyType) String() string {
	switch t {
	case TypeConfiguration:
		return "CONFIGURATION"
	case TypeInput:
		return "INPUT"
	case TypeSensitive:
		return "SENSITIVE"
	default:
		return fmt.Sprintf("PropertyType(%d)", int(t))
	}
}

// ParsePropertyType parses the persisted category name.
func ParsePropertyType(s string) (PropertyType, error) {
	switch strings.TrimSpace(s) {
	case "CONFIGURATION":
		return TypeConfiguration, nil
	case "INPUT":
		return TypeInput, nil
	case "SENSITIVE":
		return TypeSensitive, nil
	default:
		return 0, core.ErrData(core.CodeUnknownPropertyType,
			fmt.Sprintf("unknown property type %q", s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t PropertyType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *PropertyType) UnmarshalText(text []byte) error {
	parsed, err := ParsePropertyType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
