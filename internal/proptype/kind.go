// Package proptype maps property values to the descriptors that persist them
// as a single "typeId|value" line.
//
// Built-in scalar kinds form a closed set. Enum kinds are open: declaring code
// contributes them at startup through RegisterEnum or an EnumContributor.
package proptype

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind enumerates the persistable value kinds.
type Kind int

const (
	KindBoolean Kind = iota + 1
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindString
	KindColor
	KindLocale
	KindDecimal
	KindEnum
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindColor:
		return "color"
	case KindLocale:
		return "locale"
	case KindDecimal:
		return "decimal"
	case KindEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// Enum is implemented by enum types that can be stored as property values.
// String must return the constant name used on disk.
type Enum interface {
	comparable
	PropertyTypeID() string
	String() string
}

// enumValue is the non-generic view of Enum used by type switches.
type enumValue interface {
	PropertyTypeID() string
	String() string
}

// Color is an RGB color with a separate variant for dark themes.
// Both values are packed 0xRRGGBB integers.
type Color struct {
	RGB     int32
	DarkRGB int32
}

// NewColor returns a color that looks the same on light and dark themes.
func NewColor(rgb int32) Color {
	return Color{RGB: rgb, DarkRGB: rgb}
}

// Hex returns the light variant formatted as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%06x", uint32(c.RGB)&0xffffff)
}

func formatColor(c Color) string {
	return strconv.FormatInt(int64(c.RGB), 10) + "," + strconv.FormatInt(int64(c.DarkRGB), 10)
}

func parseColor(s string) (Color, error) {
	light, dark, found := strings.Cut(s, ",")
	if !found {
		return Color{}, fmt.Errorf("color %q is not an rgb pair", s)
	}
	rgb, err := strconv.ParseInt(strings.TrimSpace(light), 10, 32)
	if err != nil {
		return Color{}, fmt.Errorf("color rgb: %w", err)
	}
	darkRGB, err := strconv.ParseInt(strings.TrimSpace(dark), 10, 32)
	if err != nil {
		return Color{}, fmt.Errorf("color dark rgb: %w", err)
	}
	return Color{RGB: int32(rgb), DarkRGB: int32(darkRGB)}, nil
}
