package proptype

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"github.com/hugo-lorenzo-mato/devtools/internal/core"
)

// Delimiter separates the type id from the serialized value.
const Delimiter = "|"

// Descriptor converts values of one kind to and from their persistent form.
type Descriptor struct {
	ID       string
	LegacyID string
	Kind     Kind

	fromPersistent func(string) (any, error)
	toPersistent   func(any) (string, error)
}

// FromPersistent parses a serialized value.
func (d *Descriptor) FromPersistent(s string) (any, error) {
	return d.fromPersistent(s)
}

// ToPersistent formats a value. The value must be of the descriptor's kind.
func (d *Descriptor) ToPersistent(v any) (string, error) {
	return d.toPersistent(v)
}

// legacyTypeIDs maps ids written by older releases to current ids.
var legacyTypeIDs = map[string]string{
	"kotlin.Boolean":          "boolean",
	"kotlin.Int":              "int",
	"kotlin.Long":             "long",
	"kotlin.Float":            "float",
	"kotlin.Double":           "double",
	"kotlin.String":           "string",
	"java.math.BigDecimal":    "decimal",
	"java.util.Locale":        "locale",
	"com.intellij.ui.JBColor": "color",
	"java.awt.Color":          "color",
}

// Registry holds the descriptors of every persistable kind.
type Registry struct {
	mu       sync.RWMutex
	byID     map[string]*Descriptor
	byLegacy map[string]*Descriptor
	builtins map[Kind]*Descriptor
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// NewRegistry creates a registry holding the built-in descriptors.
func NewRegistry() *Registry {
	r := &Registry{
		byID:     make(map[string]*Descriptor),
		byLegacy: make(map[string]*Descriptor),
		builtins: make(map[Kind]*Descriptor),
	}
	for _, d := range builtinDescriptors() {
		r.byID[d.ID] = d
		r.builtins[d.Kind] = d
	}
	return r
}

// DescriptorFor returns the descriptor for the runtime type of value.
func (r *Registry) DescriptorFor(value any) (*Descriptor, error) {
	kind := kindOf(value)
	if kind == 0 {
		return nil, core.ErrProgramming(core.CodeUnsupportedType,
			fmt.Sprintf("unsupported property value type %T", value))
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if kind != KindEnum {
		return r.builtins[kind], nil
	}
	id := value.(enumValue).PropertyTypeID()
	d, ok := r.byID[id]
	if !ok || d.Kind != KindEnum {
		return nil, core.ErrProgramming(core.CodeUnsupportedType,
			fmt.Sprintf("enum type %q (%T) is not registered", id, value))
	}
	return d, nil
}

// DescriptorForID resolves a persisted type id, accepting legacy ids.
// It returns false when no descriptor matches.
func (r *Registry) DescriptorForID(id string) (*Descriptor, bool) {
	if alias, ok := legacyTypeIDs[id]; ok {
		id = alias
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if d, ok := r.byID[id]; ok {
		return d, true
	}
	d, ok := r.byLegacy[id]
	return d, ok
}

// IDs returns the registered type ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) add(d *Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[d.ID]; exists {
		return core.ErrProgramming(core.CodeDuplicateDescriptor,
			fmt.Sprintf("type id %q is already registered", d.ID))
	}
	if d.LegacyID != "" {
		if _, exists := r.byLegacy[d.LegacyID]; exists {
			return core.ErrProgramming(core.CodeDuplicateDescriptor,
				fmt.Sprintf("legacy type id %q is already registered", d.LegacyID))
		}
		r.byLegacy[d.LegacyID] = d
	}
	r.byID[d.ID] = d
	return nil
}

// Serialize formats value as "typeId|serializedValue".
func (r *Registry) Serialize(value any) (string, error) {
	d, err := r.DescriptorFor(value)
	if err != nil {
		return "", err
	}
	s, err := d.ToPersistent(value)
	if err != nil {
		return "", err
	}
	return d.ID + Delimiter + s, nil
}

// Deserialize parses a "typeId|serializedValue" line. Any delimiter inside the
// serialized value is preserved.
func (r *Registry) Deserialize(line string) (any, error) {
	parts := strings.SplitN(line, Delimiter, 2)
	if len(parts) != 2 {
		return nil, core.ErrData(core.CodeMalformedValue,
			fmt.Sprintf("value %q has no type id", line))
	}

	d, ok := r.DescriptorForID(parts[0])
	if !ok {
		return nil, core.ErrData(core.CodeUnknownTypeID,
			fmt.Sprintf("unknown type id %q", parts[0]))
	}

	v, err := d.FromPersistent(parts[1])
	if err != nil {
		var domErr *core.DomainError
		if errors.As(err, &domErr) {
			return nil, err
		}
		return nil, core.ErrData(core.CodeMalformedValue,
			fmt.Sprintf("cannot parse %s value", d.ID)).WithCause(err)
	}
	return v, nil
}

// Equal compares two property values. Decimals compare numerically.
func Equal(a, b any) bool {
	if da, ok := a.(decimal.Decimal); ok {
		db, ok := b.(decimal.Decimal)
		return ok && da.Equal(db)
	}
	return a == b
}

func kindOf(value any) Kind {
	switch value.(type) {
	case bool:
		return KindBoolean
	case int32:
		return KindInt
	case int64:
		return KindLong
	case float32:
		return KindFloat
	case float64:
		return KindDouble
	case string:
		return KindString
	case Color:
		return KindColor
	case language.Tag:
		return KindLocale
	case decimal.Decimal:
		return KindDecimal
	case enumValue:
		return KindEnum
	default:
		return 0
	}
}

func builtinDescriptors() []*Descriptor {
	return []*Descriptor{
		{
			ID:             "boolean",
			Kind:           KindBoolean,
			fromPersistent: func(s string) (any, error) { return strconv.ParseBool(s) },
			toPersistent:   typed(func(v bool) string { return strconv.FormatBool(v) }),
		},
		{
			ID:   "int",
			Kind: KindInt,
			fromPersistent: func(s string) (any, error) {
				v, err := strconv.ParseInt(s, 10, 32)
				return int32(v), err
			},
			toPersistent: typed(func(v int32) string { return strconv.FormatInt(int64(v), 10) }),
		},
		{
			ID:             "long",
			Kind:           KindLong,
			fromPersistent: func(s string) (any, error) { return strconv.ParseInt(s, 10, 64) },
			toPersistent:   typed(func(v int64) string { return strconv.FormatInt(v, 10) }),
		},
		{
			ID:   "float",
			Kind: KindFloat,
			fromPersistent: func(s string) (any, error) {
				v, err := strconv.ParseFloat(s, 32)
				return float32(v), err
			},
			toPersistent: typed(func(v float32) string { return strconv.FormatFloat(float64(v), 'g', -1, 32) }),
		},
		{
			ID:             "double",
			Kind:           KindDouble,
			fromPersistent: func(s string) (any, error) { return strconv.ParseFloat(s, 64) },
			toPersistent:   typed(func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }),
		},
		{
			ID:             "string",
			Kind:           KindString,
			fromPersistent: func(s string) (any, error) { return s, nil },
			toPersistent:   typed(func(v string) string { return v }),
		},
		{
			ID:             "color",
			Kind:           KindColor,
			fromPersistent: func(s string) (any, error) { return parseColor(s) },
			toPersistent:   typed(formatColor),
		},
		{
			ID:             "locale",
			Kind:           KindLocale,
			fromPersistent: func(s string) (any, error) { return language.Parse(s) },
			toPersistent:   typed(func(v language.Tag) string { return v.String() }),
		},
		{
			ID:             "decimal",
			Kind:           KindDecimal,
			fromPersistent: func(s string) (any, error) { return decimal.NewFromString(s) },
			toPersistent:   typed(func(v decimal.Decimal) string { return v.String() }),
		},
	}
}

func typed[T any](format func(T) string) func(any) (string, error) {
	return func(v any) (string, error) {
		t, ok := v.(T)
		if !ok {
			var zero T
			return "", core.ErrProgramming(core.CodeUnsupportedType,
				fmt.Sprintf("expected %T, got %T", zero, v))
		}
		return format(t), nil
	}
}
