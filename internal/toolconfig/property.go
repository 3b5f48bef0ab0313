package toolconfig

import (
	"github.com/hugo-lorenzo-mato/devtools/internal/observable"
	"github.com/hugo-lorenzo-mato/devtools/internal/proptype"
)

// PersistentProperty is a property value detached from any live property,
// as read from or written to storage.
type PersistentProperty struct {
	Key   string
	Value any
	Type  PropertyType
}

// AnyProperty is the type-erased view of a Property.
type AnyProperty interface {
	Key() string
	Type() PropertyType
	AnyValue() any
	AnyDefaultValue() any
	AnyExample() (any, bool)
	ValueWasChanged() bool
	Reset(loadExamples bool)
}

// Property is a named, typed value owned by one Configuration.
type Property[T any] struct {
	*observable.Value[T]

	key          string
	typ          PropertyType
	defaultValue T
	example      func() T
}

func newProperty[T any](key string, typ PropertyType, initial, defaultValue T, example func() T) *Property[T] {
	return &Property[T]{
		Value:        observable.NewValue(initial, equalValues[T]),
		key:          key,
		typ:          typ,
		defaultValue: defaultValue,
		example:      example,
	}
}

func equalValues[T any](a, b T) bool {
	return proptype.Equal(a, b)
}

// Key returns the property key.
func (p *Property[T]) Key() string { return p.key }

// Type returns the persistence category.
func (p *Property[T]) Type() PropertyType { return p.typ }

// DefaultValue returns the value used when no example applies.
func (p *Property[T]) DefaultValue() T { return p.defaultValue }

// Example evaluates the example provider, if any.
func (p *Property[T]) Example() (T, bool) {
	if p.example == nil {
		var zero T
		return zero, false
	}
	return p.example(), true
}

// AnyValue implements AnyProperty.
func (p *Property[T]) AnyValue() any { return p.Get() }

// AnyDefaultValue implements AnyProperty.
func (p *Property[T]) AnyDefaultValue() any { return p.defaultValue }

// AnyExample implements AnyProperty.
func (p *Property[T]) AnyExample() (any, bool) {
	v, ok := p.Example()
	if !ok {
		return nil, false
	}
	return v, true
}

// ValueWasChanged reports whether the value differs from both the default and
// the example. Decimals compare numerically.
func (p *Property[T]) ValueWasChanged() bool {
	value := p.Get()
	if proptype.Equal(value, p.defaultValue) {
		return false
	}
	if example, ok := p.Example(); ok && proptype.Equal(value, example) {
		return false
	}
	return true
}

// Reset sets the value to the example when loadExamples is true and an
// example exists, otherwise to the default.
func (p *Property[T]) Reset(loadExamples bool) {
	p.Set(p.resetValue(loadExamples))
}

func (p *Property[T]) resetValue(loadExamples bool) T {
	if loadExamples {
		if example, ok := p.Example(); ok {
			return example
		}
	}
	return p.defaultValue
}
