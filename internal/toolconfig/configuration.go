// Package toolconfig holds the named properties of one developer-tool instance.
//
// A tool registers every value it wants to keep across sessions with
// Register. Values loaded from storage are staged on the Configuration until
// the tool registers the matching key.
package toolconfig

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/hugo-lorenzo-mato/devtools/internal/core"
	"github.com/hugo-lorenzo-mato/devtools/internal/lifecycle"
	"github.com/hugo-lorenzo-mato/devtools/internal/logging"
	"github.com/hugo-lorenzo-mato/devtools/internal/observable"
	"github.com/hugo-lorenzo-mato/devtools/internal/proptype"
)

// Configuration is the property bag of one tool instance.
type Configuration struct {
	mu         sync.RWMutex
	name       string
	id         uuid.UUID
	persistent []PersistentProperty
	properties map[string]AnyProperty
	order      []string

	consumed    atomic.Bool
	resetDepth  atomic.Int32
	onChange    listenerList[ChangeListener]
	onReset     listenerList[ResetListener]
	settings    Settings
	registry    *proptype.Registry
	logger      *logging.Logger
	persistByID map[string]int
}

// Option configures a Configuration.
type Option func(*Configuration)

// WithSettings sets the persistence toggles. Defaults to DefaultSettings().
func WithSettings(s Settings) Option {
	return func(c *Configuration) {
		c.settings = s
	}
}

// WithRegistry sets the property type registry. Defaults to proptype.Default().
func WithRegistry(r *proptype.Registry) Option {
	return func(c *Configuration) {
		c.registry = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Configuration) {
		c.logger = l
	}
}

// New creates a configuration. persistent holds the values staged from storage.
func New(name string, id uuid.UUID, persistent []PersistentProperty, opts ...Option) *Configuration {
	c := &Configuration{
		name:        name,
		id:          id,
		properties:  make(map[string]AnyProperty),
		persistByID: make(map[string]int, len(persistent)),
		settings:    DefaultSettings(),
		registry:    proptype.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrNop(c.logger).WithConfiguration(id.String())

	for _, p := range persistent {
		if i, ok := c.persistByID[p.Key]; ok {
			c.persistent[i] = p
			continue
		}
		c.persistByID[p.Key] = len(c.persistent)
		c.persistent = append(c.persistent, p)
	}
	return c
}

// Name returns the display name.
func (c *Configuration) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// SetName renames the configuration.
func (c *Configuration) SetName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
}

// ID returns the configuration id.
func (c *Configuration) ID() uuid.UUID {
	return c.id
}

// PersistentProperties returns the values staged from storage.
func (c *Configuration) PersistentProperties() []PersistentProperty {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]PersistentProperty(nil), c.persistent...)
}

// WasConsumedByDeveloperTool reports whether a tool registered against this
// configuration.
func (c *Configuration) WasConsumedByDeveloperTool() bool {
	return c.consumed.Load()
}

// IsResetting reports whether a bulk Reset is in progress. Dependent code may
// use it to skip work that the reset makes redundant.
func (c *Configuration) IsResetting() bool {
	return c.resetDepth.Load() > 0
}

// Settings returns the persistence toggles.
func (c *Configuration) Settings() Settings {
	return c.settings
}

// Registry returns the property type registry.
func (c *Configuration) Registry() *proptype.Registry {
	return c.registry
}

// Property returns the live property registered under key.
func (c *Configuration) Property(key string) (AnyProperty, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.properties[key]
	return p, ok
}

// Properties returns the live properties in registration order.
func (c *Configuration) Properties() []AnyProperty {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]AnyProperty, 0, len(c.order))
	for _, key := range c.order {
		result = append(result, c.properties[key])
	}
	return result
}

// Snapshot returns the current values of the live properties in registration order.
func (c *Configuration) Snapshot() []PersistentProperty {
	properties := c.Properties()
	result := make([]PersistentProperty, 0, len(properties))
	for _, p := range properties {
		result = append(result, PersistentProperty{Key: p.Key(), Value: p.AnyValue(), Type: p.Type()})
	}
	return result
}

// RegisterOption configures a Register call.
type RegisterOption[T any] func(*registerOptions[T])

type registerOptions[T any] struct {
	typ     PropertyType
	example func() T
}

// WithType sets the persistence category. Defaults to TypeConfiguration.
func WithType[T any](t PropertyType) RegisterOption[T] {
	return func(o *registerOptions[T]) {
		o.typ = t
	}
}

// WithExample sets a fixed example value.
func WithExample[T any](example T) RegisterOption[T] {
	return func(o *registerOptions[T]) {
		o.example = func() T { return example }
	}
}

// WithExampleProvider sets a lazily evaluated example value.
func WithExampleProvider[T any](provider func() T) RegisterOption[T] {
	return func(o *registerOptions[T]) {
		o.example = provider
	}
}

// Register returns the property stored under key, creating it on first use.
//
// An existing property is returned as is, except that it is reset when its
// category is not saved, so that values from an earlier session never leak
// into one whose user opted out of saving them.
//
// A new property starts from the staged persistent value when one of type T
// exists, else from the example when examples are enabled, else from
// defaultValue. The type of defaultValue must be known to the registry.
func Register[T any](c *Configuration, key string, defaultValue T, opts ...RegisterOption[T]) (*Property[T], error) {
	o := registerOptions[T]{typ: TypeConfiguration}
	for _, opt := range opts {
		opt(&o)
	}

	c.mu.Lock()
	if existing, ok := c.properties[key]; ok {
		c.mu.Unlock()
		p, ok := existing.(*Property[T])
		if !ok {
			return nil, core.ErrProgramming(core.CodePropertyTypeMismatch,
				fmt.Sprintf("property %q is %T, not %T", key, existing.AnyDefaultValue(), defaultValue))
		}
		if !c.settings.ShouldSave(p.Type()) {
			p.Reset(c.settings.ShouldLoadExamples())
		}
		c.consumed.Store(true)
		return p, nil
	}
	defer c.mu.Unlock()

	if _, err := c.registry.DescriptorFor(any(defaultValue)); err != nil {
		return nil, fmt.Errorf("registering property %q: %w", key, err)
	}

	p := newProperty(key, o.typ, defaultValue, defaultValue, o.example)
	initial, source := p.resetValue(c.settings.ShouldLoadExamples()), "default"
	if o.example != nil && c.settings.ShouldLoadExamples() {
		source = "example"
	}
	if i, ok := c.persistByID[key]; ok {
		if v, ok := c.persistent[i].Value.(T); ok {
			initial, source = v, "persistent"
		}
	}
	p.Set(initial)
	p.AddListener(func(observable.Change[T]) { c.fireChanged(key) })

	c.properties[key] = p
	c.order = append(c.order, key)
	c.consumed.Store(true)
	c.logger.Debug("property registered", "key", key, "type", o.typ.String(), "initial", source)
	return p, nil
}

// MustRegister is like Register but panics on error. Registration errors are
// coding defects.
func MustRegister[T any](c *Configuration, key string, defaultValue T, opts ...RegisterOption[T]) *Property[T] {
	p, err := Register(c, key, defaultValue, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// ResetOption configures Reset.
type ResetOption func(*resetOptions)

type resetOptions struct {
	typ          *PropertyType
	loadExamples *bool
}

// ResetType restricts Reset to one category.
func ResetType(t PropertyType) ResetOption {
	return func(o *resetOptions) {
		o.typ = &t
	}
}

// ResetLoadExamples overrides the load-examples setting for this reset.
func ResetLoadExamples(load bool) ResetOption {
	return func(o *resetOptions) {
		o.loadExamples = &load
	}
}

// Reset sets every matching property back to its example or default value,
// then notifies the reset listeners once.
func (c *Configuration) Reset(opts ...ResetOption) {
	var o resetOptions
	for _, opt := range opts {
		opt(&o)
	}
	loadExamples := c.settings.ShouldLoadExamples()
	if o.loadExamples != nil {
		loadExamples = *o.loadExamples
	}

	c.resetDepth.Add(1)
	defer c.resetDepth.Add(-1)

	for _, p := range c.Properties() {
		if o.typ != nil && p.Type() != *o.typ {
			continue
		}
		p.Reset(loadExamples)
	}

	for _, l := range c.onReset.snapshot() {
		l.fn()
	}
}

// AddChangeListener registers fn for value changes of any property. The
// listener is removed when parent is disposed; parent may be nil.
func (c *Configuration) AddChangeListener(parent lifecycle.Disposable, fn ChangeListener) *observable.Subscription {
	return c.onChange.subscribe(parent, fn)
}

// RemoveChangeListener removes a listener added with AddChangeListener.
func (c *Configuration) RemoveChangeListener(sub *observable.Subscription) {
	sub.Unsubscribe()
}

// AddResetListener registers fn for bulk resets. The listener is removed when
// parent is disposed; parent may be nil.
func (c *Configuration) AddResetListener(parent lifecycle.Disposable, fn ResetListener) *observable.Subscription {
	return c.onReset.subscribe(parent, fn)
}

// RemoveResetListener removes a listener added with AddResetListener.
func (c *Configuration) RemoveResetListener(sub *observable.Subscription) {
	sub.Unsubscribe()
}

func (c *Configuration) fireChanged(key string) {
	c.mu.RLock()
	p, ok := c.properties[key]
	c.mu.RUnlock()
	if !ok {
		panic(core.ErrProgramming(core.CodeUnknownProperty,
			fmt.Sprintf("change of unregistered property %q", key)))
	}

	for _, l := range c.onChange.snapshot() {
		l.fn(p)
	}
}
